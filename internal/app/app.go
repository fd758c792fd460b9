package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/watchsync/server/internal/controller"
	connInmemory "github.com/watchsync/server/internal/repository/connection/inmemory"
	mediaDisk "github.com/watchsync/server/internal/repository/media/disk"
	mediaS3 "github.com/watchsync/server/internal/repository/media/s3"
	roomInmemory "github.com/watchsync/server/internal/repository/room/inmemory"
	roomRedis "github.com/watchsync/server/internal/repository/room/redis"
	"github.com/watchsync/server/internal/service/room"
	"github.com/watchsync/server/pkg/ctxlogger"
	"github.com/watchsync/server/pkg/redisclient"
)

const (
	RoomStorageMemory = "memory"
	RoomStorageRedis  = "redis"

	MediaStorageDisk = "disk"
	MediaStorageS3   = "s3"
)

type AppConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	LogLevel string `json:"log_level"`

	RoomStorage   string `json:"room_storage"`
	RedisHost     string `json:"redis_host"`
	RedisPort     int    `json:"redis_port"`
	RedisPassword string `json:"-"`

	MediaStorage string `json:"media_storage"`
	UploadsDir   string `json:"uploads_dir"`
	MaxUploadMB  int64  `json:"max_upload_mb"`

	S3Endpoint  string `json:"s3_endpoint"`
	S3AccessKey string `json:"-"`
	S3SecretKey string `json:"-"`
	S3Bucket    string `json:"s3_bucket"`
	S3Region    string `json:"s3_region"`
	S3UseSSL    bool   `json:"s3_use_ssl"`
	S3PublicURL string `json:"s3_public_url"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.MaxUploadMB < 1 {
		return fmt.Errorf("max upload size must be greater than 0")
	}
	if cfg.RoomStorage != RoomStorageMemory && cfg.RoomStorage != RoomStorageRedis {
		return fmt.Errorf("unknown room storage: %q", cfg.RoomStorage)
	}
	if cfg.MediaStorage != MediaStorageDisk && cfg.MediaStorage != MediaStorageS3 {
		return fmt.Errorf("unknown media storage: %q", cfg.MediaStorage)
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		}),
	}
	logger := slog.New(&h)

	var roomRepo room.RoomRepo
	switch cfg.RoomStorage {
	case RoomStorageRedis:
		rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		defer rc.Close()

		roomRepo = roomRedis.NewRepo(rc)
	default:
		roomRepo = roomInmemory.NewRepo()
	}

	var mediaStorage controller.MediaStorage
	controllerCfg := controller.Config{MaxUploadBytes: cfg.MaxUploadMB << 20}
	switch cfg.MediaStorage {
	case MediaStorageS3:
		s3Storage, err := mediaS3.NewStorage(ctx, &mediaS3.Config{
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			UseSSL:        cfg.S3UseSSL,
			PublicBaseURL: cfg.S3PublicURL,
		})
		if err != nil {
			return fmt.Errorf("failed to create s3 storage: %w", err)
		}
		mediaStorage = s3Storage
	default:
		diskStorage, err := mediaDisk.NewStorage(cfg.UploadsDir)
		if err != nil {
			return fmt.Errorf("failed to create disk storage: %w", err)
		}
		mediaStorage = diskStorage
		controllerCfg.UploadsDir = diskStorage.Dir()
	}

	connRepo := connInmemory.NewRepo()
	roomService := room.NewService(roomRepo, connRepo, mediaStorage, logger)
	c := controller.NewController(roomService, mediaStorage, controllerCfg, logger)

	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: c.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, cancel := context.WithTimeout(serverCtx, 30*time.Second)
		defer cancel()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
