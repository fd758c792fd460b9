package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/watchsync/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 3000,
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	roomStorage = configVar[string]{
		envKey:       "SERVER_ROOM_STORAGE",
		flagKey:      "room-storage",
		defaultValue: app.RoomStorageMemory,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
	mediaStorage = configVar[string]{
		envKey:       "SERVER_MEDIA_STORAGE",
		flagKey:      "media-storage",
		defaultValue: app.MediaStorageDisk,
	}
	uploadsDir = configVar[string]{
		envKey:       "SERVER_UPLOADS_DIR",
		flagKey:      "uploads-dir",
		defaultValue: "./public/uploads",
	}
	maxUploadMB = configVar[int]{
		envKey:       "SERVER_MAX_UPLOAD_MB",
		flagKey:      "max-upload-mb",
		defaultValue: 500,
	}
	s3Endpoint = configVar[string]{
		envKey:       "S3_ENDPOINT",
		flagKey:      "s3-endpoint",
		defaultValue: "localhost:9000",
	}
	s3AccessKey = configVar[string]{
		envKey:       "S3_ACCESS_KEY",
		flagKey:      "s3-access-key",
		defaultValue: "",
	}
	s3SecretKey = configVar[string]{
		envKey:       "S3_SECRET_KEY",
		flagKey:      "s3-secret-key",
		defaultValue: "",
	}
	s3Bucket = configVar[string]{
		envKey:       "S3_BUCKET",
		flagKey:      "s3-bucket",
		defaultValue: "watchsync-videos",
	}
	s3Region = configVar[string]{
		envKey:       "S3_REGION",
		flagKey:      "s3-region",
		defaultValue: "us-east-1",
	}
	s3UseSSL = configVar[bool]{
		envKey:       "S3_USE_SSL",
		flagKey:      "s3-use-ssl",
		defaultValue: false,
	}
	s3PublicURL = configVar[string]{
		envKey:       "S3_PUBLIC_URL",
		flagKey:      "s3-public-url",
		defaultValue: "http://localhost:9000/watchsync-videos",
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.String(roomStorage.flagKey, roomStorage.defaultValue, "Room state storage backend (memory or redis)")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.String(mediaStorage.flagKey, mediaStorage.defaultValue, "Media storage backend (disk or s3)")
	pflag.String(uploadsDir.flagKey, uploadsDir.defaultValue, "Directory for uploaded videos")
	pflag.Int(maxUploadMB.flagKey, maxUploadMB.defaultValue, "Maximum upload size in megabytes")
	pflag.String(s3Endpoint.flagKey, s3Endpoint.defaultValue, "S3 endpoint")
	pflag.String(s3AccessKey.flagKey, s3AccessKey.defaultValue, "S3 access key")
	pflag.String(s3SecretKey.flagKey, s3SecretKey.defaultValue, "S3 secret key")
	pflag.String(s3Bucket.flagKey, s3Bucket.defaultValue, "S3 bucket")
	pflag.String(s3Region.flagKey, s3Region.defaultValue, "S3 region")
	pflag.Bool(s3UseSSL.flagKey, s3UseSSL.defaultValue, "Use SSL for S3")
	pflag.String(s3PublicURL.flagKey, s3PublicURL.defaultValue, "Public base URL for S3 objects")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(roomStorage.flagKey, roomStorage.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)
	viper.BindEnv(mediaStorage.flagKey, mediaStorage.envKey)
	viper.BindEnv(uploadsDir.flagKey, uploadsDir.envKey)
	viper.BindEnv(maxUploadMB.flagKey, maxUploadMB.envKey)
	viper.BindEnv(s3Endpoint.flagKey, s3Endpoint.envKey)
	viper.BindEnv(s3AccessKey.flagKey, s3AccessKey.envKey)
	viper.BindEnv(s3SecretKey.flagKey, s3SecretKey.envKey)
	viper.BindEnv(s3Bucket.flagKey, s3Bucket.envKey)
	viper.BindEnv(s3Region.flagKey, s3Region.envKey)
	viper.BindEnv(s3UseSSL.flagKey, s3UseSSL.envKey)
	viper.BindEnv(s3PublicURL.flagKey, s3PublicURL.envKey)

	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(roomStorage.flagKey, roomStorage.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)
	viper.SetDefault(mediaStorage.flagKey, mediaStorage.defaultValue)
	viper.SetDefault(uploadsDir.flagKey, uploadsDir.defaultValue)
	viper.SetDefault(maxUploadMB.flagKey, maxUploadMB.defaultValue)
	viper.SetDefault(s3Endpoint.flagKey, s3Endpoint.defaultValue)
	viper.SetDefault(s3AccessKey.flagKey, s3AccessKey.defaultValue)
	viper.SetDefault(s3SecretKey.flagKey, s3SecretKey.defaultValue)
	viper.SetDefault(s3Bucket.flagKey, s3Bucket.defaultValue)
	viper.SetDefault(s3Region.flagKey, s3Region.defaultValue)
	viper.SetDefault(s3UseSSL.flagKey, s3UseSSL.defaultValue)
	viper.SetDefault(s3PublicURL.flagKey, s3PublicURL.defaultValue)

	return &app.AppConfig{
		Host:          viper.GetString(host.flagKey),
		Port:          viper.GetInt(port.flagKey),
		LogLevel:      viper.GetString(logLevel.flagKey),
		RoomStorage:   viper.GetString(roomStorage.flagKey),
		RedisHost:     viper.GetString(redisHost.flagKey),
		RedisPort:     viper.GetInt(redisPort.flagKey),
		RedisPassword: viper.GetString(redisPassword.flagKey),
		MediaStorage:  viper.GetString(mediaStorage.flagKey),
		UploadsDir:    viper.GetString(uploadsDir.flagKey),
		MaxUploadMB:   viper.GetInt64(maxUploadMB.flagKey),
		S3Endpoint:    viper.GetString(s3Endpoint.flagKey),
		S3AccessKey:   viper.GetString(s3AccessKey.flagKey),
		S3SecretKey:   viper.GetString(s3SecretKey.flagKey),
		S3Bucket:      viper.GetString(s3Bucket.flagKey),
		S3Region:      viper.GetString(s3Region.flagKey),
		S3UseSSL:      viper.GetBool(s3UseSSL.flagKey),
		S3PublicURL:   viper.GetString(s3PublicURL.flagKey),
	}
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
