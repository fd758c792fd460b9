package s3

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/watchsync/server/internal/repository/media"
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	// PublicBaseURL is the externally reachable prefix objects are served
	// from, without a trailing slash.
	PublicBaseURL string
}

type storage struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

func NewStorage(ctx context.Context, cfg *Config) (*storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &storage{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

func (s *storage) Save(ctx context.Context, params *media.SaveParams) (string, error) {
	key := fmt.Sprintf("%s/video-%d%s", params.RoomId, time.Now().UnixMilli(), params.Ext)

	if _, err := s.client.PutObject(ctx, s.bucket, key, params.Content, params.Size, minio.PutObjectOptions{
		ContentType: params.ContentType,
	}); err != nil {
		return "", fmt.Errorf("failed to put object: %w", err)
	}

	return s.publicBaseURL + "/" + key, nil
}

func (s *storage) Release(ctx context.Context, mediaURL string) error {
	if !strings.HasPrefix(mediaURL, s.publicBaseURL+"/") {
		return nil
	}
	key := strings.TrimPrefix(mediaURL, s.publicBaseURL+"/")

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}

	return nil
}
