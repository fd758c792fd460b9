package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/watchsync/server/internal/repository/media"
)

const urlPrefix = "/uploads/"

// storage keeps uploaded videos as files under dir and serves them by
// url path, multer-style: video-{roomId}-{unixms}{ext}.
type storage struct {
	dir string
}

func NewStorage(dir string) (*storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}

	return &storage{dir: dir}, nil
}

func (s *storage) Dir() string {
	return s.dir
}

func (s *storage) Save(ctx context.Context, params *media.SaveParams) (string, error) {
	filename := fmt.Sprintf("video-%s-%d%s", params.RoomId, time.Now().UnixMilli(), params.Ext)

	f, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, params.Content); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return urlPrefix + filename, nil
}

func (s *storage) Release(ctx context.Context, mediaURL string) error {
	filename := filepath.Base(strings.TrimPrefix(mediaURL, urlPrefix))
	if filename == "." || filename == "/" {
		return nil
	}

	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove file: %w", err)
	}

	return nil
}
