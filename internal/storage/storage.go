package storage

import (
	"context"
	"time"
)

// FileStorage хранит файлы портфолио и фото мастеров.
type FileStorage interface {
	UploadPhoto(ctx context.Context, data []byte, filename string) (string, error)

	DeletePhoto(ctx context.Context, fileURL string) error

	GetPresignedURL(ctx context.Context, fileURL string, expiry time.Duration) (string, error)
}
