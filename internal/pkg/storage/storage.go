package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrFileNotFound    = errors.New("file not found")
	ErrInvalidFilePath = errors.New("invalid file path")
)

// FileStorage keeps generated documents such as rendered payslips.
type FileStorage interface {
	// Upload stores file under path, replacing any previous content.
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Download returns ErrFileNotFound when nothing is stored under path.
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	Delete(ctx context.Context, path string) error

	Exists(ctx context.Context, path string) (bool, error)
}
