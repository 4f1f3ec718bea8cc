// Package storage keeps uploaded proof-of-payment files (receipt photos,
// bank-transfer PDFs) that members attach to offline payment submissions.
package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrNotFound        = errors.New("file not found")
	ErrTooLarge        = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrInvalidKey      = errors.New("invalid storage key")
)

// AllowedContentTypes are the sniffed types accepted as proof of payment
var AllowedContentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

// FileInfo describes a stored file
type FileInfo struct {
	Key         string
	Size        int64
	ContentType string
}

// Storage defines the interface for proof file backends
type Storage interface {
	// Save stores the content under key, replacing any previous file. The
	// content type is sniffed from the data, never taken from the client.
	Save(ctx context.Context, key string, r io.Reader) (*FileInfo, error)

	// Open returns the stored file; callers must close it
	Open(ctx context.Context, key string) (io.ReadCloser, *FileInfo, error)

	// Stat reports whether a file exists without opening it
	Stat(ctx context.Context, key string) (*FileInfo, error)

	// Delete removes a file; a missing file is not an error
	Delete(ctx context.Context, key string) error
}
