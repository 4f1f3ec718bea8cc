package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"membership-portal-backend/internal/logger"
)

var keyPattern = regexp.MustCompile(`^[a-z0-9]+(/[a-z0-9_-]+)*$`)

// LocalStorage implements Storage on the local filesystem
type LocalStorage struct {
	root     string
	maxBytes int64
}

// NewLocalStorage creates the root directory if it doesn't exist
func NewLocalStorage(root string, maxBytes int64) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{root: root, maxBytes: maxBytes}, nil
}

func (s *LocalStorage) path(key string) (string, error) {
	if !keyPattern.MatchString(key) || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

func (s *LocalStorage) Save(ctx context.Context, key string, r io.Reader) (*FileInfo, error) {
	logger.EnterMethod("LocalStorage.Save", "key", key)

	fullPath, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.maxBytes)
	}
	contentType := sniff(data)
	if _, ok := AllowedContentTypes[contentType]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	// Write to a temp file and rename so readers never see a partial file
	tmp := fullPath + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, fullPath); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	info := &FileInfo{Key: key, Size: int64(len(data)), ContentType: contentType}
	logger.ExitMethod("LocalStorage.Save", "key", key, "size", info.Size, "content_type", contentType)
	return info, nil
}

func (s *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, *FileInfo, error) {
	fullPath, err := s.path(key)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := describe(file, key)
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	return file, info, nil
}

func (s *LocalStorage) Stat(ctx context.Context, key string) (*FileInfo, error) {
	rc, info, err := s.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	rc.Close()
	return info, nil
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	fullPath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// describe sniffs the head of an open file and rewinds it
func describe(file *os.File, key string) (*FileInfo, error) {
	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind file: %w", err)
	}
	return &FileInfo{Key: key, Size: stat.Size(), ContentType: sniff(head[:n])}, nil
}

func sniff(data []byte) string {
	contentType := http.DetectContentType(data)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.TrimSpace(contentType)
}
