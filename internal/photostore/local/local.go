package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/vbonduro/rbaudit/internal/photostore"
)

// LocalPhotoStore writes each photo to a file named after it under basePath.
type LocalPhotoStore struct {
	basePath string
	logger   *zap.Logger
}

func NewLocalPhotoStore(basePath string, logger *zap.Logger) (*LocalPhotoStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}
	return &LocalPhotoStore{basePath: basePath, logger: logger}, nil
}

// Save writes to a temporary file first so a failed upload never replaces an
// existing photo.
func (s *LocalPhotoStore) Save(ctx context.Context, name, mimeType string, r io.Reader) error {
	filePath, err := s.safeJoin(name)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(s.basePath, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	tmp := f.Name()
	if _, err := io.Copy(f, r); err != nil {
		if cerr := f.Close(); cerr != nil {
			s.logger.Error("failed to close file after write error", zap.Error(cerr))
		}
		s.discard(tmp)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		s.discard(tmp)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp, filePath); err != nil {
		s.discard(tmp)
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

func (s *LocalPhotoStore) Get(ctx context.Context, name string) (io.ReadCloser, string, error) {
	filePath, err := s.safeJoin(name)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", photostore.ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	return f, photostore.MimeTypeFromName(name), nil
}

func (s *LocalPhotoStore) Delete(ctx context.Context, name string) error {
	filePath, err := s.safeJoin(name)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalPhotoStore) discard(path string) {
	if err := os.Remove(path); err != nil {
		s.logger.Error("failed to remove temporary file", zap.String("path", path), zap.Error(err))
	}
}

// safeJoin resolves name relative to basePath and rejects directory traversal.
func (s *LocalPhotoStore) safeJoin(name string) (string, error) {
	if err := photostore.ValidateName(name); err != nil {
		return "", err
	}

	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, name))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", photostore.ErrInvalidName
	}
	return absPath, nil
}
