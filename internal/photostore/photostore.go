package photostore

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

var (
	ErrNotFound    = errors.New("photo not found")
	ErrInvalidName = errors.New("invalid photo name")
)

// PhotoStore keeps photo attachments under their deterministic names.
// Saving an existing name replaces it. Deleting a missing name is not an error.
type PhotoStore interface {
	Save(ctx context.Context, name, mimeType string, r io.Reader) error
	Get(ctx context.Context, name string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, name string) error
}

// ValidateName rejects names that are empty or could escape a flat namespace.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return ErrInvalidName
	}
	return nil
}

// MimeTypeFromName guesses the image type from the file extension.
func MimeTypeFromName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	default:
		return "application/octet-stream"
	}
}
