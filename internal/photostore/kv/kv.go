// Package kv keeps photos in the same key/value store as the audit
// collections, under photo:<name> keys.
package kv

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vbonduro/rbaudit/internal/persist"
	"github.com/vbonduro/rbaudit/internal/photostore"
)

type Store struct {
	gw persist.Gateway
}

func New(gw persist.Gateway) *Store {
	return &Store{gw: gw}
}

// Save stores the raw bytes. The MIME type is recovered on read.
func (s *Store) Save(ctx context.Context, name, _ string, r io.Reader) error {
	if err := photostore.ValidateName(name); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read photo: %w", err)
	}
	if err := s.gw.Save(ctx, persist.PhotoKey(name), data); err != nil {
		return fmt.Errorf("failed to save photo: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, name string) (io.ReadCloser, string, error) {
	if err := photostore.ValidateName(name); err != nil {
		return nil, "", err
	}
	data, ok, err := s.gw.Load(ctx, persist.PhotoKey(name))
	if err != nil {
		return nil, "", fmt.Errorf("failed to load photo: %w", err)
	}
	if !ok {
		return nil, "", photostore.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), mimeType(name, data), nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if err := photostore.ValidateName(name); err != nil {
		return err
	}
	if err := s.gw.Delete(ctx, persist.PhotoKey(name)); err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

// mimeType sniffs image content and falls back to the file extension.
func mimeType(name string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	return photostore.MimeTypeFromName(name)
}
