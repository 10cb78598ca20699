package kv

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/rbaudit/internal/persist"
	"github.com/vbonduro/rbaudit/internal/photostore"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestSaveStoresUnderPhotoKey(t *testing.T) {
	gw := persist.NewMemory()
	s := New(gw)

	require.NoError(t, s.Save(context.Background(), "a1_roof.png", "image/png", bytes.NewReader(pngHeader)))

	data, ok, err := gw.Load(context.Background(), "photo:a1_roof.png")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, pngHeader, data)
}

func TestGetSniffsContent(t *testing.T) {
	gw := persist.NewMemory()
	s := New(gw)
	ctx := context.Background()
	// The extension lies; the bytes win.
	require.NoError(t, s.Save(ctx, "a1_roof.jpg", "", bytes.NewReader(pngHeader)))

	rc, mime, err := s.Get(ctx, "a1_roof.jpg")
	require.NoError(t, err)
	defer rc.Close()

	assert.Equal(t, "image/png", mime)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestGetFallsBackToExtension(t *testing.T) {
	s := New(persist.NewMemory())
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "a1_x.webp", "", bytes.NewReader([]byte("not really an image"))))

	rc, mime, err := s.Get(ctx, "a1_x.webp")
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "image/webp", mime)
}

func TestGetMissing(t *testing.T) {
	s := New(persist.NewMemory())

	_, _, err := s.Get(context.Background(), "nope.jpg")
	assert.ErrorIs(t, err, photostore.ErrNotFound)
}

func TestDelete(t *testing.T) {
	gw := persist.NewMemory()
	s := New(gw)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "a1_x.jpg", "", bytes.NewReader([]byte("x"))))

	require.NoError(t, s.Delete(ctx, "a1_x.jpg"))
	assert.Empty(t, gw.Keys())
	assert.NoError(t, s.Delete(ctx, "a1_x.jpg"))
}

func TestSaveFailure(t *testing.T) {
	gw := persist.NewMemory()
	gw.SaveErr = errors.New("quota exceeded")
	s := New(gw)

	err := s.Save(context.Background(), "a1_x.jpg", "", bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, gw.SaveErr)
}

func TestRejectsInvalidNames(t *testing.T) {
	s := New(persist.NewMemory())

	err := s.Save(context.Background(), "../x", "", bytes.NewReader(nil))
	assert.ErrorIs(t, err, photostore.ErrInvalidName)
}
