package web

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/vbonduro/rbaudit/internal/service"
)

const defaultMaxUploadBytes = 50 * 1024 * 1024 // 50 MB

// allowedImageTypes is the set of MIME types accepted for uploaded photos.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the stdlib has no WebP
// signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

func (s *Server) maxUploadBytes() int64 {
	if s.opts.MaxUploadBytes > 0 {
		return s.opts.MaxUploadBytes
	}
	return defaultMaxUploadBytes
}

// formFile reads one multipart file field, bounded by the upload limit.
func (s *Server) formFile(w http.ResponseWriter, r *http.Request, field string) ([]byte, string, bool) {
	limit := s.maxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return nil, "", false
		}
		writeError(w, http.StatusBadRequest, "failed to parse form")
		return nil, "", false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		writeError(w, http.StatusBadRequest, field+" file required")
		return nil, "", false
	}
	defer closeWithLog(file, "upload file", s.logger)

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read file")
		s.logger.Error("read upload failed", zap.String("field", field), zap.Error(err))
		return nil, "", false
	}
	if int64(len(data)) > limit {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
		return nil, "", false
	}
	return data, header.Filename, true
}

func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	imageData, filename, ok := s.formFile(w, r, "image")
	if !ok {
		return
	}

	mimeType, ok := allowedImageMIME(imageData)
	if !ok {
		writeError(w, http.StatusBadRequest, "unsupported image format")
		return
	}

	rec, err := s.service.AttachPhoto(r.Context(), id, filename, mimeType, bytes.NewReader(imageData))
	if errors.Is(err, service.ErrAssetNotFound) {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store photo")
		s.logger.Error("upload photo failed", zap.String("asset_id", id), zap.Error(err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	reader, mimeType, err := s.service.Photo(r.Context(), id)
	if errors.Is(err, service.ErrAssetNotFound) || errors.Is(err, service.ErrNoPhoto) {
		writeError(w, http.StatusNotFound, "photo not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read photo")
		s.logger.Error("get photo failed", zap.String("asset_id", id), zap.Error(err))
		return
	}
	defer closeWithLog(reader, "photo reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write photo failed", zap.String("asset_id", id), zap.Error(err))
	}
}
