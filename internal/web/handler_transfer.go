package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/vbonduro/rbaudit/internal/codec"
)

const defaultExportFilename = "Cockburn_Condition_Audit_Data.xlsx"

func (s *Server) handleImportBuildingsCSV(w http.ResponseWriter, r *http.Request) {
	data, _, ok := s.formFile(w, r, "file")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.service.ImportBuildingsCSV(r.Context(), bytes.NewReader(data)))
}

func (s *Server) handleImportWorkbook(w http.ResponseWriter, r *http.Request) {
	data, _, ok := s.formFile(w, r, "file")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.service.ImportWorkbook(r.Context(), bytes.NewReader(data)))
}

// handleExport buffers the workbook so a failure can still produce a 500.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.service.Export(r.Context(), &buf); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to export workbook")
		s.logger.Error("export failed", zap.Error(err))
		return
	}

	filename := s.opts.ExportFilename
	if filename == "" {
		filename = defaultExportFilename
	}
	h := w.Header()
	h.Set("Content-Type", codec.ContentType)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	h.Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Error("write export failed", zap.Error(err))
	}
}
