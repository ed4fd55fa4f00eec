package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"fluxoconta/internal/core"
	"fluxoconta/internal/importer"
	"fluxoconta/internal/services"

	"github.com/google/uuid"
)

func (s *Server) handleImportTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+importer.TemplateFilename+`"`)
	_, _ = w.Write(importer.Template())
}

// handleImportPreview parses an uploaded file and parks the result for a
// later commit. Nothing is persisted yet.
func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxImportBytes)

	if err := r.ParseMultipartForm(s.maxImportBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large or malformed upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.ErrorContext(r.Context(), "Read upload error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}

	snap, err := s.ledger.View(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Load snapshot error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	batch, err := importer.Parse(data, header.Filename, snap.Categories)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrUnsupportedFormat):
			writeError(w, http.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, core.ErrLibraryUnavailable):
			writeError(w, http.StatusNotImplemented, err.Error())
		case errors.Is(err, core.ErrEmptyFile):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			slog.ErrorContext(r.Context(), "Parse import error", "error", err, "filename", header.Filename)
			writeError(w, http.StatusUnprocessableEntity, "could not parse file")
		}
		return
	}

	p := preview{
		ID:       uuid.NewString(),
		Filename: header.Filename,
		Batch:    batch,
		Created:  time.Now(),
	}
	s.previews.Set(p.ID, p)

	slog.InfoContext(r.Context(), "Import preview created",
		"preview_id", p.ID,
		"filename", p.Filename,
		"valid", len(batch.Valid),
		"invalid", len(batch.Invalid))

	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCancelPreview(w http.ResponseWriter, r *http.Request) {
	s.previews.Delete(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

type commitRequest struct {
	PreviewID string                 `json:"previewId"`
	Options   services.CommitOptions `json:"options"`
}

func (s *Server) handleImportCommit(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, found := s.previews.Get(req.PreviewID)
	if !found {
		writeError(w, http.StatusNotFound, "preview not found or expired")
		return
	}

	result, err := s.imports.Commit(r.Context(), p.Batch, p.Filename, req.Options)
	if err != nil && !errors.Is(err, core.ErrNoNewData) {
		slog.ErrorContext(r.Context(), "Import commit error", "error", err, "preview_id", req.PreviewID)
		writeServiceError(w, err)
		return
	}

	s.previews.Delete(req.PreviewID)
	s.reportCache.Purge()

	resp := struct {
		services.CommitResult
		NoNewData bool `json:"noNewData"`
	}{CommitResult: result, NoNewData: errors.Is(err, core.ErrNoNewData)}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.View(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Load snapshot error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	history := snap.History
	if history == nil {
		history = []core.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, history)
}
