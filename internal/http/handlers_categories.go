package http

import (
	"log/slog"
	"net/http"

	"fluxoconta/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.categories.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List categories error", "error", err)
		writeServiceError(w, err)
		return
	}
	if cats == nil {
		cats = []core.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var cat core.Category
	if !decodeBody(w, r, &cat) {
		return
	}

	created, err := s.categories.Create(r.Context(), cat)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create category error", "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var cat core.Category
	if !decodeBody(w, r, &cat) {
		return
	}
	cat.ID = r.PathValue("id")

	if err := s.categories.Update(r.Context(), cat); err != nil {
		slog.ErrorContext(r.Context(), "Update category error", "error", err, "id", cat.ID)
		writeServiceError(w, err)
		return
	}

	// A rename cascades into transactions, so cached groupings are stale.
	s.reportCache.Purge()
	writeJSON(w, http.StatusOK, cat)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.categories.Delete(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Delete category error", "error", err, "id", id)
		writeServiceError(w, err)
		return
	}

	s.reportCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}
