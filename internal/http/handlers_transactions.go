package http

import (
	"log/slog"
	"net/http"

	"fluxoconta/internal/core"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions error", "error", err)
		writeServiceError(w, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if !decodeBody(w, r, &tx) {
		return
	}

	created, err := s.transactions.Add(r.Context(), tx)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create transaction error", "error", err)
		writeServiceError(w, err)
		return
	}

	s.reportCache.Purge()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if !decodeBody(w, r, &tx) {
		return
	}
	tx.ID = r.PathValue("id")

	if err := s.transactions.Update(r.Context(), tx); err != nil {
		slog.ErrorContext(r.Context(), "Update transaction error", "error", err, "id", tx.ID)
		writeServiceError(w, err)
		return
	}

	s.reportCache.Purge()
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.transactions.Delete(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Delete transaction error", "error", err, "id", id)
		writeServiceError(w, err)
		return
	}

	s.reportCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}
