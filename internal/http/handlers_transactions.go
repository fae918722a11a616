package http

import (
	"net/http"
	"time"

	"maymonee/internal/auth"
	"maymonee/internal/core"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.ListTransactions(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	var tx core.Transaction
	if !decodeJSON(w, r, &tx) {
		return
	}
	tx.ID = 0

	created, err := s.ledger.AddTransaction(r.Context(), userID, tx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSnapshot(userID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, core.ErrNotFound)
		return
	}
	var tx core.Transaction
	if !decodeJSON(w, r, &tx) {
		return
	}
	tx.ID = id

	updated, err := s.ledger.UpdateTransaction(r.Context(), userID, tx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSnapshot(userID)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, core.ErrNotFound)
		return
	}

	if err := s.ledger.DeleteTransaction(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSnapshot(userID)
	w.WriteHeader(http.StatusNoContent)
}

type transferRequest struct {
	FromAccountID int64     `json:"fromAccountId"`
	ToAccountID   int64     `json:"toAccountId"`
	Amount        int64     `json:"amount"`
	Date          core.Date `json:"date"`
}

type transferResponse struct {
	Out core.Transaction `json:"out"`
	In  core.Transaction `json:"in"`
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	var req transferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Date.IsZero() {
		req.Date = core.DateOf(time.Now())
	}

	out, in, err := s.ledger.Transfer(r.Context(), userID, req.FromAccountID, req.ToAccountID, req.Amount, req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSnapshot(userID)
	writeJSON(w, http.StatusCreated, transferResponse{Out: out, In: in})
}
