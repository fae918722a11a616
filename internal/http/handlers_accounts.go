package http

import (
	"net/http"

	"maymonee/internal/auth"
	"maymonee/internal/core"
)

type accountRequest struct {
	Name    string           `json:"name"`
	Type    core.AccountType `json:"type"`
	Balance int64            `json:"balance"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.ledger.ListAccounts(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	var req accountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := s.ledger.CreateAccount(r.Context(), userID, core.Account{
		Name:    req.Name,
		Type:    req.Type,
		Balance: req.Balance,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSnapshot(userID)
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, core.ErrNotFound)
		return
	}
	var req accountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := s.ledger.UpdateAccount(r.Context(), userID, id, req.Name, req.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSnapshot(userID)
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, core.ErrNotFound)
		return
	}

	if err := s.ledger.DeleteAccount(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSnapshot(userID)
	w.WriteHeader(http.StatusNoContent)
}
