package http

import (
	"net/http"

	"maymonee/internal/auth"
	"maymonee/internal/core"
)

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.ledger.ListRules(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	var rule core.RecurringRule
	if !decodeJSON(w, r, &rule) {
		return
	}
	rule.ID = 0

	created, err := s.ledger.CreateRule(r.Context(), userID, rule)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSnapshot(userID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, core.ErrNotFound)
		return
	}
	var rule core.RecurringRule
	if !decodeJSON(w, r, &rule) {
		return
	}
	rule.ID = id

	updated, err := s.ledger.UpdateRule(r.Context(), userID, rule)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSnapshot(userID)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, core.ErrNotFound)
		return
	}

	if err := s.ledger.DeleteRule(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSnapshot(userID)
	w.WriteHeader(http.StatusNoContent)
}
