package http

import (
	"net/http"

	"maymonee/internal/auth"
	"maymonee/internal/core"
)

func (s *Server) handleGetBudgets(w http.ResponseWriter, r *http.Request) {
	grid, err := s.ledger.GetBudgets(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

func (s *Server) handleSaveBudgets(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	var grid core.BudgetGrid
	if !decodeJSON(w, r, &grid) {
		return
	}

	if err := s.ledger.SaveBudgets(r.Context(), userID, grid); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSnapshot(userID)
	writeJSON(w, http.StatusOK, grid)
}

type budgetCellRequest struct {
	Year     int         `json:"year"`
	Month    int         `json:"month"`
	Bucket   core.Bucket `json:"bucket"`
	Category string      `json:"category"`
	Amount   int64       `json:"amount"`
}

func (s *Server) handleSetBudgetCell(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	var req budgetCellRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := s.ledger.SetBudgetCell(r.Context(), userID, req.Year, req.Month, req.Bucket, req.Category, req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSnapshot(userID)
	w.WriteHeader(http.StatusNoContent)
}

type categoryRequest struct {
	Bucket core.Bucket `json:"bucket"`
	Name   string      `json:"name"`
}

func (s *Server) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.ledger.GetCategories(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cats, err := s.ledger.AddCategory(r.Context(), userID, req.Bucket, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSnapshot(userID)
	writeJSON(w, http.StatusCreated, cats)
}

func (s *Server) handleRemoveCategory(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cats, err := s.ledger.RemoveCategory(r.Context(), userID, req.Bucket, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSnapshot(userID)
	writeJSON(w, http.StatusOK, cats)
}
