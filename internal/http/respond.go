package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"maymonee/internal/core"
	applog "maymonee/internal/log"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encoding failed", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses. Anything unrecognized is
// reported as a 500 without leaking the internal message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			"error", err, "method", r.Method, "url", r.URL.Path)
		writeJSON(w, status, errorBody{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func statusForError(err error) int {
	var validation core.ValidationError
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrEmailTaken),
		errors.Is(err, core.ErrAccountInUse),
		errors.Is(err, core.ErrDuplicateCategory):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a request body into dst, rejecting oversized payloads.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return false
	}
	return true
}
