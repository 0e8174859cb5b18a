package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, kind, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message, Kind: kind})
}

// statusFor maps an error kind onto an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUnsupportedStatus):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.log.Error().
			Err(err).
			Str("request_id", requestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, code, "internal", "internal server error")
		return
	}
	writeError(w, code, domain.KindName(err), err.Error())
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return domain.Validation("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Validation("invalid JSON body: %v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.Validation("invalid %s: %q", name, raw)
	}
	return id, nil
}

// parsePage reads from/size, falling back to the configured default size.
func (s *HTTPServer) parsePage(r *http.Request) (models.Page, error) {
	page := models.Page{From: 0, Size: s.cfg.Pagination.DefaultSize}
	if page.Size <= 0 {
		page.Size = models.DefaultPageSize
	}

	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("from")); raw != "" {
		from, err := strconv.Atoi(raw)
		if err != nil {
			return page, domain.Validation("invalid from: %q", raw)
		}
		page.From = from
	}
	if raw := strings.TrimSpace(q.Get("size")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return page, domain.Validation("invalid size: %q", raw)
		}
		page.Size = size
	}

	if page.From < 0 {
		return page, domain.Validation("from must not be negative")
	}
	if page.Size <= 0 {
		return page, domain.Validation("size must be positive")
	}
	if max := s.cfg.Pagination.MaxSize; max > 0 && page.Size > max {
		return page, domain.Validation("size must not exceed %d", max)
	}
	return page, nil
}
