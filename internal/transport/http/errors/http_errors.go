package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ivankudzin/matchcore/internal/domain/errs"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RateLimitError struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	RetryAfterSec int64  `json:"retry_after_sec"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Status maps an engine error onto an HTTP status and error code.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrInvalidArgument):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, errs.ErrPreconditionFailed):
		return http.StatusForbidden, "PRECONDITION_FAILED"
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, errs.ErrStoreUnavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "TEMP_UNAVAILABLE"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// WriteDomain writes err with the mapped status. Internal failures get a
// generic message; the others carry err's text.
func WriteDomain(w http.ResponseWriter, err error, fallback string) {
	status, code := Status(err)
	message := err.Error()
	if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		message = fallback
	}
	Write(w, status, APIError{Code: code, Message: message})
}
