package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ivankudzin/matchcore/internal/domain/enums"
	"github.com/ivankudzin/matchcore/internal/domain/errs"
	"github.com/ivankudzin/matchcore/internal/domain/model"
	authsvc "github.com/ivankudzin/matchcore/internal/services/auth"
	"github.com/ivankudzin/matchcore/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/matchcore/internal/transport/http/errors"
)

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeRateLimited(w http.ResponseWriter, retryAfterSec int64) {
	w.Header().Set("Retry-After", strconv.FormatInt(retryAfterSec, 10))
	httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
		Code:          "RATE_LIMITED",
		Message:       "too many requests",
		RetryAfterSec: retryAfterSec,
	})
}

// writeLookupError answers a missing subject of a read with 204.
func writeLookupError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, errs.ErrNotFound) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httperrors.WriteDomain(w, err, fallback)
}

func writeChanged(w http.ResponseWriter, changed bool) {
	httperrors.Write(w, http.StatusOK, dto.ChangedResponse{Changed: changed})
}

// currentProfile returns the caller's registered profile or writes the
// rejection.
func currentProfile(w http.ResponseWriter, r *http.Request) (model.Profile, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return model.Profile{}, false
	}
	if !identity.Registered() {
		httperrors.Write(w, http.StatusForbidden, httperrors.APIError{
			Code:    "PROFILE_REQUIRED",
			Message: "register a profile first",
		})
		return model.Profile{}, false
	}
	return identity.Profile, true
}

func pageParams(r *http.Request) model.ParameterFilter {
	q := r.URL.Query()
	return model.ParameterFilter{
		OrderBy:       enums.ParseOrderBy(q.Get("order_by")),
		SortDirection: enums.ParseSortDirection(q.Get("sort")),
		PageIndex:     parseIntOrDefault(q.Get("page"), 0),
		PageSize:      parseIntOrDefault(q.Get("page_size"), 0),
	}
}

func parseIntOrDefault(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

func decodeIDs(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req dto.IDsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return nil, false
	}
	if len(req.IDs) == 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "ids are required")
		return nil, false
	}
	return req.IDs, true
}
