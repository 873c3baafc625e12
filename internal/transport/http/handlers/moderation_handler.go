package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	modsvc "github.com/ivankudzin/matchcore/internal/services/moderation"
	ratesvc "github.com/ivankudzin/matchcore/internal/services/rate"
	"github.com/ivankudzin/matchcore/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/matchcore/internal/transport/http/errors"
)

const defaultHistoryLimit = 50

type ModerationHandler struct {
	service *modsvc.Service
	limiter *ratesvc.Limiter
	log     *zap.Logger
}

func NewModerationHandler(service *modsvc.Service, limiter *ratesvc.Limiter, log *zap.Logger) *ModerationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ModerationHandler{service: service, limiter: limiter, log: log}
}

func (h *ModerationHandler) ComplainProfile(w http.ResponseWriter, r *http.Request) {
	complainant, ok := currentProfile(w, r)
	if !ok {
		return
	}
	if !allow(w, r, h.limiter, h.log, ratesvc.ActionComplaint, complainant.ProfileID) {
		return
	}

	outcome, err := h.service.ProfileComplaint(r.Context(), complainant, chi.URLParam(r, "id"))
	if err != nil {
		httperrors.WriteDomain(w, err, "failed to file complaint")
		return
	}
	httperrors.Write(w, http.StatusOK, complaintResponse(outcome))
}

func (h *ModerationHandler) Active(w http.ResponseWriter, r *http.Request) {
	requester, ok := currentProfile(w, r)
	if !ok {
		return
	}
	subjectID := chi.URLParam(r, "id")

	active, err := h.service.ActiveComplaints(r.Context(), requester, subjectID)
	if err != nil {
		writeLookupError(w, err, "failed to load complaints")
		return
	}
	if active == nil {
		active = map[string]time.Time{}
	}
	httperrors.Write(w, http.StatusOK, dto.ActiveComplaintsResponse{SubjectID: subjectID, Complaints: active})
}

func (h *ModerationHandler) History(w http.ResponseWriter, r *http.Request) {
	requester, ok := currentProfile(w, r)
	if !ok {
		return
	}
	limit := parseIntOrDefault(r.URL.Query().Get("limit"), defaultHistoryLimit)

	items, err := h.service.ComplaintHistory(r.Context(), requester, chi.URLParam(r, "id"), limit)
	if err != nil {
		httperrors.WriteDomain(w, err, "failed to load complaint history")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.ComplaintHistoryResponse{Items: items})
}
