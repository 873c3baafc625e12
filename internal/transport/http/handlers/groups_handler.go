package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ivankudzin/matchcore/internal/domain/model"
	groupssvc "github.com/ivankudzin/matchcore/internal/services/groups"
	modsvc "github.com/ivankudzin/matchcore/internal/services/moderation"
	ratesvc "github.com/ivankudzin/matchcore/internal/services/rate"
	"github.com/ivankudzin/matchcore/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/matchcore/internal/transport/http/errors"
)

type GroupsHandler struct {
	groups     *groupssvc.Service
	moderation *modsvc.Service
	limiter    *ratesvc.Limiter
	log        *zap.Logger
}

func NewGroupsHandler(groups *groupssvc.Service, moderation *modsvc.Service, limiter *ratesvc.Limiter, log *zap.Logger) *GroupsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &GroupsHandler{groups: groups, moderation: moderation, limiter: limiter, log: log}
}

func (h *GroupsHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentProfile(w, r)
	if !ok {
		return
	}

	var req dto.CreateGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	group, err := h.groups.Create(r.Context(), owner, req.Name, req.MemberIDs)
	if err != nil {
		httperrors.WriteDomain(w, err, "failed to create group")
		return
	}
	httperrors.Write(w, http.StatusCreated, group)
}

func (h *GroupsHandler) Owned(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentProfile(w, r)
	if !ok {
		return
	}

	items, err := h.groups.Owned(r.Context(), owner.ProfileID)
	if err != nil {
		httperrors.WriteDomain(w, err, "failed to load groups")
		return
	}
	if items == nil {
		items = []model.Group{}
	}
	httperrors.Write(w, http.StatusOK, dto.GroupsResponse{Items: items})
}

func (h *GroupsHandler) Get(w http.ResponseWriter, r *http.Request) {
	requester, ok := currentProfile(w, r)
	if !ok {
		return
	}

	group, err := h.groups.Get(r.Context(), requester, chi.URLParam(r, "id"))
	if err != nil {
		writeLookupError(w, err, "failed to load group")
		return
	}
	httperrors.Write(w, http.StatusOK, group)
}

func (h *GroupsHandler) AddMembers(w http.ResponseWriter, r *http.Request) {
	h.members(w, r, h.groups.AddMembers, "failed to add members")
}

func (h *GroupsHandler) RemoveMembers(w http.ResponseWriter, r *http.Request) {
	h.members(w, r, h.groups.RemoveMembers, "failed to remove members")
}

func (h *GroupsHandler) BlockMembers(w http.ResponseWriter, r *http.Request) {
	h.members(w, r, h.groups.BlockMembers, "failed to block members")
}

func (h *GroupsHandler) Complain(w http.ResponseWriter, r *http.Request) {
	complainant, ok := currentProfile(w, r)
	if !ok {
		return
	}
	if !allow(w, r, h.limiter, h.log, ratesvc.ActionComplaint, complainant.ProfileID) {
		return
	}

	outcome, err := h.groups.Complain(r.Context(), complainant, chi.URLParam(r, "id"), chi.URLParam(r, "memberID"))
	if err != nil {
		httperrors.WriteDomain(w, err, "failed to file complaint")
		return
	}
	httperrors.Write(w, http.StatusOK, complaintResponse(outcome))
}

func (h *GroupsHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	requester, ok := currentProfile(w, r)
	if !ok {
		return
	}

	changed, err := h.moderation.UnblockMember(r.Context(), requester, chi.URLParam(r, "id"), chi.URLParam(r, "memberID"))
	if err != nil {
		httperrors.WriteDomain(w, err, "failed to unblock member")
		return
	}
	writeChanged(w, changed)
}

func (h *GroupsHandler) members(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, requester model.Profile, groupID string, memberIDs []string) (bool, error),
	fallback string,
) {
	requester, ok := currentProfile(w, r)
	if !ok {
		return
	}
	ids, ok := decodeIDs(w, r)
	if !ok {
		return
	}

	changed, err := fn(r.Context(), requester, chi.URLParam(r, "id"), ids)
	if err != nil {
		httperrors.WriteDomain(w, err, fallback)
		return
	}
	writeChanged(w, changed)
}

func complaintResponse(o modsvc.Outcome) dto.ComplaintResponse {
	return dto.ComplaintResponse{
		Inserted: o.Inserted,
		Active:   o.Active,
		Expired:  o.Expired,
		Blocked:  o.Blocked,
	}
}
