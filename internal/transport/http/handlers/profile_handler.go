package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ivankudzin/matchcore/internal/domain/enums"
	"github.com/ivankudzin/matchcore/internal/domain/model"
	authsvc "github.com/ivankudzin/matchcore/internal/services/auth"
	ledgersvc "github.com/ivankudzin/matchcore/internal/services/ledger"
	mediasvc "github.com/ivankudzin/matchcore/internal/services/media"
	profilesvc "github.com/ivankudzin/matchcore/internal/services/profiles"
	"github.com/ivankudzin/matchcore/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/matchcore/internal/transport/http/errors"
)

const maxAvatarBody = 5<<20 + 1

type ProfileHandler struct {
	profiles *profilesvc.Service
	ledger   *ledgersvc.Service
	media    *mediasvc.Service
	log      *zap.Logger
}

func NewProfileHandler(profiles *profilesvc.Service, ledger *ledgersvc.Service, media *mediasvc.Service, log *zap.Logger) *ProfileHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileHandler{profiles: profiles, ledger: ledger, media: media, log: log}
}

func (h *ProfileHandler) Register(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.ProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	p, err := h.profiles.Register(r.Context(), identity.ExternalID, attributesFrom(req))
	if err != nil {
		httperrors.WriteDomain(w, err, "failed to register profile")
		return
	}
	h.sign(r, &p)
	httperrors.Write(w, http.StatusCreated, p)
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := currentProfile(w, r)
	if !ok {
		return
	}
	h.sign(r, &p)
	httperrors.Write(w, http.StatusOK, p)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentProfile(w, r)
	if !ok {
		return
	}

	var req dto.ProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	p, err := h.profiles.UpdateAttributes(r.Context(), owner, attributesFrom(req))
	if err != nil {
		httperrors.WriteDomain(w, err, "failed to update profile")
		return
	}
	h.sign(r, &p)
	httperrors.Write(w, http.StatusOK, p)
}

// Get returns another profile and records the caller as its visitor.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	requester, ok := currentProfile(w, r)
	if !ok {
		return
	}
	profileID := chi.URLParam(r, "id")

	p, err := h.profiles.Get(r.Context(), requester, profileID)
	if err != nil {
		writeLookupError(w, err, "failed to load profile")
		return
	}
	if h.ledger != nil {
		if _, err := h.ledger.AddVisited(r.Context(), profileID, requester); err != nil {
			h.log.Warn("failed to record visit",
				zap.String("profile_id", profileID),
				zap.String("visitor_id", requester.ProfileID),
				zap.Error(err),
			)
		}
	}
	h.sign(r, &p)
	httperrors.Write(w, http.StatusOK, p)
}

func (h *ProfileHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, "")
}

func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, chi.URLParam(r, "id"))
}

func (h *ProfileHandler) delete(w http.ResponseWriter, r *http.Request, profileID string) {
	requester, ok := currentProfile(w, r)
	if !ok {
		return
	}
	if err := h.profiles.Delete(r.Context(), requester, profileID); err != nil {
		httperrors.WriteDomain(w, err, "failed to delete profile")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProfileHandler) SetAdmin(w http.ResponseWriter, r *http.Request) {
	requester, ok := currentProfile(w, r)
	if !ok {
		return
	}

	var req dto.AdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	changed, err := h.profiles.SetAdmin(r.Context(), requester, chi.URLParam(r, "id"), req.Admin)
	if err != nil {
		httperrors.WriteDomain(w, err, "failed to update admin flag")
		return
	}
	writeChanged(w, changed)
}

// Avatar takes the raw image as the request body.
func (h *ProfileHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentProfile(w, r)
	if !ok {
		return
	}
	if h.media == nil {
		httperrors.Write(w, http.StatusServiceUnavailable, httperrors.APIError{
			Code:    "MEDIA_UNAVAILABLE",
			Message: "media storage is not configured",
		})
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxAvatarBody)
	key, err := h.media.UploadAvatar(r.Context(), owner.ProfileID, r.Header.Get("Content-Type"), body, r.ContentLength)
	if err != nil {
		httperrors.WriteDomain(w, err, "failed to upload avatar")
		return
	}
	if err := h.profiles.ReplaceAvatar(r.Context(), owner, key); err != nil {
		h.media.Delete(r.Context(), key)
		httperrors.WriteDomain(w, err, "failed to update avatar")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AvatarResponse{
		Key: key,
		URL: h.media.SignKey(r.Context(), key),
	})
}

func (h *ProfileHandler) sign(r *http.Request, p *model.Profile) {
	if h.media == nil {
		return
	}
	p.Avatar = h.media.SignKey(r.Context(), p.Avatar)
	h.media.SignBookmarks(r.Context(), p.Bookmarks)
}

func attributesFrom(req dto.ProfileRequest) profilesvc.Attributes {
	seeking := make([]enums.Gender, 0, len(req.Seeking))
	for _, g := range req.Seeking {
		seeking = append(seeking, enums.Gender(g))
	}
	return profilesvc.Attributes{
		Name:              req.Name,
		Age:               req.Age,
		Height:            req.Height,
		Description:       req.Description,
		Tags:              req.Tags,
		Region:            req.Region,
		Language:          req.Language,
		Gender:            enums.Gender(req.Gender),
		SexualOrientation: enums.SexualOrientation(req.SexualOrientation),
		Seeking:           seeking,
		Body:              enums.BodyType(req.Body),
		Smoking:           enums.SmokingHabits(req.Smoking),
		Children:          enums.HasChildren(req.Children),
		Pets:              enums.HasPets(req.Pets),
		Living:            enums.LivingSituation(req.Living),
		Education:         enums.EducationLevel(req.Education),
		Employment:        enums.EmploymentStatus(req.Employment),
		Sports:            enums.SportsActivity(req.Sports),
		Eating:            enums.EatingHabits(req.Eating),
		Clothing:          enums.ClothingStyle(req.Clothing),
		BodyArt:           enums.BodyArt(req.BodyArt),
	}
}
