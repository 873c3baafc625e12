package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ivankudzin/matchcore/internal/domain/enums"
	"github.com/ivankudzin/matchcore/internal/domain/model"
	matchingsvc "github.com/ivankudzin/matchcore/internal/services/matching"
	mediasvc "github.com/ivankudzin/matchcore/internal/services/media"
	"github.com/ivankudzin/matchcore/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/matchcore/internal/transport/http/errors"
)

type DiscoveryHandler struct {
	matching *matchingsvc.Service
	media    *mediasvc.Service
}

func NewDiscoveryHandler(matching *matchingsvc.Service, media *mediasvc.Service) *DiscoveryHandler {
	return &DiscoveryHandler{matching: matching, media: media}
}

type pageQuery func(r *http.Request, requester model.Profile, params model.ParameterFilter) (matchingsvc.Result, error)

func (h *DiscoveryHandler) Latest(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, func(r *http.Request, requester model.Profile, params model.ParameterFilter) (matchingsvc.Result, error) {
		return h.matching.Latest(r.Context(), requester, params)
	})
}

func (h *DiscoveryHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req dto.SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}
	filter, err := filterFrom(req)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
		return
	}
	h.page(w, r, func(r *http.Request, requester model.Profile, params model.ParameterFilter) (matchingsvc.Result, error) {
		return h.matching.Search(r.Context(), requester, filter, params)
	})
}

func (h *DiscoveryHandler) ByIDs(w http.ResponseWriter, r *http.Request) {
	ids, ok := decodeIDs(w, r)
	if !ok {
		return
	}
	h.page(w, r, func(r *http.Request, requester model.Profile, params model.ParameterFilter) (matchingsvc.Result, error) {
		return h.matching.ByIDs(r.Context(), requester, ids, params)
	})
}

func (h *DiscoveryHandler) ByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	h.page(w, r, func(r *http.Request, requester model.Profile, params model.ParameterFilter) (matchingsvc.Result, error) {
		return h.matching.ByName(r.Context(), requester, name, params)
	})
}

func (h *DiscoveryHandler) Bookmarked(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, func(r *http.Request, requester model.Profile, params model.ParameterFilter) (matchingsvc.Result, error) {
		return h.matching.Bookmarked(r.Context(), requester, params)
	})
}

func (h *DiscoveryHandler) BookmarkedBy(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, func(r *http.Request, requester model.Profile, params model.ParameterFilter) (matchingsvc.Result, error) {
		return h.matching.BookmarkedBy(r.Context(), requester, params)
	})
}

func (h *DiscoveryHandler) VisitedBy(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, func(r *http.Request, requester model.Profile, params model.ParameterFilter) (matchingsvc.Result, error) {
		return h.matching.VisitedBy(r.Context(), requester, params)
	})
}

func (h *DiscoveryHandler) LikedBy(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, func(r *http.Request, requester model.Profile, params model.ParameterFilter) (matchingsvc.Result, error) {
		return h.matching.LikedBy(r.Context(), requester, params)
	})
}

func (h *DiscoveryHandler) page(w http.ResponseWriter, r *http.Request, run pageQuery) {
	requester, ok := currentProfile(w, r)
	if !ok {
		return
	}

	res, err := run(r, requester, pageParams(r))
	if err != nil {
		writeLookupError(w, err, "failed to load profiles")
		return
	}
	if h.media != nil {
		h.media.SignProfiles(r.Context(), res.Items)
	}
	items := res.Items
	if items == nil {
		items = []model.Profile{}
	}
	httperrors.Write(w, http.StatusOK, dto.ProfilePageResponse{Total: res.Total, Items: items})
}

type lifestyleValue interface {
	~string
	Valid() bool
}

type filterParser struct {
	unknown []string
}

func anyOf[T lifestyleValue](p *filterParser, dimension string, raw []string) model.EnumFilter[T] {
	values := make([]T, 0, len(raw))
	for _, v := range raw {
		value := T(strings.ToLower(strings.TrimSpace(v)))
		if !value.Valid() {
			p.unknown = append(p.unknown, fmt.Sprintf("%s=%q", dimension, v))
			continue
		}
		values = append(values, value)
	}
	return model.AnyOf(values...)
}

func filterFrom(req dto.SearchRequest) (model.ProfileFilter, error) {
	p := &filterParser{}
	filter := model.ProfileFilter{
		Name:        req.Name,
		Age:         model.IntRange{Min: req.AgeMin, Max: req.AgeMax},
		Height:      model.IntRange{Min: req.HeightMin, Max: req.HeightMax},
		Description: req.Description,
		Tags:        req.Tags,
		Body:        anyOf[enums.BodyType](p, "body", req.Body),
		Smoking:     anyOf[enums.SmokingHabits](p, "smoking", req.Smoking),
		Children:    anyOf[enums.HasChildren](p, "children", req.Children),
		Pets:        anyOf[enums.HasPets](p, "pets", req.Pets),
		Living:      anyOf[enums.LivingSituation](p, "living", req.Living),
		Education:   anyOf[enums.EducationLevel](p, "education", req.Education),
		Employment:  anyOf[enums.EmploymentStatus](p, "employment", req.Employment),
		Sports:      anyOf[enums.SportsActivity](p, "sports", req.Sports),
		Eating:      anyOf[enums.EatingHabits](p, "eating", req.Eating),
		Clothing:    anyOf[enums.ClothingStyle](p, "clothing", req.Clothing),
		BodyArt:     anyOf[enums.BodyArt](p, "body_art", req.BodyArt),
	}
	if len(p.unknown) > 0 {
		return model.ProfileFilter{}, fmt.Errorf("unknown filter values: %s", strings.Join(p.unknown, ", "))
	}
	return filter, nil
}
