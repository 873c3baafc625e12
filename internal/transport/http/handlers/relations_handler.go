package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/ivankudzin/matchcore/internal/domain/enums"
	"github.com/ivankudzin/matchcore/internal/domain/model"
	ledgersvc "github.com/ivankudzin/matchcore/internal/services/ledger"
	mediasvc "github.com/ivankudzin/matchcore/internal/services/media"
	ratesvc "github.com/ivankudzin/matchcore/internal/services/rate"
	"github.com/ivankudzin/matchcore/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/matchcore/internal/transport/http/errors"
)

// RelationsHandler exposes the caller's own ledgers: bookmarks, likes,
// contacts and visitors.
type RelationsHandler struct {
	ledger  *ledgersvc.Service
	limiter *ratesvc.Limiter
	media   *mediasvc.Service
	log     *zap.Logger
}

func NewRelationsHandler(ledger *ledgersvc.Service, limiter *ratesvc.Limiter, media *mediasvc.Service, log *zap.Logger) *RelationsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RelationsHandler{ledger: ledger, limiter: limiter, media: media, log: log}
}

type ledgerMutation func(ctx context.Context, owner model.Profile, ids []string) (bool, error)

func (h *RelationsHandler) Bookmarks(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentProfile(w, r)
	if !ok {
		return
	}
	direction := enums.BookmarkOutgoing
	if r.URL.Query().Get("direction") == string(enums.BookmarkIncoming) {
		direction = enums.BookmarkIncoming
	}

	items, err := h.ledger.Bookmarks(r.Context(), owner, direction)
	if err != nil {
		writeLookupError(w, err, "failed to load bookmarks")
		return
	}
	if h.media != nil {
		h.media.SignBookmarks(r.Context(), items)
	}
	httperrors.Write(w, http.StatusOK, dto.BookmarksResponse{Direction: string(direction), Items: items})
}

func (h *RelationsHandler) AddBookmarks(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.ledger.AddBookmarks, "failed to add bookmarks")
}

func (h *RelationsHandler) RemoveBookmarks(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.ledger.RemoveBookmarks, "failed to remove bookmarks")
}

func (h *RelationsHandler) BlockBookmarkers(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.ledger.BlockBookmarkers, "failed to block bookmarkers")
}

func (h *RelationsHandler) AddLikes(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentProfile(w, r)
	if !ok {
		return
	}
	if !allow(w, r, h.limiter, h.log, ratesvc.ActionLike, owner.ProfileID) {
		return
	}
	h.apply(w, r, owner, h.ledger.AddLikes, "failed to add likes")
}

func (h *RelationsHandler) RemoveLikes(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.ledger.RemoveLikes, "failed to remove likes")
}

func (h *RelationsHandler) AddContacts(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.ledger.AddContacts, "failed to add contacts")
}

func (h *RelationsHandler) RemoveContacts(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.ledger.RemoveContacts, "failed to remove contacts")
}

func (h *RelationsHandler) BlockContacts(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.ledger.BlockMembers, "failed to block contacts")
}

func (h *RelationsHandler) RemoveVisitors(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.ledger.RemoveVisited, "failed to remove visitors")
}

func (h *RelationsHandler) mutate(w http.ResponseWriter, r *http.Request, fn ledgerMutation, fallback string) {
	owner, ok := currentProfile(w, r)
	if !ok {
		return
	}
	h.apply(w, r, owner, fn, fallback)
}

func (h *RelationsHandler) apply(w http.ResponseWriter, r *http.Request, owner model.Profile, fn ledgerMutation, fallback string) {
	ids, ok := decodeIDs(w, r)
	if !ok {
		return
	}
	changed, err := fn(r.Context(), owner, ids)
	if err != nil {
		httperrors.WriteDomain(w, err, fallback)
		return
	}
	writeChanged(w, changed)
}

// allow counts one event against the limiter. A nil limiter admits
// everything; a limiter store failure answers 503.
func allow(w http.ResponseWriter, r *http.Request, limiter *ratesvc.Limiter, log *zap.Logger, action ratesvc.Action, profileID string) bool {
	if limiter == nil {
		return true
	}
	retryAfterSec, allowed, err := limiter.Allow(r.Context(), action, profileID)
	if err != nil {
		log.Warn("rate limiter unavailable", zap.String("action", string(action)), zap.Error(err))
		httperrors.Write(w, http.StatusServiceUnavailable, httperrors.APIError{
			Code:    "TEMP_UNAVAILABLE",
			Message: "rate limiter is unavailable",
		})
		return false
	}
	if !allowed {
		writeRateLimited(w, retryAfterSec)
		return false
	}
	return true
}
