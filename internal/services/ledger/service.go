// Package ledger maintains the relationship ledgers denormalized onto
// profile documents: bookmarks (both directions), visits, likes and the
// direct contact list.
//
// Every mutation returns changed=false with a nil error when the request
// has no net effect; no store write is issued in that case. Fan-out writes
// across documents are independent single-document updates.
package ledger

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/matchcore/internal/domain/errs"
	"github.com/ivankudzin/matchcore/internal/domain/model"
	"github.com/ivankudzin/matchcore/internal/domain/query"
	"github.com/ivankudzin/matchcore/internal/domain/rules"
	"github.com/ivankudzin/matchcore/internal/repo/docstore"
)

type Config struct {
	VisitedCapacity int
	MaxBatchIDs     int
}

type Service struct {
	profiles docstore.Collection[model.Profile]
	cfg      Config
	log      *zap.Logger
	now      func() time.Time
}

func NewService(profiles docstore.Collection[model.Profile], cfg Config, log *zap.Logger) *Service {
	if cfg.VisitedCapacity <= 0 {
		cfg.VisitedCapacity = rules.DefaultVisitedCapacity
	}
	if cfg.MaxBatchIDs <= 0 {
		cfg.MaxBatchIDs = 100
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		profiles: profiles,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Load returns the full stored profile.
func (s *Service) Load(ctx context.Context, profileID string) (model.Profile, error) {
	p, err := s.profiles.FindOne(ctx, byID(profileID))
	if err != nil {
		return model.Profile{}, fmt.Errorf("load profile %s: %w", profileID, err)
	}
	p.EnsureLedgers()
	return p, nil
}

// Resolve returns the subset of ids that belong to stored profiles.
func (s *Service) Resolve(ctx context.Context, ids []string) ([]string, error) {
	ids = rules.NormalizeIDs(ids)
	if len(ids) == 0 {
		return []string{}, nil
	}
	found, err := s.profiles.Find(ctx, query.In(model.FieldProfileID, ids...), summaryOnly())
	if err != nil {
		return nil, fmt.Errorf("resolve profiles: %w", err)
	}
	return profileIDs(found), nil
}

func (s *Service) batch(op string, ids []string) ([]string, error) {
	ids = rules.NormalizeIDs(ids)
	if len(ids) == 0 {
		return nil, errs.Invalid("%s: empty id list", op)
	}
	if len(ids) > s.cfg.MaxBatchIDs {
		return nil, errs.Invalid("%s: %d ids exceed the limit of %d", op, len(ids), s.cfg.MaxBatchIDs)
	}
	return ids, nil
}

func byID(id string) query.Predicate {
	return query.Eq(model.FieldProfileID, id)
}

// summaryOnly projects a profile down to the fields a ledger snapshot needs.
func summaryOnly() docstore.FindOption {
	return docstore.WithProjection(query.Excluding(
		model.FieldVisited,
		model.FieldBookmarks,
		model.FieldLikes,
		model.FieldComplains,
		model.FieldContacts,
	))
}

func profileIDs(profiles []model.Profile) []string {
	out := make([]string, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.ProfileID)
	}
	return out
}

func intersect(a, b []string) []string {
	return rules.Difference(a, rules.Difference(a, b))
}
