// Package matching answers candidate queries: discovery (latest, filtered
// search) under the mutual-visibility rule and identity-scoped listings
// (explicit ids, bookmarks, visitors, likers), each as one counted page.
package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/ivankudzin/matchcore/internal/domain/errs"
	"github.com/ivankudzin/matchcore/internal/domain/model"
	"github.com/ivankudzin/matchcore/internal/domain/query"
	"github.com/ivankudzin/matchcore/internal/domain/rules"
	"github.com/ivankudzin/matchcore/internal/repo/docstore"
)

const defaultMaxBatchIDs = 100

type Config struct {
	Regions         map[string]model.Bounds
	DefaultBounds   model.Bounds
	DefaultPageSize int
	MaxPageSize     int
	MaxBatchIDs     int
}

type Result struct {
	Total int64
	Items []model.Profile
}

type Service struct {
	profiles docstore.Collection[model.Profile]
	cfg      Config
}

func NewService(profiles docstore.Collection[model.Profile], cfg Config) *Service {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = rules.DefaultPageSize
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = rules.MaxPageSize
	}
	if cfg.MaxBatchIDs <= 0 {
		cfg.MaxBatchIDs = defaultMaxBatchIDs
	}
	return &Service{profiles: profiles, cfg: cfg}
}

// BoundsFor returns the bounds of a region, or the default bounds.
func (s *Service) BoundsFor(region string) model.Bounds {
	if b, ok := s.cfg.Regions[region]; ok {
		return b
	}
	return s.cfg.DefaultBounds
}

// Page counts every document matching pred and returns the sorted window
// of them, projected for the requester, in one store round trip.
func (s *Service) Page(ctx context.Context, requester model.Profile, pred query.Predicate, sort []query.Sort, skip, limit int) (Result, error) {
	page, err := s.profiles.Aggregate(ctx, pred, sort, ProjectionFor(requester), skip, limit)
	if err != nil {
		return Result{}, fmt.Errorf("page profiles: %w", err)
	}
	if page.Items == nil {
		page.Items = []model.Profile{}
	}
	return Result{Total: page.Total, Items: page.Items}, nil
}

func (s *Service) Latest(ctx context.Context, requester model.Profile, params model.ParameterFilter) (Result, error) {
	return s.run(ctx, requester, Baseline(requester), params, false)
}

func (s *Service) Search(ctx context.Context, requester model.Profile, filter model.ProfileFilter, params model.ParameterFilter) (Result, error) {
	if filter.Malformed() {
		return Result{}, errs.Invalid("search: malformed range")
	}
	pred := query.And(Baseline(requester), Compile(filter, s.BoundsFor(requester.Region)))
	return s.run(ctx, requester, pred, params, false)
}

func (s *Service) ByIDs(ctx context.Context, requester model.Profile, ids []string, params model.ParameterFilter) (Result, error) {
	ids = rules.NormalizeIDs(ids)
	if len(ids) == 0 {
		return Result{}, errs.Invalid("by ids: empty id list")
	}
	if len(ids) > s.cfg.MaxBatchIDs {
		return Result{}, errs.Invalid("by ids: %d ids exceed the limit of %d", len(ids), s.cfg.MaxBatchIDs)
	}
	return s.run(ctx, requester, IdentityScope(requester, ids), params, false)
}

// ByName is the only query that may be ordered by name.
func (s *Service) ByName(ctx context.Context, requester model.Profile, name string, params model.ParameterFilter) (Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Result{}, errs.Invalid("by name: empty name")
	}
	pred := query.And(
		query.Ne(model.FieldProfileID, requester.ProfileID),
		query.Ne(model.FieldAdmin, true),
		query.Contains(model.FieldName, name),
	)
	return s.run(ctx, requester, pred, params, true)
}

// Bookmarked lists the profiles the requester bookmarked.
func (s *Service) Bookmarked(ctx context.Context, requester model.Profile, params model.ParameterFilter) (Result, error) {
	return s.scoped(ctx, requester, requester.BookmarkedIDs(), params)
}

// BookmarkedBy lists the profiles that bookmarked the requester, without
// blocked entries.
func (s *Service) BookmarkedBy(ctx context.Context, requester model.Profile, params model.ParameterFilter) (Result, error) {
	return s.scoped(ctx, requester, requester.BookmarkedByIDs(false), params)
}

func (s *Service) VisitedBy(ctx context.Context, requester model.Profile, params model.ParameterFilter) (Result, error) {
	return s.scoped(ctx, requester, requester.VisitorIDs(), params)
}

func (s *Service) LikedBy(ctx context.Context, requester model.Profile, params model.ParameterFilter) (Result, error) {
	return s.scoped(ctx, requester, requester.Likes, params)
}

func (s *Service) scoped(ctx context.Context, requester model.Profile, ids []string, params model.ParameterFilter) (Result, error) {
	ids = rules.NormalizeIDs(ids)
	if len(ids) == 0 {
		return Result{Items: []model.Profile{}}, nil
	}
	return s.run(ctx, requester, IdentityScope(requester, ids), params, false)
}

func (s *Service) run(ctx context.Context, requester model.Profile, pred query.Predicate, params model.ParameterFilter, nameScoped bool) (Result, error) {
	skip, limit := rules.PageWindow(params.PageIndex, params.PageSize, s.cfg.DefaultPageSize, s.cfg.MaxPageSize)
	return s.Page(ctx, requester, pred, Order(params, nameScoped), skip, limit)
}
