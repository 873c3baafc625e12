// Package reconcile removes relationship references to profiles that no
// longer exist. Each collection is cleaned in its own step; a failing step
// is reported and does not stop the others.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ivankudzin/matchcore/internal/domain/model"
	"github.com/ivankudzin/matchcore/internal/domain/rules"
)

const defaultChunkSize = 100

const (
	StepVisited      = "visited"
	StepBookmarked   = "bookmarked"
	StepBookmarkedBy = "bookmarked_by"
	StepContacts     = "contacts"
	StepLikes        = "likes"
	StepGroups       = "groups"
)

type Ledger interface {
	Load(ctx context.Context, profileID string) (model.Profile, error)
	Resolve(ctx context.Context, ids []string) ([]string, error)
	RemoveVisited(ctx context.Context, owner model.Profile, visitorIDs []string) (bool, error)
	RemoveBookmarks(ctx context.Context, owner model.Profile, targetIDs []string) (bool, error)
	RemoveBookmarkedBy(ctx context.Context, owner model.Profile, bookmarkerIDs []string) (bool, error)
	RemoveContacts(ctx context.Context, owner model.Profile, contactIDs []string) (bool, error)
	RemoveLikers(ctx context.Context, owner model.Profile, likerIDs []string) (bool, error)
}

type Groups interface {
	Owned(ctx context.Context, ownerID string) ([]model.Group, error)
	PruneMembers(ctx context.Context, groupID string, memberIDs []string) (bool, error)
}

// Report counts the stale ids removed per step.
type Report struct {
	OwnerID string
	Removed map[string]int
}

func (r Report) Total() int {
	total := 0
	for _, n := range r.Removed {
		total += n
	}
	return total
}

type Service struct {
	ledger    Ledger
	groups    Groups
	chunkSize int
	log       *zap.Logger
}

func NewService(ledger Ledger, groups Groups, chunkSize int, log *zap.Logger) *Service {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		ledger:    ledger,
		groups:    groups,
		chunkSize: chunkSize,
		log:       log,
	}
}

// Clean resolves every id the owner references and removes exactly the ids
// that no longer resolve. Live ids are never touched. The returned error
// joins the failures of individual steps; the report still carries the
// counts of the steps that succeeded.
func (s *Service) Clean(ctx context.Context, ownerID string) (Report, error) {
	report := Report{OwnerID: ownerID, Removed: map[string]int{}}
	owner, err := s.ledger.Load(ctx, ownerID)
	if err != nil {
		return report, fmt.Errorf("clean %s: %w", ownerID, err)
	}

	steps := []struct {
		name   string
		ids    []string
		remove func(context.Context, model.Profile, []string) (bool, error)
	}{
		{StepVisited, owner.VisitorIDs(), s.ledger.RemoveVisited},
		{StepBookmarked, owner.BookmarkedIDs(), s.ledger.RemoveBookmarks},
		{StepBookmarkedBy, owner.BookmarkedByIDs(true), s.ledger.RemoveBookmarkedBy},
		{StepContacts, owner.ContactIDs(), s.ledger.RemoveContacts},
		{StepLikes, owner.Likes, s.ledger.RemoveLikers},
	}

	var failures []error
	for _, step := range steps {
		removed, err := s.sweep(ctx, step.ids, func(ctx context.Context, stale []string) error {
			_, err := step.remove(ctx, owner, stale)
			return err
		})
		report.Removed[step.name] = removed
		if err != nil {
			s.log.Warn("reconcile step failed", zap.String("owner_id", ownerID), zap.String("step", step.name), zap.Error(err))
			failures = append(failures, fmt.Errorf("%s: %w", step.name, err))
		}
	}

	if s.groups != nil {
		removed, err := s.cleanGroups(ctx, ownerID)
		report.Removed[StepGroups] = removed
		if err != nil {
			s.log.Warn("reconcile step failed", zap.String("owner_id", ownerID), zap.String("step", StepGroups), zap.Error(err))
			failures = append(failures, fmt.Errorf("%s: %w", StepGroups, err))
		}
	}

	if err := errors.Join(failures...); err != nil {
		return report, fmt.Errorf("clean %s: %w", ownerID, err)
	}
	return report, nil
}

func (s *Service) cleanGroups(ctx context.Context, ownerID string) (int, error) {
	owned, err := s.groups.Owned(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	total := 0
	var failures []error
	for _, group := range owned {
		removed, err := s.sweep(ctx, group.MemberIDs(), func(ctx context.Context, stale []string) error {
			_, err := s.groups.PruneMembers(ctx, group.GroupID, stale)
			return err
		})
		total += removed
		if err != nil {
			failures = append(failures, fmt.Errorf("group %s: %w", group.GroupID, err))
		}
	}
	return total, errors.Join(failures...)
}

// sweep resolves ids chunk by chunk and hands the unresolved ones to remove.
func (s *Service) sweep(ctx context.Context, ids []string, remove func(context.Context, []string) error) (int, error) {
	ids = rules.NormalizeIDs(ids)
	removed := 0
	for start := 0; start < len(ids); start += s.chunkSize {
		end := min(start+s.chunkSize, len(ids))
		chunk := ids[start:end]

		live, err := s.ledger.Resolve(ctx, chunk)
		if err != nil {
			return removed, err
		}
		stale := rules.Difference(chunk, live)
		if len(stale) == 0 {
			continue
		}
		if err := remove(ctx, stale); err != nil {
			return removed, err
		}
		removed += len(stale)
	}
	return removed, nil
}
