package ledger

import (
	"context"
	"fmt"

	"github.com/ivankudzin/matchcore/internal/domain/errs"
	"github.com/ivankudzin/matchcore/internal/domain/model"
	"github.com/ivankudzin/matchcore/internal/domain/query"
	"github.com/ivankudzin/matchcore/internal/domain/rules"
)

// AddLikes adds liker to the like set of every target not already holding
// it. Administrators may not like; the liker's own id is dropped. Naming
// only profiles that do not exist is NotFound.
func (s *Service) AddLikes(ctx context.Context, liker model.Profile, targetIDs []string) (bool, error) {
	if liker.Admin {
		return false, errs.Precondition("add likes: administrators cannot like")
	}
	ids, err := s.batch("add likes", targetIDs)
	if err != nil {
		return false, err
	}
	ids = rules.Difference(ids, []string{liker.ProfileID})
	if len(ids) == 0 {
		return false, nil
	}

	pending, err := s.profiles.Find(ctx, query.And(
		query.In(model.FieldProfileID, ids...),
		query.Ne(model.FieldLikes, liker.ProfileID),
	), summaryOnly())
	if err != nil {
		return false, fmt.Errorf("find like targets: %w", err)
	}
	if len(pending) == 0 {
		existing, err := s.Resolve(ctx, ids)
		if err != nil {
			return false, err
		}
		if len(existing) == 0 {
			return false, errs.NotFound("add likes: no target exists")
		}
		return false, nil
	}

	if _, err := s.profiles.UpdateMany(ctx,
		query.In(model.FieldProfileID, profileIDs(pending)...),
		query.NewUpdate().AddToSet(model.FieldLikes, liker.ProfileID),
	); err != nil {
		return false, fmt.Errorf("add likes: %w", err)
	}
	return true, nil
}

// RemoveLikes removes liker from the like set of every target holding it.
func (s *Service) RemoveLikes(ctx context.Context, liker model.Profile, targetIDs []string) (bool, error) {
	if liker.Admin {
		return false, nil
	}
	ids, err := s.batch("remove likes", targetIDs)
	if err != nil {
		return false, err
	}
	ids = rules.Difference(ids, []string{liker.ProfileID})
	if len(ids) == 0 {
		return false, nil
	}

	pending, err := s.profiles.Find(ctx, query.And(
		query.In(model.FieldProfileID, ids...),
		query.Eq(model.FieldLikes, liker.ProfileID),
	), summaryOnly())
	if err != nil {
		return false, fmt.Errorf("find liked targets: %w", err)
	}
	if len(pending) == 0 {
		return false, nil
	}

	if _, err := s.profiles.UpdateMany(ctx,
		query.In(model.FieldProfileID, profileIDs(pending)...),
		query.NewUpdate().PullAll(model.FieldLikes, liker.ProfileID),
	); err != nil {
		return false, fmt.Errorf("remove likes: %w", err)
	}
	return true, nil
}

// RemoveLikers drops the given likers from the owner's own like set.
func (s *Service) RemoveLikers(ctx context.Context, owner model.Profile, likerIDs []string) (bool, error) {
	current, err := s.Load(ctx, owner.ProfileID)
	if err != nil {
		return false, err
	}
	present := intersect(rules.NormalizeIDs(likerIDs), current.Likes)
	if len(present) == 0 {
		return false, nil
	}
	if _, err := s.profiles.UpdateOne(ctx, byID(owner.ProfileID), query.NewUpdate().PullAll(model.FieldLikes, query.Strings(present)...)); err != nil {
		return false, fmt.Errorf("pull likers: %w", err)
	}
	return true, nil
}
