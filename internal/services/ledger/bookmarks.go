package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ivankudzin/matchcore/internal/domain/enums"
	"github.com/ivankudzin/matchcore/internal/domain/errs"
	"github.com/ivankudzin/matchcore/internal/domain/model"
	"github.com/ivankudzin/matchcore/internal/domain/query"
	"github.com/ivankudzin/matchcore/internal/domain/rules"
)

// AddBookmarks records that owner bookmarked each target: a local entry on
// the owner and a back-reference carrying the owner's snapshot on each
// target. Every write is guarded on the entry being absent, so concurrent
// calls store each relation once.
//
// The two sides are independent writes. When the back-references fail
// after the local entries landed, the error is returned and a retry with
// the same ids writes only the missing back-references.
func (s *Service) AddBookmarks(ctx context.Context, owner model.Profile, targetIDs []string) (bool, error) {
	ids, err := s.batch("add bookmarks", targetIDs)
	if err != nil {
		return false, err
	}
	if rules.Contains(ids, owner.ProfileID) {
		return false, errs.Invalid("add bookmarks: cannot bookmark self")
	}

	current, err := s.Load(ctx, owner.ProfileID)
	if err != nil {
		return false, err
	}
	recorded := intersect(ids, current.BookmarkedIDs())
	pending := rules.Difference(ids, recorded)

	var targets []model.Profile
	if len(pending) > 0 {
		targets, err = s.profiles.Find(ctx, query.In(model.FieldProfileID, pending...), summaryOnly())
		if err != nil {
			return false, fmt.Errorf("find bookmark targets: %w", err)
		}
		if len(targets) == 0 && len(recorded) == 0 {
			return false, errs.NotFound("add bookmarks: no target exists")
		}
	}

	changed := false
	for _, t := range targets {
		entry := model.Bookmark{
			ProfileID: t.ProfileID,
			Name:      t.Name,
			Avatar:    t.Avatar,
		}
		pushed, err := s.profiles.UpdateOne(ctx,
			query.And(byID(owner.ProfileID), query.NoElemMatch(model.FieldBookmarks, outgoingTo(t.ProfileID))),
			query.NewUpdate().Push(model.FieldBookmarks, entry),
		)
		if err != nil {
			return changed, fmt.Errorf("push local bookmark: %w", err)
		}
		changed = changed || pushed
	}

	recorded = append(recorded, profileIDs(targets)...)
	missing, err := s.profiles.Find(ctx, query.And(
		query.In(model.FieldProfileID, recorded...),
		query.NoElemMatch(model.FieldBookmarks, incomingFrom(owner.ProfileID)),
	), summaryOnly())
	if err != nil {
		return changed, fmt.Errorf("find missing back-references: %w", err)
	}
	if len(missing) == 0 {
		return changed, nil
	}

	reciprocal := model.Bookmark{
		ProfileID:    current.ProfileID,
		Name:         current.Name,
		Avatar:       current.Avatar,
		IsBookmarked: true,
	}
	matched, err := s.profiles.UpdateMany(ctx,
		query.And(
			query.In(model.FieldProfileID, profileIDs(missing)...),
			query.NoElemMatch(model.FieldBookmarks, incomingFrom(owner.ProfileID)),
		),
		query.NewUpdate().Push(model.FieldBookmarks, reciprocal),
	)
	if err != nil {
		return changed, fmt.Errorf("push reciprocal bookmarks: %w", err)
	}
	s.log.Debug("bookmarks added",
		zap.String("owner", owner.ProfileID),
		zap.Int("local", len(targets)),
		zap.Int64("reciprocal", matched),
	)
	return changed || matched > 0, nil
}

// RemoveBookmarks strips the local entries from the owner and the
// back-references from each target. Like AddBookmarks, a retry after a
// failed second write removes the back-references left behind.
func (s *Service) RemoveBookmarks(ctx context.Context, owner model.Profile, targetIDs []string) (bool, error) {
	ids, err := s.batch("remove bookmarks", targetIDs)
	if err != nil {
		return false, err
	}
	current, err := s.Load(ctx, owner.ProfileID)
	if err != nil {
		return false, err
	}

	changed := false
	if present := intersect(ids, current.BookmarkedIDs()); len(present) > 0 {
		local := query.And(
			query.In(model.FieldProfileID, present...),
			query.Eq(model.FieldIsBookmarked, false),
		)
		if _, err := s.profiles.UpdateOne(ctx, byID(owner.ProfileID), query.NewUpdate().Pull(model.FieldBookmarks, local)); err != nil {
			return false, fmt.Errorf("pull local bookmarks: %w", err)
		}
		changed = true
	}

	stale, err := s.profiles.Find(ctx, query.And(
		query.In(model.FieldProfileID, ids...),
		query.ElemMatch(model.FieldBookmarks, incomingFrom(owner.ProfileID)),
	), summaryOnly())
	if err != nil {
		return changed, fmt.Errorf("find back-references: %w", err)
	}
	if len(stale) == 0 {
		return changed, nil
	}
	if _, err := s.profiles.UpdateMany(ctx,
		query.In(model.FieldProfileID, profileIDs(stale)...),
		query.NewUpdate().Pull(model.FieldBookmarks, incomingFrom(owner.ProfileID)),
	); err != nil {
		return changed, fmt.Errorf("pull reciprocal bookmarks: %w", err)
	}
	return true, nil
}

// RemoveBookmarkedBy drops back-references from the owner's ledger only.
func (s *Service) RemoveBookmarkedBy(ctx context.Context, owner model.Profile, bookmarkerIDs []string) (bool, error) {
	ids := rules.NormalizeIDs(bookmarkerIDs)
	current, err := s.Load(ctx, owner.ProfileID)
	if err != nil {
		return false, err
	}
	present := intersect(ids, current.BookmarkedByIDs(true))
	if len(present) == 0 {
		return false, nil
	}

	where := query.And(
		query.In(model.FieldProfileID, present...),
		query.Eq(model.FieldIsBookmarked, true),
	)
	if _, err := s.profiles.UpdateOne(ctx, byID(owner.ProfileID), query.NewUpdate().Pull(model.FieldBookmarks, where)); err != nil {
		return false, fmt.Errorf("pull back-references: %w", err)
	}
	return true, nil
}

// BlockBookmarkers toggles Blocked on the owner's back-references from the
// given profiles. Blocked bookmarkers drop out of "who bookmarked me".
func (s *Service) BlockBookmarkers(ctx context.Context, owner model.Profile, bookmarkerIDs []string) (bool, error) {
	ids, err := s.batch("block bookmarkers", bookmarkerIDs)
	if err != nil {
		return false, err
	}
	current, err := s.Load(ctx, owner.ProfileID)
	if err != nil {
		return false, err
	}
	present := intersect(ids, current.BookmarkedByIDs(true))
	if len(present) == 0 {
		return false, nil
	}

	where := query.And(
		query.In(model.FieldProfileID, present...),
		query.Eq(model.FieldIsBookmarked, true),
	)
	update := rules.ToggleBlocked(query.NewUpdate(), model.FieldBookmarks, where)
	if _, err := s.profiles.UpdateOne(ctx, byID(owner.ProfileID), update); err != nil {
		return false, fmt.Errorf("toggle bookmarkers: %w", err)
	}
	return true, nil
}

// Bookmarks lists the owner's ledger entries in one direction.
func (s *Service) Bookmarks(ctx context.Context, owner model.Profile, direction enums.BookmarkDirection) ([]model.Bookmark, error) {
	current, err := s.Load(ctx, owner.ProfileID)
	if err != nil {
		return nil, err
	}
	incoming := direction == enums.BookmarkIncoming
	out := make([]model.Bookmark, 0, len(current.Bookmarks))
	for _, b := range current.Bookmarks {
		if b.IsBookmarked == incoming {
			out = append(out, b)
		}
	}
	return out, nil
}

func outgoingTo(profileID string) query.Predicate {
	return query.And(
		query.Eq(model.FieldProfileID, profileID),
		query.Eq(model.FieldIsBookmarked, false),
	)
}

func incomingFrom(profileID string) query.Predicate {
	return query.And(
		query.Eq(model.FieldProfileID, profileID),
		query.Eq(model.FieldIsBookmarked, true),
	)
}
