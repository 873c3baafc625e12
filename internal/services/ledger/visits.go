package ledger

import (
	"context"
	"fmt"

	"github.com/ivankudzin/matchcore/internal/domain/model"
	"github.com/ivankudzin/matchcore/internal/domain/query"
	"github.com/ivankudzin/matchcore/internal/domain/rules"
)

// AddVisited records that visitor viewed subjectID now. Administrator
// visits and self visits are never recorded. The visited map stays within
// its capacity by evicting the oldest visit.
func (s *Service) AddVisited(ctx context.Context, subjectID string, visitor model.Profile) (bool, error) {
	if visitor.Admin || subjectID == visitor.ProfileID {
		return false, nil
	}
	subject, err := s.Load(ctx, subjectID)
	if err != nil {
		return false, err
	}

	visited := rules.RecordVisit(subject.Visited, visitor.ProfileID, s.now().UTC(), s.cfg.VisitedCapacity)
	if _, err := s.profiles.UpdateOne(ctx, byID(subjectID), query.NewUpdate().Set(model.FieldVisited, visited)); err != nil {
		return false, fmt.Errorf("set visited: %w", err)
	}
	return true, nil
}

// RemoveVisited unsets the given visitors from the owner's visited map.
func (s *Service) RemoveVisited(ctx context.Context, owner model.Profile, visitorIDs []string) (bool, error) {
	current, err := s.Load(ctx, owner.ProfileID)
	if err != nil {
		return false, err
	}
	present := intersect(rules.NormalizeIDs(visitorIDs), current.VisitorIDs())
	if len(present) == 0 {
		return false, nil
	}

	update := query.NewUpdate()
	for _, id := range present {
		update = update.Unset(model.FieldVisited + "." + id)
	}
	if _, err := s.profiles.UpdateOne(ctx, byID(owner.ProfileID), update); err != nil {
		return false, fmt.Errorf("unset visited: %w", err)
	}
	return true, nil
}
