package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/ivankudzin/matchcore/internal/domain/errs"
	"github.com/ivankudzin/matchcore/internal/domain/model"
	"github.com/ivankudzin/matchcore/internal/domain/query"
	"github.com/ivankudzin/matchcore/internal/domain/rules"
)

// AddContacts appends membership records for existing profiles that are not
// yet in the owner's contact list. Each push is guarded on the record being
// absent, so concurrent adds of the same contact store it once.
func (s *Service) AddContacts(ctx context.Context, owner model.Profile, contactIDs []string) (bool, error) {
	ids, err := s.batch("add contacts", contactIDs)
	if err != nil {
		return false, err
	}
	if rules.Contains(ids, owner.ProfileID) {
		return false, errs.Invalid("add contacts: cannot add self")
	}
	current, err := s.Load(ctx, owner.ProfileID)
	if err != nil {
		return false, err
	}
	pending := rules.Difference(ids, current.ContactIDs())
	if len(pending) == 0 {
		return false, nil
	}

	found, err := s.profiles.Find(ctx, query.In(model.FieldProfileID, pending...), summaryOnly())
	if err != nil {
		return false, fmt.Errorf("find contacts: %w", err)
	}
	if len(found) == 0 {
		return false, errs.NotFound("add contacts: no contact exists")
	}

	changed := false
	for _, p := range found {
		member := model.Member{
			ProfileID: p.ProfileID,
			Name:      p.Name,
			Complains: map[string]time.Time{},
		}
		pushed, err := s.profiles.UpdateOne(ctx,
			query.And(byID(owner.ProfileID), query.NoElemMatch(model.FieldContacts, query.Eq(model.FieldProfileID, p.ProfileID))),
			query.NewUpdate().Push(model.FieldContacts, member),
		)
		if err != nil {
			return changed, fmt.Errorf("push contact: %w", err)
		}
		changed = changed || pushed
	}
	return changed, nil
}

func (s *Service) RemoveContacts(ctx context.Context, owner model.Profile, contactIDs []string) (bool, error) {
	current, err := s.Load(ctx, owner.ProfileID)
	if err != nil {
		return false, err
	}
	present := rules.MemberIDs(current.Contacts, rules.NormalizeIDs(contactIDs))
	if len(present) == 0 {
		return false, nil
	}
	update := query.NewUpdate().Pull(model.FieldContacts, query.In(model.FieldProfileID, present...))
	if _, err := s.profiles.UpdateOne(ctx, byID(owner.ProfileID), update); err != nil {
		return false, fmt.Errorf("pull contacts: %w", err)
	}
	return true, nil
}

// BlockMembers flips Blocked on the owner's contact records for memberIDs.
// Ids that are not contacts are ignored.
func (s *Service) BlockMembers(ctx context.Context, owner model.Profile, memberIDs []string) (bool, error) {
	ids, err := s.batch("block members", memberIDs)
	if err != nil {
		return false, err
	}
	current, err := s.Load(ctx, owner.ProfileID)
	if err != nil {
		return false, err
	}
	present := rules.MemberIDs(current.Contacts, ids)
	if len(present) == 0 {
		return false, nil
	}
	update := rules.ToggleBlocked(query.NewUpdate(), model.FieldContacts, query.In(model.FieldProfileID, present...))
	if _, err := s.profiles.UpdateOne(ctx, byID(owner.ProfileID), update); err != nil {
		return false, fmt.Errorf("toggle contacts: %w", err)
	}
	return true, nil
}
