package rules

import (
	"github.com/ivankudzin/matchcore/internal/domain/model"
	"github.com/ivankudzin/matchcore/internal/domain/query"
)

// MemberIDs returns the ids in ids that have a record in members, in the
// order of ids.
func MemberIDs(members []model.Member, ids []string) []string {
	have := make(map[string]struct{}, len(members))
	for _, m := range members {
		have[m.ProfileID] = struct{}{}
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := have[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// ToggleBlocked appends to update a flip of Blocked on every element of the
// array field matching where. Both halves select against the stored
// element, so a flipped element is not flipped back by the other half.
func ToggleBlocked(update query.Update, field string, where query.Predicate) query.Update {
	return update.
		SetEach(field, query.And(where, query.Eq(model.FieldBlocked, true)), model.FieldBlocked, false).
		SetEach(field, query.And(where, query.Eq(model.FieldBlocked, false)), model.FieldBlocked, true)
}

// RecordComplaint appends to update the element writes of a filed
// complaint: the complainant's timestamp and the removal of expired
// complainants. Other complaints on the same element are left alone.
func RecordComplaint(update query.Update, field string, where query.Predicate, complainantID string, outcome ComplaintOutcome) query.Update {
	update = update.SetEach(field, where, model.FieldComplains+"."+complainantID, outcome.Active[complainantID])
	for _, id := range outcome.ExpiredIDs {
		update = update.UnsetEach(field, where, model.FieldComplains+"."+id)
	}
	return update
}
