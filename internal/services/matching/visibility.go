package matching

import (
	"github.com/ivankudzin/matchcore/internal/domain/model"
	"github.com/ivankudzin/matchcore/internal/domain/query"
)

// Baseline is the mutual-visibility predicate of discovery queries: never
// the requester, never an administrator, same region and reciprocal
// gender/seeking acceptance.
func Baseline(requester model.Profile) query.Predicate {
	return query.And(
		query.Ne(model.FieldProfileID, requester.ProfileID),
		query.Ne(model.FieldAdmin, true),
		query.Eq(model.FieldRegion, requester.Region),
		query.In(model.FieldGender, requester.Seeking...),
		query.Eq(model.FieldSeeking, requester.Gender),
	)
}

// IdentityScope restricts an explicit id set, keeping only the self and
// administrator exclusions of the baseline.
func IdentityScope(requester model.Profile, ids []string) query.Predicate {
	return query.And(
		query.Ne(model.FieldProfileID, requester.ProfileID),
		query.Ne(model.FieldAdmin, true),
		query.In(model.FieldProfileID, ids...),
	)
}

// ProjectionFor hides internal fields according to the caller's privilege.
func ProjectionFor(requester model.Profile) query.Projection {
	if requester.Admin {
		return query.Excluding(model.AdminHidden...)
	}
	return query.Excluding(model.PublicHidden...)
}
