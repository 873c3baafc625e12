package matching

import (
	"strings"

	"github.com/ivankudzin/matchcore/internal/domain/model"
	"github.com/ivankudzin/matchcore/internal/domain/query"
)

// Compile turns a sparse filter into a conjunction of the clauses its set
// fields imply. An empty filter compiles to the universal predicate.
//
// Range bounds are emitted per side only when strictly inside the region
// bounds; a bound at or beyond the region limit constrains nothing.
func Compile(f model.ProfileFilter, bounds model.Bounds) query.Predicate {
	clauses := make([]query.Predicate, 0, 16)

	if name := strings.TrimSpace(f.Name); name != "" {
		clauses = append(clauses, query.Contains(model.FieldName, name))
	}
	clauses = appendRange(clauses, model.FieldAge, f.Age, bounds.AgeMin, bounds.AgeMax)
	clauses = appendRange(clauses, model.FieldHeight, f.Height, bounds.HeightMin, bounds.HeightMax)
	if desc := strings.TrimSpace(f.Description); desc != "" {
		clauses = append(clauses, query.Contains(model.FieldDescription, desc))
	}
	if tags := f.NormalizedTags(); len(tags) > 0 {
		clauses = append(clauses, query.In(model.FieldTags, tags...))
	}

	clauses = appendEnum(clauses, model.FieldBody, f.Body)
	clauses = appendEnum(clauses, model.FieldSmoking, f.Smoking)
	clauses = appendEnum(clauses, model.FieldChildren, f.Children)
	clauses = appendEnum(clauses, model.FieldPets, f.Pets)
	clauses = appendEnum(clauses, model.FieldLiving, f.Living)
	clauses = appendEnum(clauses, model.FieldEducation, f.Education)
	clauses = appendEnum(clauses, model.FieldEmployment, f.Employment)
	clauses = appendEnum(clauses, model.FieldSports, f.Sports)
	clauses = appendEnum(clauses, model.FieldEating, f.Eating)
	clauses = appendEnum(clauses, model.FieldClothing, f.Clothing)
	clauses = appendEnum(clauses, model.FieldBodyArt, f.BodyArt)

	return query.And(clauses...)
}

func appendRange(clauses []query.Predicate, field string, r model.IntRange, lo, hi int) []query.Predicate {
	if strictlyInside(r.Min, lo, hi) {
		clauses = append(clauses, query.Gte(field, r.Min))
	}
	if strictlyInside(r.Max, lo, hi) {
		clauses = append(clauses, query.Lte(field, r.Max))
	}
	return clauses
}

// strictlyInside treats a zero value as absent and a zero limit as open.
func strictlyInside(v, lo, hi int) bool {
	if v <= 0 {
		return false
	}
	if lo > 0 && v <= lo {
		return false
	}
	if hi > 0 && v >= hi {
		return false
	}
	return true
}

func appendEnum[T ~string](clauses []query.Predicate, field string, f model.EnumFilter[T]) []query.Predicate {
	if !f.Constrained() {
		return clauses
	}
	return append(clauses, query.In(field, f.Values()...))
}
