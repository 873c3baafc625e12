package model

import (
	"github.com/ivankudzin/matchcore/internal/domain/enums"
	"github.com/ivankudzin/matchcore/internal/pkg/validate"
)

// EnumFilter is an optional "member of" constraint on one lifestyle
// dimension. The zero value is unconstrained, which is distinct from a
// constraint on any particular value.
type EnumFilter[T ~string] struct {
	values []T
}

// AnyOf builds a constraint from the chosen values. NotChosen entries carry
// no meaning for a filter and are dropped, so AnyOf(NotChosen) is
// unconstrained.
func AnyOf[T ~string](values ...T) EnumFilter[T] {
	out := make([]T, 0, len(values))
	seen := make(map[T]struct{}, len(values))
	for _, v := range values {
		if string(v) == enums.NotChosen {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return EnumFilter[T]{}
	}
	return EnumFilter[T]{values: out}
}

func (f EnumFilter[T]) Constrained() bool { return len(f.values) > 0 }

func (f EnumFilter[T]) Values() []T { return f.values }

// IntRange is an inclusive range; a zero bound is absent.
type IntRange struct {
	Min int
	Max int
}

// Bounds are the configured global limits of a region.
type Bounds struct {
	AgeMin    int
	AgeMax    int
	HeightMin int
	HeightMax int
}

type ProfileFilter struct {
	Name        string
	Age         IntRange
	Height      IntRange
	Description string
	Tags        []string

	Body       EnumFilter[enums.BodyType]
	Smoking    EnumFilter[enums.SmokingHabits]
	Children   EnumFilter[enums.HasChildren]
	Pets       EnumFilter[enums.HasPets]
	Living     EnumFilter[enums.LivingSituation]
	Education  EnumFilter[enums.EducationLevel]
	Employment EnumFilter[enums.EmploymentStatus]
	Sports     EnumFilter[enums.SportsActivity]
	Eating     EnumFilter[enums.EatingHabits]
	Clothing   EnumFilter[enums.ClothingStyle]
	BodyArt    EnumFilter[enums.BodyArt]
}

// Malformed reports ranges that cannot match anything: negative bounds or
// a minimum above the maximum.
func (f ProfileFilter) Malformed() bool {
	return malformed(f.Age) || malformed(f.Height)
}

func malformed(r IntRange) bool {
	if r.Min < 0 || r.Max < 0 {
		return true
	}
	return r.Min > 0 && r.Max > 0 && r.Min > r.Max
}

// NormalizedTags trims, lowercases and dedupes the tag filter.
func (f ProfileFilter) NormalizedTags() []string {
	return validate.Tags(f.Tags)
}

// ParameterFilter carries ordering and the page window; PageIndex 0 is
// the first page.
type ParameterFilter struct {
	OrderBy       enums.OrderBy
	SortDirection enums.SortDirection
	PageIndex     int
	PageSize      int
}
