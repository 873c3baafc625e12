package memory

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ivankudzin/matchcore/internal/domain/query"
)

// lookup resolves a dotted path. Arrays met on the way are traversed
// element-wise, so "bookmarks.profileId" yields the profileId of every
// bookmark. found is false when no branch reaches the leaf.
func lookup(doc bson.M, path string) ([]any, bool) {
	current := []any{doc}
	for _, segment := range strings.Split(path, ".") {
		next := make([]any, 0, len(current))
		for _, node := range current {
			switch t := node.(type) {
			case bson.M:
				if v, ok := t[segment]; ok {
					next = append(next, v)
				}
			case primitive.A:
				for _, el := range t {
					if m, ok := el.(bson.M); ok {
						if v, ok := m[segment]; ok {
							next = append(next, v)
						}
					}
				}
			}
		}
		if len(next) == 0 {
			return nil, false
		}
		current = next
	}
	return current, true
}

// candidates expands array leaves so scalar operators match any element.
func candidates(values []any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
		if arr, ok := v.(primitive.A); ok {
			out = append(out, arr...)
		}
	}
	return out
}

func matches(doc bson.M, p query.Predicate) (bool, error) {
	switch p.Op() {
	case query.OpTrue:
		return true, nil
	case query.OpAnd:
		for _, c := range p.Children() {
			ok, err := matches(doc, c)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case query.OpEq:
		return matchEq(doc, p.Field(), p.Value()), nil
	case query.OpNe:
		return !matchEq(doc, p.Field(), p.Value()), nil
	case query.OpIn:
		return matchIn(doc, p.Field(), p.Values()), nil
	case query.OpNin:
		return !matchIn(doc, p.Field(), p.Values()), nil
	case query.OpGte:
		return matchCompare(doc, p.Field(), p.Value(), func(c int) bool { return c >= 0 }), nil
	case query.OpLte:
		return matchCompare(doc, p.Field(), p.Value(), func(c int) bool { return c <= 0 }), nil
	case query.OpContains:
		return matchContains(doc, p.Field(), p.Value()), nil
	case query.OpElem:
		return matchElem(doc, p.Field(), p.Where())
	case query.OpNoElem:
		ok, err := matchElem(doc, p.Field(), p.Where())
		return !ok, err
	}
	return false, fmt.Errorf("unsupported predicate %q", p.Op())
}

func matchEq(doc bson.M, field string, value any) bool {
	values, found := lookup(doc, field)
	if !found {
		return canonical(value) == nil
	}
	for _, c := range candidates(values) {
		if equal(c, value) {
			return true
		}
	}
	return false
}

func matchIn(doc bson.M, field string, values []any) bool {
	for _, v := range values {
		if matchEq(doc, field, v) {
			return true
		}
	}
	return false
}

func matchCompare(doc bson.M, field string, value any, accept func(int) bool) bool {
	values, found := lookup(doc, field)
	if !found {
		return false
	}
	for _, c := range candidates(values) {
		if cmp, ok := compare(c, value); ok && accept(cmp) {
			return true
		}
	}
	return false
}

func matchContains(doc bson.M, field string, value any) bool {
	needle := strings.ToLower(fmt.Sprint(canonical(value)))
	values, found := lookup(doc, field)
	if !found {
		return false
	}
	for _, c := range candidates(values) {
		if s, ok := c.(string); ok && strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

func matchElem(doc bson.M, field string, where query.Predicate) (bool, error) {
	values, found := lookup(doc, field)
	if !found {
		return false, nil
	}
	for _, v := range values {
		arr, ok := v.(primitive.A)
		if !ok {
			continue
		}
		for _, el := range arr {
			m, ok := el.(bson.M)
			if !ok {
				continue
			}
			hit, err := matches(m, where)
			if err != nil {
				return false, err
			}
			if hit {
				return true, nil
			}
		}
	}
	return false, nil
}
