package mongo

import (
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ivankudzin/matchcore/internal/domain/query"
)

// Filter renders a predicate as a query document. Conjunctions over distinct
// fields collapse into one document; anything else goes through $and.
func Filter(p query.Predicate) (bson.D, error) {
	switch p.Op() {
	case query.OpTrue:
		return bson.D{}, nil
	case query.OpAnd:
		return conjunction(p.Clauses())
	}
	elem, err := clause(p)
	if err != nil {
		return nil, err
	}
	return bson.D{elem}, nil
}

func conjunction(clauses []query.Predicate) (bson.D, error) {
	seen := make(map[string]struct{}, len(clauses))
	merged := make(bson.D, 0, len(clauses))
	distinct := true
	for _, c := range clauses {
		elem, err := clause(c)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[elem.Key]; ok {
			distinct = false
		}
		seen[elem.Key] = struct{}{}
		merged = append(merged, elem)
	}
	if distinct {
		return merged, nil
	}

	parts := make(bson.A, 0, len(merged))
	for _, elem := range merged {
		parts = append(parts, bson.D{elem})
	}
	return bson.D{{Key: "$and", Value: parts}}, nil
}

func clause(p query.Predicate) (bson.E, error) {
	field := p.Field()
	switch p.Op() {
	case query.OpEq:
		return bson.E{Key: field, Value: bson.D{{Key: "$eq", Value: p.Value()}}}, nil
	case query.OpNe:
		return bson.E{Key: field, Value: bson.D{{Key: "$ne", Value: p.Value()}}}, nil
	case query.OpIn:
		return bson.E{Key: field, Value: bson.D{{Key: "$in", Value: bson.A(p.Values())}}}, nil
	case query.OpNin:
		return bson.E{Key: field, Value: bson.D{{Key: "$nin", Value: bson.A(p.Values())}}}, nil
	case query.OpGte:
		return bson.E{Key: field, Value: bson.D{{Key: "$gte", Value: p.Value()}}}, nil
	case query.OpLte:
		return bson.E{Key: field, Value: bson.D{{Key: "$lte", Value: p.Value()}}}, nil
	case query.OpContains:
		pattern := regexp.QuoteMeta(fmt.Sprint(p.Value()))
		return bson.E{Key: field, Value: primitive.Regex{Pattern: pattern, Options: "i"}}, nil
	case query.OpElem, query.OpNoElem:
		where, err := Filter(p.Where())
		if err != nil {
			return bson.E{}, err
		}
		match := bson.D{{Key: "$elemMatch", Value: where}}
		if p.Op() == query.OpNoElem {
			return bson.E{Key: field, Value: bson.D{{Key: "$not", Value: match}}}, nil
		}
		return bson.E{Key: field, Value: match}, nil
	}
	return bson.E{}, fmt.Errorf("unsupported predicate %q", p.Op())
}

var updateOperators = map[query.UpdateKind]string{
	query.UpdateSet:       "$set",
	query.UpdateUnset:     "$unset",
	query.UpdatePush:      "$push",
	query.UpdateAddToSet:  "$addToSet",
	query.UpdatePull:      "$pull",
	query.UpdatePullAll:   "$pullAll",
	query.UpdateSetEach:   "$set",
	query.UpdateUnsetEach: "$unset",
}

// UpdateDoc renders field mutations grouped by operator, keeping the order
// in which operators first appear. Element ops become filtered positional
// paths ("bookmarks.$[e0].blocked"); their array filters are returned in
// identifier order.
func UpdateDoc(u query.Update) (bson.D, []any, error) {
	var (
		order   []string
		groups  = map[string]bson.D{}
		filters []any
	)
	for _, op := range u.Ops() {
		operator, ok := updateOperators[op.Kind]
		if !ok {
			return nil, nil, fmt.Errorf("unsupported update %q", op.Kind)
		}
		key := op.Field
		var value any
		switch op.Kind {
		case query.UpdateSet:
			value = op.Value
		case query.UpdateUnset:
			value = ""
		case query.UpdatePush, query.UpdateAddToSet:
			value = bson.D{{Key: "$each", Value: bson.A(op.Values)}}
		case query.UpdatePull:
			where, err := Filter(op.Where)
			if err != nil {
				return nil, nil, err
			}
			value = where
		case query.UpdatePullAll:
			value = bson.A(op.Values)
		case query.UpdateSetEach, query.UpdateUnsetEach:
			ident := fmt.Sprintf("e%d", len(filters))
			filter, err := arrayFilter(ident, op.Where)
			if err != nil {
				return nil, nil, err
			}
			filters = append(filters, filter)
			key = op.Field + ".$[" + ident + "]." + op.Path
			value = op.Value
			if op.Kind == query.UpdateUnsetEach {
				value = ""
			}
		}
		if _, ok := groups[operator]; !ok {
			order = append(order, operator)
		}
		groups[operator] = append(groups[operator], bson.E{Key: key, Value: value})
	}

	out := make(bson.D, 0, len(order))
	for _, operator := range order {
		out = append(out, bson.E{Key: operator, Value: groups[operator]})
	}
	return out, filters, nil
}

// arrayFilter renders an element predicate with every field qualified by
// the identifier.
func arrayFilter(ident string, where query.Predicate) (bson.D, error) {
	doc, err := Filter(where)
	if err != nil {
		return nil, err
	}
	if len(doc) == 0 {
		return nil, fmt.Errorf("array filter %s has no condition", ident)
	}
	return qualify(doc, ident), nil
}

func qualify(doc bson.D, ident string) bson.D {
	out := make(bson.D, 0, len(doc))
	for _, e := range doc {
		if parts, ok := e.Value.(bson.A); ok && e.Key == "$and" {
			next := make(bson.A, 0, len(parts))
			for _, part := range parts {
				if d, ok := part.(bson.D); ok {
					next = append(next, qualify(d, ident))
				}
			}
			out = append(out, bson.E{Key: e.Key, Value: next})
			continue
		}
		out = append(out, bson.E{Key: ident + "." + e.Key, Value: e.Value})
	}
	return out
}

func SortDoc(sort []query.Sort) bson.D {
	out := make(bson.D, 0, len(sort))
	for _, s := range sort {
		dir := 1
		if s.Desc {
			dir = -1
		}
		out = append(out, bson.E{Key: s.Field, Value: dir})
	}
	return out
}

func ProjectionDoc(p query.Projection) bson.D {
	out := make(bson.D, 0, len(p.Exclude))
	for _, f := range p.Exclude {
		out = append(out, bson.E{Key: f, Value: 0})
	}
	return out
}

// facetPipeline counts and pages in one round trip.
func facetPipeline(filter bson.D, sort []query.Sort, proj query.Projection, skip, limit int) []bson.D {
	items := bson.A{}
	if len(sort) > 0 {
		items = append(items, bson.D{{Key: "$sort", Value: SortDoc(sort)}})
	}
	items = append(items,
		bson.D{{Key: "$skip", Value: int64(skip)}},
		bson.D{{Key: "$limit", Value: int64(limit)}},
	)
	if !proj.IsEmpty() {
		items = append(items, bson.D{{Key: "$project", Value: ProjectionDoc(proj)}})
	}

	return []bson.D{
		bson.D{{Key: "$match", Value: filter}},
		bson.D{{Key: "$facet", Value: bson.D{
			{Key: "total", Value: bson.A{bson.D{{Key: "$count", Value: "count"}}}},
			{Key: "items", Value: items},
		}}},
	}
}
