package memory

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// toDoc converts a typed document into its stored form: the bson encoding
// decoded back into bson.M, with every nested document as bson.M and every
// array as primitive.A.
func toDoc(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return flatten(doc).(bson.M), nil
}

func fromDoc[T any](doc bson.M) (T, error) {
	var out T
	raw, err := bson.Marshal(doc)
	if err != nil {
		return out, fmt.Errorf("marshal document: %w", err)
	}
	if err := bson.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}

// storedValue converts an arbitrary update operand into its stored form.
func storedValue(v any) (any, error) {
	doc, err := toDoc(bson.M{"v": v})
	if err != nil {
		return nil, err
	}
	return doc["v"], nil
}

func flatten(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(bson.M, len(t))
		for k, val := range t {
			out[k] = flatten(val)
		}
		return out
	case map[string]any:
		return flatten(bson.M(t))
	case bson.D:
		out := make(bson.M, len(t))
		for _, e := range t {
			out[e.Key] = flatten(e.Value)
		}
		return out
	case primitive.A:
		out := make(primitive.A, len(t))
		for i, val := range t {
			out[i] = flatten(val)
		}
		return out
	case []any:
		return flatten(primitive.A(t))
	}
	return v
}

// canonical maps a value onto the small set of comparable kinds the
// evaluator works with: float64, string, bool, time.Time (UTC, millisecond
// precision), bson.M, primitive.A and nil.
func canonical(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case bson.M, primitive.A:
		return t
	case bson.D, []any, map[string]any:
		return flatten(t)
	case primitive.DateTime:
		return t.Time().UTC().Truncate(time.Millisecond)
	case time.Time:
		return t.UTC().Truncate(time.Millisecond)
	case string:
		return t
	case bool:
		return t
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct:
		stored, err := storedValue(v)
		if err != nil {
			return v
		}
		return canonical(stored)
	}
	return v
}

func equal(a, b any) bool {
	a, b = canonical(a), canonical(b)
	switch x := a.(type) {
	case nil:
		return b == nil
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	case bson.M:
		y, ok := b.(bson.M)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !equal(xv, yv) {
				return false
			}
		}
		return true
	case primitive.A:
		y, ok := b.(primitive.A)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !equal(x[i], y[i]) {
				return false
			}
		}
		return true
	}
	return a == b
}

// typeRank follows the cross-type sort order of the server.
func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 1
	case float64:
		return 2
	case string:
		return 3
	case bson.M:
		return 4
	case primitive.A:
		return 5
	case bool:
		return 8
	case time.Time:
		return 9
	}
	return 10
}

// compare orders two canonical values; ok is false when they are of
// different kinds, in which case the result is the kind order.
func compare(a, b any) (int, bool) {
	a, b = canonical(a), canonical(b)
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1, false
		}
		return 1, false
	}
	switch x := a.(type) {
	case nil:
		return 0, true
	case float64:
		y := b.(float64)
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case string:
		return strings.Compare(x, b.(string)), true
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		}
		return 1, true
	case time.Time:
		return x.Compare(b.(time.Time)), true
	}
	if equal(a, b) {
		return 0, true
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b)), true
}
