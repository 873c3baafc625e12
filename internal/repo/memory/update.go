package memory

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ivankudzin/matchcore/internal/domain/errs"
	"github.com/ivankudzin/matchcore/internal/domain/query"
)

// apply runs the update against a copy of doc; the original is untouched
// when any op fails.
func apply(doc bson.M, update query.Update) (bson.M, error) {
	out := flatten(doc).(bson.M)
	for _, op := range update.Ops() {
		var err error
		switch op.Kind {
		case query.UpdateSetEach, query.UpdateUnsetEach:
			err = applyEach(out, doc, op)
		default:
			err = applyOp(out, op)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// applyEach selects array elements in the original document and writes to
// the same positions in out.
func applyEach(out, original bson.M, op query.UpdateOp) error {
	if op.Where.IsTrue() {
		return errs.Invalid("element update on %q needs a filter", op.Field)
	}
	srcParent, leaf, err := parentOf(original, op.Field, false)
	if err != nil || srcParent == nil {
		return err
	}
	before, err := arrayAt(srcParent, leaf, op.Field)
	if err != nil {
		return err
	}
	dstParent, leaf, err := parentOf(out, op.Field, false)
	if err != nil || dstParent == nil {
		return err
	}
	after, err := arrayAt(dstParent, leaf, op.Field)
	if err != nil {
		return err
	}

	for i, el := range before {
		m, ok := el.(bson.M)
		if !ok || i >= len(after) {
			continue
		}
		hit, err := matches(m, op.Where)
		if err != nil {
			return err
		}
		target, ok := after[i].(bson.M)
		if !hit || !ok {
			continue
		}
		parent, key, err := parentOf(target, op.Path, op.Kind == query.UpdateSetEach)
		if err != nil {
			return err
		}
		if parent == nil {
			continue
		}
		if op.Kind == query.UpdateUnsetEach {
			delete(parent, key)
			continue
		}
		v, err := storedValue(op.Value)
		if err != nil {
			return err
		}
		parent[key] = v
	}
	return nil
}

func applyOp(doc bson.M, op query.UpdateOp) error {
	parent, leaf, err := parentOf(doc, op.Field, op.Kind != query.UpdateUnset)
	if err != nil {
		return err
	}
	if parent == nil {
		return nil
	}

	switch op.Kind {
	case query.UpdateSet:
		v, err := storedValue(op.Value)
		if err != nil {
			return err
		}
		parent[leaf] = v
		return nil
	case query.UpdateUnset:
		delete(parent, leaf)
		return nil
	}

	arr, err := arrayAt(parent, leaf, op.Field)
	if err != nil {
		return err
	}

	switch op.Kind {
	case query.UpdatePush:
		for _, v := range op.Values {
			stored, err := storedValue(v)
			if err != nil {
				return err
			}
			arr = append(arr, stored)
		}
	case query.UpdateAddToSet:
		for _, v := range op.Values {
			stored, err := storedValue(v)
			if err != nil {
				return err
			}
			if !containsValue(arr, stored) {
				arr = append(arr, stored)
			}
		}
	case query.UpdatePull:
		kept := make(primitive.A, 0, len(arr))
		for _, el := range arr {
			m, ok := el.(bson.M)
			if ok {
				hit, err := matches(m, op.Where)
				if err != nil {
					return err
				}
				if hit {
					continue
				}
			}
			kept = append(kept, el)
		}
		arr = kept
	case query.UpdatePullAll:
		kept := make(primitive.A, 0, len(arr))
		for _, el := range arr {
			if !containsValue(op.Values, el) {
				kept = append(kept, el)
			}
		}
		arr = kept
	default:
		return errs.Invalid("unsupported update %q", op.Kind)
	}
	parent[leaf] = arr
	return nil
}

// parentOf walks to the document holding the last path segment, creating
// intermediate documents when create is set. A nil parent with no error
// means the path does not exist and there is nothing to do.
func parentOf(doc bson.M, path string, create bool) (bson.M, string, error) {
	segments := strings.Split(path, ".")
	current := doc
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment]
		if !ok || next == nil {
			if !create {
				return nil, "", nil
			}
			child := bson.M{}
			current[segment] = child
			current = child
			continue
		}
		child, ok := next.(bson.M)
		if !ok {
			return nil, "", errs.Invalid("cannot traverse %q in %q", segment, path)
		}
		current = child
	}
	return current, segments[len(segments)-1], nil
}

func arrayAt(parent bson.M, leaf, path string) (primitive.A, error) {
	v, ok := parent[leaf]
	if !ok || v == nil {
		return primitive.A{}, nil
	}
	arr, ok := v.(primitive.A)
	if !ok {
		return nil, errs.Invalid("field %q is not an array", path)
	}
	return arr, nil
}

func containsValue(values []any, v any) bool {
	for _, candidate := range values {
		if equal(candidate, v) {
			return true
		}
	}
	return false
}

func project(doc bson.M, proj query.Projection) bson.M {
	if proj.IsEmpty() {
		return doc
	}
	out := flatten(doc).(bson.M)
	for _, field := range proj.Exclude {
		parent, leaf, err := parentOf(out, field, false)
		if err != nil || parent == nil {
			continue
		}
		delete(parent, leaf)
	}
	return out
}

func describe(op string, err error) error {
	return fmt.Errorf("memory %s: %w", op, err)
}
