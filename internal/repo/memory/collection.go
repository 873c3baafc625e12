// Package memory is an in-process document store with the query semantics
// of the mongo store. It backs tests and single-node development runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ivankudzin/matchcore/internal/domain/errs"
	"github.com/ivankudzin/matchcore/internal/domain/query"
	"github.com/ivankudzin/matchcore/internal/repo/docstore"
)

var _ docstore.Collection[struct{}] = (*Collection[struct{}])(nil)

type Collection[T any] struct {
	name   string
	unique []string

	mu      sync.RWMutex
	docs    []bson.M
	failure error
}

// NewCollection creates an empty collection. unique lists fields whose
// values must not repeat across documents.
func NewCollection[T any](name string, unique ...string) *Collection[T] {
	return &Collection[T]{name: name, unique: unique}
}

// SetFailure makes every call fail as an unavailable store until it is
// reset with nil.
func (c *Collection[T]) SetFailure(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failure = err
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

func (c *Collection[T]) Find(ctx context.Context, pred query.Predicate, opts ...docstore.FindOption) ([]T, error) {
	const op = "find"
	if err := c.check(ctx, op); err != nil {
		return nil, err
	}
	o := docstore.ApplyFindOptions(opts)

	c.mu.RLock()
	hits, err := c.filter(pred)
	c.mu.RUnlock()
	if err != nil {
		return nil, describe(op, err)
	}

	sortDocs(hits, o.Sort)
	if o.Limit > 0 && len(hits) > o.Limit {
		hits = hits[:o.Limit]
	}
	return decodeAll[T](hits, o.Projection)
}

func (c *Collection[T]) FindOne(ctx context.Context, pred query.Predicate, opts ...docstore.FindOption) (T, error) {
	var zero T
	opts = append(opts, docstore.WithLimit(1))
	items, err := c.Find(ctx, pred, opts...)
	if err != nil {
		return zero, err
	}
	if len(items) == 0 {
		return zero, errs.NotFound("%s: no document matches %s", c.name, pred)
	}
	return items[0], nil
}

func (c *Collection[T]) InsertOne(ctx context.Context, doc T) error {
	const op = "insert"
	if err := c.check(ctx, op); err != nil {
		return err
	}
	stored, err := toDoc(doc)
	if err != nil {
		return describe(op, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, field := range c.unique {
		v, ok := stored[field]
		if !ok {
			continue
		}
		for _, existing := range c.docs {
			if equal(existing[field], v) {
				return errs.Invalid("%s: duplicate %s", c.name, field)
			}
		}
	}
	c.docs = append(c.docs, stored)
	return nil
}

func (c *Collection[T]) UpdateOne(ctx context.Context, pred query.Predicate, update query.Update) (bool, error) {
	n, err := c.update(ctx, "update one", pred, update, 1)
	return n > 0, err
}

func (c *Collection[T]) UpdateMany(ctx context.Context, pred query.Predicate, update query.Update) (int64, error) {
	return c.update(ctx, "update many", pred, update, 0)
}

func (c *Collection[T]) update(ctx context.Context, op string, pred query.Predicate, update query.Update, limit int) (int64, error) {
	if update.IsEmpty() {
		return 0, nil
	}
	if err := c.check(ctx, op); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var matched int64
	next := make([]bson.M, len(c.docs))
	copy(next, c.docs)
	for i, doc := range c.docs {
		if limit > 0 && matched >= int64(limit) {
			break
		}
		ok, err := matches(doc, pred)
		if err != nil {
			return 0, describe(op, err)
		}
		if !ok {
			continue
		}
		updated, err := apply(doc, update)
		if err != nil {
			return 0, describe(op, err)
		}
		next[i] = updated
		matched++
	}
	c.docs = next
	return matched, nil
}

func (c *Collection[T]) Aggregate(ctx context.Context, pred query.Predicate, sortBy []query.Sort, proj query.Projection, skip, limit int) (docstore.Page[T], error) {
	const op = "aggregate"
	if limit <= 0 {
		return docstore.Page[T]{}, errs.Invalid("%s: limit must be positive", c.name)
	}
	if skip < 0 {
		return docstore.Page[T]{}, errs.Invalid("%s: skip must not be negative", c.name)
	}
	if err := c.check(ctx, op); err != nil {
		return docstore.Page[T]{}, err
	}

	c.mu.RLock()
	hits, err := c.filter(pred)
	c.mu.RUnlock()
	if err != nil {
		return docstore.Page[T]{}, describe(op, err)
	}

	total := int64(len(hits))
	sortDocs(hits, sortBy)
	if skip >= len(hits) {
		hits = nil
	} else {
		hits = hits[skip:]
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}

	items, err := decodeAll[T](hits, proj)
	if err != nil {
		return docstore.Page[T]{}, err
	}
	return docstore.Page[T]{Total: total, Items: items}, nil
}

func (c *Collection[T]) DeleteOne(ctx context.Context, pred query.Predicate) (bool, error) {
	n, err := c.delete(ctx, "delete one", pred, 1)
	return n > 0, err
}

func (c *Collection[T]) DeleteMany(ctx context.Context, pred query.Predicate) (int64, error) {
	return c.delete(ctx, "delete many", pred, 0)
}

func (c *Collection[T]) delete(ctx context.Context, op string, pred query.Predicate, limit int) (int64, error) {
	if err := c.check(ctx, op); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int64
	kept := make([]bson.M, 0, len(c.docs))
	for _, doc := range c.docs {
		if limit > 0 && removed >= int64(limit) {
			kept = append(kept, doc)
			continue
		}
		ok, err := matches(doc, pred)
		if err != nil {
			return 0, describe(op, err)
		}
		if ok {
			removed++
			continue
		}
		kept = append(kept, doc)
	}
	c.docs = kept
	return removed, nil
}

func (c *Collection[T]) check(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return errs.Store(c.name+" "+op, err)
	}
	c.mu.RLock()
	failure := c.failure
	c.mu.RUnlock()
	if failure != nil {
		return errs.Store(c.name+" "+op, failure)
	}
	return nil
}

// filter must run under the read lock. Matching documents are returned in
// insertion order.
func (c *Collection[T]) filter(pred query.Predicate) ([]bson.M, error) {
	out := make([]bson.M, 0)
	for _, doc := range c.docs {
		ok, err := matches(doc, pred)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

func sortDocs(docs []bson.M, keys []query.Sort) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, key := range keys {
			cmp, _ := compare(sortValue(docs[i], key), sortValue(docs[j], key))
			if cmp == 0 {
				continue
			}
			if key.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func sortValue(doc bson.M, key query.Sort) any {
	values, found := lookup(doc, key.Field)
	if !found || len(values) == 0 {
		return nil
	}
	return values[0]
}

func decodeAll[T any](docs []bson.M, proj query.Projection) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		item, err := fromDoc[T](project(doc, proj))
		if err != nil {
			return nil, describe("decode", err)
		}
		out = append(out, item)
	}
	return out, nil
}
