// Package mongo implements docstore.Collection on top of the official
// MongoDB driver.
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ivankudzin/matchcore/internal/domain/errs"
	"github.com/ivankudzin/matchcore/internal/domain/query"
	"github.com/ivankudzin/matchcore/internal/repo/docstore"
)

const defaultTimeout = 5 * time.Second

var _ docstore.Collection[struct{}] = (*Collection[struct{}])(nil)

type Collection[T any] struct {
	coll    *driver.Collection
	timeout time.Duration
}

// NewCollection wraps a driver collection. Every call runs under its own
// timeout so a stalled server surfaces as errs.ErrStoreUnavailable.
func NewCollection[T any](coll *driver.Collection, timeout time.Duration) *Collection[T] {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Collection[T]{coll: coll, timeout: timeout}
}

func (c *Collection[T]) Find(ctx context.Context, pred query.Predicate, opts ...docstore.FindOption) ([]T, error) {
	filter, err := Filter(pred)
	if err != nil {
		return nil, errs.Invalid("find: %v", err)
	}
	o := docstore.ApplyFindOptions(opts)
	findOpts := options.Find()
	if len(o.Sort) > 0 {
		findOpts.SetSort(SortDoc(o.Sort))
	}
	if !o.Projection.IsEmpty() {
		findOpts.SetProjection(ProjectionDoc(o.Projection))
	}
	if o.Limit > 0 {
		findOpts.SetLimit(int64(o.Limit))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cursor, err := c.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, c.mapErr("find", err)
	}
	items := make([]T, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, c.mapErr("find decode", err)
	}
	return items, nil
}

func (c *Collection[T]) FindOne(ctx context.Context, pred query.Predicate, opts ...docstore.FindOption) (T, error) {
	var out T
	filter, err := Filter(pred)
	if err != nil {
		return out, errs.Invalid("find one: %v", err)
	}
	o := docstore.ApplyFindOptions(opts)
	findOpts := options.FindOne()
	if len(o.Sort) > 0 {
		findOpts.SetSort(SortDoc(o.Sort))
	}
	if !o.Projection.IsEmpty() {
		findOpts.SetProjection(ProjectionDoc(o.Projection))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.coll.FindOne(ctx, filter, findOpts).Decode(&out); err != nil {
		return out, c.mapErr("find one", err)
	}
	return out, nil
}

func (c *Collection[T]) InsertOne(ctx context.Context, doc T) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return c.mapErr("insert", err)
	}
	return nil
}

func (c *Collection[T]) UpdateOne(ctx context.Context, pred query.Predicate, update query.Update) (bool, error) {
	if update.IsEmpty() {
		return false, nil
	}
	filter, doc, opts, err := c.updateArgs(pred, update)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.coll.UpdateOne(ctx, filter, doc, opts)
	if err != nil {
		return false, c.mapErr("update one", err)
	}
	return res.MatchedCount > 0, nil
}

func (c *Collection[T]) UpdateMany(ctx context.Context, pred query.Predicate, update query.Update) (int64, error) {
	if update.IsEmpty() {
		return 0, nil
	}
	filter, doc, opts, err := c.updateArgs(pred, update)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.coll.UpdateMany(ctx, filter, doc, opts)
	if err != nil {
		return 0, c.mapErr("update many", err)
	}
	return res.MatchedCount, nil
}

type facetResult[T any] struct {
	Total []struct {
		Count int64 `bson:"count"`
	} `bson:"total"`
	Items []T `bson:"items"`
}

func (c *Collection[T]) Aggregate(ctx context.Context, pred query.Predicate, sort []query.Sort, proj query.Projection, skip, limit int) (docstore.Page[T], error) {
	if limit <= 0 {
		return docstore.Page[T]{}, errs.Invalid("aggregate: limit must be positive")
	}
	if skip < 0 {
		return docstore.Page[T]{}, errs.Invalid("aggregate: skip must not be negative")
	}
	filter, err := Filter(pred)
	if err != nil {
		return docstore.Page[T]{}, errs.Invalid("aggregate: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cursor, err := c.coll.Aggregate(ctx, facetPipeline(filter, sort, proj, skip, limit))
	if err != nil {
		return docstore.Page[T]{}, c.mapErr("aggregate", err)
	}
	var results []facetResult[T]
	if err := cursor.All(ctx, &results); err != nil {
		return docstore.Page[T]{}, c.mapErr("aggregate decode", err)
	}

	page := docstore.Page[T]{Items: []T{}}
	if len(results) == 0 {
		return page, nil
	}
	if len(results[0].Total) > 0 {
		page.Total = results[0].Total[0].Count
	}
	if results[0].Items != nil {
		page.Items = results[0].Items
	}
	return page, nil
}

func (c *Collection[T]) DeleteOne(ctx context.Context, pred query.Predicate) (bool, error) {
	filter, err := Filter(pred)
	if err != nil {
		return false, errs.Invalid("delete one: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.coll.DeleteOne(ctx, filter)
	if err != nil {
		return false, c.mapErr("delete one", err)
	}
	return res.DeletedCount > 0, nil
}

func (c *Collection[T]) DeleteMany(ctx context.Context, pred query.Predicate) (int64, error) {
	filter, err := Filter(pred)
	if err != nil {
		return 0, errs.Invalid("delete many: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, c.mapErr("delete many", err)
	}
	return res.DeletedCount, nil
}

func (c *Collection[T]) updateArgs(pred query.Predicate, update query.Update) (bson.D, bson.D, *options.UpdateOptions, error) {
	filter, err := Filter(pred)
	if err != nil {
		return nil, nil, nil, errs.Invalid("update: %v", err)
	}
	doc, arrayFilters, err := UpdateDoc(update)
	if err != nil {
		return nil, nil, nil, errs.Invalid("update: %v", err)
	}
	opts := options.Update()
	if len(arrayFilters) > 0 {
		opts.SetArrayFilters(options.ArrayFilters{Filters: arrayFilters})
	}
	return filter, doc, opts, nil
}

func (c *Collection[T]) mapErr(op string, err error) error {
	name := c.coll.Name()
	switch {
	case errors.Is(err, driver.ErrNoDocuments):
		return errs.NotFound("%s %s", name, op)
	case driver.IsDuplicateKeyError(err):
		return errs.Invalid("%s %s: duplicate key", name, op)
	}
	return errs.Store(name+" "+op, err)
}
