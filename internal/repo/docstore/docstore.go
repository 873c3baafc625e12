// Package docstore defines the document store contract the engine runs
// against. Implementations live in repo/mongo and repo/memory.
package docstore

import (
	"context"

	"github.com/ivankudzin/matchcore/internal/domain/query"
)

// Page is the result of a paginated aggregation: the number of documents
// matching the predicate and the requested window of them.
type Page[T any] struct {
	Total int64
	Items []T
}

// Collection is a typed collection of documents.
//
// Missing documents surface as errs.ErrNotFound, collaborator failures as
// errs.ErrStoreUnavailable (wrapping the cause).
type Collection[T any] interface {
	Find(ctx context.Context, pred query.Predicate, opts ...FindOption) ([]T, error)
	FindOne(ctx context.Context, pred query.Predicate, opts ...FindOption) (T, error)
	InsertOne(ctx context.Context, doc T) error
	// UpdateOne applies update to the first matching document and reports
	// whether one matched.
	UpdateOne(ctx context.Context, pred query.Predicate, update query.Update) (bool, error)
	// UpdateMany applies update to every matching document and reports how
	// many matched. An empty update is a no-op.
	UpdateMany(ctx context.Context, pred query.Predicate, update query.Update) (int64, error)
	// Aggregate counts the documents matching pred and returns the window
	// [skip, skip+limit) in sort order, in one round trip.
	Aggregate(ctx context.Context, pred query.Predicate, sort []query.Sort, proj query.Projection, skip, limit int) (Page[T], error)
	DeleteOne(ctx context.Context, pred query.Predicate) (bool, error)
	DeleteMany(ctx context.Context, pred query.Predicate) (int64, error)
}

type FindOptions struct {
	Projection query.Projection
	Sort       []query.Sort
	Limit      int
}

type FindOption func(*FindOptions)

func WithProjection(p query.Projection) FindOption {
	return func(o *FindOptions) { o.Projection = p }
}

func WithSort(sort ...query.Sort) FindOption {
	return func(o *FindOptions) { o.Sort = sort }
}

func WithLimit(limit int) FindOption {
	return func(o *FindOptions) { o.Limit = limit }
}

func ApplyFindOptions(opts []FindOption) FindOptions {
	var out FindOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&out)
		}
	}
	return out
}
