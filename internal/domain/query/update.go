package query

type UpdateKind string

const (
	UpdateSet      UpdateKind = "set"
	UpdateUnset    UpdateKind = "unset"
	UpdatePush     UpdateKind = "push"
	UpdateAddToSet UpdateKind = "add_to_set"
	UpdatePull     UpdateKind = "pull"
	UpdatePullAll  UpdateKind = "pull_all"

	UpdateSetEach   UpdateKind = "set_each"
	UpdateUnsetEach UpdateKind = "unset_each"
)

// UpdateOp is one field-level mutation. Every op targets a single field so a
// store applies an Update as targeted upserts, never a document replace.
type UpdateOp struct {
	Kind   UpdateKind
	Field  string
	Value  any
	Values []any
	Where  Predicate
	// Path is relative to an array element; used by SetEach and UnsetEach.
	Path string
}

// Update is an ordered, immutable list of field mutations. Builder methods
// return a copy.
type Update struct {
	ops []UpdateOp
}

func NewUpdate() Update { return Update{} }

func (u Update) Set(field string, value any) Update {
	return u.with(UpdateOp{Kind: UpdateSet, Field: field, Value: value})
}

func (u Update) Unset(field string) Update {
	return u.with(UpdateOp{Kind: UpdateUnset, Field: field})
}

// Push appends values to an array field.
func (u Update) Push(field string, values ...any) Update {
	return u.with(UpdateOp{Kind: UpdatePush, Field: field, Values: values})
}

// AddToSet appends the values that the array does not already hold.
func (u Update) AddToSet(field string, values ...any) Update {
	return u.with(UpdateOp{Kind: UpdateAddToSet, Field: field, Values: values})
}

// Pull removes every array element (a sub-document) matching where.
func (u Update) Pull(field string, where Predicate) Update {
	return u.with(UpdateOp{Kind: UpdatePull, Field: field, Where: where})
}

// PullAll removes every array element equal to one of values.
func (u Update) PullAll(field string, values ...any) Update {
	return u.with(UpdateOp{Kind: UpdatePullAll, Field: field, Values: values})
}

// SetEach sets path inside every element of the array field that matches
// where. Elements are selected against the document as it was before the
// update, so two SetEach ops with complementary filters swap a value.
func (u Update) SetEach(field string, where Predicate, path string, value any) Update {
	return u.with(UpdateOp{Kind: UpdateSetEach, Field: field, Where: where, Path: path, Value: value})
}

// UnsetEach removes path from every element of the array field that
// matches where.
func (u Update) UnsetEach(field string, where Predicate, path string) Update {
	return u.with(UpdateOp{Kind: UpdateUnsetEach, Field: field, Where: where, Path: path})
}

func (u Update) Ops() []UpdateOp { return u.ops }

func (u Update) IsEmpty() bool { return len(u.ops) == 0 }

func (u Update) with(op UpdateOp) Update {
	ops := make([]UpdateOp, 0, len(u.ops)+1)
	ops = append(ops, u.ops...)
	ops = append(ops, op)
	return Update{ops: ops}
}

// Strings converts a typed slice for the variadic any arguments of Push,
// AddToSet and PullAll.
func Strings(values []string) []any {
	return toAny(values)
}
