// Package query is the store-neutral predicate, ordering, projection and
// mutation language the engine speaks to a document store. Field names are
// the stored (bson) names of the document fields; dotted paths address
// nested documents.
package query

import "strings"

type Op string

const (
	OpTrue     Op = "true"
	OpEq       Op = "eq"
	OpNe       Op = "ne"
	OpIn       Op = "in"
	OpNin      Op = "nin"
	OpGte      Op = "gte"
	OpLte      Op = "lte"
	OpContains Op = "contains"
	OpElem     Op = "elem"
	OpNoElem   Op = "no_elem"
	OpAnd      Op = "and"
)

// Predicate is an immutable boolean expression over a document. The zero
// value is the universal predicate.
type Predicate struct {
	op       Op
	field    string
	value    any
	values   []any
	children []Predicate
}

func True() Predicate { return Predicate{op: OpTrue} }

// Eq matches when the field equals value. On array fields it matches when
// any element equals value.
func Eq(field string, value any) Predicate {
	return Predicate{op: OpEq, field: field, value: value}
}

// Ne is the negation of Eq: on array fields no element may equal value.
func Ne(field string, value any) Predicate {
	return Predicate{op: OpNe, field: field, value: value}
}

func In[T any](field string, values ...T) Predicate {
	return Predicate{op: OpIn, field: field, values: toAny(values)}
}

func Nin[T any](field string, values ...T) Predicate {
	return Predicate{op: OpNin, field: field, values: toAny(values)}
}

func Gte(field string, value any) Predicate {
	return Predicate{op: OpGte, field: field, value: value}
}

func Lte(field string, value any) Predicate {
	return Predicate{op: OpLte, field: field, value: value}
}

// Contains is a case-insensitive substring match on a string field.
func Contains(field, substr string) Predicate {
	return Predicate{op: OpContains, field: field, value: substr}
}

// ElemMatch matches when at least one element of the array field satisfies
// where. Field names inside where are relative to the element.
func ElemMatch(field string, where Predicate) Predicate {
	return Predicate{op: OpElem, field: field, children: []Predicate{where}}
}

// NoElemMatch matches when no element of the array field satisfies where.
func NoElemMatch(field string, where Predicate) Predicate {
	return Predicate{op: OpNoElem, field: field, children: []Predicate{where}}
}

// And flattens nested conjunctions and drops universal clauses, so And()
// with no effective clause is True().
func And(preds ...Predicate) Predicate {
	clauses := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		switch p.Op() {
		case OpTrue:
			continue
		case OpAnd:
			clauses = append(clauses, p.children...)
		default:
			clauses = append(clauses, p)
		}
	}
	switch len(clauses) {
	case 0:
		return True()
	case 1:
		return clauses[0]
	}
	return Predicate{op: OpAnd, children: clauses}
}

func (p Predicate) Op() Op {
	if p.op == "" {
		return OpTrue
	}
	return p.op
}

func (p Predicate) Field() string        { return p.field }
func (p Predicate) Value() any           { return p.value }
func (p Predicate) Values() []any        { return p.values }
func (p Predicate) Children() []Predicate { return p.children }
func (p Predicate) IsTrue() bool         { return p.Op() == OpTrue }

// Clauses returns the conjunctive clauses of p.
func (p Predicate) Clauses() []Predicate {
	switch p.Op() {
	case OpTrue:
		return nil
	case OpAnd:
		return p.children
	}
	return []Predicate{p}
}

// Where returns the element predicate of an ElemMatch/NoElemMatch clause.
func (p Predicate) Where() Predicate {
	if len(p.children) == 0 {
		return True()
	}
	return p.children[0]
}

func (p Predicate) String() string {
	var b strings.Builder
	p.write(&b)
	return b.String()
}

func (p Predicate) write(b *strings.Builder) {
	switch p.Op() {
	case OpTrue:
		b.WriteString("true")
	case OpAnd:
		b.WriteString("and(")
		for i, c := range p.children {
			if i > 0 {
				b.WriteString(", ")
			}
			c.write(b)
		}
		b.WriteString(")")
	case OpElem, OpNoElem:
		b.WriteString(string(p.op) + "(" + p.field + ", ")
		p.Where().write(b)
		b.WriteString(")")
	default:
		b.WriteString(string(p.op) + "(" + p.field + ")")
	}
}

func toAny[T any](values []T) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
