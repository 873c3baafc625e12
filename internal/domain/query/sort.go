package query

type Sort struct {
	Field string
	Desc  bool
}

func Asc(field string) Sort  { return Sort{Field: field} }
func Desc(field string) Sort { return Sort{Field: field, Desc: true} }

// Projection lists the fields a store must omit from returned documents.
type Projection struct {
	Exclude []string
}

func Excluding(fields ...string) Projection {
	return Projection{Exclude: fields}
}

func (p Projection) IsEmpty() bool { return len(p.Exclude) == 0 }
