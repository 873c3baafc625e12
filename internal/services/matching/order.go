package matching

import (
	"github.com/ivankudzin/matchcore/internal/domain/enums"
	"github.com/ivankudzin/matchcore/internal/domain/model"
	"github.com/ivankudzin/matchcore/internal/domain/query"
)

// Order resolves the sort keys of a query. Name ordering is honoured only
// for name-scoped queries; elsewhere it falls back to CreatedOn. The
// profile id breaks ties so page windows are stable.
func Order(p model.ParameterFilter, nameScoped bool) []query.Sort {
	field, desc := model.FieldCreatedOn, true
	switch p.OrderBy {
	case enums.OrderByName:
		if nameScoped {
			field, desc = model.FieldName, false
		}
	case enums.OrderByUpdatedOn:
		field = model.FieldUpdatedOn
	case enums.OrderByLastActive:
		field = model.FieldLastActive
	}

	switch p.SortDirection {
	case enums.SortAscending:
		desc = false
	case enums.SortDescending:
		desc = true
	}

	return []query.Sort{
		{Field: field, Desc: desc},
		query.Asc(model.FieldProfileID),
	}
}
