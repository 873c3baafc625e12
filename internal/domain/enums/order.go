package enums

import "strings"

type OrderBy string

const (
	OrderByCreatedOn  OrderBy = "CreatedOn"
	OrderByUpdatedOn  OrderBy = "UpdatedOn"
	OrderByLastActive OrderBy = "LastActive"
	OrderByName       OrderBy = "Name"
)

// ParseOrderBy is case-insensitive; unknown values fall back to CreatedOn.
func ParseOrderBy(raw string) OrderBy {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "updatedon":
		return OrderByUpdatedOn
	case "lastactive":
		return OrderByLastActive
	case "name":
		return OrderByName
	default:
		return OrderByCreatedOn
	}
}

type SortDirection string

const (
	SortDefault    SortDirection = ""
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

func ParseSortDirection(raw string) SortDirection {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "asc", "ascending":
		return SortAscending
	case "desc", "descending":
		return SortDescending
	default:
		return SortDefault
	}
}

type BookmarkDirection string

const (
	BookmarkOutgoing BookmarkDirection = "outgoing"
	BookmarkIncoming BookmarkDirection = "incoming"
)

type ComplaintContext string

const (
	ComplaintContextProfile ComplaintContext = "profile"
	ComplaintContextGroup   ComplaintContext = "group"
)
