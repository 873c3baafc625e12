package rules

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// PageWindow clamps the page request and returns the skip/limit window.
// The skip is pageIndex*pageSize with index 0 addressing the start, so
// page 1 starts after one full page; callers depend on this offset and it
// is kept as is. Negative indexes clamp to 0.
func PageWindow(pageIndex, pageSize, defaultSize, maxSize int) (int, int) {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	if maxSize <= 0 {
		maxSize = MaxPageSize
	}
	if pageSize <= 0 {
		pageSize = defaultSize
	}
	if pageSize > maxSize {
		pageSize = maxSize
	}
	if pageIndex < 0 {
		pageIndex = 0
	}

	skip := 0
	if pageIndex != 0 {
		skip = pageIndex * pageSize
	}
	return skip, pageSize
}
