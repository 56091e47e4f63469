package domain

// PaginationParams carries page/limit values from the HTTP layer.
// Page is 1-indexed. Limit is capped at 100 by NewPaginationParams.
//
// Trip search paginates collapsed groups, not raw instances: a recurring
// series counts as one entry no matter how many dated rows back it, so the
// slice is taken after CollapseTrips has run.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of entries to return.
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional HTTP query params.
// Nil pointers fall back to sane defaults (page=1, limit=20).
// The limit is capped at 100 to prevent runaway queries.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: 20}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = *limit
		if p.Limit > 100 {
			p.Limit = 100
		}
	}
	return p
}

// PageOf returns the slice of groups covered by p. A page past the end of
// the input returns an empty, non-nil slice so handlers always encode a
// JSON array.
func PageOf(groups []TripGroup, p PaginationParams) []TripGroup {
	start := (p.Page - 1) * p.Limit
	if start >= len(groups) {
		return []TripGroup{}
	}
	end := start + p.Limit
	if end > len(groups) {
		end = len(groups)
	}
	return groups[start:end]
}
