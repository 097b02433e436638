package query

// OrderKey is one sort key of an ordering.
type OrderKey struct {
	Field      string
	Descending bool
}

// OrderSpec is a deterministic ordering: primary key first, then tie-breaks.
type OrderSpec struct {
	Keys []OrderKey
}

// ResolveOrdering maps the raw sortBy/sortOrder parameters onto a whitelisted
// ordering. Score sorts always carry the original_id ascending tie-break so
// page boundaries stay stable when many records share a score. The age sort
// keeps the source system's single-key behavior.
func ResolveOrdering(sortBy, sortOrder string) OrderSpec {
	desc := sortOrder != "asc"

	switch sortBy {
	case "age":
		return OrderSpec{Keys: []OrderKey{
			{Field: "age", Descending: desc},
		}}
	case "score":
		return OrderSpec{Keys: []OrderKey{
			{Field: "score", Descending: desc},
			{Field: "original_id"},
		}}
	default:
		return OrderSpec{Keys: []OrderKey{
			{Field: "score", Descending: true},
			{Field: "original_id"},
		}}
	}
}

// Page is the resolved offset/limit window.
type Page struct {
	Number int
	Limit  int
	Offset int
}

// ResolvePage coerces page/limit to a safe window: page floors at 1, limit is
// clamped to [1, maxLimit] regardless of client input.
func ResolvePage(page, limit, maxLimit int) Page {
	if page < 1 {
		page = 1
	}
	if maxLimit < 1 {
		maxLimit = 1
	}
	if limit < 1 {
		limit = maxLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Page{
		Number: page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// PageMeta is the pagination envelope computed from a total row count.
type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"total_count"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// ResolvePageMeta derives totalPages/hasNext/hasPrev for a resolved page.
func ResolvePageMeta(p Page, total int64) PageMeta {
	totalPages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return PageMeta{
		Page:       p.Number,
		Limit:      p.Limit,
		TotalCount: total,
		TotalPages: totalPages,
		HasNext:    p.Number < totalPages,
		HasPrev:    p.Number > 1,
	}
}
