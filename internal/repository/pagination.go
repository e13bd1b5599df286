package repository

import "strings"

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// PageRequest carries pagination, sorting and filtering input for list
// queries. Zero values fall back to the defaults during Normalize.
type PageRequest struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	// Order is a raw order clause. When set it wins over SortBy/SortOrder.
	Order string
	// Search is free text consumed by a repository's search scope.
	Search string
	// Filters is an opaque bag consumed by a repository's search scope.
	Filters map[string]any
}

// Normalize clamps the request to valid pagination values.
func (r PageRequest) Normalize() PageRequest {
	if r.Page < 1 {
		r.Page = DefaultPage
	}
	if r.Limit < 1 {
		r.Limit = DefaultLimit
	}
	r.SortBy = strings.TrimSpace(r.SortBy)
	r.SortOrder = strings.ToLower(strings.TrimSpace(r.SortOrder))
	if r.SortOrder != "desc" {
		r.SortOrder = "asc"
	}
	return r
}

// Offset returns the row offset for the normalized request.
func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

// PageResponse is one page of results plus derived pagination facts.
// TotalPages, HasNext and HasPrev are always computed from Total and the
// request, never stored independently.
type PageResponse[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPageResponse derives a response from the items, total count and the
// normalized request.
func NewPageResponse[T any](items []T, total int64, req PageRequest) PageResponse[T] {
	req = req.Normalize()
	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	if items == nil {
		items = []T{}
	}
	return PageResponse[T]{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
		HasNext:    req.Page < totalPages,
		HasPrev:    req.Page > 1 && total > 0,
	}
}
