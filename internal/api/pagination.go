package api

import "math"

// Pagination is the metadata returned with every list response. Totals are
// exact, computed over the full filtered set.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Paginate computes pagination metadata for a page/limit list request.
func Paginate(total, page, limit int) Pagination {
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

// Offset converts a 1-based page into a row offset.
func Offset(page, limit int) int {
	return (page - 1) * limit
}
