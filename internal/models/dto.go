package models

import "math"

// Response is the uniform envelope returned by every endpoint.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Payload any    `json:"payload"`
}

func OK(message string, payload any) Response {
	return Response{Success: true, Message: message, Payload: payload}
}

func Fail(message string) Response {
	return Response{Success: false, Message: message, Payload: nil}
}

// ===== PAGINATION =====

// Pagination carries the page math shared by every list endpoint.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination normalizes (page, limit) to the (1, 10) defaults and
// computes total pages as ceil(totalItems/limit). A page past the end is
// left as-is: the data query simply returns an empty slice while the
// totals stay truthful.
func NewPagination(page, limit int, totalItems int64) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		TotalItems: totalItems,
		TotalPages: int(math.Ceil(float64(totalItems) / float64(limit))),
	}
}

// Offset returns the row offset for the data query.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PagedList is the payload shape for list endpoints.
type PagedList struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}
