package entities

// PageRequest is a 1-based page selection.
type PageRequest struct {
	Page     int
	PageSize int
}

func (p PageRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

type Page[T any] struct {
	Records    []T `json:"records"`
	TotalCount int `json:"total_count"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

func NewPage[T any](records []T, total int, req PageRequest) Page[T] {
	if records == nil {
		records = []T{}
	}
	pages := 0
	if req.PageSize > 0 {
		pages = (total + req.PageSize - 1) / req.PageSize
	}
	return Page[T]{
		Records:    records,
		TotalCount: total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: pages,
	}
}
