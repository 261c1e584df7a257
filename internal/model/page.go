package model

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

// PageRequest is a 1-based page with a bounded size.
type PageRequest struct {
	Page int
	Size int
}

func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Size
}
