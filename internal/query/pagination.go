package query

import (
	"strconv"

	"github.com/Skotchmaster/crud_template/internal/apperror"
)

const (
	DefaultPageIndex = 1
	DefaultPageSize  = 20
)

type PageInput struct {
	Index int `json:"page_index"`
	Size  int `json:"page_size"`
}

func (p PageInput) Validate() error {
	if p.Size <= 0 {
		return apperror.BadRequest("page_size must be greater than 0")
	}
	if p.Index < 1 {
		return apperror.BadRequest("page_index must be at least 1")
	}
	return nil
}

func (p PageInput) Offset() int {
	return (p.Index - 1) * p.Size
}

// ParsePage reads raw query values. Missing or zero values take the defaults,
// anything else is left for Validate to judge.
func ParsePage(indexRaw, sizeRaw string) (PageInput, error) {
	index, err := parseIntDefault(indexRaw, DefaultPageIndex)
	if err != nil {
		return PageInput{}, apperror.BadRequest("page_index must be an integer")
	}
	size, err := parseIntDefault(sizeRaw, DefaultPageSize)
	if err != nil {
		return PageInput{}, apperror.BadRequest("page_size must be an integer")
	}
	return PageInput{Index: index, Size: size}, nil
}

func parseIntDefault(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return def, nil
	}
	return v, nil
}

type PaginationData[T any] struct {
	Detail     []T   `json:"detail"`
	TotalCount int64 `json:"total_count"`
	TotalPage  int64 `json:"total_page"`
	PageIndex  int   `json:"page_index"`
	PageSize   int   `json:"page_size"`
	PageCount  int   `json:"page_count"`
}

// NewPage wraps one page of items fetched with page out of total matches.
func NewPage[T any](items []T, total int64, page PageInput) *PaginationData[T] {
	return &PaginationData[T]{
		Detail:     items,
		TotalCount: total,
		TotalPage:  totalPages(total, page.Size),
		PageIndex:  page.Index,
		PageSize:   page.Size,
		PageCount:  len(items),
	}
}

// Map converts the items of a page, keeping its counters.
func Map[T, R any](p *PaginationData[T], fn func(T) R) *PaginationData[R] {
	out := &PaginationData[R]{
		Detail:     make([]R, 0, len(p.Detail)),
		TotalCount: p.TotalCount,
		TotalPage:  p.TotalPage,
		PageIndex:  p.PageIndex,
		PageSize:   p.PageSize,
		PageCount:  p.PageCount,
	}
	for _, item := range p.Detail {
		out.Detail = append(out.Detail, fn(item))
	}
	return out
}

type GeneralResponse struct {
	Detail string `json:"detail"`
}

func totalPages(total int64, size int) int64 {
	if size <= 0 {
		return 0
	}
	return (total + int64(size) - 1) / int64(size)
}
