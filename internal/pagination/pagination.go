// Package pagination turns a countable, windowed query into a page of
// results with navigation metadata.
package pagination

import (
	"context"
	"encoding/json"

	"github.com/iliyamo/unit-reservation/internal/apperr"
)

// DefaultLimit applies when a page is requested without a limit.
const DefaultLimit = 10

// Window selects rows [Offset, Offset+Limit).  Limit 0 means every row.
type Window struct {
	Offset int
	Limit  int
}

// All reports whether w is unbounded.
func (w Window) All() bool { return w.Limit <= 0 }

// Source is a filtered collection that can be counted and windowed.
type Source[T, F any] interface {
	List(ctx context.Context, filter F, w Window) ([]T, error)
	Count(ctx context.Context, filter F) (int, error)
}

// Params are the optional page and limit supplied by a caller.
type Params struct {
	Page  *int `query:"page" json:"page,omitempty"`
	Limit *int `query:"limit" json:"limit,omitempty"`
}

// Result is one page of data.  The page fields are nil when no page was
// requested, and PrevPage/NextPage are nil at the edges.
type Result[T any] struct {
	Data        []T  `json:"data"`
	Total       int  `json:"total"`
	CurrentPage *int `json:"currentPage,omitempty"`
	PrevPage    *int `json:"prevPage"`
	NextPage    *int `json:"nextPage"`
	LastPage    *int `json:"lastPage,omitempty"`
}

// MarshalJSON writes only data and total for an unpaged result.  A paged
// result always carries prevPage and nextPage, null at the edges.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.CurrentPage == nil {
		return json.Marshal(struct {
			Data  []T `json:"data"`
			Total int `json:"total"`
		}{nonNil(r.Data), r.Total})
	}
	type page Result[T]
	return json.Marshal(page(r))
}

// Paginate counts the rows matching filter and returns the requested page.
// Without a page every matching row is returned.
func Paginate[T, F any](ctx context.Context, src Source[T, F], filter F, p Params) (Result[T], error) {
	if p.Page == nil {
		total, err := src.Count(ctx, filter)
		if err != nil {
			return Result[T]{}, err
		}
		data, err := src.List(ctx, filter, Window{})
		if err != nil {
			return Result[T]{}, err
		}
		return Result[T]{Data: nonNil(data), Total: total}, nil
	}

	page := *p.Page
	limit := DefaultLimit
	if p.Limit != nil {
		limit = *p.Limit
	}
	if page < 1 {
		return Result[T]{}, apperr.BadRequestf("page must be >= 1")
	}
	if limit < 1 {
		return Result[T]{}, apperr.BadRequestf("limit must be >= 1")
	}

	total, err := src.Count(ctx, filter)
	if err != nil {
		return Result[T]{}, err
	}
	data, err := src.List(ctx, filter, Window{Offset: (page - 1) * limit, Limit: limit})
	if err != nil {
		return Result[T]{}, err
	}
	return Build(data, total, page, limit), nil
}

// Build assembles a Result for an already fetched page.
// lastPage = ceil(total/limit).
func Build[T any](data []T, total, page, limit int) Result[T] {
	last := (total + limit - 1) / limit
	r := Result[T]{
		Data:        nonNil(data),
		Total:       total,
		CurrentPage: intPtr(page),
		LastPage:    intPtr(last),
	}
	if page > 1 {
		r.PrevPage = intPtr(page - 1)
	}
	if page < last {
		r.NextPage = intPtr(page + 1)
	}
	return r
}

// Slice applies w to an in-memory slice.
func Slice[T any](rows []T, w Window) []T {
	if w.Offset >= len(rows) {
		return []T{}
	}
	rows = rows[w.Offset:]
	if !w.All() && w.Limit < len(rows) {
		rows = rows[:w.Limit]
	}
	return rows
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func intPtr(v int) *int { return &v }
