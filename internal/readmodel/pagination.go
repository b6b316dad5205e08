package readmodel

import (
	"errors"
	"strconv"
)

// ErrInvalidPagination reports non-numeric or non-positive page/limit input.
// Callers surface it as a bad request rather than silently defaulting.
var ErrInvalidPagination = errors.New("page and limit must be positive numbers")

// ErrInvalidSort reports a sort field outside the whitelist.
var ErrInvalidSort = errors.New("unsupported sort field")

const (
	defaultPage  = 1
	defaultLimit = 10
)

// Page is a normalized pagination window.
type Page struct {
	Number int
	Limit  int
}

// Offset returns the row offset for the window.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// ParsePage normalizes raw page/limit query values. Empty strings take the
// defaults (page=1, limit=10); anything non-numeric or below one is rejected.
func ParsePage(rawPage, rawLimit string) (Page, error) {
	page := Page{Number: defaultPage, Limit: defaultLimit}

	if rawPage != "" {
		n, err := strconv.Atoi(rawPage)
		if err != nil || n < 1 {
			return Page{}, ErrInvalidPagination
		}
		page.Number = n
	}

	if rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n < 1 {
			return Page{}, ErrInvalidPagination
		}
		page.Limit = n
	}

	return page, nil
}

// Sort is a normalized sort order over a whitelisted column.
type Sort struct {
	column     string
	descending bool
}

// sortColumns whitelists the video fields exposed for sorting; values are
// the SQL columns interpolated into ORDER BY.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"views":     "views",
	"duration":  "duration",
	"title":     "title",
}

// ParseSort normalizes sortBy/sortType query values. Empty sortBy defaults
// to creation time; sortType is ascending unless "desc".
func ParseSort(rawBy, rawType string) (Sort, error) {
	if rawBy == "" {
		rawBy = "createdAt"
	}
	column, ok := sortColumns[rawBy]
	if !ok {
		return Sort{}, ErrInvalidSort
	}
	return Sort{column: column, descending: rawType == "desc"}, nil
}

// OrderBy renders the ORDER BY clause body for the sort.
func (s Sort) OrderBy() string {
	if s.column == "" {
		s.column = "created_at"
	}
	if s.descending {
		return s.column + " DESC"
	}
	return s.column + " ASC"
}
