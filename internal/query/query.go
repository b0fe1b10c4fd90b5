// Package query implements the pagination, sorting, search and filter
// contract shared by every list endpoint. Each entity declares a Policy
// (allowed sort fields, searchable columns) and parses its own filter
// bag; the rest of the validation is common.
package query

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/campusdeals/api/internal/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MinPage      = 1
	MinLimit     = 1
	MaxLimit     = 100
	MaxSearchLen = 100
)

// Policy declares the per-entity knobs of the shared list contract.
type Policy struct {
	DefaultSortBy string
	SortFields    []string
	SearchFields  []string
}

type Params struct {
	Page   int
	Limit  int
	SortBy string
	Order  string
	Search string
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// OrderBy returns the ORDER BY fragment for p. The primary sort is
// always followed by "id ASC" so pages stay stable when the sort
// column has duplicate values.
func (p Params) OrderBy() string {
	return fmt.Sprintf("%s %s, id ASC", p.SortBy, strings.ToUpper(p.Order))
}

// Parse validates raw query values against policy. Page is floored at
// MinPage, limit is clamped to [MinLimit, MaxLimit], sortBy must be a
// member of the policy's sort fields, order defaults to desc and search
// is trimmed and capped at MaxSearchLen.
func Parse(values url.Values, policy Policy) (Params, error) {
	p := Params{
		Page:   DefaultPage,
		Limit:  DefaultLimit,
		SortBy: policy.DefaultSortBy,
		Order:  "desc",
	}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, apperr.InvalidArgument("invalid pagination parameters",
				apperr.FieldError{Field: "page", Message: "must be an integer"})
		}
		p.Page = max(MinPage, page)
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, apperr.InvalidArgument("invalid pagination parameters",
				apperr.FieldError{Field: "limit", Message: "must be an integer"})
		}
		p.Limit = min(MaxLimit, max(MinLimit, limit))
	}

	if raw := values.Get("sortBy"); raw != "" {
		if !slices.Contains(policy.SortFields, raw) {
			return Params{}, apperr.InvalidArgument(
				fmt.Sprintf("invalid sort field. Allowed: %s", strings.Join(policy.SortFields, ", ")),
				apperr.FieldError{Field: "sortBy", Message: "not a sortable field"})
		}
		p.SortBy = raw
	}

	if raw := values.Get("order"); raw != "" {
		order := strings.ToLower(raw)
		if order != "asc" && order != "desc" {
			return Params{}, apperr.InvalidArgument("invalid sort order",
				apperr.FieldError{Field: "order", Message: `must be "asc" or "desc"`})
		}
		p.Order = order
	}

	if search := strings.TrimSpace(values.Get("search")); search != "" {
		// Cap on runes, not bytes, so a multi-byte character is never
		// split into an invalid pattern.
		if runes := []rune(search); len(runes) > MaxSearchLen {
			search = string(runes[:MaxSearchLen])
		}
		p.Search = search
	}

	return p, nil
}

// Snapshot echoes the validated query back in list responses.
type Snapshot struct {
	Search  string `json:"search,omitempty"`
	SortBy  string `json:"sort_by"`
	Order   string `json:"order"`
	Filters any    `json:"filters,omitempty"`
}

type Meta struct {
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalPages int      `json:"total_pages"`
	HasNext    bool     `json:"has_next"`
	HasPrev    bool     `json:"has_prev"`
	Query      Snapshot `json:"query"`
}

func NewMeta(p Params, total int, filters any) Meta {
	totalPages := (total + p.Limit - 1) / p.Limit

	return Meta{
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
		Query: Snapshot{
			Search:  p.Search,
			SortBy:  p.SortBy,
			Order:   p.Order,
			Filters: filters,
		},
	}
}

// Page is the envelope every list endpoint returns.
type Page[T any] struct {
	Meta Meta `json:"meta"`
	Data []T  `json:"data"`
}
