package domain

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// SortOrder is the direction of a list sort
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Default pagination values used by the console tables
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListQuery carries the pagination/search/sort parameters forwarded to list endpoints
type ListQuery struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder SortOrder
	Filters   map[string]string
}

// Normalize clamps page and limit into their accepted ranges
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.SortOrder != SortAsc && q.SortOrder != SortDesc {
		q.SortOrder = ""
	}
	return q
}

// Values encodes the query as URL parameters
func (q ListQuery) Values() url.Values {
	q = q.Normalize()
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
		if q.SortOrder != "" {
			v.Set("sortOrder", string(q.SortOrder))
		}
	}
	for k, val := range q.Filters {
		if val != "" {
			v.Set(k, val)
		}
	}
	return v
}

// Page is one page of a list endpoint; items stay opaque to the client core
type Page struct {
	Items      []json.RawMessage `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"totalPages"`
}

// HasNext reports whether another page is available
func (p *Page) HasNext() bool {
	if p.TotalPages > 0 {
		return p.Page < p.TotalPages
	}
	return p.Limit > 0 && p.Page*p.Limit < p.Total
}
