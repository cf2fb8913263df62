package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/custodia-labs/audit-console/internal/core/domain"
)

// pageBody accepts both list shapes served by the backend: a flat page
// and a data/pagination envelope.
type pageBody struct {
	Items      []json.RawMessage `json:"items"`
	Data       []json.RawMessage `json:"data"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"totalPages"`
	Pagination *struct {
		Total      int `json:"total"`
		Page       int `json:"page"`
		Limit      int `json:"limit"`
		TotalPages int `json:"totalPages"`
	} `json:"pagination"`
}

// List fetches one page of a resource collection
func (c *Client) List(ctx context.Context, resource string, q domain.ListQuery) (*domain.Page, error) {
	q = q.Normalize()

	var body pageBody
	err := c.DoJSON(ctx, Request{
		Method:      http.MethodGet,
		Path:        resource,
		Query:       q.Values(),
		RequireAuth: true,
	}, &body)
	if err != nil {
		return nil, err
	}

	page := &domain.Page{
		Items:      body.Items,
		Total:      body.Total,
		Page:       body.Page,
		Limit:      body.Limit,
		TotalPages: body.TotalPages,
	}
	if page.Items == nil {
		page.Items = body.Data
	}
	if p := body.Pagination; p != nil {
		page.Total, page.Page, page.Limit, page.TotalPages = p.Total, p.Page, p.Limit, p.TotalPages
	}
	if page.Page == 0 {
		page.Page = q.Page
	}
	if page.Limit == 0 {
		page.Limit = q.Limit
	}
	if page.Items == nil {
		page.Items = []json.RawMessage{}
	}
	return page, nil
}

// Download fetches a binary resource such as an uploaded document
func (c *Client) Download(ctx context.Context, path string) (*Response, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: download path is required", domain.ErrInvalidInput)
	}
	return c.Do(ctx, Request{
		Method:      http.MethodGet,
		Path:        path,
		RequireAuth: true,
		Binary:      true,
	})
}
