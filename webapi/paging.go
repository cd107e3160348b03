// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Pagination selects a slice of a paged collection. Zero values leave the
// server defaults in place.
type Pagination struct {
	Limit  int
	Offset int
}

// PageNumber returns the pagination for the 1-based page of size limit.
func PageNumber(limit, page int) Pagination {
	p := Pagination{Limit: limit}
	if page > 1 {
		p.Offset = limit * (page - 1)
	}
	return p
}

func (p Pagination) apply(params map[string]any) map[string]any {
	if params == nil {
		params = make(map[string]any, 2)
	}
	if p.Limit > 0 {
		params[keyLimit] = p.Limit
	}
	if p.Offset > 0 {
		params[keyOffset] = p.Offset
	}
	return params
}

// Pager is a page that links to its neighbours.
type Pager interface {
	NextURL() *string
	PreviousURL() *string
}

// Page is an offset-based paging object.
type Page[T any] struct {
	Href     string  `json:"href"`
	Items    []T     `json:"items"`
	Limit    int     `json:"limit"`
	Next     *string `json:"next"`
	Offset   int     `json:"offset"`
	Previous *string `json:"previous"`
	Total    int     `json:"total"`
}

type rawPage[T any] Page[T]

// UnmarshalJSON accepts the bare paging object as well as one wrapped in a
// single key, e.g. {"albums": {...}}.
func (p *Page[T]) UnmarshalJSON(data []byte) error {
	return decodePaged(data, (*rawPage[T])(p))
}

// DecodePage decodes a bare or wrapped paging object.
func DecodePage[T any](data []byte) (*Page[T], error) {
	var p Page[T]
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Page[T]) Len() int             { return len(p.Items) }
func (p *Page[T]) At(i int) T           { return p.Items[i] }
func (p *Page[T]) HasNext() bool        { return p.Next != nil }
func (p *Page[T]) HasPrevious() bool    { return p.Previous != nil }
func (p *Page[T]) NextURL() *string     { return p.Next }
func (p *Page[T]) PreviousURL() *string { return p.Previous }

// Cursors are the opaque positions of a cursor-based page.
type Cursors struct {
	After  string `json:"after"`
	Before string `json:"before"`
}

// AfterTime reads the after cursor as a unix-millisecond timestamp.
func (c Cursors) AfterTime() (time.Time, bool) { return cursorTime(c.After) }

// BeforeTime reads the before cursor as a unix-millisecond timestamp.
func (c Cursors) BeforeTime() (time.Time, bool) { return cursorTime(c.Before) }

func cursorTime(s string) (time.Time, bool) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

// CursorPage is a cursor-based paging object.
type CursorPage[T any] struct {
	Href     string   `json:"href"`
	Items    []T      `json:"items"`
	Limit    int      `json:"limit"`
	Next     *string  `json:"next"`
	Previous *string  `json:"previous"`
	Cursors  *Cursors `json:"cursors"`
	Total    int      `json:"total"`
}

type rawCursorPage[T any] CursorPage[T]

// UnmarshalJSON accepts the bare and the wrapped form, like Page.
func (p *CursorPage[T]) UnmarshalJSON(data []byte) error {
	return decodePaged(data, (*rawCursorPage[T])(p))
}

func (p *CursorPage[T]) Len() int             { return len(p.Items) }
func (p *CursorPage[T]) HasNext() bool        { return p.Next != nil }
func (p *CursorPage[T]) HasPrevious() bool    { return p.Previous != nil }
func (p *CursorPage[T]) NextURL() *string     { return p.Next }
func (p *CursorPage[T]) PreviousURL() *string { return p.Previous }

func decodePaged(data []byte, target any) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	if _, ok := top["items"]; ok {
		return json.Unmarshal(data, target)
	}
	if len(top) == 1 {
		for _, inner := range top {
			return json.Unmarshal(inner, target)
		}
	}
	return fmt.Errorf("%w: paging object has no items", ErrBadResponse)
}

// GetNext fetches the page after page into out. It returns ErrNoMorePages on
// the last page.
func (c *Client) GetNext(ctx context.Context, page Pager, out any) error {
	return c.follow(ctx, page.NextURL(), out)
}

// GetPrevious fetches the page before page into out. It returns
// ErrNoMorePages on the first page.
func (c *Client) GetPrevious(ctx context.Context, page Pager, out any) error {
	return c.follow(ctx, page.PreviousURL(), out)
}

func (c *Client) follow(ctx context.Context, link *string, out any) error {
	if link == nil || *link == "" {
		return ErrNoMorePages
	}
	req, err := NewRequest(MethodGet, *link, nil)
	if err != nil {
		return err
	}
	return c.DoJSON(ctx, req, out)
}

// Collect walks the pages starting at first and returns up to max items.
// max <= 0 collects everything.
func Collect[T any](ctx context.Context, c *Client, first *Page[T], max int) ([]T, error) {
	items := append([]T(nil), first.Items...)
	page := first
	for page.HasNext() && (max <= 0 || len(items) < max) {
		next := new(Page[T])
		if err := c.GetNext(ctx, page, next); err != nil {
			return items, err
		}
		items = append(items, next.Items...)
		page = next
	}
	if max > 0 && len(items) > max {
		items = items[:max]
	}
	return items, nil
}
