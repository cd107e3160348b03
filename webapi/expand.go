// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

import "context"

// Expandable is an object returned in simplified form that links to its
// full form.
type Expandable interface {
	IsSimplified() bool
	Link() string
}

// Expand fetches the full object behind a simplified one. An item that is
// already full is returned as is.
func Expand[T any, PT interface {
	*T
	Expandable
}](ctx context.Context, c *Client, item PT) (PT, error) {
	if item == nil || !item.IsSimplified() {
		return item, nil
	}
	req, err := NewRequest(MethodGet, item.Link(), nil)
	if err != nil {
		return nil, err
	}
	full := PT(new(T))
	if err := c.DoJSON(ctx, req, full); err != nil {
		return nil, err
	}
	return full, nil
}
