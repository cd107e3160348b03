// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Method is an HTTP verb accepted by the Web API.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
)

// ContentType is the MIME type of a request body.
type ContentType string

const (
	ContentTypeJSON ContentType = "application/json"
	ContentTypeJPEG ContentType = "image/jpeg"
)

var (
	apiHost      = mustHost(BaseURL)
	accountsHost = mustHost(AccountsURL)
)

func mustHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u.Host
}

// Request is a single Web API call. Params are encoded into the query string
// when the request is sent.
type Request struct {
	Method Method
	Params map[string]any

	url         *url.URL
	body        []byte
	contentType ContentType
}

// NewRequest creates a request for rawURL, which must point at the Web API or
// the accounts service. A query already present in rawURL is moved into the
// params; keys given in params take precedence.
func NewRequest(method Method, rawURL string, params map[string]any) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse request url: %w", err)
	}
	if u.Host != apiHost && u.Host != accountsHost {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedHost, u.Host)
	}

	merged := make(map[string]any, len(params))
	for k, v := range params {
		merged[k] = v
	}
	for k, vs := range u.Query() {
		if _, ok := merged[k]; ok || len(vs) == 0 {
			continue
		}
		merged[k] = vs[0]
	}

	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""

	return &Request{Method: method, Params: merged, url: u}, nil
}

// NewEndpointRequest creates a request for an endpoint relative to BaseURL,
// e.g. "v1/albums/{id}".
func NewEndpointRequest(method Method, endpoint string, params map[string]any) (*Request, error) {
	return NewRequest(method, BaseURL+"/"+strings.TrimPrefix(endpoint, "/"), params)
}

// SetBody attaches a request body.
func (r *Request) SetBody(data []byte, contentType ContentType) {
	r.body = data
	r.contentType = contentType
}

// Body returns the attached body and its content type.
func (r *Request) Body() ([]byte, ContentType) {
	return r.body, r.contentType
}

// URL returns the destination with the encoded query.
func (r *Request) URL() *url.URL {
	u := *r.url
	u.RawQuery = encodeQuery(DefaultEncoder, r.Params)
	return &u
}

// Endpoint is a low-cardinality label for the request path, used for
// metrics and spans, e.g. "v1/albums" or "v1/me/player".
func (r *Request) Endpoint() string {
	segs := strings.Split(strings.Trim(r.url.Path, "/"), "/")
	n := 2
	if len(segs) > 2 && (segs[1] == "me" || segs[1] == "browse") {
		n = 3
	}
	if len(segs) < n {
		n = len(segs)
	}
	return strings.Join(segs[:n], "/")
}

// HTTPRequest builds the outgoing request. An empty token sends no
// Authorization header.
func (r *Request) HTTPRequest(ctx context.Context, token string) (*http.Request, error) {
	return r.httpRequest(ctx, r.URL(), token)
}

func (r *Request) httpRequest(ctx context.Context, u *url.URL, token string) (*http.Request, error) {
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, string(r.Method), u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if token != "" {
		req.Header.Set("Authorization", TokenType+" "+token)
	}
	if r.body != nil {
		req.Header.Set("Content-Type", string(r.contentType))
	}
	req.Header.Set("Accept", string(ContentTypeJSON))
	return req, nil
}

// encodeQuery encodes params with sorted keys. Spaces are already "+" after
// encoding, and "+", "," and ":" stay literal so lists and search filters
// read the way the API documents them.
func encodeQuery(enc Encoder, params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v, ok := enc.Encode(params[k])
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escapeQuery(k))
		b.WriteByte('=')
		b.WriteString(escapeQuery(v))
	}
	return b.String()
}

var queryUnescaper = strings.NewReplacer("%2B", "+", "%2C", ",", "%3A", ":")

func escapeQuery(s string) string {
	return queryUnescaper.Replace(url.QueryEscape(s))
}
