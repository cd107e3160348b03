// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"strings"
	"time"
)

// cachedResponse is what the response cache holds per URL.
type cachedResponse struct {
	ETag     string    `json:"etag"`
	Body     []byte    `json:"body"`
	StoredAt time.Time `json:"stored_at"`
}

// lookup returns the cache key for a GET and the entry to revalidate, if
// any. Responses that depend on the user carry a fingerprint of the access
// token in their key.
func (c *Client) lookup(req *Request, target *url.URL, token string) (string, *cachedResponse) {
	if c.cache == nil || req.Method != MethodGet {
		return "", nil
	}

	key := target.String()
	if userScoped(req, target) {
		sum := sha256.Sum256([]byte(token))
		key = hex.EncodeToString(sum[:tokenFingerprintLen]) + "|" + key
	}

	data, ok := c.cache.Get(key)
	if !ok {
		incCacheEvent("miss")
		return key, nil
	}
	var entry cachedResponse
	if err := json.Unmarshal(data, &entry); err != nil || entry.ETag == "" {
		c.cache.Delete(key)
		incCacheEvent("corrupt")
		return key, nil
	}
	incCacheEvent("hit")
	return key, &entry
}

// userScoped reports whether the response depends on whose token is used:
// everything under /v1/me and any call that resolves the market from the
// token.
func userScoped(req *Request, target *url.URL) bool {
	if strings.HasPrefix(req.url.Path, meEndpointPrefix) {
		return true
	}
	q := target.Query()
	return q.Get(keyMarket) == MarketFromToken || q.Get(keyCountry) == MarketFromToken
}

func (c *Client) store(key, etag string, body []byte) {
	data, err := json.Marshal(cachedResponse{ETag: etag, Body: body, StoredAt: time.Now().UTC()})
	if err != nil {
		return
	}
	c.cache.Set(key, data, c.cacheTTL)
	incCacheEvent("store")
}
