// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the module.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPURLKey        = "http.url"

	// Spotify attributes
	SpotifyEndpointKey = "spotify.endpoint"
	SpotifyMarketKey   = "spotify.market"
	SpotifyCacheKey    = "spotify.cache"
	SpotifyAttemptKey  = "spotify.attempt"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// RequestAttributes describes a Web API call. Empty values are omitted.
func RequestAttributes(endpoint, market string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if endpoint != "" {
		attrs = append(attrs, attribute.String(SpotifyEndpointKey, endpoint))
	}
	if market != "" {
		attrs = append(attrs, attribute.String(SpotifyMarketKey, market))
	}
	return attrs
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(err error, errorType string) []attribute.KeyValue {
	if err == nil {
		return nil
	}
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
