// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID    = "request_id"
	FieldInvocationID = "invocation_id"
	FieldUser         = "user"

	// Process fields
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldEvent     = "event"

	// Request fields
	FieldMethod     = "method"
	FieldEndpoint   = "endpoint"
	FieldStatus     = "status"
	FieldDurationMS = "duration_ms"
	FieldAttempt    = "attempt"
	FieldRetryAfter = "retry_after_s"
	FieldCache      = "cache"

	// Token fields
	FieldExpiry = "expiry"
	FieldStore  = "store"

	// Path / URL fields
	FieldPath    = "path"
	FieldBaseURL = "base_url"
)
