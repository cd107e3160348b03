// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	invocationIDKey
)

// ContextWithRequestID tags ctx with the id of one Web API call.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// EnsureRequestID keeps an existing request id or attaches a new one.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if rid := RequestIDFromContext(ctx); rid != "" {
		return ctx, rid
	}
	rid := uuid.NewString()
	return ContextWithRequestID(ctx, rid), rid
}

// ContextWithInvocationID tags ctx with the id shared by every call made
// during one command invocation.
func ContextWithInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

func InvocationIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(invocationIDKey).(string)
	return v
}

// WithContext adds the ids carried by ctx to logger.
func WithContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	rid, iid := RequestIDFromContext(ctx), InvocationIDFromContext(ctx)
	if rid == "" && iid == "" {
		return logger
	}
	b := logger.With()
	if rid != "" {
		b = b.Str(FieldRequestID, rid)
	}
	if iid != "" {
		b = b.Str(FieldInvocationID, iid)
	}
	return b.Logger()
}
