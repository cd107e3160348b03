// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureRequestID(t *testing.T) {
	ctx, rid := EnsureRequestID(context.Background())
	require.NotEmpty(t, rid)
	assert.Equal(t, rid, RequestIDFromContext(ctx))

	again, same := EnsureRequestID(ctx)
	assert.Equal(t, rid, same)
	assert.Equal(t, ctx, again)
}

func TestIDsFromEmptyContext(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
	assert.Empty(t, InvocationIDFromContext(context.Background()))
}

func TestWithContext_AddsIDs(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := ContextWithInvocationID(context.Background(), "inv-1")
	ctx = ContextWithRequestID(ctx, "req-1")

	l := WithContext(ctx, base)
	l.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry[FieldRequestID])
	assert.Equal(t, "inv-1", entry[FieldInvocationID])
}

func TestWithContext_NoIDs(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	l := WithContext(context.Background(), base)
	l.Info().Msg("plain")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, FieldRequestID)
	assert.NotContains(t, entry, FieldInvocationID)
}
