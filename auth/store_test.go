// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func sampleSession() *Session {
	return &Session{
		AccessToken:       "acc",
		TokenType:         "Bearer",
		RefreshToken:      "ref",
		Expiry:            time.Unix(1_750_000_000, 0),
		CanonicalUsername: "alice",
		Scopes:            []string{"user-read-private", "streaming"},
	}
}

// storeContract runs the behaviour every TokenStore shares.
func storeContract(t *testing.T, store TokenStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, ErrNoToken)

	want := sampleSession()
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.AccessToken, got.AccessToken)
	assert.Equal(t, want.RefreshToken, got.RefreshToken)
	assert.True(t, want.Expiry.Equal(got.Expiry))
	assert.Equal(t, want.CanonicalUsername, got.CanonicalUsername)
	assert.Equal(t, want.Scopes, got.Scopes)

	want.AccessToken = "acc2"
	require.NoError(t, store.Save(ctx, want))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "acc2", got.AccessToken)

	require.NoError(t, store.Clear(ctx))
	_, err = store.Load(ctx)
	require.ErrorIs(t, err, ErrNoToken)
	require.NoError(t, store.Clear(ctx), "clearing twice is fine")
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s := sampleSession()
	require.NoError(t, store.Save(ctx, s))
	s.Scopes[0] = "mutated"

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-read-private", got.Scopes[0])
}

func TestFileStore(t *testing.T) {
	storeContract(t, NewFileStore(filepath.Join(t.TempDir(), "nested", "token.json")))
}

func TestFileStore_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := NewFileStore(path)
	require.NoError(t, store.Save(context.Background(), sampleSession()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assert.Equal(t, path, store.Path())
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(path).Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoToken)
}

func TestFileStore_Watch(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := filepath.Join(t.TempDir(), "token.json")
	store := NewFileStore(path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Session, 4)
	require.NoError(t, store.Watch(ctx, func(s *Session) { reloaded <- s }))

	// another process renews the token
	require.NoError(t, NewFileStore(path).Save(context.Background(), sampleSession()))

	select {
	case s := <-reloaded:
		assert.Equal(t, "acc", s.AccessToken)
	case <-time.After(5 * time.Second):
		t.Fatal("token file change was not observed")
	}
	cancel()
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "tokens.db"), "")
	require.NoError(t, err)
	defer store.Close()

	storeContract(t, store)
	assert.NoError(t, store.Check(ctx))
}

func TestSQLiteStore_AccountsAreSeparate(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tokens.db")

	alice, err := NewSQLiteStore(ctx, path, "alice")
	require.NoError(t, err)
	defer alice.Close()
	bob, err := NewSQLiteStore(ctx, path, "bob")
	require.NoError(t, err)
	defer bob.Close()

	require.NoError(t, alice.Save(ctx, sampleSession()))
	_, err = bob.Load(ctx)
	assert.ErrorIs(t, err, ErrNoToken)
}
