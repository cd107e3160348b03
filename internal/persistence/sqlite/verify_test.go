package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_AppliesWAL(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "tokens.db"), DefaultConfig())
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA journal_mode;").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var busy int
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA busy_timeout;").Scan(&busy))
	assert.Equal(t, 5000, busy)
}

func TestVerifyIntegrity_Healthy(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "ok.db"), Config{})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, "CREATE TABLE t (id INTEGER PRIMARY KEY, v TEXT)")
	require.NoError(t, err)

	for _, mode := range []string{"quick", "full"} {
		problems, err := VerifyIntegrity(ctx, db, mode)
		require.NoError(t, err)
		assert.Nil(t, problems, mode)
	}
}

func TestVerifyIntegrity_ClosedDB(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "closed.db"), Config{})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = VerifyIntegrity(ctx, db, "quick")
	assert.Error(t, err)
}
