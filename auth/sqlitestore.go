// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ManuGH/spotifykit/internal/persistence/sqlite"
)

const tokensSchema = `
CREATE TABLE IF NOT EXISTS tokens (
	account       TEXT PRIMARY KEY,
	access_token  TEXT NOT NULL,
	token_type    TEXT NOT NULL DEFAULT 'Bearer',
	refresh_token TEXT NOT NULL DEFAULT '',
	expiry        INTEGER NOT NULL DEFAULT 0,
	username      TEXT NOT NULL DEFAULT '',
	scopes        TEXT NOT NULL DEFAULT '',
	updated_at    INTEGER NOT NULL
);`

// SQLiteStore keeps one session per account label in a SQLite database.
type SQLiteStore struct {
	db      *sql.DB
	account string
}

// NewSQLiteStore opens (and migrates) the database at path. account labels
// the session, so several accounts can share one database.
func NewSQLiteStore(ctx context.Context, path, account string) (*SQLiteStore, error) {
	if account == "" {
		account = "default"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create token dir: %w", err)
	}
	db, err := sqlite.Open(ctx, path, sqlite.DefaultConfig())
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, tokensSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate token store: %w", err)
	}
	return &SQLiteStore{db: db, account: account}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*Session, error) {
	var (
		sess   Session
		expiry int64
		scopes string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT access_token, token_type, refresh_token, expiry, username, scopes FROM tokens WHERE account = ?`,
		s.account,
	).Scan(&sess.AccessToken, &sess.TokenType, &sess.RefreshToken, &expiry, &sess.CanonicalUsername, &scopes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	if expiry > 0 {
		sess.Expiry = time.Unix(expiry, 0)
	}
	sess.Scopes = strings.Fields(scopes)
	return &sess, nil
}

func (s *SQLiteStore) Save(ctx context.Context, sess *Session) error {
	var expiry int64
	if !sess.Expiry.IsZero() {
		expiry = sess.Expiry.Unix()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tokens (account, access_token, token_type, refresh_token, expiry, username, scopes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account) DO UPDATE SET
			access_token = excluded.access_token,
			token_type = excluded.token_type,
			refresh_token = excluded.refresh_token,
			expiry = excluded.expiry,
			username = excluded.username,
			scopes = excluded.scopes,
			updated_at = excluded.updated_at`,
		s.account, sess.AccessToken, sess.TokenType, sess.RefreshToken, expiry,
		sess.CanonicalUsername, strings.Join(sess.Scopes, " "), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE account = ?`, s.account); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// Check runs a quick integrity check of the database.
func (s *SQLiteStore) Check(ctx context.Context) error {
	problems, err := sqlite.VerifyIntegrity(ctx, s.db, "quick")
	if err != nil {
		return err
	}
	if len(problems) > 0 {
		return fmt.Errorf("token store is corrupt: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
