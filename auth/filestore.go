// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/spotifykit/internal/log"
)

const watchDebounce = 100 * time.Millisecond

// FileStore keeps the session as a JSON file readable only by its owner.
type FileStore struct {
	path   string
	logger zerolog.Logger
}

// NewFileStore returns a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   filepath.Clean(path),
		logger: xglog.WithComponent("auth").With().Str(xglog.FieldStore, "file").Logger(),
	}
}

// Path is the token file location.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load(context.Context) (*Session, error) {
	// #nosec G304 -- the token path is chosen by the operator
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}
	if s.AccessToken == "" && s.RefreshToken == "" {
		return nil, ErrNoToken
	}
	return &s, nil
}

// Save replaces the token file atomically with mode 0600.
func (f *FileStore) Save(_ context.Context, s *Session) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}

	pendingFile, err := renameio.NewPendingFile(f.path, renameio.WithPermissions(0o600))
	if err != nil {
		return fmt.Errorf("create pending token file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			f.logger.Debug().Err(err).Msg("cleanup pending token file")
		}
	}()

	enc := json.NewEncoder(pendingFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("write token data: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace token file: %w", err)
	}

	f.logger.Debug().Str(xglog.FieldPath, f.path).Time(xglog.FieldExpiry, s.Expiry).Msg("token saved")
	return nil
}

func (f *FileStore) Clear(context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// Watch calls fn with the reloaded session whenever another process rewrites
// the token file, until ctx is done. The directory is watched because atomic
// replacement swaps the file's inode.
func (f *FileStore) Watch(ctx context.Context, fn func(*Session)) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch token dir: %w", err)
	}

	go f.watchLoop(ctx, watcher, fn)
	return nil
}

func (f *FileStore) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, fn func(*Session)) {
	var (
		mu       sync.Mutex
		debounce *time.Timer
	)
	defer func() {
		mu.Lock()
		if debounce != nil {
			debounce.Stop()
		}
		mu.Unlock()
		_ = watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != f.path || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}

			mu.Lock()
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				if ctx.Err() != nil {
					return
				}
				s, err := f.Load(ctx)
				if err != nil {
					f.logger.Warn().Err(err).Msg("reload token file")
					return
				}
				fn(s)
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			f.logger.Error().Err(err).Msg("token watcher error")
		}
	}
}
