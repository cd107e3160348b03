// SPDX-License-Identifier: MIT

package cache

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// BadgerCache persists cached responses on local disk so they survive CLI runs.
type BadgerCache struct {
	db     *badger.DB
	prefix []byte
	logger zerolog.Logger
	stats  struct {
		hits   atomic.Int64
		misses atomic.Int64
		sets   atomic.Int64
	}
}

// BadgerConfig holds the on-disk cache location.
type BadgerConfig struct {
	Dir      string // Directory for the database files; ignored when InMemory is set
	InMemory bool
}

// NewBadgerCache opens (or creates) a Badger database.
func NewBadgerCache(config BadgerConfig, logger zerolog.Logger) (*BadgerCache, error) {
	opts := badger.DefaultOptions(config.Dir).
		WithLogger(badgerLogger{logger}).
		WithLoggingLevel(badger.WARNING)
	if config.InMemory {
		opts = opts.WithDir("").WithValueDir("").WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger open failed: %w", err)
	}

	logger.Info().
		Str("dir", config.Dir).
		Bool("in_memory", config.InMemory).
		Msg("opened Badger cache")

	return &BadgerCache{db: db, prefix: []byte("resp/"), logger: logger}, nil
}

func (c *BadgerCache) key(k string) []byte {
	return append(append([]byte{}, c.prefix...), k...)
}

// Get retrieves a value from the cache.
func (c *BadgerCache) Get(key string) ([]byte, bool) {
	var out []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.key(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.logger.Warn().Err(err).Str("key", key).Msg("badger get failed")
		}
		c.stats.misses.Add(1)
		return nil, false
	}
	c.stats.hits.Add(1)
	return out, true
}

// Set stores a value with TTL. A non-positive ttl never expires.
func (c *BadgerCache) Set(key string, value []byte, ttl time.Duration) {
	err := c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(c.key(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("badger set failed")
		return
	}
	c.stats.sets.Add(1)
}

// Delete removes a value from the cache.
func (c *BadgerCache) Delete(key string) {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(c.key(key))
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("badger delete failed")
	}
}

// Clear drops every cached response.
func (c *BadgerCache) Clear() {
	if err := c.db.DropPrefix(c.prefix); err != nil {
		c.logger.Warn().Err(err).Msg("badger drop prefix failed")
	}
}

// Stats returns cache statistics.
func (c *BadgerCache) Stats() CacheStats {
	size := 0
	_ = c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(c.prefix); it.ValidForPrefix(c.prefix); it.Next() {
			size++
		}
		return nil
	})

	return CacheStats{
		Hits:        c.stats.hits.Load(),
		Misses:      c.stats.misses.Load(),
		Sets:        c.stats.sets.Load(),
		CurrentSize: size,
	}
}

// Close flushes and closes the database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}

type badgerLogger struct {
	l zerolog.Logger
}

func (b badgerLogger) Errorf(f string, v ...interface{})   { b.l.Error().Msgf(f, v...) }
func (b badgerLogger) Warningf(f string, v ...interface{}) { b.l.Warn().Msgf(f, v...) }
func (b badgerLogger) Infof(f string, v ...interface{})    { b.l.Debug().Msgf(f, v...) }
func (b badgerLogger) Debugf(f string, v ...interface{})   { b.l.Trace().Msgf(f, v...) }
