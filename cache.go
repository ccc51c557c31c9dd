package forumfeatures

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// indexKey is the reserved badger key holding the logical-key index. Slot
// ids are uuids and can never collide with it.
const indexKey = "!index"

type cacheConfig struct {
	readOnly bool
	inMemory bool
	logger   *slog.Logger
}

// A CacheOpt configures OpenNetworkCache.
type CacheOpt func(*cacheConfig)

// WithReadOnly opens the cache for reads only. Put and Delete fail with
// ErrCacheReadOnly, and GetOrCompute computes misses without persisting
// them.
func WithReadOnly() CacheOpt {
	return func(c *cacheConfig) { c.readOnly = true }
}

// WithInMemoryCache backs the cache with an in-memory store, discarded on
// Close. The path argument is ignored.
func WithInMemoryCache() CacheOpt {
	return func(c *cacheConfig) { c.inMemory = true }
}

// WithCacheLogger attaches a logger for hit/miss/corruption events. Without
// one the cache is silent.
func WithCacheLogger(l *slog.Logger) CacheOpt {
	return func(c *cacheConfig) { c.logger = l }
}

// A NetworkCache persists expensive derived artifacts, keyed by logical
// string keys. Keys map through an in-memory index to uuid slot ids; the
// whole index is rewritten under a reserved key on every mutation, in the
// same transaction as the slot write.
//
// The cache assumes a single writer and deterministic compute functions,
// and that a forum's contents are fixed for the lifetime of its keys.
type NetworkCache struct {
	db     *badger.DB
	index  map[string]string
	cfg    cacheConfig
	logger *slog.Logger
}

// OpenNetworkCache opens (creating if needed) a cache at path.
func OpenNetworkCache(path string, opts ...CacheOpt) (*NetworkCache, error) {
	var cfg cacheConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	badgerOpts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithReadOnly(cfg.readOnly)
	if cfg.inMemory {
		badgerOpts = badger.DefaultOptions("").
			WithLogger(nil).
			WithInMemory(true)
	}
	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open network cache %q: %w", path, err)
	}

	c := &NetworkCache{
		db:     db,
		index:  make(map[string]string),
		cfg:    cfg,
		logger: cfg.logger,
	}
	if err := c.loadIndex(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *NetworkCache) loadIndex() error {
	return c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(indexKey))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load cache index: %w", err)
		}
		return item.Value(func(val []byte) error {
			dec := gob.NewDecoder(bytes.NewReader(val))
			if err := dec.Decode(&c.index); err != nil {
				return fmt.Errorf("decode cache index: %w", err)
			}
			return nil
		})
	})
}

func (c *NetworkCache) log(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *NetworkCache) logWarn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

func encodeGob(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Has reports whether the logical key is present.
func (c *NetworkCache) Has(key string) bool {
	_, ok := c.index[key]
	return ok
}

// Len returns the number of cached entries.
func (c *NetworkCache) Len() int { return len(c.index) }

// Keys returns the logical keys currently cached, in no particular order.
func (c *NetworkCache) Keys() []string {
	keys := make([]string, 0, len(c.index))
	for k := range c.index {
		keys = append(keys, k)
	}
	return keys
}

// Put stores value under key, allocating a slot for new keys and reusing
// the existing slot otherwise. The slot and the updated index commit in one
// transaction.
func (c *NetworkCache) Put(key string, value any) error {
	if c.cfg.readOnly {
		return fmt.Errorf("put %q: %w", key, ErrCacheReadOnly)
	}
	slot, ok := c.index[key]
	if !ok {
		slot = uuid.NewString()
	}

	payload, err := encodeGob(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %q: %w", key, err)
	}
	next := make(map[string]string, len(c.index)+1)
	for k, v := range c.index {
		next[k] = v
	}
	next[key] = slot
	indexPayload, err := encodeGob(next)
	if err != nil {
		return fmt.Errorf("encode cache index: %w", err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(slot), payload); err != nil {
			return err
		}
		return txn.Set([]byte(indexKey), indexPayload)
	})
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	c.index = next
	return nil
}

// Delete removes key. Deleting an absent key is a no-op, and a missing slot
// record is tolerated; only the index entry must go.
func (c *NetworkCache) Delete(key string) error {
	if c.cfg.readOnly {
		return fmt.Errorf("delete %q: %w", key, ErrCacheReadOnly)
	}
	slot, ok := c.index[key]
	if !ok {
		return nil
	}

	next := make(map[string]string, len(c.index))
	for k, v := range c.index {
		if k != key {
			next[k] = v
		}
	}
	indexPayload, err := encodeGob(next)
	if err != nil {
		return fmt.Errorf("encode cache index: %w", err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(slot)); err != nil && err != badger.ErrKeyNotFound {
			return err
		}
		return txn.Set([]byte(indexKey), indexPayload)
	})
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	c.index = next
	return nil
}

// get decodes the slot for key into out. ErrCacheMiss when the key is not
// indexed; other errors indicate a stale or unreadable slot.
func (c *NetworkCache) get(key string, out any) error {
	slot, ok := c.index[key]
	if !ok {
		return fmt.Errorf("get %q: %w", key, ErrCacheMiss)
	}
	return c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(slot))
		if err != nil {
			return fmt.Errorf("get %q slot %s: %w", key, slot, err)
		}
		return item.Value(func(val []byte) error {
			dec := gob.NewDecoder(bytes.NewReader(val))
			if err := dec.Decode(out); err != nil {
				return fmt.Errorf("decode %q slot %s: %w", key, slot, err)
			}
			return nil
		})
	})
}

// GetOrCompute returns the cached value for key, computing and caching it
// on a miss. An entry that is present but unreadable is dropped, recomputed
// and re-stored; a failure on that second store is returned to the caller.
//
// On a read-only cache a miss is computed but not persisted.
func GetOrCompute[T any](c *NetworkCache, key string, compute func() (T, error)) (T, error) {
	var zero T
	if c.Has(key) {
		var cached T
		err := c.get(key, &cached)
		if err == nil {
			c.log("cache hit", "key", key)
			return cached, nil
		}
		c.logWarn("cache entry unreadable", "key", key, "error", err)
		if !c.cfg.readOnly {
			if derr := c.Delete(key); derr != nil {
				return zero, derr
			}
		}
	}

	c.log("cache miss", "key", key)
	value, err := compute()
	if err != nil {
		return zero, err
	}
	if c.cfg.readOnly {
		return value, nil
	}
	if err := c.Put(key, value); err != nil {
		return zero, err
	}
	return value, nil
}

// Close flushes and closes the underlying store.
func (c *NetworkCache) Close() error {
	return c.db.Close()
}
