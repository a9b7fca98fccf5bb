// Package cache persists the planner snapshot as a single JSON blob.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/logger"
	"github.com/julianstephens/vitrine/internal/models"
	"github.com/julianstephens/vitrine/internal/storage"
	"github.com/julianstephens/vitrine/internal/storage/file"
	"github.com/julianstephens/vitrine/internal/storage/sqlite"
)

// Cache reads and writes the AppState snapshot under one fixed key.
// Failures never reach the caller: Load falls back to the empty state and
// Save only logs.
type Cache struct {
	blobs storage.BlobStore
	key   string
}

func New(blobs storage.BlobStore) *Cache {
	return &Cache{blobs: blobs, key: constants.StorageKey}
}

// Open builds the blob store for the given backend kind rooted at dir and
// wraps it in a Cache.
func Open(kind, dir string) (*Cache, error) {
	var blobs storage.BlobStore
	switch kind {
	case "", constants.CacheSQLite:
		blobs = sqlite.NewStore(filepath.Join(dir, constants.CacheDirName, constants.CacheDBName))
	case constants.CacheFile:
		blobs = file.NewStore(filepath.Join(dir, constants.CacheDirName))
	case constants.CacheMemory:
		blobs = storage.NewMemory()
	default:
		return nil, fmt.Errorf("unknown cache backend %q (want %s, %s or %s)",
			kind, constants.CacheSQLite, constants.CacheFile, constants.CacheMemory)
	}

	if err := blobs.Init(); err != nil {
		return nil, fmt.Errorf("failed to open %s cache: %w", kind, err)
	}
	return New(blobs), nil
}

func (c *Cache) Key() string {
	return c.key
}

func (c *Cache) Location() string {
	return c.blobs.GetConfigPath()
}

// Load returns the cached snapshot, or the empty state when nothing usable is
// stored.
func (c *Cache) Load() models.AppState {
	data, err := c.blobs.Get(c.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Error("failed to read cache", "key", c.key, "error", err)
		}
		return models.EmptyAppState()
	}

	var state models.AppState
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Error("failed to decode cache", "key", c.key, "error", err)
		return models.EmptyAppState()
	}
	return state.Normalize()
}

// Save writes the snapshot synchronously.
func (c *Cache) Save(state models.AppState) {
	data, err := json.Marshal(state.Normalize())
	if err != nil {
		logger.Error("failed to encode cache", "key", c.key, "error", err)
		return
	}
	if err := c.blobs.Set(c.key, data); err != nil {
		logger.Error("failed to write cache", "key", c.key, "error", err)
	}
}

// CurrentClientID returns the client selected when the last session ended,
// or "" when none was saved.
func (c *Cache) CurrentClientID() string {
	key := c.key + constants.SelectionKeySuffix
	data, err := c.blobs.Get(key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Error("failed to read selection", "key", key, "error", err)
		}
		return ""
	}
	return string(data)
}

// SaveCurrentClientID remembers the selection for the next session. An empty
// id forgets it.
func (c *Cache) SaveCurrentClientID(id string) {
	key := c.key + constants.SelectionKeySuffix
	var err error
	if id == "" {
		err = c.blobs.Delete(key)
	} else {
		err = c.blobs.Set(key, []byte(id))
	}
	if err != nil {
		logger.Error("failed to write selection", "key", key, "error", err)
	}
}

// Raw returns the stored blob as is. ok is false when nothing is stored.
func (c *Cache) Raw() ([]byte, bool, error) {
	data, err := c.blobs.Get(c.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Replace validates data as a snapshot and stores it.
func (c *Cache) Replace(data []byte) (models.AppState, error) {
	var state models.AppState
	if err := json.Unmarshal(data, &state); err != nil {
		return models.AppState{}, fmt.Errorf("invalid snapshot: %w", err)
	}
	state = state.Normalize()

	encoded, err := json.Marshal(state)
	if err != nil {
		return models.AppState{}, err
	}
	if err := c.blobs.Set(c.key, encoded); err != nil {
		return models.AppState{}, fmt.Errorf("failed to write cache: %w", err)
	}
	return state, nil
}

func (c *Cache) Close() error {
	return c.blobs.Close()
}
