package evaluation

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// runCacheEntry records one completed evaluation run.
type runCacheEntry struct {
	RunID       string    `json:"run_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// RunCache tracks completed evaluation runs in an embedded Badger
// database so interrupted sweeps resume where they stopped instead of
// recomputing every configuration.
type RunCache struct {
	db *badger.DB
}

// NewRunCache opens (or creates) a run cache at path. An empty path keeps
// the cache in memory, which effectively disables resumption across
// processes but still deduplicates within one sweep.
func NewRunCache(path string) (*RunCache, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open run cache: %w", err)
	}
	return &RunCache{db: db}, nil
}

func runKey(experimentID, layer, method string) []byte {
	return []byte(fmt.Sprintf("run:%s|%s|%s", experimentID, layer, method))
}

// Completed reports whether a run with the given key has already been
// recorded, returning its run id when present.
func (c *RunCache) Completed(experimentID, layer, method string) (string, bool, error) {
	var entry runCacheEntry
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(runKey(experimentID, layer, method))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("run cache lookup failed: %w", err)
	}
	return entry.RunID, true, nil
}

// MarkCompleted records a finished run.
func (c *RunCache) MarkCompleted(experimentID, layer, method, runID string) error {
	data, err := json.Marshal(runCacheEntry{RunID: runID, CompletedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode run cache entry: %w", err)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(runKey(experimentID, layer, method), data)
	})
	if err != nil {
		return fmt.Errorf("run cache write failed: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (c *RunCache) Close() error {
	return c.db.Close()
}
