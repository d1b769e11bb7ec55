// Package consolidate removes duplicate objects that entered through
// different platforms or repeated syncs. Duplicates are detected by
// content hash; among copies the most recently updated object survives.
package consolidate

import (
	"context"
	"log/slog"

	"github.com/teamtrace/relato/pkg/store"
	"github.com/teamtrace/relato/pkg/types"
)

// Result reports the outcome of a consolidation pass.
type Result struct {
	Objects           []*types.CanonicalObject `json:"objects"`
	DuplicatesRemoved int                      `json:"duplicates_removed"`
}

// Consolidate returns the unique objects from the input, dropping every
// object whose content hash matches an earlier or later copy with a more
// recent update time. Input order is preserved for the survivors. Objects
// without a stored hash are hashed on the fly; the input is not mutated.
func Consolidate(objects []*types.CanonicalObject) Result {
	type entry struct {
		obj   *types.CanonicalObject
		order int
	}

	byHash := make(map[string]entry, len(objects))
	order := make([]string, 0, len(objects))
	removed := 0

	for i, obj := range objects {
		hash := obj.ContentHash
		if hash == "" {
			hash = obj.ComputeContentHash()
		}

		existing, ok := byHash[hash]
		if !ok {
			byHash[hash] = entry{obj: obj, order: i}
			order = append(order, hash)
			continue
		}

		removed++
		// Later UpdatedAt wins; ties keep the first seen.
		if obj.UpdatedAt.After(existing.obj.UpdatedAt) {
			byHash[hash] = entry{obj: obj, order: existing.order}
		}
	}

	out := make([]*types.CanonicalObject, 0, len(order))
	for _, hash := range order {
		out = append(out, byHash[hash].obj)
	}
	return Result{Objects: out, DuplicatesRemoved: removed}
}

// ConsolidateStore runs a consolidation pass over all objects matching the
// filter and writes the survivors back so their content hashes are
// persisted. Removed duplicates are logged but not deleted from the
// store; deletion is an upstream re-sync concern.
func ConsolidateStore(ctx context.Context, st store.Store, filter store.ObjectFilter, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	objects, err := st.ListObjects(ctx, filter)
	if err != nil {
		return Result{}, err
	}

	result := Consolidate(objects)
	for _, obj := range result.Objects {
		if obj.ContentHash == "" {
			obj.ContentHash = obj.ComputeContentHash()
			if err := st.UpsertObject(ctx, obj); err != nil {
				return Result{}, err
			}
		}
	}

	logger.Info("consolidation completed",
		"scanned", len(objects),
		"unique", len(result.Objects),
		"duplicates_removed", result.DuplicatesRemoved)
	return result, nil
}
