package inference

import (
	"context"
	"log/slog"

	"github.com/teamtrace/relato/pkg/store"
	"github.com/teamtrace/relato/pkg/types"
)

// PersistStats reports the outcome of a match-persistence batch.
type PersistStats struct {
	Persisted int `json:"persisted"`
	Failed    int `json:"failed"`
}

// PersistMatches writes similarity matches back into each source object's
// relations field through the store's relation-merge operation.
//
// Persistence is idempotent: the store merges target ids with set-union
// semantics and overwrites the match-confidence scalar, so re-applying the
// same batch changes nothing. A failure for one relation does not abort
// the batch; failures are counted and logged, not raised.
func PersistMatches(ctx context.Context, writer store.RelationWriter, relations []types.Relation, logger *slog.Logger) PersistStats {
	if logger == nil {
		logger = slog.Default()
	}

	var stats PersistStats
	for _, rel := range relations {
		err := writer.MergeRelations(ctx, rel.FromID, string(rel.Type), []string{rel.ToID}, rel.Confidence)
		if err != nil {
			stats.Failed++
			logger.Warn("match persistence failed",
				"from_id", rel.FromID,
				"to_id", rel.ToID,
				"type", rel.Type,
				"error", err)
			continue
		}
		stats.Persisted++
	}
	return stats
}
