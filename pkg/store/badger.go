package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/teamtrace/relato/pkg/types"
	"github.com/teamtrace/relato/pkg/vector"
)

// Key prefixes partition the Badger keyspace.
var (
	prefixObject = []byte("obj:")
	prefixChunk  = []byte("chk:")
	// Chunk ids indexed under their parent for GetChunksByObject.
	prefixChunkByObject = []byte("cbo:")
)

// BadgerStore implements Store on an embedded Badger database. Values are
// JSON; vector search is a full scan over chunk values. Suitable for
// single-process deployments and evaluation runs that need persistence
// without a database server.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a Badger database at path. An empty
// path opens an in-memory database.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func objectKey(id string) []byte {
	return append(append([]byte(nil), prefixObject...), id...)
}

func chunkKey(id string) []byte {
	return append(append([]byte(nil), prefixChunk...), id...)
}

func chunkByObjectKey(objectID, chunkID string) []byte {
	key := append(append([]byte(nil), prefixChunkByObject...), objectID...)
	key = append(key, 0)
	return append(key, chunkID...)
}

// GetObject retrieves a single object by id.
func (s *BadgerStore) GetObject(ctx context.Context, id string) (*types.CanonicalObject, error) {
	var obj *types.CanonicalObject
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(objectKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrObjectNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			obj = &types.CanonicalObject{}
			return json.Unmarshal(val, obj)
		})
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// GetObjects retrieves multiple objects; unknown ids are omitted.
func (s *BadgerStore) GetObjects(ctx context.Context, ids []string) ([]*types.CanonicalObject, error) {
	var out []*types.CanonicalObject
	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			item, err := txn.Get(objectKey(id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if err := item.Value(func(val []byte) error {
				obj := &types.CanonicalObject{}
				if err := json.Unmarshal(val, obj); err != nil {
					return err
				}
				out = append(out, obj)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("object batch fetch failed: %w", err)
	}
	return out, nil
}

// ListObjects scans the object prefix; keys are iterated in lexical order
// so results are ordered by id.
func (s *BadgerStore) ListObjects(ctx context.Context, filter ObjectFilter) ([]*types.CanonicalObject, error) {
	var out []*types.CanonicalObject
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefixObject
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefixObject); it.ValidForPrefix(prefixObject); it.Next() {
			var obj types.CanonicalObject
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &obj)
			}); err != nil {
				return err
			}
			if filter.Platform != "" && obj.Platform != filter.Platform {
				continue
			}
			if filter.ObjectType != "" && obj.ObjectType != filter.ObjectType {
				continue
			}
			o := obj
			out = append(out, &o)
			if filter.Limit > 0 && len(out) >= filter.Limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("object list failed: %w", err)
	}
	return out, nil
}

// UpsertObject creates or replaces an object.
func (s *BadgerStore) UpsertObject(ctx context.Context, obj *types.CanonicalObject) error {
	if err := obj.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to encode object: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(objectKey(obj.ID), data)
	})
	if err != nil {
		return fmt.Errorf("object upsert failed: %w", err)
	}
	return nil
}

// UpsertChunk creates or replaces a chunk and its parent index entry.
func (s *BadgerStore) UpsertChunk(ctx context.Context, chunk *types.Chunk) error {
	if err := chunk.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("failed to encode chunk: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(chunkKey(chunk.ID), data); err != nil {
			return err
		}
		return txn.Set(chunkByObjectKey(chunk.ParentObjectID, chunk.ID), []byte(chunk.ID))
	})
	if err != nil {
		return fmt.Errorf("chunk upsert failed: %w", err)
	}
	return nil
}

// GetChunksByObject resolves the parent index and loads chunks ordered by
// chunk index.
func (s *BadgerStore) GetChunksByObject(ctx context.Context, objectID string) ([]*types.Chunk, error) {
	prefix := append(append([]byte(nil), prefixChunkByObject...), objectID...)
	prefix = append(prefix, 0)

	var out []*types.Chunk
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var chunkID []byte
			if err := it.Item().Value(func(val []byte) error {
				chunkID = append([]byte(nil), val...)
				return nil
			}); err != nil {
				return err
			}

			item, err := txn.Get(chunkKey(string(chunkID)))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if err := item.Value(func(val []byte) error {
				chunk := &types.Chunk{}
				if err := json.Unmarshal(val, chunk); err != nil {
					return err
				}
				out = append(out, chunk)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("chunk fetch failed: %w", err)
	}

	sortChunksByIndex(out)
	return out, nil
}

// SearchChunks performs brute-force top-K cosine scoring over all stored
// chunks.
func (s *BadgerStore) SearchChunks(ctx context.Context, queryVector []float32, topK int, minScore float64) ([]types.ScoredChunk, error) {
	if len(queryVector) == 0 {
		return nil, nil
	}

	var scored []vector.ScoredItem[*types.Chunk]
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefixChunk
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefixChunk); it.ValidForPrefix(prefixChunk); it.Next() {
			var chunk types.Chunk
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &chunk)
			}); err != nil {
				return err
			}
			if len(chunk.Embedding) == 0 {
				continue
			}
			score := vector.CosineSimilarity(queryVector, chunk.Embedding)
			if score >= minScore {
				c := chunk
				scored = append(scored, vector.ScoredItem[*types.Chunk]{Item: &c, Score: score})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("chunk search failed: %w", err)
	}

	top := vector.TopKByScore(scored, topK)
	out := make([]types.ScoredChunk, len(top))
	for i, item := range top {
		out[i] = types.ScoredChunk{Chunk: item.Item, Score: item.Score}
	}
	return out, nil
}

// MergeRelations unions targetIDs into the object's named relation and
// overwrites its match confidence inside a single update transaction.
func (s *BadgerStore) MergeRelations(ctx context.Context, objectID, relationName string, targetIDs []string, confidence float64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(objectKey(objectID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrObjectNotFound
		}
		if err != nil {
			return err
		}

		obj := &types.CanonicalObject{}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, obj)
		}); err != nil {
			return err
		}

		obj.MergeRelationTargets(relationName, targetIDs)
		if obj.Properties == nil {
			obj.Properties = make(map[string]interface{})
		}
		obj.Properties[types.PropertyMatchConfidence] = confidence

		data, err := json.Marshal(obj)
		if err != nil {
			return fmt.Errorf("failed to encode object: %w", err)
		}
		return txn.Set(objectKey(objectID), data)
	})
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func sortChunksByIndex(chunks []*types.Chunk) {
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].ChunkIndex < chunks[j].ChunkIndex })
}
