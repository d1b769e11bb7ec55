package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/teamtrace/relato/pkg/types"
	"github.com/teamtrace/relato/pkg/vector"
)

// Neo4jStore implements Store on a Neo4j database. Objects and chunks are
// nodes; structured fields that Neo4j property types cannot hold (actors,
// relations, properties, embeddings) are JSON-encoded into string
// properties and decoded on read. Vector search fetches candidate chunk
// embeddings and scores them client-side.
type Neo4jStore struct {
	client   neo4j.DriverWithContext
	database string
}

// NewNeo4jStore creates a store backed by the Neo4j server at uri.
func NewNeo4jStore(uri, username, password, database string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}

	return &Neo4jStore{
		client:   driver,
		database: database,
	}, nil
}

func (s *Neo4jStore) session(ctx context.Context) neo4j.SessionWithContext {
	return s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
}

// GetObject retrieves a single object by id.
func (s *Neo4jStore) GetObject(ctx context.Context, id string) (*types.CanonicalObject, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (o:Object {id: $id})
			RETURN o
		`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		return res.Single(ctx)
	})
	if err != nil {
		return nil, ErrObjectNotFound
	}

	record := result.(*db.Record)
	nodeValue, found := record.Get("o")
	if !found {
		return nil, ErrObjectNotFound
	}
	node, ok := nodeValue.(dbtype.Node)
	if !ok {
		return nil, fmt.Errorf("unexpected type for object node: got %T", nodeValue)
	}
	return objectFromNode(node)
}

// GetObjects retrieves multiple objects in one query; unknown ids are
// omitted.
func (s *Neo4jStore) GetObjects(ctx context.Context, ids []string) ([]*types.CanonicalObject, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (o:Object)
			WHERE o.id IN $ids
			RETURN o
		`, map[string]any{"ids": ids})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("object batch fetch failed: %w", err)
	}

	records := result.([]*db.Record)
	byID := make(map[string]*types.CanonicalObject, len(records))
	for _, record := range records {
		nodeValue, found := record.Get("o")
		if !found {
			continue
		}
		node, ok := nodeValue.(dbtype.Node)
		if !ok {
			continue
		}
		obj, err := objectFromNode(node)
		if err != nil {
			return nil, err
		}
		byID[obj.ID] = obj
	}

	// Preserve request order.
	out := make([]*types.CanonicalObject, 0, len(byID))
	for _, id := range ids {
		if obj, ok := byID[id]; ok {
			out = append(out, obj)
			delete(byID, id)
		}
	}
	return out, nil
}

// ListObjects retrieves objects matching the filter, ordered by id.
func (s *Neo4jStore) ListObjects(ctx context.Context, filter ObjectFilter) ([]*types.CanonicalObject, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (o:Object)
		WHERE ($platform = '' OR o.platform = $platform)
		  AND ($objectType = '' OR o.object_type = $objectType)
		RETURN o
		ORDER BY o.id
	`
	params := map[string]any{
		"platform":   filter.Platform,
		"objectType": filter.ObjectType,
	}
	if filter.Limit > 0 {
		query += " LIMIT $limit"
		params["limit"] = filter.Limit
	}

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("object list failed: %w", err)
	}

	records := result.([]*db.Record)
	out := make([]*types.CanonicalObject, 0, len(records))
	for _, record := range records {
		nodeValue, found := record.Get("o")
		if !found {
			continue
		}
		node, ok := nodeValue.(dbtype.Node)
		if !ok {
			continue
		}
		obj, err := objectFromNode(node)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

// UpsertObject creates or replaces an object node.
func (s *Neo4jStore) UpsertObject(ctx context.Context, obj *types.CanonicalObject) error {
	if err := obj.Validate(); err != nil {
		return err
	}

	props, err := objectToProps(obj)
	if err != nil {
		return err
	}

	session := s.session(ctx)
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, `
			MERGE (o:Object {id: $id})
			SET o = $props
		`, map[string]any{"id": obj.ID, "props": props})
	})
	if err != nil {
		return fmt.Errorf("object upsert failed: %w", err)
	}
	return nil
}

// UpsertChunk creates or replaces a chunk node linked to its parent.
func (s *Neo4jStore) UpsertChunk(ctx context.Context, chunk *types.Chunk) error {
	if err := chunk.Validate(); err != nil {
		return err
	}

	embedding, err := json.Marshal(chunk.Embedding)
	if err != nil {
		return fmt.Errorf("failed to encode embedding: %w", err)
	}

	session := s.session(ctx)
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, `
			MERGE (c:Chunk {id: $id})
			SET c.parent_object_id = $parentID,
			    c.content = $content,
			    c.chunk_index = $chunkIndex,
			    c.method = $method,
			    c.embedding = $embedding
			WITH c
			MATCH (o:Object {id: $parentID})
			MERGE (o)-[:HAS_CHUNK]->(c)
		`, map[string]any{
			"id":         chunk.ID,
			"parentID":   chunk.ParentObjectID,
			"content":    chunk.Content,
			"chunkIndex": chunk.ChunkIndex,
			"method":     chunk.Method,
			"embedding":  string(embedding),
		})
	})
	if err != nil {
		return fmt.Errorf("chunk upsert failed: %w", err)
	}
	return nil
}

// GetChunksByObject retrieves an object's chunks ordered by chunk index.
func (s *Neo4jStore) GetChunksByObject(ctx context.Context, objectID string) ([]*types.Chunk, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (c:Chunk {parent_object_id: $objectID})
			RETURN c
			ORDER BY c.chunk_index
		`, map[string]any{"objectID": objectID})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("chunk fetch failed: %w", err)
	}

	records := result.([]*db.Record)
	out := make([]*types.Chunk, 0, len(records))
	for _, record := range records {
		nodeValue, found := record.Get("c")
		if !found {
			continue
		}
		node, ok := nodeValue.(dbtype.Node)
		if !ok {
			continue
		}
		out = append(out, chunkFromNode(node))
	}
	return out, nil
}

// SearchChunks fetches chunk embeddings and performs top-K cosine scoring
// client-side, matching the behavior of the other backends.
func (s *Neo4jStore) SearchChunks(ctx context.Context, queryVector []float32, topK int, minScore float64) ([]types.ScoredChunk, error) {
	if len(queryVector) == 0 {
		return nil, nil
	}

	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (c:Chunk)
			WHERE c.embedding IS NOT NULL
			RETURN c
		`, nil)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("chunk search failed: %w", err)
	}

	records := result.([]*db.Record)
	scored := make([]vector.ScoredItem[*types.Chunk], 0, len(records))
	for _, record := range records {
		nodeValue, found := record.Get("c")
		if !found {
			continue
		}
		node, ok := nodeValue.(dbtype.Node)
		if !ok {
			continue
		}
		chunk := chunkFromNode(node)
		if len(chunk.Embedding) == 0 {
			continue
		}
		score := vector.CosineSimilarity(queryVector, chunk.Embedding)
		if score >= minScore {
			scored = append(scored, vector.ScoredItem[*types.Chunk]{Item: chunk, Score: score})
		}
	}

	top := vector.TopKByScore(scored, topK)
	out := make([]types.ScoredChunk, len(top))
	for i, item := range top {
		out[i] = types.ScoredChunk{Chunk: item.Item, Score: item.Score}
	}
	return out, nil
}

// MergeRelations unions targetIDs into the object's named relation and
// overwrites its match confidence. The read-modify-write runs inside a
// single write transaction.
func (s *Neo4jStore) MergeRelations(ctx context.Context, objectID, relationName string, targetIDs []string, confidence float64) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (o:Object {id: $id})
			RETURN o
		`, map[string]any{"id": objectID})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, ErrObjectNotFound
		}

		nodeValue, found := record.Get("o")
		if !found {
			return nil, ErrObjectNotFound
		}
		node, ok := nodeValue.(dbtype.Node)
		if !ok {
			return nil, fmt.Errorf("unexpected type for object node: got %T", nodeValue)
		}
		obj, err := objectFromNode(node)
		if err != nil {
			return nil, err
		}

		obj.MergeRelationTargets(relationName, targetIDs)
		if obj.Properties == nil {
			obj.Properties = make(map[string]interface{})
		}
		obj.Properties[types.PropertyMatchConfidence] = confidence

		props, err := objectToProps(obj)
		if err != nil {
			return nil, err
		}
		return tx.Run(ctx, `
			MATCH (o:Object {id: $id})
			SET o = $props
		`, map[string]any{"id": objectID, "props": props})
	})
	if err != nil {
		return fmt.Errorf("relation merge failed: %w", err)
	}
	return nil
}

// Close shuts down the underlying driver.
func (s *Neo4jStore) Close() error {
	return s.client.Close(context.Background())
}

// objectToProps flattens an object into Neo4j node properties. Nested
// structures round-trip through JSON strings.
func objectToProps(obj *types.CanonicalObject) (map[string]any, error) {
	encoded, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to encode object: %w", err)
	}
	return map[string]any{
		"id":          obj.ID,
		"platform":    obj.Platform,
		"object_type": obj.ObjectType,
		"data":        string(encoded),
	}, nil
}

func objectFromNode(node dbtype.Node) (*types.CanonicalObject, error) {
	data, ok := node.Props["data"].(string)
	if !ok {
		return nil, fmt.Errorf("object node missing data property")
	}
	var obj types.CanonicalObject
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("failed to decode object: %w", err)
	}
	return &obj, nil
}

func chunkFromNode(node dbtype.Node) *types.Chunk {
	chunk := &types.Chunk{}
	if v, ok := node.Props["id"].(string); ok {
		chunk.ID = v
	}
	if v, ok := node.Props["parent_object_id"].(string); ok {
		chunk.ParentObjectID = v
	}
	if v, ok := node.Props["content"].(string); ok {
		chunk.Content = v
	}
	if v, ok := node.Props["chunk_index"].(int64); ok {
		chunk.ChunkIndex = int(v)
	}
	if v, ok := node.Props["method"].(string); ok {
		chunk.Method = v
	}
	if v, ok := node.Props["embedding"].(string); ok && v != "" {
		var embedding []float32
		if err := json.Unmarshal([]byte(v), &embedding); err == nil {
			chunk.Embedding = embedding
		}
	}
	return chunk
}
