package retrieval

import (
	"context"
	"fmt"

	"github.com/teamtrace/relato/pkg/types"
)

// Neighborhood is the result of a graph traversal: the objects reached
// from the start object and the edges discovered along the way.
type Neighborhood struct {
	Objects   []*types.CanonicalObject `json:"objects"`
	Relations []types.Relation         `json:"relations"`
}

// GetRelatedObjects walks the explicit relation graph outward from the
// given object up to maxDepth hops and returns the objects reached plus
// the edges discovered. Only explicit relations are followed so traversal
// cost stays bounded and similarity edges do not dominate the frontier.
// A visited set guarantees termination on cyclic graphs and each object
// appears at most once; ids that do not resolve to stored objects are
// skipped without failing the traversal. The start object is not included
// in the returned objects.
func (r *Retriever) GetRelatedObjects(ctx context.Context, objectID string, maxDepth int) (*Neighborhood, error) {
	if maxDepth <= 0 {
		maxDepth = r.config.RelationDepth
	}
	out := &Neighborhood{}
	if maxDepth <= 0 {
		return out, nil
	}

	root, err := r.store.GetObject(ctx, objectID)
	if err != nil {
		return nil, fmt.Errorf("traversal root fetch failed: %w", err)
	}

	visited := map[string]bool{objectID: true}
	frontier := []*types.CanonicalObject{root}
	seenEdges := make(map[string]bool)

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		edges := r.inferrer.ExtractExplicit(frontier)

		var ids []string
		for _, edge := range edges {
			if !seenEdges[edge.Key()] {
				seenEdges[edge.Key()] = true
				out.Relations = append(out.Relations, edge)
			}
			for _, id := range []string{edge.FromID, edge.ToID} {
				if id == "" || visited[id] {
					continue
				}
				visited[id] = true
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			break
		}

		// Actor identities and deleted objects resolve to nothing; the
		// store omits them.
		next, err := r.store.GetObjects(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("traversal fetch at depth %d failed: %w", depth+1, err)
		}
		out.Objects = append(out.Objects, next...)
		frontier = next
	}

	return out, nil
}
