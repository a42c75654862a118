package graph

import (
	"context"
	"fmt"
)

// IntroPath is a shortest KNOWS chain between two people.
type IntroPath struct {
	Path []string `json:"path"`
	Hops int64    `json:"hops"`
}

// ShortestKnowsPath finds the shortest KNOWS path up to maxDepth hops.
// Returns ErrNotFound when no path exists within the bound. The depth is
// inlined because variable-length bounds cannot be parameterized.
func (s *Store) ShortestKnowsPath(ctx context.Context, src, dst string, maxDepth int) (*IntroPath, error) {
	if maxDepth < 1 {
		maxDepth = 1
	}
	rows, err := s.Query(ctx, fmt.Sprintf(`
		MATCH (a:Person {id: $src}), (b:Person {id: $dst})
		MATCH p = shortestPath((a)-[:KNOWS*..%d]-(b))
		RETURN [n IN nodes(p) | n.id] AS nodeIds, length(p) AS hops`, maxDepth),
		map[string]any{"src": src, "dst": dst})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &IntroPath{
		Path: asStrings(rows[0]["nodeIds"]),
		Hops: asInt(rows[0]["hops"]),
	}, nil
}
