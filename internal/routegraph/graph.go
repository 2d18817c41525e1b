// Package routegraph is an append-only directed weighted graph: a fixed
// vertex count plus non-negative double-weighted edges, identified by a
// monotonically increasing id assigned at insertion. No deletion is
// ever supported.
package routegraph

import (
	"fmt"
	"sync"

	"github.com/passbi/transitcat/internal/apperr"
)

// Edge is one directed, weighted connection between two vertices.
type Edge struct {
	From, To int
	Weight   float64
}

// Graph is a fixed-vertex-count, append-only directed weighted graph.
// Reads (Outgoing, EdgeAt, VertexCount) are safe for concurrent use once
// construction (AddEdge) has stopped; AddEdge itself is also safe to
// call concurrently but is only ever used single-threaded by the
// transit graph builder.
type Graph struct {
	mu       sync.RWMutex
	vertices int
	edges    []Edge
	outgoing [][]int // vertex -> edge ids, in insertion order
}

// New returns an empty graph over vertexCount vertices (0..vertexCount-1).
func New(vertexCount int) *Graph {
	return &Graph{
		vertices: vertexCount,
		outgoing: make([][]int, vertexCount),
	}
}

// VertexCount returns the fixed number of vertices, set at construction.
func (g *Graph) VertexCount() int {
	return g.vertices
}

// AddEdge appends a new edge from -> to with the given weight and
// returns its freshly allocated id. Parallel edges are never
// deduplicated. Fails with apperr.InvalidVertex if either endpoint is
// out of range.
func (g *Graph) AddEdge(from, to int, weight float64) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if from < 0 || from >= g.vertices || to < 0 || to >= g.vertices {
		return 0, fmt.Errorf("%w: edge %d -> %d, vertex_count=%d", apperr.InvalidVertex, from, to, g.vertices)
	}

	id := len(g.edges)
	g.edges = append(g.edges, Edge{From: from, To: to, Weight: weight})
	g.outgoing[from] = append(g.outgoing[from], id)
	return id, nil
}

// Outgoing returns the edge ids leaving v, in the order they were added.
// The order is unspecified by the interface contract but is in fact
// stable (insertion order) across calls.
func (g *Graph) Outgoing(v int) ([]int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if v < 0 || v >= g.vertices {
		return nil, fmt.Errorf("%w: vertex %d, vertex_count=%d", apperr.InvalidVertex, v, g.vertices)
	}
	out := make([]int, len(g.outgoing[v]))
	copy(out, g.outgoing[v])
	return out, nil
}

// EdgeAt returns the edge registered under id.
func (g *Graph) EdgeAt(id int) (Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if id < 0 || id >= len(g.edges) {
		return Edge{}, fmt.Errorf("%w: edge id %d out of range [0,%d)", apperr.InvalidVertex, id, len(g.edges))
	}
	return g.edges[id], nil
}

// EdgeCount returns the number of edges added so far.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}
