// Package routing answers shortest-path queries over an immutable,
// non-negative-weight directed graph: given a from/to vertex pair, it
// returns the minimum total weight and a reconstructable edge sequence.
//
// The chosen strategy is on-demand Dijkstra from from_vertex, memoized:
// the first query from a given source computes the full single-source
// shortest-path tree and caches it; subsequent queries sharing that
// source reuse the cached tree in O(1). The heap-based search structure
// follows the classic priority-queue Dijkstra shape, without an A*
// heuristic term — a full single-source sweep over this graph's bounded
// vertex space makes a heuristic's early-termination benefit moot, since
// every reachable vertex gets a distance anyway.
package routing

import (
	"container/heap"
	"fmt"
	"sync"

	"github.com/passbi/transitcat/internal/apperr"
	"github.com/passbi/transitcat/internal/routegraph"
)

// Router answers shortest-path queries over a fixed graph.
type Router struct {
	g *routegraph.Graph

	mu   sync.Mutex
	memo map[int]*sourceTree
}

// New returns a router over g. g must not be mutated (more edges added)
// after this call; the router's memoized trees would otherwise go stale.
func New(g *routegraph.Graph) *Router {
	return &Router{
		g:    g,
		memo: make(map[int]*sourceTree),
	}
}

// sourceTree is the single-source shortest-path result from one vertex,
// opaque to callers.
type sourceTree struct {
	dist    []float64
	viaEdge []int // edge id used to reach vertex on the shortest path, -1 if unreached or source
	reached []bool
}

// RouteHandle lets a caller enumerate, in order, the edges chosen for
// one from->to query. Handles are immutable and remain valid for the
// router's lifetime.
type RouteHandle struct {
	edgeIDs     []int
	totalWeight float64
}

// TotalWeight returns the route's total weight.
func (h *RouteHandle) TotalWeight() float64 { return h.totalWeight }

// EdgeCount returns the number of edges in the route.
func (h *RouteHandle) EdgeCount() int { return len(h.edgeIDs) }

// BuildRoute returns the minimum-weight path from -> to, or found=false
// if no directed path exists. Invalid vertex indices return
// apperr.InvalidVertex. When from == to, the result is a zero-weight,
// zero-edge route.
func (r *Router) BuildRoute(from, to int) (handle *RouteHandle, found bool, err error) {
	n := r.g.VertexCount()
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, false, fmt.Errorf("%w: from=%d to=%d vertex_count=%d", apperr.InvalidVertex, from, to, n)
	}
	if from == to {
		return &RouteHandle{}, true, nil
	}

	tree := r.treeFrom(from)
	if !tree.reached[to] {
		return nil, false, nil
	}

	// Walk predecessor edges back from `to` to `from`, then reverse.
	var edges []int
	v := to
	for v != from {
		eid := tree.viaEdge[v]
		e, _ := r.g.EdgeAt(eid)
		edges = append(edges, eid)
		v = e.From
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	return &RouteHandle{edgeIDs: edges, totalWeight: tree.dist[to]}, true, nil
}

// RouteEdge returns the edge id at position i (0-based, source to
// destination order) of a route produced by BuildRoute.
func (r *Router) RouteEdge(h *RouteHandle, i int) (int, error) {
	if i < 0 || i >= len(h.edgeIDs) {
		return 0, fmt.Errorf("%w: route edge index %d out of range [0,%d)", apperr.InvalidVertex, i, len(h.edgeIDs))
	}
	return h.edgeIDs[i], nil
}

// treeFrom returns the memoized single-source shortest-path tree from
// src, computing it on first request.
func (r *Router) treeFrom(src int) *sourceTree {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.memo[src]; ok {
		return t
	}
	t := r.dijkstra(src)
	r.memo[src] = t
	return t
}

// dijkstra runs single-source Dijkstra from src over r.g. Relaxation
// uses strict less-than, so among equal-weight paths the one discovered
// first wins; given deterministic edge insertion order in the builder,
// that makes tie-breaking deterministic.
func (r *Router) dijkstra(src int) *sourceTree {
	n := r.g.VertexCount()
	t := &sourceTree{
		dist:    make([]float64, n),
		viaEdge: make([]int, n),
		reached: make([]bool, n),
	}
	for i := range t.viaEdge {
		t.viaEdge[i] = -1
	}
	t.dist[src] = 0
	t.reached[src] = true

	pq := &vertexHeap{{vertex: src, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(vertexDist)
		if cur.dist > t.dist[cur.vertex] && t.reached[cur.vertex] {
			continue // stale entry, a better path was already relaxed in
		}

		edgeIDs, _ := r.g.Outgoing(cur.vertex)
		for _, eid := range edgeIDs {
			e, _ := r.g.EdgeAt(eid)
			nd := t.dist[cur.vertex] + e.Weight
			if !t.reached[e.To] || nd < t.dist[e.To] {
				t.dist[e.To] = nd
				t.viaEdge[e.To] = eid
				t.reached[e.To] = true
				heap.Push(pq, vertexDist{vertex: e.To, dist: nd})
			}
		}
	}

	return t
}

// vertexDist is one entry in the Dijkstra open set.
type vertexDist struct {
	vertex int
	dist   float64
}

// vertexHeap implements container/heap.Interface as a min-heap over dist.
type vertexHeap []vertexDist

func (h vertexHeap) Len() int            { return len(h) }
func (h vertexHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h vertexHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *vertexHeap) Push(x interface{}) { *h = append(*h, x.(vertexDist)) }
func (h *vertexHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
