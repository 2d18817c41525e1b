package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/passbi/transitcat/internal/apperr"
	"github.com/passbi/transitcat/internal/routegraph"
)

func buildLineGraph() *routegraph.Graph {
	// 0 -> 1 -> 2 -> 3, weights 1, 2, 3; plus a shortcut 0 -> 2 weight 10
	// (longer than 1+2=3, so the direct two-hop path should still win).
	g := routegraph.New(4)
	g.AddEdge(0, 1, 1)
	g.AddEdge(1, 2, 2)
	g.AddEdge(2, 3, 3)
	g.AddEdge(0, 2, 10)
	return g
}

func TestBuildRouteFindsShortestPath(t *testing.T) {
	r := New(buildLineGraph())

	handle, found, err := r.BuildRoute(0, 3)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 6.0, handle.TotalWeight())
	assert.Equal(t, 3, handle.EdgeCount())
}

func TestBuildRoutePrefersCheaperParallelPath(t *testing.T) {
	r := New(buildLineGraph())

	handle, found, err := r.BuildRoute(0, 2)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3.0, handle.TotalWeight()) // 1+2, not the direct 10
}

func TestBuildRouteSameVertexIsZeroWeightNoEdges(t *testing.T) {
	r := New(buildLineGraph())

	handle, found, err := r.BuildRoute(2, 2)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 0.0, handle.TotalWeight())
	assert.Equal(t, 0, handle.EdgeCount())
}

func TestBuildRouteUnreachableReturnsNotFound(t *testing.T) {
	g := routegraph.New(3)
	g.AddEdge(0, 1, 1)
	// vertex 2 has no incoming edge.
	r := New(g)

	handle, found, err := r.BuildRoute(0, 2)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, handle)
}

func TestBuildRouteInvalidVertex(t *testing.T) {
	r := New(buildLineGraph())

	_, _, err := r.BuildRoute(0, 99)
	assert.ErrorIs(t, err, apperr.InvalidVertex)
}

func TestRouteEdgeEnumeratesSourceToDestinationOrder(t *testing.T) {
	r := New(buildLineGraph())

	handle, found, err := r.BuildRoute(0, 3)
	assert.NoError(t, err)
	assert.True(t, found)

	var froms []int
	for i := 0; i < handle.EdgeCount(); i++ {
		eid, err := r.RouteEdge(handle, i)
		assert.NoError(t, err)
		e, err := r.g.EdgeAt(eid)
		assert.NoError(t, err)
		froms = append(froms, e.From)
	}
	assert.Equal(t, []int{0, 1, 2}, froms)
}

func TestMemoizationReturnsConsistentResults(t *testing.T) {
	r := New(buildLineGraph())

	h1, _, _ := r.BuildRoute(0, 3)
	h2, _, _ := r.BuildRoute(0, 1) // shares the same memoized source tree
	h3, _, _ := r.BuildRoute(0, 3)

	assert.Equal(t, h1.TotalWeight(), h3.TotalWeight())
	assert.Equal(t, 1.0, h2.TotalWeight())
}
