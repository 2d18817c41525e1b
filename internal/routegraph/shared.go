package routegraph

import "sync"

// sharedGraph and sharedMu back Shared(), the process-wide singleton
// accessor used by cmd/server, keeping the one-shot CLI path (which
// prefers New per invocation) free of any global state.
var (
	sharedMu    sync.Mutex
	sharedGraph *Graph
)

// Shared returns the process-wide graph singleton, creating an empty
// zero-vertex graph on first access. cmd/server replaces it wholesale
// via SetShared once a corpus has been built.
func Shared() *Graph {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedGraph == nil {
		sharedGraph = New(0)
	}
	return sharedGraph
}

// SetShared installs g as the process-wide graph singleton. Used by
// cmd/server and cmd/rebuild-graph after (re)building a corpus.
func SetShared(g *Graph) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	sharedGraph = g
}
