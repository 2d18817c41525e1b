// Package apperr defines the sentinel error taxonomy shared across the
// ingestion, graph-building and query layers.
package apperr

import "errors"

// Sentinel errors. Wrap these with fmt.Errorf("...: %w", Err...) to add
// context; callers should compare with errors.Is.
var (
	// MalformedInput means the input document failed to parse or was
	// missing/mistyped required fields. Fatal at the CLI boundary.
	MalformedInput = errors.New("malformed input")

	// MissingDistance means a bus route references a leg with no road
	// distance available in either direction. Fatal at build time.
	MissingDistance = errors.New("missing distance")

	// UnknownEntity means a query named a stop or bus that was never
	// registered. Reported per-query, never fatal.
	UnknownEntity = errors.New("unknown entity")

	// NoPath means a routing query's endpoints are not connected by any
	// directed path. Reported per-query, never fatal.
	NoPath = errors.New("no path")

	// InvalidVertex means a caller passed a vertex id outside
	// [0, vertex_count). This should never be reachable from a valid
	// input document; its presence indicates a programming error in the
	// builder or query layer.
	InvalidVertex = errors.New("invalid vertex")
)
