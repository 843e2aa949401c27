package spindex

import (
	"github.com/datastorm-open/SpatialIndex/geom"
	"github.com/datastorm-open/SpatialIndex/index"
)

// Error kinds surfaced by queries and builds, re-exported so that callers
// of the facade do not need to import the subpackages to match them.
var (
	// ErrInvalidK is returned when a negative neighbour count is requested.
	ErrInvalidK = index.ErrInvalidK

	// ErrEmptyGeometry is returned when a query or indexed geometry has no
	// points at all.
	ErrEmptyGeometry = geom.ErrEmptyGeometry

	// ErrNonFinite is returned when a geometry carries NaN or infinite
	// coordinates; such shapes are rejected at build time.
	ErrNonFinite = geom.ErrNonFinite
)
