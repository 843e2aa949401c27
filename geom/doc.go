// Package geom provides the 2D geometry primitives the spatial index is
// built over: points, multi-points, polylines, polygons with holes, and
// collections of those.
//
// Two operations matter to the index: Bound, the axis-aligned bounding
// rectangle of a geometry, and Distance, the exact shortest Euclidean
// distance between two geometries. Distance is a metric on non-empty
// geometries: non-negative, symmetric, and zero exactly when the
// geometries touch or overlap.
package geom
