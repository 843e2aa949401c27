// Package spindex provides an in-memory spatial index answering true
// k-nearest-neighbour queries and joins over heterogeneous 2D geometries.
//
// "True" means results are ranked by the exact shortest Euclidean distance
// between geometries, not by the centroid or bounding-box distances that
// off-the-shelf spatial indexes return. The index organises shapes in a
// bounding-volume hierarchy, streams candidates in non-decreasing
// lower-bound order, and refines them with exact distances until no unseen
// shape can enter the result — so the number of exact distance evaluations
// stays far below the collection size on typical data.
//
// # Quick start
//
//	shapes := provider.Slice{
//	    geom.P(0, 0),
//	    geom.LineString{geom.P(1, 0), geom.P(2, 1)},
//	    geom.Polygon{Shell: geom.Ring{geom.P(4, 4), geom.P(6, 4), geom.P(6, 6), geom.P(4, 6)}},
//	}
//	si, err := spindex.New(shapes)
//	if err != nil {
//	    panic(err)
//	}
//	nearest, err := si.TrueKNN(ctx, geom.P(1.5, 0.5), 2)
//	// nearest[0] is the closest shape with its exact distance.
//
// # Joins
//
// For each shape of a left collection, Join finds its k nearest shapes in
// the indexed right collection, streaming rows lazily in left order:
//
//	for row, err := range si.Join(ctx, leftShapes, 3) {
//	    if err != nil {
//	        return err
//	    }
//	    process(row.LeftID, row.Neighbors)
//	}
//
// # Builders
//
// Two bulk builders share the same query surface:
//
//   - Divisive k-means (default): clusters envelope centers top-down;
//     produces compact nodes on clustered data.
//   - Sort-Tile-Recurse: deterministic packing by coordinate sorting;
//     fastest to build.
//
// Both can summarise shapes with axis-aligned rectangles (default) or
// smallest enclosing circles, selected with WithEnclosure.
//
// Indexes are immutable after New and safe for concurrent queries.
package spindex
