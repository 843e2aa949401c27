// Package envelope implements the bounding volumes the index summarises
// shapes with: axis-aligned minimum bounding rectangles and smallest
// enclosing circles.
//
// Classically spatial indexes use rectangles. Circles are equally cheap in
// space and often give tighter distance bounds for elongated diagonal
// shapes, so both variants are provided behind one interface and an index
// can be built with either.
package envelope
