// Package provider defines the read-only shape containers an index is
// built over. A provider is a thin adaptor: Slice for dense positional
// ids, Map for sparse ids, Subset for a bitmap-restricted view of either.
package provider
