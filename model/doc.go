// Package model defines the shared scalar types used across the spatial
// index: shape identifiers, approximate candidates and exact neighbors.
package model
