// Package domain defines the core business entities for dpln.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Partition: A content type (dungeon, quest) with its collection and catalog
//   - Chunk: An indexed, embedded section of a source page
//   - Result: The tagged outcome of a retrieval (chunks or a failure message)
//   - Resolution: The outcome of fuzzy subject matching
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
