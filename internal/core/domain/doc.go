// Package domain defines the core business entities for SceneSeek.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SceneRecord: One indexed scene, joined to its embedding by sequence index
//   - Segment: A detected time span within a video
//   - Candidate / SceneMatch: Query-time ranking entries
//   - DescriptorSet: Local feature descriptors of one image
//   - IndexReport: Outcome of an indexing run
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
