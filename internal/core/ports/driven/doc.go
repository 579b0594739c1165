// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Capabilities
//
// Opaque media and inference capabilities consumed by the pipelines:
//
//   - EmbeddingProvider: Maps an image to a fixed-length embedding
//   - LocalFeatureProvider: Extracts and matches local descriptors
//   - SceneDetector: Splits a video into ordered time segments
//   - FrameSource: Decodes a video frame at a timestamp
//   - VideoLibrary: Discovers videos and resolves ids to paths
//
// # Storage
//
//   - VectorIndex: Exact L2 index over scene embeddings
//   - SceneCatalog: Ordered scene records joined to the index by sequence index
//   - IndexRepository: Loads and persists the index/catalog pair
//   - ConfigStore: Application configuration
//   - SchedulerStore / IndexRunStore: Task state and run history
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - FrameRenderer: Without it, query results carry no rendering.
//   - SnapshotStore: Without it, snapshot push/pull is unavailable.
//   - IndexRunStore: Without it, run history is not recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
