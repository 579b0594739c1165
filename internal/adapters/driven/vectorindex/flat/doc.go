// Package flat provides an exact, brute-force L2 vector index.
//
// Vectors are stored contiguously in append order, so a vector's position
// is its sequence index. Search scans every vector and keeps the k nearest
// in a bounded heap; results are ordered by squared Euclidean distance,
// ties broken by ascending sequence index.
//
// The index persists as a small fixed header followed by a zstd-compressed
// little-endian float32 payload (see Encode).
package flat
