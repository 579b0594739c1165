// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The indexing pipeline is the only writer of the vector index and scene
// catalog. It builds a new pair off to the side and publishes it through
// IndexHandle; the query pipeline only ever reads published snapshots.
//
// Services are pure Go with no CGO.
package services
