// Package inference provides the HTTP client for the model sidecar that
// computes global embeddings and local feature descriptors.
//
// The sidecar exposes:
//
//	POST /v1/embed        {"model", "image"}  -> {"embedding": [...]}
//	POST /v1/descriptors  {"image"}           -> {"descriptor_size", "descriptors"}
//	GET  /healthz
//
// Images travel as base64-encoded PNG. Descriptors are returned packed and
// base64-encoded. A 422 response means the sidecar could not use the image.
package inference
