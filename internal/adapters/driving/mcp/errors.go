// Package mcp provides an MCP (Model Context Protocol) server adapter for SceneSeek.
// It lets AI assistants find video scenes by image and trigger library indexing.
package mcp

import "errors"

var (
	// ErrMissingQueryService is returned when the query service is not provided.
	ErrMissingQueryService = errors.New("mcp: query service is required")

	// ErrMissingImage is returned when find_scene receives neither a path nor inline data.
	ErrMissingImage = errors.New("mcp: image_path or image_base64 is required")
)
