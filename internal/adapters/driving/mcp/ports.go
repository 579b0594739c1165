package mcp

import (
	"github.com/custodia-labs/sceneseek/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server exposes.
type Ports struct {
	// Query answers find_scene.
	Query driving.QueryService

	// Indexer backs index_library and the run history resource. Optional.
	Indexer driving.Indexer

	// Inspector backs the index resource. Optional.
	Inspector driving.IndexInspector
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
