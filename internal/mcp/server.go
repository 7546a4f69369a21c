// ABOUTME: MCP server setup for the vitals ingestion and scoring core.
// ABOUTME: Wraps MCP server with the ingest service and repository.
package mcp

import (
	"context"

	"github.com/harperreed/vitals/internal/ingest"
	"github.com/harperreed/vitals/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with service and storage access.
type Server struct {
	mcpServer *mcp.Server
	service   *ingest.Service
	repo      storage.Repository
}

// NewServer creates a new MCP server over the given service and storage.
func NewServer(service *ingest.Service, repo storage.Repository) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "vitals",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		service:   service,
		repo:      repo,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
