// Package tubeserver exposes the engine as MCP tools. Handlers stay thin:
// validate input, build a cost descriptor, run the call through the
// dispatcher, shape the output.
package tubeserver

import (
	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools registers every youtube_* tool on the given MCP server.
func RegisterTools(server *mcp.Server) {
	registerAuthTools(server)
	registerChannelTools(server)
	registerSearchTools(server)
	registerTranscriptTools(server)
	registerAnalyticsTools(server)
	registerPublishingTools(server)
	registerPlaylistTools(server)
	registerCommentTools(server)
	registerReportingTools(server)
}

// dataDesc builds the descriptor for one Data API operation. Public reads
// can run on the API key alone; without a configured key they fall back to
// requiring OAuth.
func dataDesc(name, op string, needsAuth bool) engine.Descriptor {
	if !needsAuth && engine.Session.APIKey() == "" {
		needsAuth = true
	}
	return engine.Descriptor{
		Name:         name,
		Cost:         engine.Quota.Cost(op),
		RequiresAuth: needsAuth,
	}
}
