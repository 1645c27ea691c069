package tubeserver

import (
	"context"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerAuthTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_auth",
		Description: "Run the interactive OAuth consent flow in a browser and store the resulting credential. Required once before any channel-owned operation (uploads, analytics, captions of your own videos). Blocks until consent completes.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.AuthInput) (*mcp.CallToolResult, engine.AuthOutput, error) {
		if st := engine.Session.Status(); st.Authenticated {
			return nil, engine.AuthOutput{Status: "already_authenticated", Detail: st}, nil
		}
		if _, err := engine.Session.InteractiveAuth(ctx); err != nil {
			return nil, engine.AuthOutput{}, err
		}
		return nil, engine.AuthOutput{Status: "authenticated", Detail: engine.Session.Status()}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_auth_status",
		Description: "Report the stored credential state (authenticated, expired, scopes) and today's quota usage. Never triggers a consent flow and consumes no quota.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.AuthStatusInput) (*mcp.CallToolResult, engine.AuthStatusOutput, error) {
		return nil, engine.AuthStatusOutput{
			Auth:  engine.Session.Status(),
			Quota: engine.Quota.Status(),
		}, nil
	})
}
