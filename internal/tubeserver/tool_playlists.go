package tubeserver

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerPlaylistTools(server *mcp.Server) {
	registerListPlaylists(server)
	registerCreatePlaylist(server)
	registerAddToPlaylist(server)
	registerRemoveFromPlaylist(server)
}

func registerListPlaylists(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_list_playlists",
		Description: "List a channel's playlists with item counts and privacy status. Costs 1 quota unit.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.ListPlaylistsInput) (*mcp.CallToolResult, engine.ListPlaylistsOutput, error) {
		if input.ChannelID == "" && !input.Mine {
			return nil, engine.ListPlaylistsOutput{}, fmt.Errorf("channel_id or mine is required")
		}
		maxResults := toolutil.ClampResults(input.MaxResults, 10, 50)

		desc := dataDesc("youtube_list_playlists", "list", input.Mine)
		playlists, err := engine.Invoke(ctx, engine.Dispatch, desc, func(ctx context.Context, token string, _ *engine.Bill) ([]engine.Playlist, error) {
			return engine.DataAPI.ListPlaylists(ctx, token, input.ChannelID, input.Mine, maxResults)
		})
		if err != nil {
			return nil, engine.ListPlaylistsOutput{}, err
		}

		infos := make([]engine.PlaylistInfo, 0, len(playlists))
		for _, p := range playlists {
			infos = append(infos, playlistInfo(p))
		}
		return nil, engine.ListPlaylistsOutput{Playlists: infos, Total: len(infos)}, nil
	})
}

func registerCreatePlaylist(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_create_playlist",
		Description: "Create a playlist on the authenticated channel. Defaults to private. Costs 50 quota units.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.CreatePlaylistInput) (*mcp.CallToolResult, engine.CreatePlaylistOutput, error) {
		if input.Title == "" {
			return nil, engine.CreatePlaylistOutput{}, fmt.Errorf("title is required")
		}
		privacy := input.PrivacyStatus
		if privacy == "" {
			privacy = "private"
		}

		desc := engine.Descriptor{
			Name:         "youtube_create_playlist",
			Cost:         engine.Quota.Cost("insert"),
			RequiresAuth: true,
		}
		created, err := engine.Invoke(ctx, engine.Dispatch, desc, func(ctx context.Context, token string, _ *engine.Bill) (*engine.Playlist, error) {
			return engine.DataAPI.CreatePlaylist(ctx, token, input.Title, input.Description, privacy)
		})
		if err != nil {
			return nil, engine.CreatePlaylistOutput{}, err
		}

		return nil, engine.CreatePlaylistOutput{
			PlaylistID: created.ID,
			Title:      created.Snippet.Title,
			Privacy:    privacy,
			URL:        toolutil.PlaylistURL(created.ID),
		}, nil
	})
}

func registerAddToPlaylist(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_add_to_playlist",
		Description: "Add a video to a playlist, optionally at a specific position. Costs 50 quota units.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.AddToPlaylistInput) (*mcp.CallToolResult, engine.AddToPlaylistOutput, error) {
		if input.PlaylistID == "" || input.VideoID == "" {
			return nil, engine.AddToPlaylistOutput{}, fmt.Errorf("playlist_id and video_id are required")
		}

		desc := engine.Descriptor{
			Name:         "youtube_add_to_playlist",
			Cost:         engine.Quota.Cost("insert"),
			RequiresAuth: true,
		}
		item, err := engine.Invoke(ctx, engine.Dispatch, desc, func(ctx context.Context, token string, _ *engine.Bill) (*engine.PlaylistItem, error) {
			return engine.DataAPI.AddPlaylistItem(ctx, token, input.PlaylistID, input.VideoID, input.Position)
		})
		if err != nil {
			return nil, engine.AddToPlaylistOutput{}, err
		}

		return nil, engine.AddToPlaylistOutput{
			PlaylistItemID: item.ID,
			PlaylistID:     input.PlaylistID,
			VideoID:        input.VideoID,
			Added:          true,
		}, nil
	})
}

func registerRemoveFromPlaylist(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_remove_from_playlist",
		Description: "Remove an item from a playlist by its playlist item ID. Costs 50 quota units.",
		Annotations: &mcp.ToolAnnotations{DestructiveHint: ptr(true)},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.RemoveFromPlaylistInput) (*mcp.CallToolResult, engine.RemoveFromPlaylistOutput, error) {
		if input.PlaylistItemID == "" {
			return nil, engine.RemoveFromPlaylistOutput{}, fmt.Errorf("playlist_item_id is required")
		}

		desc := engine.Descriptor{
			Name:         "youtube_remove_from_playlist",
			Cost:         engine.Quota.Cost("delete"),
			RequiresAuth: true,
		}
		_, err := engine.Invoke(ctx, engine.Dispatch, desc, func(ctx context.Context, token string, _ *engine.Bill) (struct{}, error) {
			return struct{}{}, engine.DataAPI.RemovePlaylistItem(ctx, token, input.PlaylistItemID)
		})
		if err != nil {
			return nil, engine.RemoveFromPlaylistOutput{}, err
		}
		return nil, engine.RemoveFromPlaylistOutput{PlaylistItemID: input.PlaylistItemID, Removed: true}, nil
	})
}

func playlistInfo(p engine.Playlist) engine.PlaylistInfo {
	info := engine.PlaylistInfo{
		PlaylistID:  p.ID,
		Title:       p.Snippet.Title,
		Description: toolutil.Truncate(p.Snippet.Description, 300),
		URL:         toolutil.PlaylistURL(p.ID),
	}
	if p.Status != nil {
		info.Privacy = p.Status.PrivacyStatus
	}
	if p.ContentDetails != nil {
		info.ItemCount = p.ContentDetails.ItemCount
	}
	return info
}
