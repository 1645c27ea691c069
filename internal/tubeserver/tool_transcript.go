package tubeserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTranscriptTools(server *mcp.Server) {
	registerListCaptions(server)
	registerGetTranscript(server)
}

func registerListCaptions(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_list_captions",
		Description: "List the caption tracks of a video you own, including language, kind (standard/ASR), and draft state. Requires OAuth and channel ownership. Costs 1 quota unit.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.ListCaptionsInput) (*mcp.CallToolResult, engine.ListCaptionsOutput, error) {
		if input.VideoID == "" {
			return nil, engine.ListCaptionsOutput{}, fmt.Errorf("video_id is required")
		}

		tracks, err := engine.Transcripts.ListCaptions(ctx, input.VideoID)
		if err != nil {
			return nil, engine.ListCaptionsOutput{}, err
		}

		infos := make([]engine.CaptionTrackInfo, 0, len(tracks))
		for _, t := range tracks {
			infos = append(infos, engine.CaptionTrackInfo{
				CaptionID:    t.ID,
				Language:     t.Snippet.Language,
				Name:         t.Snippet.Name,
				TrackKind:    t.Snippet.TrackKind,
				IsAutoSynced: t.Snippet.IsAutoSynced,
				IsDraft:      t.Snippet.IsDraft,
				LastUpdated:  t.Snippet.LastUpdated,
			})
		}
		return nil, engine.ListCaptionsOutput{VideoID: input.VideoID, Tracks: infos}, nil
	})
}

func registerGetTranscript(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_get_transcript",
		Description: "Fetch a video transcript with timestamps. Tries the official captions API first (own videos), then falls back to scraping the public timedtext track for any public video. The source_tier field says which path produced the result.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.GetTranscriptInput) (*mcp.CallToolResult, engine.TranscriptOutput, error) {
		if input.VideoID == "" {
			return nil, engine.TranscriptOutput{}, fmt.Errorf("video_id is required")
		}
		languages := input.Languages
		if len(languages) == 0 {
			languages = []string{"en"}
		}

		cacheKey := engine.CacheKey("transcript", input.VideoID, strings.Join(languages, ","))
		if out, ok := engine.CacheGetJSON[engine.TranscriptOutput](ctx, cacheKey); ok {
			return nil, out, nil
		}

		t, err := engine.Transcripts.Resolve(ctx, engine.TranscriptRequest{
			VideoID:   input.VideoID,
			Languages: languages,
		})
		if err != nil {
			return nil, engine.TranscriptOutput{}, err
		}

		out := engine.TranscriptOutput{
			VideoID:    t.VideoID,
			Language:   t.Language,
			Generated:  t.Generated,
			SourceTier: string(t.SourceTier),
			FullText:   t.FullText(),
			Segments:   t.Segments,
		}
		engine.CacheSetJSON(ctx, cacheKey, out)
		return nil, out, nil
	})
}
