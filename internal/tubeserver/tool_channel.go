package tubeserver

import (
	"context"
	"fmt"
	"strconv"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerChannelTools(server *mcp.Server) {
	registerGetChannel(server)
	registerListVideos(server)
	registerGetVideo(server)
}

func registerGetChannel(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_get_channel",
		Description: "Get channel metadata and statistics (subscribers, total views, video count) by channel ID, handle, or mine=true for the authenticated channel. Costs 1 quota unit.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.GetChannelInput) (*mcp.CallToolResult, engine.ChannelOutput, error) {
		if input.ChannelID == "" && input.Handle == "" && !input.Mine {
			return nil, engine.ChannelOutput{}, fmt.Errorf("one of channel_id, handle, or mine is required")
		}

		cacheKey := engine.CacheKey("get_channel", input.ChannelID, input.Handle, strconv.FormatBool(input.Mine))
		if !input.Mine {
			if out, ok := engine.CacheGetJSON[engine.ChannelOutput](ctx, cacheKey); ok {
				return nil, out, nil
			}
		}

		desc := dataDesc("youtube_get_channel", "list", input.Mine)
		channels, err := engine.Invoke(ctx, engine.Dispatch, desc, func(ctx context.Context, token string, _ *engine.Bill) ([]engine.Channel, error) {
			return engine.DataAPI.ListChannels(ctx, token, engine.ChannelQuery{
				ID:     input.ChannelID,
				Handle: input.Handle,
				Mine:   input.Mine,
			})
		})
		if err != nil {
			return nil, engine.ChannelOutput{}, err
		}
		if len(channels) == 0 {
			return nil, engine.ChannelOutput{}, fmt.Errorf("channel not found")
		}

		out := channelOutput(channels[0])
		if !input.Mine {
			engine.CacheSetJSON(ctx, cacheKey, out)
		}
		return nil, out, nil
	})
}

func registerListVideos(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_list_videos",
		Description: "List videos from a channel's uploads playlist (or an explicit playlist) with view, like, and comment counts. Costs 1-3 quota units depending on how the channel is resolved.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.ListVideosInput) (*mcp.CallToolResult, engine.ListVideosOutput, error) {
		if input.ChannelID == "" && input.PlaylistID == "" && !input.Mine {
			return nil, engine.ListVideosOutput{}, fmt.Errorf("one of channel_id, playlist_id, or mine is required")
		}
		maxResults := toolutil.ClampResults(input.MaxResults, 10, 50)

		// Up to three list calls: uploads playlist resolution, the page of
		// playlist items, then the stats hydration. Reserve for all three and
		// report what actually ran.
		desc := dataDesc("youtube_list_videos", "list", input.Mine)
		desc.Cost *= 3

		type page struct {
			videos []engine.Video
			items  []engine.PlaylistItem
			next   string
		}
		out, err := engine.Invoke(ctx, engine.Dispatch, desc, func(ctx context.Context, token string, bill *engine.Bill) (page, error) {
			calls := 0
			playlistID := input.PlaylistID
			if playlistID == "" {
				channels, err := engine.DataAPI.ListChannels(ctx, token, engine.ChannelQuery{
					ID:    input.ChannelID,
					Mine:  input.Mine,
					Parts: []string{"contentDetails"},
				})
				calls++
				if err != nil {
					bill.SetActual(calls * engine.Quota.Cost("list"))
					bill.ChargedDespiteFailure()
					return page{}, err
				}
				if len(channels) == 0 || channels[0].ContentDetails == nil {
					bill.SetActual(calls * engine.Quota.Cost("list"))
					bill.ChargedDespiteFailure()
					return page{}, fmt.Errorf("channel not found or has no uploads playlist")
				}
				playlistID = channels[0].ContentDetails.RelatedPlaylists.Uploads
			}

			items, next, err := engine.DataAPI.ListPlaylistItems(ctx, token, playlistID, maxResults, input.PageToken)
			calls++
			if err != nil {
				bill.SetActual(calls * engine.Quota.Cost("list"))
				if calls > 1 {
					bill.ChargedDespiteFailure()
				}
				return page{}, err
			}
			if len(items) == 0 {
				bill.SetActual(calls * engine.Quota.Cost("list"))
				return page{next: next}, nil
			}

			ids := make([]string, 0, len(items))
			for _, it := range items {
				if id := it.Snippet.ResourceID.VideoID; id != "" {
					ids = append(ids, id)
				}
			}
			videos, err := engine.DataAPI.ListVideos(ctx, token, ids, []string{"snippet", "statistics", "contentDetails"})
			calls++
			bill.SetActual(calls * engine.Quota.Cost("list"))
			if err != nil {
				bill.ChargedDespiteFailure()
				return page{}, err
			}
			return page{videos: videos, items: items, next: next}, nil
		})
		if err != nil {
			return nil, engine.ListVideosOutput{}, err
		}

		summaries := make([]engine.VideoSummary, 0, len(out.videos))
		for _, v := range out.videos {
			summaries = append(summaries, videoSummary(v))
		}
		return nil, engine.ListVideosOutput{
			Videos:        summaries,
			Total:         len(summaries),
			NextPageToken: out.next,
		}, nil
	})
}

func registerGetVideo(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_get_video",
		Description: "Get full metadata for one video: title, description, tags, duration, privacy status, and statistics. Costs 1 quota unit.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.GetVideoInput) (*mcp.CallToolResult, engine.VideoDetailOutput, error) {
		if input.VideoID == "" {
			return nil, engine.VideoDetailOutput{}, fmt.Errorf("video_id is required")
		}

		desc := dataDesc("youtube_get_video", "list", false)
		videos, err := engine.Invoke(ctx, engine.Dispatch, desc, func(ctx context.Context, token string, _ *engine.Bill) ([]engine.Video, error) {
			return engine.DataAPI.ListVideos(ctx, token, []string{input.VideoID},
				[]string{"snippet", "statistics", "status", "contentDetails"})
		})
		if err != nil {
			return nil, engine.VideoDetailOutput{}, err
		}
		if len(videos) == 0 {
			return nil, engine.VideoDetailOutput{}, fmt.Errorf("video %s not found", input.VideoID)
		}
		return nil, videoDetail(videos[0]), nil
	})
}

// --- output shaping ---

func channelOutput(ch engine.Channel) engine.ChannelOutput {
	out := engine.ChannelOutput{
		ChannelID:   ch.ID,
		Title:       ch.Snippet.Title,
		Handle:      ch.Snippet.CustomURL,
		Description: toolutil.Truncate(ch.Snippet.Description, 500),
		PublishedAt: ch.Snippet.PublishedAt,
		Subscribers: toolutil.ParseCount(ch.Statistics.SubscriberCount),
		TotalViews:  toolutil.ParseCount(ch.Statistics.ViewCount),
		VideoCount:  toolutil.ParseCount(ch.Statistics.VideoCount),
		Thumbnail:   bestThumbnail(ch.Snippet.Thumbnails),
	}
	if ch.ContentDetails != nil {
		out.UploadsID = ch.ContentDetails.RelatedPlaylists.Uploads
	}
	return out
}

func videoSummary(v engine.Video) engine.VideoSummary {
	s := engine.VideoSummary{
		VideoID:     v.ID,
		Title:       v.Snippet.Title,
		PublishedAt: v.Snippet.PublishedAt,
		Thumbnail:   bestThumbnail(v.Snippet.Thumbnails),
		URL:         toolutil.VideoURL(v.ID),
	}
	if v.Statistics != nil {
		s.Views = toolutil.ParseCount(v.Statistics.ViewCount)
		s.Likes = toolutil.ParseCount(v.Statistics.LikeCount)
		s.Comments = toolutil.ParseCount(v.Statistics.CommentCount)
	}
	if v.ContentDetails != nil {
		s.Duration = v.ContentDetails.Duration
	}
	return s
}

func videoDetail(v engine.Video) engine.VideoDetailOutput {
	out := engine.VideoDetailOutput{
		VideoID:      v.ID,
		Title:        v.Snippet.Title,
		Description:  v.Snippet.Description,
		ChannelID:    v.Snippet.ChannelID,
		ChannelTitle: v.Snippet.ChannelTitle,
		PublishedAt:  v.Snippet.PublishedAt,
		Tags:         v.Snippet.Tags,
		CategoryID:   v.Snippet.CategoryID,
		Thumbnail:    bestThumbnail(v.Snippet.Thumbnails),
		URL:          toolutil.VideoURL(v.ID),
	}
	if v.Statistics != nil {
		out.Views = toolutil.ParseCount(v.Statistics.ViewCount)
		out.Likes = toolutil.ParseCount(v.Statistics.LikeCount)
		out.Comments = toolutil.ParseCount(v.Statistics.CommentCount)
	}
	if v.Status != nil {
		out.PrivacyStatus = v.Status.PrivacyStatus
	}
	if v.ContentDetails != nil {
		out.Duration = v.ContentDetails.Duration
	}
	return out
}

func bestThumbnail(t engine.Thumbnails) string {
	for _, th := range []engine.Thumbnail{t.Maxres, t.High, t.Medium, t.Default} {
		if th.URL != "" {
			return th.URL
		}
	}
	return ""
}
