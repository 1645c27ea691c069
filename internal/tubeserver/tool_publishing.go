package tubeserver

import (
	"context"
	"fmt"
	"os"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerPublishingTools(server *mcp.Server) {
	registerUploadVideo(server)
	registerUpdateVideo(server)
	registerSetThumbnail(server)
	registerDeleteVideo(server)
}

func registerUploadVideo(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_upload_video",
		Description: "Upload a local video file to the authenticated channel with title, description, tags, category, and privacy status. Very expensive: costs 1600 quota units, 16% of the default daily budget. Defaults to private.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.UploadVideoInput) (*mcp.CallToolResult, engine.UploadVideoOutput, error) {
		if input.FilePath == "" || input.Title == "" {
			return nil, engine.UploadVideoOutput{}, fmt.Errorf("file_path and title are required")
		}
		if _, err := os.Stat(input.FilePath); err != nil {
			return nil, engine.UploadVideoOutput{}, fmt.Errorf("video file: %w", err)
		}

		privacy := input.PrivacyStatus
		if privacy == "" || input.PublishAt != "" {
			privacy = "private"
		}
		video := &engine.Video{
			Snippet: engine.VideoSnippet{
				Title:       input.Title,
				Description: input.Description,
				Tags:        input.Tags,
				CategoryID:  input.CategoryID,
			},
			Status: &engine.VideoStatus{
				PrivacyStatus: privacy,
				PublishAt:     input.PublishAt,
			},
		}

		desc := engine.Descriptor{
			Name:         "youtube_upload_video",
			Cost:         engine.Quota.Cost("video_insert"),
			RequiresAuth: true,
		}
		uploaded, err := engine.Invoke(ctx, engine.Dispatch, desc, func(ctx context.Context, token string, bill *engine.Bill) (*engine.Video, error) {
			v, err := engine.DataAPI.UploadVideo(ctx, token, input.FilePath, video)
			if err != nil {
				// Rejections after the media body was sent still burn units.
				if !engine.IsNotFound(err) {
					bill.ChargedDespiteFailure()
				}
				return nil, err
			}
			return v, nil
		})
		if err != nil {
			return nil, engine.UploadVideoOutput{}, err
		}

		out := engine.UploadVideoOutput{
			VideoID:       uploaded.ID,
			Title:         uploaded.Snippet.Title,
			PrivacyStatus: privacy,
			PublishAt:     input.PublishAt,
			URL:           toolutil.VideoURL(uploaded.ID),
			QuotaCost:     desc.Cost,
		}
		return nil, out, nil
	})
}

func registerUpdateVideo(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_update_video",
		Description: "Update a video's metadata. Only the provided fields change; omitted fields keep their current values. Costs 51 quota units (one read to merge, one write).",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.UpdateVideoInput) (*mcp.CallToolResult, engine.UpdateVideoOutput, error) {
		if input.VideoID == "" {
			return nil, engine.UpdateVideoOutput{}, fmt.Errorf("video_id is required")
		}
		if input.Title == nil && input.Description == nil && input.Tags == nil &&
			input.CategoryID == nil && input.PrivacyStatus == nil {
			return nil, engine.UpdateVideoOutput{}, fmt.Errorf("nothing to update")
		}

		// videos.update replaces the whole snippet, so the current one is
		// read first and patched field by field.
		desc := engine.Descriptor{
			Name:         "youtube_update_video",
			Cost:         engine.Quota.Cost("list") + engine.Quota.Cost("update"),
			RequiresAuth: true,
		}
		updated, err := engine.Invoke(ctx, engine.Dispatch, desc, func(ctx context.Context, token string, bill *engine.Bill) (*engine.Video, error) {
			videos, err := engine.DataAPI.ListVideos(ctx, token, []string{input.VideoID}, []string{"snippet", "status"})
			if err != nil {
				bill.SetActual(engine.Quota.Cost("list"))
				bill.ChargedDespiteFailure()
				return nil, err
			}
			if len(videos) == 0 {
				bill.SetActual(engine.Quota.Cost("list"))
				bill.ChargedDespiteFailure()
				return nil, fmt.Errorf("video %s not found", input.VideoID)
			}

			video := videos[0]
			if input.Title != nil {
				video.Snippet.Title = *input.Title
			}
			if input.Description != nil {
				video.Snippet.Description = *input.Description
			}
			if input.Tags != nil {
				video.Snippet.Tags = input.Tags
			}
			if input.CategoryID != nil {
				video.Snippet.CategoryID = *input.CategoryID
			}
			parts := []string{"snippet"}
			if input.PrivacyStatus != nil {
				if video.Status == nil {
					video.Status = &engine.VideoStatus{}
				}
				video.Status.PrivacyStatus = *input.PrivacyStatus
				parts = append(parts, "status")
			}
			video.Statistics = nil
			video.ContentDetails = nil

			out, err := engine.DataAPI.UpdateVideo(ctx, token, parts, &video)
			if err != nil {
				bill.ChargedDespiteFailure()
				return nil, err
			}
			return out, nil
		})
		if err != nil {
			return nil, engine.UpdateVideoOutput{}, err
		}

		out := engine.UpdateVideoOutput{
			VideoID: updated.ID,
			Title:   updated.Snippet.Title,
			Updated: true,
		}
		if updated.Status != nil {
			out.PrivacyStatus = updated.Status.PrivacyStatus
		}
		return nil, out, nil
	})
}

func registerSetThumbnail(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_set_thumbnail",
		Description: "Set a custom thumbnail on a video from a local image file (JPEG or PNG, under 2MB). Requires a verified channel. Costs 50 quota units.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.SetThumbnailInput) (*mcp.CallToolResult, engine.SetThumbnailOutput, error) {
		if input.VideoID == "" || input.FilePath == "" {
			return nil, engine.SetThumbnailOutput{}, fmt.Errorf("video_id and file_path are required")
		}
		if _, err := os.Stat(input.FilePath); err != nil {
			return nil, engine.SetThumbnailOutput{}, fmt.Errorf("thumbnail file: %w", err)
		}

		desc := engine.Descriptor{
			Name:         "youtube_set_thumbnail",
			Cost:         engine.Quota.Cost("thumbnail_set"),
			RequiresAuth: true,
		}
		thumbs, err := engine.Invoke(ctx, engine.Dispatch, desc, func(ctx context.Context, token string, _ *engine.Bill) (*engine.Thumbnails, error) {
			return engine.DataAPI.SetThumbnail(ctx, token, input.VideoID, input.FilePath)
		})
		if err != nil {
			return nil, engine.SetThumbnailOutput{}, err
		}

		out := engine.SetThumbnailOutput{VideoID: input.VideoID, Updated: true}
		if thumbs != nil {
			out.Thumbnail = bestThumbnail(*thumbs)
		}
		return nil, out, nil
	})
}

func registerDeleteVideo(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_delete_video",
		Description: "Permanently delete a video from the authenticated channel. Irreversible. Costs 50 quota units.",
		Annotations: &mcp.ToolAnnotations{DestructiveHint: ptr(true)},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.DeleteVideoInput) (*mcp.CallToolResult, engine.DeleteVideoOutput, error) {
		if input.VideoID == "" {
			return nil, engine.DeleteVideoOutput{}, fmt.Errorf("video_id is required")
		}

		desc := engine.Descriptor{
			Name:         "youtube_delete_video",
			Cost:         engine.Quota.Cost("delete"),
			RequiresAuth: true,
		}
		_, err := engine.Invoke(ctx, engine.Dispatch, desc, func(ctx context.Context, token string, _ *engine.Bill) (struct{}, error) {
			return struct{}{}, engine.DataAPI.DeleteVideo(ctx, token, input.VideoID)
		})
		if err != nil {
			return nil, engine.DeleteVideoOutput{}, err
		}
		return nil, engine.DeleteVideoOutput{VideoID: input.VideoID, Deleted: true}, nil
	})
}

func ptr[T any](v T) *T { return &v }
