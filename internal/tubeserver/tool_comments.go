package tubeserver

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerCommentTools(server *mcp.Server) {
	registerListComments(server)
	registerPostComment(server)
	registerReplyToComment(server)
}

func registerListComments(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_list_comments",
		Description: "List the top-level comment threads of a video with author, text, likes, and reply counts. Costs 1 quota unit.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.ListCommentsInput) (*mcp.CallToolResult, engine.ListCommentsOutput, error) {
		if input.VideoID == "" {
			return nil, engine.ListCommentsOutput{}, fmt.Errorf("video_id is required")
		}
		maxResults := toolutil.ClampResults(input.MaxResults, 20, 100)

		desc := dataDesc("youtube_list_comments", "list", false)
		threads, err := engine.Invoke(ctx, engine.Dispatch, desc, func(ctx context.Context, token string, _ *engine.Bill) ([]engine.CommentThread, error) {
			return engine.DataAPI.ListCommentThreads(ctx, token, input.VideoID, input.Order, maxResults)
		})
		if err != nil {
			return nil, engine.ListCommentsOutput{}, err
		}

		comments := make([]engine.CommentInfo, 0, len(threads))
		for _, th := range threads {
			top := th.Snippet.TopLevelComment
			comments = append(comments, engine.CommentInfo{
				CommentID:   top.ID,
				Author:      top.Snippet.AuthorDisplayName,
				Text:        top.Snippet.TextDisplay,
				Likes:       int64(top.Snippet.LikeCount),
				PublishedAt: top.Snippet.PublishedAt,
				ReplyCount:  th.Snippet.TotalReplyCount,
			})
		}
		return nil, engine.ListCommentsOutput{
			VideoID:  input.VideoID,
			Comments: comments,
			Total:    len(comments),
		}, nil
	})
}

func registerPostComment(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_post_comment",
		Description: "Post a top-level comment on a video as the authenticated user. Costs 50 quota units.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.PostCommentInput) (*mcp.CallToolResult, engine.PostCommentOutput, error) {
		if input.VideoID == "" || input.Text == "" {
			return nil, engine.PostCommentOutput{}, fmt.Errorf("video_id and text are required")
		}

		desc := engine.Descriptor{
			Name:         "youtube_post_comment",
			Cost:         engine.Quota.Cost("insert"),
			RequiresAuth: true,
		}
		thread, err := engine.Invoke(ctx, engine.Dispatch, desc, func(ctx context.Context, token string, _ *engine.Bill) (*engine.CommentThread, error) {
			return engine.DataAPI.PostComment(ctx, token, input.VideoID, input.Text)
		})
		if err != nil {
			return nil, engine.PostCommentOutput{}, err
		}

		return nil, engine.PostCommentOutput{
			CommentID: thread.Snippet.TopLevelComment.ID,
			VideoID:   input.VideoID,
			Posted:    true,
		}, nil
	})
}

func registerReplyToComment(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_reply_to_comment",
		Description: "Reply to an existing top-level comment as the authenticated user. Costs 50 quota units.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.ReplyToCommentInput) (*mcp.CallToolResult, engine.ReplyToCommentOutput, error) {
		if input.ParentID == "" || input.Text == "" {
			return nil, engine.ReplyToCommentOutput{}, fmt.Errorf("parent_id and text are required")
		}

		desc := engine.Descriptor{
			Name:         "youtube_reply_to_comment",
			Cost:         engine.Quota.Cost("insert"),
			RequiresAuth: true,
		}
		comment, err := engine.Invoke(ctx, engine.Dispatch, desc, func(ctx context.Context, token string, _ *engine.Bill) (*engine.Comment, error) {
			return engine.DataAPI.ReplyToComment(ctx, token, input.ParentID, input.Text)
		})
		if err != nil {
			return nil, engine.ReplyToCommentOutput{}, err
		}

		return nil, engine.ReplyToCommentOutput{
			CommentID: comment.ID,
			ParentID:  input.ParentID,
			Posted:    true,
		}, nil
	})
}
