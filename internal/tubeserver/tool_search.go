package tubeserver

import (
	"context"
	"fmt"
	"strconv"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerSearchTools(server *mcp.Server) {
	registerSearch(server)
	registerSearchSuggestions(server)
	registerTrending(server)
	registerCategories(server)
}

func registerSearch(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_search",
		Description: "Search YouTube for videos, channels, or playlists. Supports channel restriction, date bounds, region, and sort order. Expensive: costs 100 quota units per call, 1% of the default daily budget.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.SearchInput) (*mcp.CallToolResult, engine.SearchOutput, error) {
		if input.Query == "" {
			return nil, engine.SearchOutput{}, fmt.Errorf("query is required")
		}
		maxResults := toolutil.ClampResults(input.MaxResults, 10, 50)

		cacheKey := engine.CacheKey("search", input.Query, input.Type, input.ChannelID,
			strconv.Itoa(maxResults), input.Order, input.PublishedAfter, input.PublishedBefore, input.RegionCode)
		if out, ok := engine.CacheGetJSON[engine.SearchOutput](ctx, cacheKey); ok {
			return nil, out, nil
		}

		desc := dataDesc("youtube_search", "search", false)
		results, err := engine.Invoke(ctx, engine.Dispatch, desc, func(ctx context.Context, token string, _ *engine.Bill) ([]engine.SearchResult, error) {
			return engine.DataAPI.Search(ctx, token, engine.SearchQuery{
				Query:           input.Query,
				Type:            input.Type,
				ChannelID:       input.ChannelID,
				MaxResults:      maxResults,
				Order:           input.Order,
				PublishedAfter:  input.PublishedAfter,
				PublishedBefore: input.PublishedBefore,
				RegionCode:      input.RegionCode,
			})
		})
		if err != nil {
			return nil, engine.SearchOutput{}, err
		}

		items := make([]engine.SearchItem, 0, len(results))
		for _, r := range results {
			items = append(items, searchItem(r))
		}
		out := engine.SearchOutput{
			Query:     input.Query,
			Results:   items,
			Total:     len(items),
			QuotaCost: desc.Cost,
		}
		engine.CacheSetJSON(ctx, cacheKey, out)
		return nil, out, nil
	})
}

func registerSearchSuggestions(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_search_suggestions",
		Description: "Get autocomplete suggestions for a partial search query. Uses the public suggest endpoint: no auth, no quota cost.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.SuggestInput) (*mcp.CallToolResult, engine.SuggestOutput, error) {
		if input.Query == "" {
			return nil, engine.SuggestOutput{}, fmt.Errorf("query is required")
		}

		cacheKey := engine.CacheKey("suggest", input.Query, input.Language)
		if out, ok := engine.CacheGetJSON[engine.SuggestOutput](ctx, cacheKey); ok {
			return nil, out, nil
		}

		suggestions, err := engine.DataAPI.Suggest(ctx, input.Query, input.Language)
		if err != nil {
			return nil, engine.SuggestOutput{}, err
		}
		out := engine.SuggestOutput{Query: input.Query, Suggestions: suggestions}
		engine.CacheSetJSON(ctx, cacheKey, out)
		return nil, out, nil
	})
}

func registerTrending(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_trending",
		Description: "List the most popular videos for a region, optionally restricted to one category. Costs 1 quota unit.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.TrendingInput) (*mcp.CallToolResult, engine.TrendingOutput, error) {
		region := input.RegionCode
		if region == "" {
			region = "US"
		}
		maxResults := toolutil.ClampResults(input.MaxResults, 10, 50)

		cacheKey := engine.CacheKey("trending", region, input.CategoryID, strconv.Itoa(maxResults))
		if out, ok := engine.CacheGetJSON[engine.TrendingOutput](ctx, cacheKey); ok {
			return nil, out, nil
		}

		desc := dataDesc("youtube_trending", "list", false)
		videos, err := engine.Invoke(ctx, engine.Dispatch, desc, func(ctx context.Context, token string, _ *engine.Bill) ([]engine.Video, error) {
			return engine.DataAPI.Trending(ctx, token, region, input.CategoryID, maxResults)
		})
		if err != nil {
			return nil, engine.TrendingOutput{}, err
		}

		summaries := make([]engine.VideoSummary, 0, len(videos))
		for _, v := range videos {
			summaries = append(summaries, videoSummary(v))
		}
		out := engine.TrendingOutput{RegionCode: region, Videos: summaries, Total: len(summaries)}
		engine.CacheSetJSON(ctx, cacheKey, out)
		return nil, out, nil
	})
}

func registerCategories(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_get_categories",
		Description: "List the video categories available in a region, with their IDs for upload and trending filters. Costs 1 quota unit.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.CategoriesInput) (*mcp.CallToolResult, engine.CategoriesOutput, error) {
		region := input.RegionCode
		if region == "" {
			region = "US"
		}

		cacheKey := engine.CacheKey("categories", region)
		if out, ok := engine.CacheGetJSON[engine.CategoriesOutput](ctx, cacheKey); ok {
			return nil, out, nil
		}

		desc := dataDesc("youtube_get_categories", "list", false)
		categories, err := engine.Invoke(ctx, engine.Dispatch, desc, func(ctx context.Context, token string, _ *engine.Bill) ([]engine.VideoCategory, error) {
			return engine.DataAPI.ListCategories(ctx, token, region)
		})
		if err != nil {
			return nil, engine.CategoriesOutput{}, err
		}

		infos := make([]engine.CategoryInfo, 0, len(categories))
		for _, c := range categories {
			infos = append(infos, engine.CategoryInfo{
				CategoryID: c.ID,
				Title:      c.Snippet.Title,
				Assignable: c.Snippet.Assignable,
			})
		}
		out := engine.CategoriesOutput{RegionCode: region, Categories: infos}
		engine.CacheSetJSON(ctx, cacheKey, out)
		return nil, out, nil
	})
}

func searchItem(r engine.SearchResult) engine.SearchItem {
	item := engine.SearchItem{
		VideoID:      r.ID.VideoID,
		ChannelID:    r.ID.ChannelID,
		PlaylistID:   r.ID.PlaylistID,
		Title:        r.Snippet.Title,
		Description:  toolutil.Truncate(r.Snippet.Description, 300),
		ChannelTitle: r.Snippet.ChannelTitle,
		PublishedAt:  r.Snippet.PublishedAt,
		Thumbnail:    bestThumbnail(r.Snippet.Thumbnails),
	}
	switch {
	case item.VideoID != "":
		item.URL = toolutil.VideoURL(item.VideoID)
	case item.PlaylistID != "":
		item.URL = toolutil.PlaylistURL(item.PlaylistID)
	case item.ChannelID != "":
		item.URL = toolutil.ChannelURL(item.ChannelID)
	}
	return item
}
