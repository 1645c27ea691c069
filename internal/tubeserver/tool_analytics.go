package tubeserver

import (
	"context"
	"fmt"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Analytics API calls are authenticated but carry no Data API quota units,
// so every descriptor here reserves zero.
func analyticsDesc(name string) engine.Descriptor {
	return engine.Descriptor{Name: name, RequiresAuth: true}
}

func runAnalytics(ctx context.Context, name string, aq engine.AnalyticsQuery) (engine.AnalyticsReport, error) {
	out, err := engine.Invoke(ctx, engine.Dispatch, analyticsDesc(name), func(ctx context.Context, token string, _ *engine.Bill) (*engine.AnalyticsReport, error) {
		return engine.Analytics.Query(ctx, token, aq)
	})
	if err != nil {
		return engine.AnalyticsReport{}, err
	}
	return *out, nil
}

func registerAnalyticsTools(server *mcp.Server) {
	type rangeTool struct {
		name        string
		description string
		query       engine.AnalyticsQuery
	}

	rangeTools := []rangeTool{
		{
			name:        "youtube_analytics_overview",
			description: "Channel-wide totals for a date range: views, watch time, average view duration and percentage, subscriber change, likes, comments, shares. Requires OAuth. No Data API quota cost.",
			query: engine.AnalyticsQuery{
				Metrics: "views,estimatedMinutesWatched,averageViewDuration,averageViewPercentage,subscribersGained,subscribersLost,likes,comments,shares",
			},
		},
		{
			name:        "youtube_analytics_traffic_sources",
			description: "Views and watch time broken down by traffic source type (search, suggested, external, browse features). Requires OAuth.",
			query: engine.AnalyticsQuery{
				Metrics:    "views,estimatedMinutesWatched",
				Dimensions: "insightTrafficSourceType",
				Sort:       "-views",
			},
		},
		{
			name:        "youtube_analytics_demographics",
			description: "Viewer percentage by age group and gender for a date range. Requires OAuth.",
			query: engine.AnalyticsQuery{
				Metrics:    "viewerPercentage",
				Dimensions: "ageGroup,gender",
				Sort:       "-viewerPercentage",
			},
		},
		{
			name:        "youtube_analytics_geography",
			description: "Views and watch time by country for a date range. Requires OAuth.",
			query: engine.AnalyticsQuery{
				Metrics:    "views,estimatedMinutesWatched",
				Dimensions: "country",
				Sort:       "-views",
				MaxResults: 25,
			},
		},
		{
			name:        "youtube_analytics_daily",
			description: "Per-day views, watch time, and subscriber change across a date range. Requires OAuth.",
			query: engine.AnalyticsQuery{
				Metrics:    "views,estimatedMinutesWatched,subscribersGained,subscribersLost",
				Dimensions: "day",
				Sort:       "day",
			},
		},
		{
			name:        "youtube_analytics_content_type_breakdown",
			description: "Views and watch time split by content type (regular videos, Shorts, live). Requires OAuth.",
			query: engine.AnalyticsQuery{
				Metrics:    "views,estimatedMinutesWatched",
				Dimensions: "creatorContentType",
				Sort:       "-views",
			},
		},
		{
			name:        "youtube_analytics_revenue",
			description: "Channel revenue for a date range: estimated total and ad revenue, gross revenue, monetized playbacks, CPM. Requires the monetary analytics scope.",
			query: engine.AnalyticsQuery{
				Metrics: "estimatedRevenue,estimatedAdRevenue,grossRevenue,monetizedPlaybacks,playbackBasedCpm,cpm",
			},
		},
	}

	for _, t := range rangeTools {
		registerAnalyticsRange(server, t.name, t.description, t.query)
	}

	registerAnalyticsTop(server, "youtube_analytics_top_videos",
		"Top videos by views for a date range, with watch time and engagement per video. Requires OAuth.",
		engine.AnalyticsQuery{
			Metrics:    "views,estimatedMinutesWatched,averageViewDuration,likes,comments",
			Dimensions: "video",
			Sort:       "-views",
		})
	registerAnalyticsTop(server, "youtube_analytics_top_shorts",
		"Top Shorts by views for a date range. Requires OAuth.",
		engine.AnalyticsQuery{
			Metrics:    "views,estimatedMinutesWatched,likes,comments",
			Dimensions: "video",
			Sort:       "-views",
			Filters:    "creatorContentType==SHORTS",
		})
	registerAnalyticsTop(server, "youtube_analytics_revenue_by_video",
		"Revenue per video for a date range, sorted by estimated revenue. Requires the monetary analytics scope.",
		engine.AnalyticsQuery{
			Metrics:    "estimatedRevenue,estimatedAdRevenue,views,monetizedPlaybacks",
			Dimensions: "video",
			Sort:       "-estimatedRevenue",
		})

	registerAnalyticsVideoDetail(server)
	registerAnalyticsRetention(server)
	registerAnalyticsDayOfWeek(server)
}

func registerAnalyticsRange(server *mcp.Server, name, description string, base engine.AnalyticsQuery) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        name,
		Description: description,
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.AnalyticsRangeInput) (*mcp.CallToolResult, engine.AnalyticsReport, error) {
		aq := base
		aq.StartDate = input.StartDate
		aq.EndDate = input.EndDate
		out, err := runAnalytics(ctx, name, aq)
		if err != nil {
			return nil, engine.AnalyticsReport{}, err
		}
		return nil, out, nil
	})
}

func registerAnalyticsTop(server *mcp.Server, name, description string, base engine.AnalyticsQuery) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        name,
		Description: description,
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.AnalyticsTopInput) (*mcp.CallToolResult, engine.AnalyticsReport, error) {
		aq := base
		aq.StartDate = input.StartDate
		aq.EndDate = input.EndDate
		aq.MaxResults = toolutil.ClampResults(input.MaxResults, 10, 200)
		out, err := runAnalytics(ctx, name, aq)
		if err != nil {
			return nil, engine.AnalyticsReport{}, err
		}
		return nil, out, nil
	})
}

func registerAnalyticsVideoDetail(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_analytics_video_detail",
		Description: "Full analytics for one video over a date range: views, watch time, view duration and percentage, engagement, subscribers gained. Requires OAuth and channel ownership of the video.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.AnalyticsVideoInput) (*mcp.CallToolResult, engine.AnalyticsReport, error) {
		if input.VideoID == "" {
			return nil, engine.AnalyticsReport{}, fmt.Errorf("video_id is required")
		}
		out, err := runAnalytics(ctx, "youtube_analytics_video_detail", engine.AnalyticsQuery{
			Metrics:   "views,estimatedMinutesWatched,averageViewDuration,averageViewPercentage,likes,comments,shares,subscribersGained",
			Filters:   "video==" + input.VideoID,
			StartDate: input.StartDate,
			EndDate:   input.EndDate,
		})
		if err != nil {
			return nil, engine.AnalyticsReport{}, err
		}
		return nil, out, nil
	})
}

func registerAnalyticsRetention(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_analytics_retention",
		Description: "Audience retention curve for one video: watch ratio and relative retention performance per elapsed-time bucket. Requires OAuth and channel ownership of the video.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.AnalyticsVideoInput) (*mcp.CallToolResult, engine.AnalyticsReport, error) {
		if input.VideoID == "" {
			return nil, engine.AnalyticsReport{}, fmt.Errorf("video_id is required")
		}
		out, err := runAnalytics(ctx, "youtube_analytics_retention", engine.AnalyticsQuery{
			Metrics:    "audienceWatchRatio,relativeRetentionPerformance",
			Dimensions: "elapsedVideoTimeRatio",
			Filters:    "video==" + input.VideoID,
			StartDate:  input.StartDate,
			EndDate:    input.EndDate,
		})
		if err != nil {
			return nil, engine.AnalyticsReport{}, err
		}
		return nil, out, nil
	})
}

func registerAnalyticsDayOfWeek(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_analytics_day_of_week",
		Description: "Views and watch time aggregated by weekday across a date range, useful for picking publish days. Requires OAuth.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.AnalyticsRangeInput) (*mcp.CallToolResult, engine.AnalyticsReport, error) {
		daily, err := runAnalytics(ctx, "youtube_analytics_day_of_week", engine.AnalyticsQuery{
			Metrics:    "views,estimatedMinutesWatched",
			Dimensions: "day",
			Sort:       "day",
			StartDate:  input.StartDate,
			EndDate:    input.EndDate,
		})
		if err != nil {
			return nil, engine.AnalyticsReport{}, err
		}
		return nil, aggregateByWeekday(daily), nil
	})
}

// aggregateByWeekday folds per-day rows into seven weekday buckets. The
// Analytics API has no weekday dimension, so this stays client-side.
func aggregateByWeekday(daily engine.AnalyticsReport) engine.AnalyticsReport {
	type bucket struct {
		views   float64
		minutes float64
		days    int
	}
	buckets := make(map[time.Weekday]*bucket)

	for _, row := range daily.Rows {
		day, ok := row["day"].(string)
		if !ok {
			continue
		}
		t, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		b := buckets[t.Weekday()]
		if b == nil {
			b = &bucket{}
			buckets[t.Weekday()] = b
		}
		b.views += toFloat(row["views"])
		b.minutes += toFloat(row["estimatedMinutesWatched"])
		b.days++
	}

	out := engine.AnalyticsReport{
		StartDate: daily.StartDate,
		EndDate:   daily.EndDate,
		Columns:   []string{"dayOfWeek", "views", "estimatedMinutesWatched", "daysCounted"},
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		b := buckets[wd]
		if b == nil {
			continue
		}
		out.Rows = append(out.Rows, map[string]any{
			"dayOfWeek":               wd.String(),
			"views":                   b.views,
			"estimatedMinutesWatched": b.minutes,
			"daysCounted":             b.days,
		})
	}
	out.TotalRows = len(out.Rows)
	return out
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
