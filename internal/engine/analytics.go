package engine

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const analyticsAPIBase = "https://youtubeanalytics.googleapis.com/v2"

// AnalyticsClient queries the YouTube Analytics API v2. All queries run
// against the authenticated user's channel (ids=channel==MINE).
type AnalyticsClient struct {
	http *http.Client
	base string
}

func NewAnalyticsClient(hc *http.Client) *AnalyticsClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &AnalyticsClient{http: hc, base: analyticsAPIBase}
}

// SetBase overrides the API endpoint, for tests.
func (c *AnalyticsClient) SetBase(base string) { c.base = base }

// AnalyticsQuery mirrors the reports.query parameters the tools expose.
// Empty StartDate/EndDate default to the last 28 days.
type AnalyticsQuery struct {
	Metrics    string
	Dimensions string
	StartDate  string
	EndDate    string
	Filters    string
	Sort       string
	MaxResults int
}

// AnalyticsReport is the zipped query result: one map per row, keyed by
// column name.
type AnalyticsReport struct {
	StartDate string           `json:"start_date"`
	EndDate   string           `json:"end_date"`
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"results"`
	TotalRows int              `json:"total_rows"`
}

type analyticsResponse struct {
	ColumnHeaders []struct {
		Name string `json:"name"`
	} `json:"columnHeaders"`
	Rows [][]any `json:"rows"`
}

// DefaultDateRange returns (start, end) covering the last n days.
func DefaultDateRange(days int) (string, string) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	return start.Format("2006-01-02"), end.Format("2006-01-02")
}

// Query executes one reports.query call and zips the columnar response into
// per-row maps.
func (c *AnalyticsClient) Query(ctx context.Context, token string, aq AnalyticsQuery) (*AnalyticsReport, error) {
	if aq.StartDate == "" || aq.EndDate == "" {
		aq.StartDate, aq.EndDate = DefaultDateRange(28)
	}

	q := url.Values{
		"ids":       {"channel==MINE"},
		"startDate": {aq.StartDate},
		"endDate":   {aq.EndDate},
		"metrics":   {aq.Metrics},
	}
	if aq.Dimensions != "" {
		q.Set("dimensions", aq.Dimensions)
	}
	if aq.Filters != "" {
		q.Set("filters", aq.Filters)
	}
	if aq.Sort != "" {
		q.Set("sort", aq.Sort)
	}
	if aq.MaxResults > 0 {
		q.Set("maxResults", strconv.Itoa(aq.MaxResults))
	}

	IncrAnalyticsRequests()
	var resp analyticsResponse
	if err := doJSON(ctx, c.http, "analytics", http.MethodGet, c.base+"/reports?"+q.Encode(), token, nil, &resp); err != nil {
		return nil, err
	}

	columns := make([]string, len(resp.ColumnHeaders))
	for i, h := range resp.ColumnHeaders {
		columns[i] = h.Name
	}
	rows := make([]map[string]any, 0, len(resp.Rows))
	for _, raw := range resp.Rows {
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if i < len(raw) {
				row[col] = raw[i]
			}
		}
		rows = append(rows, row)
	}

	return &AnalyticsReport{
		StartDate: aq.StartDate,
		EndDate:   aq.EndDate,
		Columns:   columns,
		Rows:      rows,
		TotalRows: len(rows),
	}, nil
}
