package engine

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const analyticsFixture = `{
	"columnHeaders": [
		{"name": "day", "columnType": "DIMENSION", "dataType": "STRING"},
		{"name": "views", "columnType": "METRIC", "dataType": "INTEGER"},
		{"name": "estimatedMinutesWatched", "columnType": "METRIC", "dataType": "INTEGER"}
	],
	"rows": [
		["2026-08-01", 120, 430],
		["2026-08-02", 95, 310]
	]
}`

func TestAnalyticsQueryZipsRows(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(analyticsFixture))
	}))
	t.Cleanup(srv.Close)

	c := NewAnalyticsClient(srv.Client())
	c.SetBase(srv.URL)

	report, err := c.Query(t.Context(), "tok", AnalyticsQuery{
		Metrics:    "views,estimatedMinutesWatched",
		Dimensions: "day",
		StartDate:  "2026-08-01",
		EndDate:    "2026-08-02",
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if len(report.Columns) != 3 || report.Columns[0] != "day" {
		t.Errorf("columns = %v", report.Columns)
	}
	if report.TotalRows != 2 {
		t.Fatalf("rows = %d", report.TotalRows)
	}
	row := report.Rows[0]
	if row["day"] != "2026-08-01" {
		t.Errorf("row day = %v", row["day"])
	}
	if views, ok := row["views"].(float64); !ok || views != 120 {
		t.Errorf("row views = %v (%T)", row["views"], row["views"])
	}

	for _, want := range []string{"ids=channel%3D%3DMINE", "dimensions=day", "startDate=2026-08-01"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
}

func TestAnalyticsQueryDefaultsDateRange(t *testing.T) {
	var gotStart, gotEnd string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("startDate")
		gotEnd = r.URL.Query().Get("endDate")
		w.Write([]byte(`{"columnHeaders":[],"rows":[]}`))
	}))
	t.Cleanup(srv.Close)

	c := NewAnalyticsClient(srv.Client())
	c.SetBase(srv.URL)

	if _, err := c.Query(t.Context(), "tok", AnalyticsQuery{Metrics: "views"}); err != nil {
		t.Fatal(err)
	}
	if gotStart == "" || gotEnd == "" {
		t.Fatal("empty dates not defaulted")
	}
	if _, err := time.Parse("2006-01-02", gotStart); err != nil {
		t.Errorf("startDate %q not a date", gotStart)
	}
	if gotEnd < gotStart {
		t.Errorf("endDate %q before startDate %q", gotEnd, gotStart)
	}
}

func TestDefaultDateRange(t *testing.T) {
	start, end, err := parseRange(DefaultDateRange(30))
	if err != nil {
		t.Fatal(err)
	}
	if days := end.Sub(start).Hours() / 24; days < 29 || days > 31 {
		t.Errorf("range spans %.1f days, want ~30", days)
	}
}

func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse("2006-01-02", endStr)
	return start, end, err
}
