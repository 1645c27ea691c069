package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	DataAPIRequests     atomic.Int64
	AnalyticsRequests   atomic.Int64
	ReportingRequests   atomic.Int64
	QuotaDenied         atomic.Int64
	TokenRefreshes      atomic.Int64
	TranscriptOfficial  atomic.Int64
	TranscriptFallback  atomic.Int64
	TranscriptMisses    atomic.Int64
	ReportDownloads     atomic.Int64
	ScrapeRequests      atomic.Int64
}

// GetMetrics returns a snapshot of all counters including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"data_api_requests":   metrics.DataAPIRequests.Load(),
		"analytics_requests":  metrics.AnalyticsRequests.Load(),
		"reporting_requests":  metrics.ReportingRequests.Load(),
		"quota_denied":        metrics.QuotaDenied.Load(),
		"token_refreshes":     metrics.TokenRefreshes.Load(),
		"transcript_official": metrics.TranscriptOfficial.Load(),
		"transcript_fallback": metrics.TranscriptFallback.Load(),
		"transcript_misses":   metrics.TranscriptMisses.Load(),
		"report_downloads":    metrics.ReportDownloads.Load(),
		"scrape_requests":     metrics.ScrapeRequests.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
	}
}

// FormatMetrics returns metrics as a simple text format for the HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"data_api_requests", "analytics_requests", "reporting_requests",
		"quota_denied", "token_refreshes",
		"transcript_official", "transcript_fallback", "transcript_misses",
		"report_downloads", "scrape_requests",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

func IncrDataAPIRequests()    { metrics.DataAPIRequests.Add(1) }
func IncrAnalyticsRequests()  { metrics.AnalyticsRequests.Add(1) }
func IncrReportingRequests()  { metrics.ReportingRequests.Add(1) }
func IncrQuotaDenied()        { metrics.QuotaDenied.Add(1) }
func IncrTokenRefreshes()     { metrics.TokenRefreshes.Add(1) }
func IncrTranscriptOfficial() { metrics.TranscriptOfficial.Add(1) }
func IncrTranscriptFallback() { metrics.TranscriptFallback.Add(1) }
func IncrTranscriptMisses()   { metrics.TranscriptMisses.Add(1) }
func IncrReportDownloads()    { metrics.ReportDownloads.Add(1) }
func IncrScrapeRequests()     { metrics.ScrapeRequests.Add(1) }
