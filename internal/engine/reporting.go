package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const reportingAPIBase = "https://youtubereporting.googleapis.com/v1"

// ReportingClient talks to the YouTube Reporting API v1 (bulk CSV exports).
// The JobTracker owns all state; this client is stateless transport.
type ReportingClient struct {
	http *http.Client
	base string
}

func NewReportingClient(hc *http.Client) *ReportingClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &ReportingClient{http: hc, base: reportingAPIBase}
}

// SetBase overrides the API endpoint, for tests.
func (c *ReportingClient) SetBase(base string) { c.base = base }

// ReportType is a schedulable bulk report kind.
type ReportType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// reportingJob is the wire shape of a Reporting API job.
type reportingJob struct {
	ID           string `json:"id"`
	ReportTypeID string `json:"reportTypeId"`
	Name         string `json:"name"`
	CreateTime   string `json:"createTime"`
}

// reportInfo is the wire shape of one generated report.
type reportInfo struct {
	ID          string `json:"id"`
	JobID       string `json:"jobId"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	CreateTime  string `json:"createTime"`
	DownloadURL string `json:"downloadUrl"`
}

func (c *ReportingClient) ListReportTypes(ctx context.Context, token string) ([]ReportType, error) {
	IncrReportingRequests()
	var resp struct {
		ReportTypes []ReportType `json:"reportTypes"`
	}
	if err := doJSON(ctx, c.http, "reporting", http.MethodGet, c.base+"/reportTypes", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.ReportTypes, nil
}

func (c *ReportingClient) CreateJob(ctx context.Context, token, reportTypeID, name string) (*reportingJob, error) {
	IncrReportingRequests()
	body := map[string]string{"reportTypeId": reportTypeID}
	if name != "" {
		body["name"] = name
	}
	var out reportingJob
	if err := doJSON(ctx, c.http, "reporting", http.MethodPost, c.base+"/jobs", token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListJobs follows nextPageToken to exhaustion: callers treat absence from
// the listing as deletion, so a truncated page must never be returned as if
// it were the whole job set.
func (c *ReportingClient) ListJobs(ctx context.Context, token string) ([]reportingJob, error) {
	var jobs []reportingJob
	pageToken := ""
	for {
		IncrReportingRequests()
		var resp struct {
			Jobs          []reportingJob `json:"jobs"`
			NextPageToken string         `json:"nextPageToken"`
		}
		endpoint := c.base + "/jobs"
		if pageToken != "" {
			endpoint += "?pageToken=" + url.QueryEscape(pageToken)
		}
		if err := doJSON(ctx, c.http, "reporting", http.MethodGet, endpoint, token, nil, &resp); err != nil {
			return nil, err
		}
		jobs = append(jobs, resp.Jobs...)
		if resp.NextPageToken == "" {
			return jobs, nil
		}
		pageToken = resp.NextPageToken
	}
}

func (c *ReportingClient) GetJob(ctx context.Context, token, jobID string) (*reportingJob, error) {
	IncrReportingRequests()
	var out reportingJob
	if err := doJSON(ctx, c.http, "reporting", http.MethodGet, c.base+"/jobs/"+url.PathEscape(jobID), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListJobReports pages through a job's full artifact listing.
func (c *ReportingClient) ListJobReports(ctx context.Context, token, jobID string) ([]reportInfo, error) {
	var reports []reportInfo
	pageToken := ""
	for {
		IncrReportingRequests()
		var resp struct {
			Reports       []reportInfo `json:"reports"`
			NextPageToken string       `json:"nextPageToken"`
		}
		endpoint := c.base + "/jobs/" + url.PathEscape(jobID) + "/reports"
		if pageToken != "" {
			endpoint += "?pageToken=" + url.QueryEscape(pageToken)
		}
		if err := doJSON(ctx, c.http, "reporting", http.MethodGet, endpoint, token, nil, &resp); err != nil {
			return nil, err
		}
		reports = append(reports, resp.Reports...)
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	for i := range reports {
		reports[i].JobID = jobID
	}
	return reports, nil
}

// DownloadMedia fetches a generated report's bytes from its download URL.
func (c *ReportingClient) DownloadMedia(ctx context.Context, token, downloadURL string) ([]byte, error) {
	// Reports list returns absolute URLs; fakes in tests return paths.
	if strings.HasPrefix(downloadURL, "/") {
		downloadURL = c.base + downloadURL
	}
	resp, err := RetryHTTP(ctx, DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return c.http.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("reporting api: download: %w", err)
	}
	defer resp.Body.Close()
	IncrReportingRequests()
	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError("reporting", resp)
	}
	return io.ReadAll(resp.Body)
}
