package tubeserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerReportingTools(server *mcp.Server) {
	registerReportTypes(server)
	registerCreateReportJob(server)
	registerListReportJobs(server)
	registerListReports(server)
	registerDownloadReport(server)
}

func registerReportTypes(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_reporting_list_types",
		Description: "List the bulk report types available to the authenticated channel (channel reports, ad revenue, playlist reports). Requires OAuth. No Data API quota cost.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.ReportTypesInput) (*mcp.CallToolResult, engine.ReportTypesOutput, error) {
		types, err := engine.Reports.ListReportTypes(ctx)
		if err != nil {
			return nil, engine.ReportTypesOutput{}, err
		}
		return nil, engine.ReportTypesOutput{ReportTypes: types, Total: len(types)}, nil
	})
}

func registerCreateReportJob(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_reporting_create_job",
		Description: "Create a recurring bulk reporting job for a report type. The service generates daily reports asynchronously; the first one typically lands within 48 hours. Requires OAuth.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.CreateReportJobInput) (*mcp.CallToolResult, engine.ReportJob, error) {
		if input.ReportTypeID == "" {
			return nil, engine.ReportJob{}, fmt.Errorf("report_type_id is required")
		}
		job, err := engine.Reports.CreateJob(ctx, input.ReportTypeID, input.Name)
		if err != nil {
			return nil, engine.ReportJob{}, err
		}
		return nil, *job, nil
	})
}

func registerListReportJobs(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_reporting_list_jobs",
		Description: "List reporting jobs with their tracked state (requested, active, has_reports, deleted). Jobs created here but missing server-side are reported as deleted, not dropped. Requires OAuth.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.ListReportJobsInput) (*mcp.CallToolResult, engine.ListReportJobsOutput, error) {
		jobs, err := engine.Reports.ListJobs(ctx)
		if err != nil {
			return nil, engine.ListReportJobsOutput{}, err
		}
		return nil, engine.ListReportJobsOutput{Jobs: jobs, Total: len(jobs)}, nil
	})
}

func registerListReports(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_reporting_list_reports",
		Description: "List the finished reports of a job, oldest first, with download handles. Requires OAuth.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.ListReportsInput) (*mcp.CallToolResult, engine.ListReportsOutput, error) {
		if input.JobID == "" {
			return nil, engine.ListReportsOutput{}, fmt.Errorf("job_id is required")
		}
		reports, err := engine.Reports.ListReports(ctx, input.JobID)
		if err != nil {
			return nil, engine.ListReportsOutput{}, err
		}

		return nil, engine.ListReportsOutput{
			JobID:   input.JobID,
			State:   string(engine.Reports.State(input.JobID)),
			Reports: reports,
			Total:   len(reports),
		}, nil
	})
}

func registerDownloadReport(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_reporting_download",
		Description: "Download a finished report's CSV content. Repeat downloads of the same report return the locally cached copy without refetching. Requires OAuth.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.DownloadReportInput) (*mcp.CallToolResult, engine.DownloadReportOutput, error) {
		if input.ReportID == "" {
			return nil, engine.DownloadReportOutput{}, fmt.Errorf("report_id is required")
		}
		maxRows := toolutil.ClampResults(input.MaxRows, 1000, 10000)

		data, err := engine.Reports.Download(ctx, input.ReportID)
		if err != nil {
			return nil, engine.DownloadReportOutput{}, err
		}

		content, rows, truncated := csvHead(string(data), maxRows)
		return nil, engine.DownloadReportOutput{
			ReportID:  input.ReportID,
			Rows:      rows,
			Truncated: truncated,
			Content:   content,
		}, nil
	})
}

// csvHead keeps the header line plus at most maxRows data rows.
func csvHead(csv string, maxRows int) (content string, rows int, truncated bool) {
	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	if len(lines) <= 1 {
		return csv, 0, false
	}
	dataRows := len(lines) - 1
	if dataRows <= maxRows {
		return csv, dataRows, false
	}
	return strings.Join(lines[:maxRows+1], "\n") + "\n", maxRows, true
}
