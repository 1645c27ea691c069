package engine

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// JobState is the lifecycle of a bulk reporting job as observed by polling.
// Transitions come only from service responses, never from local timers or
// inference — the tracker is a cache over external truth, not a predictor.
type JobState string

const (
	JobRequested  JobState = "requested"   // create call issued
	JobActive     JobState = "active"      // server confirmed the job exists
	JobHasReports JobState = "has_reports" // at least one artifact ready
	JobDeleted    JobState = "deleted"     // gone server-side; terminal
)

// ReportJob is the locally mirrored view of one reporting job.
type ReportJob struct {
	ID           string   `json:"job_id"`
	ReportTypeID string   `json:"report_type_id"`
	Name         string   `json:"name,omitempty"`
	State        JobState `json:"state"`
	CreateTime   string   `json:"create_time,omitempty"`
}

// ReportArtifact is one generated report known to the tracker.
type ReportArtifact struct {
	ID          string `json:"report_id"`
	JobID       string `json:"job_id"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
	ReadyAt     string `json:"ready_at"`
	DownloadURL string `json:"download_url"`
	Downloaded  bool   `json:"downloaded"`
}

// pollResult is what one poll of the service said about a job.
type pollResult struct {
	found          bool
	artifactsKnown bool // this poll carried an artifact listing
	artifacts      int
}

// nextState computes the transition for one poll response. Pure so the state
// machine is testable without any transport. Deleted is terminal, and a poll
// that carried no artifact listing (or an empty one) never regresses a job.
func nextState(cur JobState, p pollResult) JobState {
	switch {
	case cur == JobDeleted:
		return JobDeleted
	case !p.found:
		return JobDeleted
	case p.artifactsKnown && p.artifacts > 0:
		return JobHasReports
	case cur == JobHasReports:
		return JobHasReports
	default:
		return JobActive
	}
}

// JobTracker mirrors the Reporting API's job state machine and caches
// downloaded artifacts. It never sleeps or self-schedules; callers drive
// every poll.
type JobTracker struct {
	mu        sync.Mutex
	d         *Dispatcher
	api       *ReportingClient
	jobs      map[string]*ReportJob
	artifacts map[string]map[string]*ReportArtifact // jobID → reportID → artifact
	content   map[string][]byte                     // reportID → downloaded bytes
	group     singleflight.Group
}

func NewJobTracker(d *Dispatcher, api *ReportingClient) *JobTracker {
	return &JobTracker{
		d:         d,
		api:       api,
		jobs:      make(map[string]*ReportJob),
		artifacts: make(map[string]map[string]*ReportArtifact),
		content:   make(map[string][]byte),
	}
}

// Reporting API calls carry no Data API unit cost; the budget ledger still
// sees them so auth ordering and bookkeeping stay uniform.
func reportingDescriptor(name string) Descriptor {
	return Descriptor{Name: name, Cost: 0, RequiresAuth: true}
}

// ListReportTypes returns the schedulable report types.
func (t *JobTracker) ListReportTypes(ctx context.Context) ([]ReportType, error) {
	return Invoke(ctx, t.d, reportingDescriptor("reporting_list_types"),
		func(ctx context.Context, token string, _ *Bill) ([]ReportType, error) {
			return t.api.ListReportTypes(ctx, token)
		})
}

// CreateJob schedules a new reporting job. The job starts in requested
// state; the first confirming poll moves it to active.
func (t *JobTracker) CreateJob(ctx context.Context, reportTypeID, name string) (*ReportJob, error) {
	wire, err := Invoke(ctx, t.d, reportingDescriptor("reporting_create_job"),
		func(ctx context.Context, token string, _ *Bill) (*reportingJob, error) {
			return t.api.CreateJob(ctx, token, reportTypeID, name)
		})
	if err != nil {
		return nil, err
	}

	job := &ReportJob{
		ID:           wire.ID,
		ReportTypeID: wire.ReportTypeID,
		Name:         wire.Name,
		State:        JobRequested,
		CreateTime:   wire.CreateTime,
	}
	t.mu.Lock()
	t.jobs[job.ID] = job
	t.mu.Unlock()
	return snapshotJob(job), nil
}

// Poll refreshes one job's state from the service.
func (t *JobTracker) Poll(ctx context.Context, jobID string) (*ReportJob, error) {
	wire, err := Invoke(ctx, t.d, reportingDescriptor("reporting_get_job"),
		func(ctx context.Context, token string, _ *Bill) (*reportingJob, error) {
			return t.api.GetJob(ctx, token, jobID)
		})

	p := pollResult{found: err == nil}
	if err != nil && !IsNotFound(err) {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[jobID]
	if !ok {
		if !p.found {
			return nil, ErrJobNotFound
		}
		job = &ReportJob{ID: jobID, State: JobRequested}
		t.jobs[jobID] = job
	}
	if p.found {
		job.ReportTypeID = wire.ReportTypeID
		job.Name = wire.Name
		job.CreateTime = wire.CreateTime
	}
	job.State = nextState(job.State, p)
	return snapshotJob(job), nil
}

// ListJobs polls the job listing and merges it into the local view. The
// client pages the listing to exhaustion, so a job absent from it really is
// gone server-side and transitions to deleted.
func (t *JobTracker) ListJobs(ctx context.Context) ([]ReportJob, error) {
	wires, err := Invoke(ctx, t.d, reportingDescriptor("reporting_list_jobs"),
		func(ctx context.Context, token string, _ *Bill) ([]reportingJob, error) {
			return t.api.ListJobs(ctx, token)
		})
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[string]bool, len(wires))
	for _, w := range wires {
		seen[w.ID] = true
		job, ok := t.jobs[w.ID]
		if !ok {
			job = &ReportJob{ID: w.ID, State: JobRequested}
			t.jobs[w.ID] = job
		}
		job.ReportTypeID = w.ReportTypeID
		job.Name = w.Name
		job.CreateTime = w.CreateTime
		job.State = nextState(job.State, pollResult{found: true})
	}
	for id, job := range t.jobs {
		if !seen[id] {
			job.State = nextState(job.State, pollResult{found: false})
		}
	}

	out := make([]ReportJob, 0, len(t.jobs))
	for _, job := range t.jobs {
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreateTime < out[j].CreateTime })
	return out, nil
}

// ListReports polls the artifact listing for a job. New artifacts are
// appended to the local view, never removed, ordered by ready time
// ascending. An empty listing on an active job does not regress it.
func (t *JobTracker) ListReports(ctx context.Context, jobID string) ([]ReportArtifact, error) {
	t.mu.Lock()
	if job, ok := t.jobs[jobID]; ok && job.State == JobDeleted {
		t.mu.Unlock()
		return nil, ErrJobDeleted
	}
	t.mu.Unlock()

	wires, err := Invoke(ctx, t.d, reportingDescriptor("reporting_list_reports"),
		func(ctx context.Context, token string, _ *Bill) ([]reportInfo, error) {
			return t.api.ListJobReports(ctx, token, jobID)
		})

	p := pollResult{found: err == nil, artifactsKnown: err == nil, artifacts: len(wires)}
	if err != nil {
		if IsNotFound(err) {
			t.mu.Lock()
			if job, ok := t.jobs[jobID]; ok {
				job.State = nextState(job.State, p)
			}
			t.mu.Unlock()
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[jobID]
	if !ok {
		job = &ReportJob{ID: jobID, State: JobRequested}
		t.jobs[jobID] = job
	}
	job.State = nextState(job.State, p)

	byID := t.artifacts[jobID]
	if byID == nil {
		byID = make(map[string]*ReportArtifact)
		t.artifacts[jobID] = byID
	}
	for _, w := range wires {
		if _, exists := byID[w.ID]; exists {
			continue
		}
		byID[w.ID] = &ReportArtifact{
			ID:          w.ID,
			JobID:       jobID,
			StartTime:   w.StartTime,
			EndTime:     w.EndTime,
			ReadyAt:     w.CreateTime,
			DownloadURL: w.DownloadURL,
		}
	}

	out := make([]ReportArtifact, 0, len(byID))
	for _, a := range byID {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReadyAt < out[j].ReadyAt })
	return out, nil
}

// Download fetches one artifact's bytes. Idempotent: a repeat call returns
// the cached content, and concurrent calls for the same report share a
// single fetch.
func (t *JobTracker) Download(ctx context.Context, reportID string) ([]byte, error) {
	t.mu.Lock()
	artifact := t.findArtifact(reportID)
	if artifact == nil {
		t.mu.Unlock()
		return nil, ErrArtifactNotReady
	}
	if job, ok := t.jobs[artifact.JobID]; ok && job.State == JobDeleted {
		t.mu.Unlock()
		return nil, ErrJobDeleted
	}
	if data, ok := t.content[reportID]; ok {
		t.mu.Unlock()
		return data, nil
	}
	downloadURL := artifact.DownloadURL
	t.mu.Unlock()

	v, err, _ := t.group.Do(reportID, func() (any, error) {
		t.mu.Lock()
		if data, ok := t.content[reportID]; ok {
			t.mu.Unlock()
			return data, nil
		}
		t.mu.Unlock()

		data, err := Invoke(ctx, t.d, reportingDescriptor("reporting_download"),
			func(ctx context.Context, token string, _ *Bill) ([]byte, error) {
				return t.api.DownloadMedia(ctx, token, downloadURL)
			})
		if err != nil {
			return nil, err
		}

		t.mu.Lock()
		t.content[reportID] = data
		if a := t.findArtifact(reportID); a != nil {
			a.Downloaded = true
		}
		t.mu.Unlock()
		IncrReportDownloads()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// State returns the tracked state of a job. Unknown jobs report requested.
func (t *JobTracker) State(jobID string) JobState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if job, ok := t.jobs[jobID]; ok {
		return job.State
	}
	return JobRequested
}

// findArtifact scans the per-job maps. Caller must hold t.mu.
func (t *JobTracker) findArtifact(reportID string) *ReportArtifact {
	for _, byID := range t.artifacts {
		if a, ok := byID[reportID]; ok {
			return a
		}
	}
	return nil
}

func snapshotJob(j *ReportJob) *ReportJob {
	cp := *j
	return &cp
}
