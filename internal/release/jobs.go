package release

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go_releasehub/internal/model"
)

// JobsManager 定时任务管理
type JobsManager struct {
	api JobsAPI
	now func() time.Time
}

// NewJobsManager 创建定时任务管理器
func NewJobsManager(api JobsAPI) *JobsManager {
	return &JobsManager{api: api, now: time.Now}
}

// FetchJobs returns the release's non-canceled jobs in the configured
// environment. Filtering happens server-side.
func (m *JobsManager) FetchJobs(ctx context.Context, releaseID string) ([]model.ScheduledJob, error) {
	jobs, err := m.api.GetScheduledJobs(ctx, releaseID)
	if err != nil {
		return nil, fmt.Errorf("fetch jobs of release %s: %w", releaseID, err)
	}
	return jobs, nil
}

// CreateJob validates params and creates the job
func (m *JobsManager) CreateJob(ctx context.Context, params model.ScheduleParams) (*model.ScheduledJob, error) {
	if err := m.ValidateParams(params); err != nil {
		return nil, err
	}
	job, err := m.api.CreateScheduledJob(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create job for release %s: %w", params.ReleaseID, err)
	}
	return job, nil
}

// CancelJob cancels a job server-side
func (m *JobsManager) CancelJob(ctx context.Context, jobID string) (*model.ScheduledJob, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, fmt.Errorf("%w: job id is required", ErrInvalidParams)
	}
	job, err := m.api.CancelScheduledJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("cancel job %s: %w", jobID, err)
	}
	return job, nil
}

// PendingJobs is the scheduled subset of jobs, recomputed on every call
func PendingJobs(jobs []model.ScheduledJob) []model.ScheduledJob {
	pending := make([]model.ScheduledJob, 0, len(jobs))
	for _, j := range jobs {
		if j.Status == model.JobStatusScheduled {
			pending = append(pending, j)
		}
	}
	return pending
}

// ValidateParams checks a schedule request before it reaches the CMA
func (m *JobsManager) ValidateParams(params model.ScheduleParams) error {
	if params.ReleaseID == "" {
		return fmt.Errorf("%w: release id is required", ErrInvalidParams)
	}
	if params.Action != model.ActionTypePublish && params.Action != model.ActionTypeUnpublish {
		return fmt.Errorf("%w: action must be publish or unpublish, got %q", ErrInvalidParams, params.Action)
	}
	if !params.ScheduledAt.After(m.now()) {
		return fmt.Errorf("%w: scheduledAt must be in the future", ErrInvalidParams)
	}
	if params.Timezone != "" {
		if _, err := time.LoadLocation(params.Timezone); err != nil {
			return fmt.Errorf("%w: invalid timezone %q: %v", ErrInvalidParams, params.Timezone, err)
		}
	}
	return nil
}
