package release

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go_releasehub/internal/model"
)

// fakeAPI is an in-memory CMA used by the release package tests
type fakeAPI struct {
	mu sync.Mutex

	release    *model.Release
	statuses   map[model.EntityLink]model.EntityStatus
	releaseErr error

	errored     []model.EntityError
	validateErr error

	publishErr     error
	publishVersion int
	actionStatuses []model.ActionStatus
	actionErrors   []model.EntityError
	actionErr      error

	jobs      []model.ScheduledJob
	jobErr    error
	cancelErr error

	lastCreated *model.Release
	lastUpdated *model.Release

	calls map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		release: &model.Release{
			ID:      "rel-1",
			Title:   "Sprint 12",
			Version: 3,
			Entities: []model.EntityLink{
				{ID: "e1", LinkType: model.LinkTypeEntry},
				{ID: "e2", LinkType: model.LinkTypeEntry},
			},
		},
		statuses: map[model.EntityLink]model.EntityStatus{},
		calls:    map[string]int{},
	}
}

func (f *fakeAPI) called(name string) {
	f.calls[name]++
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) CreateRelease(ctx context.Context, title string, entities []model.EntityLink) (*model.Release, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called("CreateRelease")
	rel := &model.Release{ID: "rel-new", Title: title, Version: 1, Entities: entities}
	f.lastCreated = rel
	return rel, nil
}

func (f *fakeAPI) GetRelease(ctx context.Context, releaseID string) (*model.Release, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called("GetRelease")
	if f.releaseErr != nil {
		return nil, f.releaseErr
	}
	rel := *f.release
	rel.Entities = append([]model.EntityLink(nil), f.release.Entities...)
	return &rel, nil
}

func (f *fakeAPI) GetReleases(ctx context.Context, limit, skip int) ([]model.Release, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called("GetReleases")
	return []model.Release{*f.release}, 1, nil
}

func (f *fakeAPI) UpdateRelease(ctx context.Context, release *model.Release) (*model.Release, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called("UpdateRelease")
	updated := *release
	updated.Version++
	f.lastUpdated = &updated
	return &updated, nil
}

func (f *fakeAPI) DeleteRelease(ctx context.Context, releaseID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called("DeleteRelease")
	return nil
}

func (f *fakeAPI) PublishRelease(ctx context.Context, releaseID string, version int) (*model.ReleaseAction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called("PublishRelease")
	f.publishVersion = version
	if f.publishErr != nil {
		return nil, f.publishErr
	}
	return &model.ReleaseAction{ID: "act-1", ReleaseID: releaseID, Type: model.ActionTypePublish, Status: model.ActionStatusScheduled}, nil
}

func (f *fakeAPI) ValidateRelease(ctx context.Context, releaseID string, action model.ActionType) ([]model.EntityError, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called("ValidateRelease")
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	return append([]model.EntityError(nil), f.errored...), nil
}

// GetReleaseAction returns actionStatuses in order, repeating the last one
func (f *fakeAPI) GetReleaseAction(ctx context.Context, releaseID, actionID string) (*model.ReleaseAction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called("GetReleaseAction")
	n := f.calls["GetReleaseAction"]
	if f.actionErr != nil {
		return nil, f.actionErr
	}
	if len(f.actionStatuses) == 0 {
		return nil, fmt.Errorf("no action statuses configured")
	}
	idx := n - 1
	if idx >= len(f.actionStatuses) {
		idx = len(f.actionStatuses) - 1
	}
	action := &model.ReleaseAction{ID: actionID, ReleaseID: releaseID, Type: model.ActionTypePublish, Status: f.actionStatuses[idx]}
	if action.Status == model.ActionStatusFailed {
		action.Errors = f.actionErrors
	}
	return action, nil
}

func (f *fakeAPI) GetEntityStates(ctx context.Context, links []model.EntityLink) ([]model.EntityState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called("GetEntityStates")
	states := make([]model.EntityState, 0, len(links))
	for _, l := range links {
		status, ok := f.statuses[l]
		if !ok {
			status = model.EntityStatusPublished
		}
		states = append(states, model.EntityState{Link: l, Status: status})
	}
	return states, nil
}

func (f *fakeAPI) GetScheduledJobs(ctx context.Context, releaseID string) ([]model.ScheduledJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called("GetScheduledJobs")
	return append([]model.ScheduledJob(nil), f.jobs...), nil
}

func (f *fakeAPI) CreateScheduledJob(ctx context.Context, params model.ScheduleParams) (*model.ScheduledJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called("CreateScheduledJob")
	if f.jobErr != nil {
		return nil, f.jobErr
	}
	job := model.ScheduledJob{
		ID:          fmt.Sprintf("job-%d", len(f.jobs)+1),
		ReleaseID:   params.ReleaseID,
		Action:      params.Action,
		ScheduledAt: params.ScheduledAt,
		Timezone:    params.Timezone,
		Status:      model.JobStatusScheduled,
	}
	f.jobs = append(f.jobs, job)
	return &job, nil
}

func (f *fakeAPI) CancelScheduledJob(ctx context.Context, jobID string) (*model.ScheduledJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called("CancelScheduledJob")
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	for i, j := range f.jobs {
		if j.ID == jobID {
			j.Status = model.JobStatusCanceled
			f.jobs = append(f.jobs[:i], f.jobs[i+1:]...)
			return &j, nil
		}
	}
	return nil, fmt.Errorf("job %s not found", jobID)
}

// recordingNotifier keeps every notification it receives
type recordingNotifier struct {
	mu    sync.Mutex
	items []model.Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, n model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
	return nil
}

func (r *recordingNotifier) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.items))
	for _, n := range r.items {
		out = append(out, n.Message)
	}
	return out
}

func (r *recordingNotifier) has(level model.NotificationLevel, message string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.Level == level && n.Message == message {
			return true
		}
	}
	return false
}

// countingSleeper records sleeps without waiting
type countingSleeper struct {
	mu    sync.Mutex
	calls int
	total time.Duration
}

func (s *countingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.total += d
	return ctx.Err()
}
