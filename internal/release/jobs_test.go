package release

import (
	"context"
	"errors"
	"testing"
	"time"

	"go_releasehub/internal/model"
)

func TestValidateParams(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewJobsManager(newFakeAPI())
	m.now = func() time.Time { return now }

	valid := model.ScheduleParams{
		ReleaseID:   "rel-1",
		Action:      model.ActionTypePublish,
		ScheduledAt: now.Add(time.Hour),
		Timezone:    "Europe/Berlin",
	}

	tests := []struct {
		name    string
		mutate  func(p *model.ScheduleParams)
		wantErr bool
	}{
		{"valid", func(p *model.ScheduleParams) {}, false},
		{"unpublish", func(p *model.ScheduleParams) { p.Action = model.ActionTypeUnpublish }, false},
		{"no timezone", func(p *model.ScheduleParams) { p.Timezone = "" }, false},
		{"missing release", func(p *model.ScheduleParams) { p.ReleaseID = "" }, true},
		{"validate action", func(p *model.ScheduleParams) { p.Action = model.ActionTypeValidate }, true},
		{"in the past", func(p *model.ScheduleParams) { p.ScheduledAt = now.Add(-time.Minute) }, true},
		{"now", func(p *model.ScheduleParams) { p.ScheduledAt = now }, true},
		{"bad timezone", func(p *model.ScheduleParams) { p.Timezone = "Mars/Olympus" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := m.ValidateParams(p)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateParams() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidParams) {
				t.Errorf("Expected ErrInvalidParams, got %v", err)
			}
		})
	}
}

func TestCreateJob_InvalidParamsSkipsRequest(t *testing.T) {
	api := newFakeAPI()
	m := NewJobsManager(api)

	_, err := m.CreateJob(context.Background(), model.ScheduleParams{ReleaseID: "rel-1", Action: model.ActionTypePublish})
	if err == nil {
		t.Fatal("Expected error for zero scheduledAt")
	}
	if api.count("CreateScheduledJob") != 0 {
		t.Error("CreateScheduledJob should not be called")
	}
}

func TestCancelJob_RequiresID(t *testing.T) {
	api := newFakeAPI()
	if _, err := NewJobsManager(api).CancelJob(context.Background(), ""); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("Expected ErrInvalidParams, got %v", err)
	}
	if api.count("CancelScheduledJob") != 0 {
		t.Error("CancelScheduledJob should not be called")
	}
}

func TestPendingJobs(t *testing.T) {
	jobs := []model.ScheduledJob{
		{ID: "job-1", Status: model.JobStatusScheduled},
		{ID: "job-2", Status: model.JobStatusSucceeded},
		{ID: "job-3", Status: model.JobStatusScheduled},
		{ID: "job-4", Status: model.JobStatusFailed},
	}
	pending := PendingJobs(jobs)
	if len(pending) != 2 || pending[0].ID != "job-1" || pending[1].ID != "job-3" {
		t.Errorf("PendingJobs() = %v", pending)
	}
	if got := PendingJobs(nil); len(got) != 0 {
		t.Errorf("PendingJobs(nil) = %v", got)
	}
}
