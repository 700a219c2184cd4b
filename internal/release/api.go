package release

import (
	"context"

	"go_releasehub/internal/model"
)

// ActionGetter fetches the current state of a release action
type ActionGetter interface {
	GetReleaseAction(ctx context.Context, releaseID, actionID string) (*model.ReleaseAction, error)
}

// Validator runs server-side validation of a release
type Validator interface {
	ValidateRelease(ctx context.Context, releaseID string, action model.ActionType) ([]model.EntityError, error)
}

// JobsAPI is the scheduled-action part of the CMA
type JobsAPI interface {
	GetScheduledJobs(ctx context.Context, releaseID string) ([]model.ScheduledJob, error)
	CreateScheduledJob(ctx context.Context, params model.ScheduleParams) (*model.ScheduledJob, error)
	CancelScheduledJob(ctx context.Context, jobID string) (*model.ScheduledJob, error)
}

// ReleasesAPI is the release CRUD part of the CMA
type ReleasesAPI interface {
	CreateRelease(ctx context.Context, title string, entities []model.EntityLink) (*model.Release, error)
	GetRelease(ctx context.Context, releaseID string) (*model.Release, error)
	GetReleases(ctx context.Context, limit, skip int) ([]model.Release, int, error)
	UpdateRelease(ctx context.Context, release *model.Release) (*model.Release, error)
	DeleteRelease(ctx context.Context, releaseID string) error
}

// API is everything the workflow needs from the CMA. *cma.Client satisfies it.
type API interface {
	ActionGetter
	Validator
	JobsAPI
	ReleasesAPI
	PublishRelease(ctx context.Context, releaseID string, version int) (*model.ReleaseAction, error)
	GetEntityStates(ctx context.Context, links []model.EntityLink) ([]model.EntityState, error)
}

// Notifier delivers user-visible workflow notifications
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}
