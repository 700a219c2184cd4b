package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"go_releasehub/internal/model"
)

// ProcessingAction labels the action currently in flight, if any
type ProcessingAction string

const (
	ProcessingNone       ProcessingAction = ""
	ProcessingValidating ProcessingAction = "Validating"
	ProcessingPublishing ProcessingAction = "Publishing"
)

// Notification messages shown to users
const (
	MsgValidationPassed  = "All entities passed validation"
	MsgValidationFailed  = "Some entities failed validation"
	MsgValidationError   = "Failed validating Release"
	MsgPublishBlocked    = "Release was not published because some entities failed validation"
	MsgPublished         = "Release was published successfully"
	MsgPublishFailed     = "Failed publishing Release"
	MsgScheduled         = "Release was scheduled successfully"
	MsgScheduleFailed    = "Failed to schedule"
	MsgScheduleNudge     = "Some entities are not published yet. Validate the release to make sure it can be published on schedule"
	MsgScheduleCanceled  = "Schedule was canceled"
	MsgCancelFailed      = "Failed to cancel schedule"
	MsgScheduleCompleted = "Scheduled action completed"
	MsgScheduleErrored   = "Scheduled action failed"
)

// Deps are the collaborators a WorkflowController is built from
type Deps struct {
	API      API
	Notifier Notifier
	Logger   *logrus.Entry
	Sleep    Sleeper
}

// Snapshot is a consistent copy of a controller's local state
type Snapshot struct {
	ReleaseID        string                         `json:"releaseId"`
	State            State                          `json:"state"`
	ProcessingAction ProcessingAction               `json:"processingAction"`
	ActiveTab        Tab                            `json:"activeTab"`
	ValidationErrors []model.EntityError            `json:"validationErrors"`
	ErrorsByEntity   map[string][]model.EntityError `json:"errorsByEntity"`
	Release          *model.Release                 `json:"release"`
	Entities         []model.EntityState            `json:"entities"`
	Jobs             []model.ScheduledJob           `json:"jobs"`
	PendingJobs      []model.ScheduledJob           `json:"pendingJobs"`
	LastError        string                         `json:"lastError,omitempty"`
}

// WorkflowController drives validate, publish and schedule for one release.
// It exclusively owns the release's entity list, validation errors and jobs.
type WorkflowController struct {
	releaseID string
	api       API
	poller    *ActionPoller
	validator *ValidationCoordinator
	jobs      *JobsManager
	notifier  Notifier
	logger    *logrus.Entry

	mu               sync.Mutex
	state            State
	processingAction ProcessingAction
	activeTab        Tab
	release          *model.Release
	entities         []model.EntityState
	validationErrors []model.EntityError
	jobList          []model.ScheduledJob
	jobsGen          uint64 // moves on every confirmed create or cancel
	lastError        string
}

// NewWorkflowController 创建release工作流控制器
func NewWorkflowController(releaseID string, deps Deps) *WorkflowController {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &WorkflowController{
		releaseID: releaseID,
		api:       deps.API,
		poller:    NewActionPoller(deps.API, deps.Sleep),
		validator: NewValidationCoordinator(deps.API),
		jobs:      NewJobsManager(deps.API),
		notifier:  deps.Notifier,
		logger:    logger.WithFields(logrus.Fields{"component": "release-workflow", "release_id": releaseID}),
		state:     State{Kind: StateIdle},
		activeTab: TabEntries,
	}
}

// ReleaseID returns the id of the controlled release
func (c *WorkflowController) ReleaseID() string {
	return c.releaseID
}

// Refresh reloads the release and its entities' publish status
func (c *WorkflowController) Refresh(ctx context.Context) error {
	rel, err := c.api.GetRelease(ctx, c.releaseID)
	if err != nil {
		return fmt.Errorf("load release %s: %w", c.releaseID, err)
	}
	states, err := c.api.GetEntityStates(ctx, rel.Entities)
	if err != nil {
		return fmt.Errorf("load entities of release %s: %w", c.releaseID, err)
	}

	c.mu.Lock()
	c.release = rel
	c.entities = states
	c.mu.Unlock()
	return nil
}

// SetRelease replaces the local release after an edit made elsewhere,
// e.g. through the release service.
func (c *WorkflowController) SetRelease(rel *model.Release) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.release = rel
}

// LoadJobs fetches the release's jobs and replaces the local list
// A fetch that overlapped a confirmed create or cancel is dropped and the
// local list is returned instead.
func (c *WorkflowController) LoadJobs(ctx context.Context) ([]model.ScheduledJob, error) {
	c.mu.Lock()
	gen := c.jobsGen
	c.mu.Unlock()

	jobs, err := c.jobs.FetchJobs(ctx, c.releaseID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.jobsGen != gen {
		c.logger.Debug("Dropped stale job list")
		return append([]model.ScheduledJob(nil), c.jobList...), nil
	}
	c.jobList = jobs
	return append([]model.ScheduledJob(nil), jobs...), nil
}

// SetActiveTab records the tab the user switched to
func (c *WorkflowController) SetActiveTab(tab Tab) error {
	if tab != TabEntries && tab != TabAssets {
		return fmt.Errorf("%w: unknown tab %q", ErrInvalidParams, tab)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeTab = tab
	return nil
}

// ProcessingAction returns the label of the action in flight
func (c *WorkflowController) ProcessingAction() ProcessingAction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processingAction
}

// Snapshot returns a copy of the controller state
func (c *WorkflowController) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		ReleaseID:        c.releaseID,
		State:            c.state,
		ProcessingAction: c.processingAction,
		ActiveTab:        c.activeTab,
		ValidationErrors: append([]model.EntityError{}, c.validationErrors...),
		ErrorsByEntity:   ErrorsByEntity(c.validationErrors),
		Entities:         append([]model.EntityState{}, c.entities...),
		Jobs:             append([]model.ScheduledJob{}, c.jobList...),
		PendingJobs:      PendingJobs(c.jobList),
		LastError:        c.lastError,
	}
	if c.release != nil {
		rel := *c.release
		rel.Entities = append([]model.EntityLink{}, c.release.Entities...)
		s.Release = &rel
	}
	return s
}

// HandleValidation validates the release on user request. A result with
// errors is not an error: it switches the active tab and is returned.
func (c *WorkflowController) HandleValidation(ctx context.Context) (*ValidationResult, error) {
	if err := c.begin(ProcessingValidating, EventValidate); err != nil {
		return nil, err
	}
	defer c.finish()

	runID := uuid.NewString()
	result, err := c.validator.Validate(ctx, c.releaseID, model.ActionTypePublish)
	if err != nil {
		c.abort(err)
		c.logger.WithField("run_id", runID).WithError(err).Error("Release validation request failed")
		c.notify(ctx, runID, model.NotificationError, EventValidate, MsgValidationError, nil)
		return nil, err
	}

	if !result.Passed() {
		c.recordValidationFailure(result.Errored)
		c.notify(ctx, runID, model.NotificationError, EventValidate, MsgValidationFailed, result)
		return result, nil
	}

	c.recordValidationPass()
	c.notify(ctx, runID, model.NotificationSuccess, EventValidate, MsgValidationPassed, nil)
	return result, nil
}

// HandlePublication validates and, only if validation passes, publishes the
// release and waits for the publish action to finish.
func (c *WorkflowController) HandlePublication(ctx context.Context) error {
	if err := c.beginPublication(); err != nil {
		return err
	}
	return c.runPublication(ctx)
}

// StartPublication is HandlePublication for callers that cannot wait. The
// in-progress check happens before it returns; the rest runs in a goroutine
// that outlives ctx cancellation. The channel yields the final result.
func (c *WorkflowController) StartPublication(ctx context.Context) (<-chan error, error) {
	if err := c.beginPublication(); err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	runCtx := context.WithoutCancel(ctx)
	go func() {
		done <- c.runPublication(runCtx)
		close(done)
	}()
	return done, nil
}

func (c *WorkflowController) beginPublication() error {
	c.mu.Lock()
	loaded := c.release != nil
	c.mu.Unlock()
	if !loaded {
		return ErrReleaseNotLoaded
	}
	return c.begin(ProcessingPublishing, EventValidate)
}

func (c *WorkflowController) runPublication(ctx context.Context) error {
	defer c.finish()

	runID := uuid.NewString()
	log := c.logger.WithField("run_id", runID)

	result, err := c.validator.Validate(ctx, c.releaseID, model.ActionTypePublish)
	if err != nil {
		c.abort(err)
		log.WithError(err).Error("Validation before publish failed")
		c.notify(ctx, runID, model.NotificationError, EventPublish, MsgPublishFailed, nil)
		return err
	}
	if !result.Passed() {
		c.recordValidationFailure(result.Errored)
		log.WithField("errored", len(result.Errored)).Info("Publication blocked by validation errors")
		c.notify(ctx, runID, model.NotificationError, EventPublish, MsgPublishBlocked, result)
		return ErrValidationFailed
	}
	c.recordValidationPass()

	c.mu.Lock()
	c.mustTransition(EventPublish)
	c.mu.Unlock()

	// the release may have been edited elsewhere since it was loaded
	err = c.Refresh(ctx)
	var action *model.ReleaseAction
	if err == nil {
		c.mu.Lock()
		version := c.release.Version
		c.mu.Unlock()
		action, err = c.api.PublishRelease(ctx, c.releaseID, version)
	}
	if err == nil {
		log = log.WithField("action_id", action.ID)
		log.Info("Release publish started, waiting for action")
		_, err = c.poller.Wait(ctx, c.releaseID, action.ID)
	}
	if err != nil {
		c.recordPublishFailure(err)
		log.WithError(err).Error("Release publish failed")
		c.notify(ctx, runID, model.NotificationError, EventPublish, MsgPublishFailed, nil)
		return err
	}

	c.mu.Lock()
	c.mustTransition(EventPublished)
	c.mu.Unlock()

	// publishing can change entity versions and statuses
	if err := c.Refresh(ctx); err != nil {
		log.WithError(err).Warn("Failed to refresh release after publish")
	}
	log.Info("Release published")
	c.notify(ctx, runID, model.NotificationSuccess, EventPublish, MsgPublished, nil)
	return nil
}

// HandleScheduleCreate schedules a future publish or unpublish of the release
func (c *WorkflowController) HandleScheduleCreate(ctx context.Context, scheduledAt time.Time, timezone string, action model.ActionType) (*model.ScheduledJob, error) {
	params := model.ScheduleParams{
		ReleaseID:   c.releaseID,
		Action:      action,
		ScheduledAt: scheduledAt,
		Timezone:    timezone,
	}
	if err := c.jobs.ValidateParams(params); err != nil {
		return nil, err
	}
	if err := c.begin(ProcessingNone, EventSchedule); err != nil {
		return nil, err
	}
	defer c.finish()

	runID := uuid.NewString()
	job, err := c.jobs.CreateJob(ctx, params)
	if err != nil {
		c.mu.Lock()
		c.mustTransition(EventScheduleFailed)
		c.lastError = err.Error()
		c.mu.Unlock()
		c.logger.WithFields(logrus.Fields{
			"run_id":       runID,
			"action":       action,
			"scheduled_at": scheduledAt.Format(time.RFC3339),
			"timezone":     timezone,
		}).WithError(err).Error("Failed to create scheduled job")
		c.notify(ctx, runID, model.NotificationError, EventSchedule, MsgScheduleFailed, nil)
		return nil, err
	}

	c.mu.Lock()
	c.mustTransition(EventScheduled)
	c.jobList = append(c.jobList, *job)
	c.jobsGen++
	var links []model.EntityLink
	if c.release != nil {
		links = append(links, c.release.Entities...)
	}
	c.mu.Unlock()

	c.notify(ctx, runID, model.NotificationSuccess, EventSchedule, MsgScheduled, job)

	if len(links) > 0 {
		states, err := c.api.GetEntityStates(ctx, links)
		if err != nil {
			c.logger.WithField("run_id", runID).WithError(err).Warn("Failed to check entity status after scheduling")
		} else {
			c.mu.Lock()
			c.entities = states
			c.mu.Unlock()
			if !allPublished(states) {
				c.notify(ctx, runID, model.NotificationWarning, EventValidate, MsgScheduleNudge, nil)
			}
		}
	}
	return job, nil
}

// HandleScheduleCancel cancels a job. The job leaves the local list only
// after the server confirmed the cancellation.
func (c *WorkflowController) HandleScheduleCancel(ctx context.Context, jobID string) error {
	runID := uuid.NewString()
	if _, err := c.jobs.CancelJob(ctx, jobID); err != nil {
		c.mu.Lock()
		c.lastError = err.Error()
		c.mu.Unlock()
		c.logger.WithFields(logrus.Fields{"run_id": runID, "job_id": jobID}).WithError(err).Error("Failed to cancel scheduled job")
		c.notify(ctx, runID, model.NotificationError, EventSchedule, MsgCancelFailed, map[string]string{"jobId": jobID})
		return err
	}

	c.mu.Lock()
	kept := c.jobList[:0:0]
	for _, j := range c.jobList {
		if j.ID != jobID {
			kept = append(kept, j)
		}
	}
	c.jobList = kept
	c.jobsGen++
	c.mu.Unlock()

	c.notify(ctx, runID, model.NotificationSuccess, EventSchedule, MsgScheduleCanceled, map[string]string{"jobId": jobID})
	return nil
}

// NotifyJobFinished reports a job the server ran since the last fetch
func (c *WorkflowController) NotifyJobFinished(ctx context.Context, job model.ScheduledJob) {
	level, msg := model.NotificationSuccess, MsgScheduleCompleted
	if job.Status == model.JobStatusFailed {
		level, msg = model.NotificationError, MsgScheduleErrored
	}
	c.notify(ctx, uuid.NewString(), level, EventSchedule, msg, job)
}

// begin atomically checks that no action is in flight and enters the first
// state of the new one.
func (c *WorkflowController) begin(label ProcessingAction, e Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.processingAction != ProcessingNone || c.state.Kind != StateIdle {
		return ErrActionInProgress
	}
	next, err := Transition(c.state, e)
	if err != nil {
		return err
	}
	c.state = next
	c.processingAction = label
	c.lastError = ""
	return nil
}

// finish settles the state machine back to idle and clears the label
func (c *WorkflowController) finish() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Kind.Settled() {
		c.mustTransition(EventSettle)
	}
	c.processingAction = ProcessingNone
}

func (c *WorkflowController) abort(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mustTransition(EventAbort)
	c.lastError = err.Error()
}

func (c *WorkflowController) recordValidationFailure(errored []model.EntityError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mustTransition(EventValidationFailed)
	c.validationErrors = append([]model.EntityError{}, errored...)
	c.activeTab = SelectTab(errored, c.activeTab)
}

func (c *WorkflowController) recordValidationPass() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mustTransition(EventValidationPassed)
	c.validationErrors = nil
}

func (c *WorkflowController) recordPublishFailure(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mustTransition(EventPublishFailed)
	c.lastError = err.Error()

	var failed *ActionFailedError
	if errors.As(err, &failed) && len(failed.Action.Errors) > 0 {
		c.validationErrors = append([]model.EntityError{}, failed.Action.Errors...)
		c.activeTab = SelectTab(failed.Action.Errors, c.activeTab)
	}
}

// mustTransition applies e under c.mu. The controller only fires events its
// own flow allows, so a rejected transition is a programming error.
func (c *WorkflowController) mustTransition(e Event) {
	next, err := Transition(c.state, e)
	if err != nil {
		panic(err)
	}
	c.state = next
}

func (c *WorkflowController) notify(ctx context.Context, runID string, level model.NotificationLevel, action Event, message string, payload interface{}) {
	if c.notifier == nil {
		return
	}

	n := model.Notification{
		ReleaseID: c.releaseID,
		RunID:     runID,
		Level:     level,
		Action:    string(action),
		Message:   message,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			c.logger.WithError(err).Warn("Failed to marshal notification payload")
		} else {
			n.Payload = datatypes.JSON(data)
		}
	}

	if err := c.notifier.Notify(ctx, n); err != nil {
		c.logger.WithError(err).WithField("message", message).Warn("Failed to deliver notification")
	}
}

func allPublished(states []model.EntityState) bool {
	for _, s := range states {
		if s.Status != model.EntityStatusPublished {
			return false
		}
	}
	return true
}
