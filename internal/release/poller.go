package release

import (
	"context"
	"fmt"
	"time"

	"go_releasehub/internal/model"
)

const (
	// PollInterval is the fixed wait between two action status requests
	PollInterval = 1000 * time.Millisecond
	// MaxPollAttempts is the hard ceiling on status requests per action
	MaxPollAttempts = 60
)

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// TimerSleep is the production Sleeper
func TimerSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ActionPoller waits for a release action to reach a terminal status
type ActionPoller struct {
	api   ActionGetter
	sleep Sleeper
}

// NewActionPoller 创建轮询器；sleep为nil时使用真实计时器
func NewActionPoller(api ActionGetter, sleep Sleeper) *ActionPoller {
	if sleep == nil {
		sleep = TimerSleep
	}
	return &ActionPoller{api: api, sleep: sleep}
}

// Wait polls the action until it succeeds, fails or MaxPollAttempts is used up.
// A failed action is returned as *ActionFailedError; running out of attempts
// returns ErrActionTimeout. Request errors abort polling immediately.
func (p *ActionPoller) Wait(ctx context.Context, releaseID, actionID string) (*model.ReleaseAction, error) {
	if releaseID == "" || actionID == "" {
		return nil, fmt.Errorf("release id and action id are required")
	}

	for attempt := 1; ; attempt++ {
		action, err := p.api.GetReleaseAction(ctx, releaseID, actionID)
		if err != nil {
			return nil, fmt.Errorf("poll release action %s (attempt %d): %w", actionID, attempt, err)
		}

		switch action.Status {
		case model.ActionStatusSucceeded:
			return action, nil
		case model.ActionStatusFailed:
			return nil, &ActionFailedError{Action: action}
		}

		if attempt >= MaxPollAttempts {
			return nil, ErrActionTimeout
		}
		if err := p.sleep(ctx, PollInterval); err != nil {
			return nil, err
		}
	}
}
