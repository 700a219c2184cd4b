package release

import "fmt"

// StateKind 工作流状态
type StateKind string

const (
	StateIdle             StateKind = "idle"
	StateValidating       StateKind = "validating"
	StatePassedValidation StateKind = "passedValidation"
	StateFailedValidation StateKind = "failedValidation"
	StatePublishing       StateKind = "publishing"
	StatePublished        StateKind = "published"
	StatePublishFailed    StateKind = "publishFailed"
	StateScheduling       StateKind = "scheduling"
	StateScheduled        StateKind = "scheduled"
	StateScheduleFailed   StateKind = "scheduleFailed"
)

// Settled reports whether the kind is the outcome of a finished action
func (k StateKind) Settled() bool {
	switch k {
	case StatePassedValidation, StateFailedValidation, StatePublished,
		StatePublishFailed, StateScheduled, StateScheduleFailed:
		return true
	}
	return false
}

// Event 状态迁移事件
type Event string

const (
	EventValidate         Event = "validate"
	EventValidationPassed Event = "validationPassed"
	EventValidationFailed Event = "validationFailed"
	EventPublish          Event = "publish"
	EventPublished        Event = "published"
	EventPublishFailed    Event = "publishFailed"
	EventSchedule         Event = "schedule"
	EventScheduled        Event = "scheduled"
	EventScheduleFailed   Event = "scheduleFailed"
	// EventAbort drops an in-flight action back to idle after a request error
	EventAbort Event = "abort"
	// EventSettle returns a settled outcome to idle
	EventSettle Event = "settle"
)

// State is the workflow state of one release. Outcome keeps the last settled
// kind after the machine has returned to idle.
type State struct {
	Kind    StateKind `json:"kind"`
	Outcome StateKind `json:"outcome,omitempty"`
}

var transitions = map[StateKind]map[Event]StateKind{
	StateIdle: {
		EventValidate: StateValidating,
		EventSchedule: StateScheduling,
	},
	StateValidating: {
		EventValidationPassed: StatePassedValidation,
		EventValidationFailed: StateFailedValidation,
		EventAbort:            StateIdle,
	},
	StatePassedValidation: {
		EventPublish: StatePublishing,
		EventSettle:  StateIdle,
	},
	StateFailedValidation: {
		EventSettle: StateIdle,
	},
	StatePublishing: {
		EventPublished:     StatePublished,
		EventPublishFailed: StatePublishFailed,
	},
	StatePublished:     {EventSettle: StateIdle},
	StatePublishFailed: {EventSettle: StateIdle},
	StateScheduling: {
		EventScheduled:      StateScheduled,
		EventScheduleFailed: StateScheduleFailed,
	},
	StateScheduled:      {EventSettle: StateIdle},
	StateScheduleFailed: {EventSettle: StateIdle},
}

// Transition returns the state reached from s on e. It does not mutate s.
func Transition(s State, e Event) (State, error) {
	next, ok := transitions[s.Kind][e]
	if !ok {
		return s, fmt.Errorf("invalid transition: %s on %s", s.Kind, e)
	}

	out := State{Kind: next, Outcome: s.Outcome}
	if e == EventSettle {
		out.Outcome = s.Kind
	}
	return out, nil
}
