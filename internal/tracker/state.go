package tracker

import (
	"time"

	"mewai/internal/generation"
	"mewai/internal/stages"
)

// Lifecycle is the tracker's own coarse state, distinct from the remote status.
type Lifecycle string

const (
	LifecycleIdle      Lifecycle = "idle"
	LifecycleStarting  Lifecycle = "starting"
	LifecyclePolling   Lifecycle = "polling"
	LifecycleCompleted Lifecycle = "completed"
	LifecycleError     Lifecycle = "error"
)

// IsTerminal reports whether the lifecycle has finished.
func (l Lifecycle) IsTerminal() bool {
	return l == LifecycleCompleted || l == LifecycleError
}

// IsActive reports whether a job is being started or polled.
func (l Lifecycle) IsActive() bool {
	return l == LifecycleStarting || l == LifecyclePolling
}

// State is the observable view of the tracked job.
type State struct {
	Lifecycle    Lifecycle          `json:"lifecycle"`
	JobID        string             `json:"job_id,omitempty"`
	Topic        string             `json:"topic,omitempty"`
	Progress     int                `json:"progress"`
	RemoteStatus generation.Status  `json:"remote_status,omitempty"`
	Stages       []stages.State     `json:"stages"`
	Message      string             `json:"message,omitempty"`
	ErrorMessage string             `json:"error_message,omitempty"`
	ErrorKind    string             `json:"error_kind,omitempty"`
	Result       *generation.Result `json:"result,omitempty"`
	Generation   uint64             `json:"generation"`
	StartedAt    time.Time          `json:"started_at,omitzero"`
	UpdatedAt    time.Time          `json:"updated_at,omitzero"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Stages = stages.Clone(s.Stages)
	out.Result = s.Result.Clone()
	return out
}

func isValidTransition(from, to Lifecycle) bool {
	switch from {
	case LifecycleIdle, LifecycleCompleted, LifecycleError:
		return to == LifecycleStarting || to == LifecyclePolling
	case LifecycleStarting:
		return to == LifecyclePolling || to == LifecycleError
	case LifecyclePolling:
		return to == LifecycleCompleted || to == LifecycleError
	default:
		return false
	}
}
