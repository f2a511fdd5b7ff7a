package generation

import "strings"

// Status is the coarse job status reported by the remote service.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// ParseStatus converts a wire value to a Status. Unknown values report false.
func ParseStatus(value string) (Status, bool) {
	switch s := Status(strings.ToLower(strings.TrimSpace(value))); s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusError:
		return s, true
	}
	return "", false
}

// IsTerminal reports whether polling should stop at this status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Handle is returned once when a job is created. ID correlates every
// subsequent poll.
type Handle struct {
	ID      string `json:"id"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Snapshot is the payload of one status poll.
type Snapshot struct {
	ID       string  `json:"id"`
	Status   Status  `json:"status"`
	Progress int     `json:"progress"`
	Result   *Result `json:"result,omitempty"`
	Message  string  `json:"message,omitempty"`
	Topic    string  `json:"topic,omitempty"`
}

// ClampedProgress returns Progress limited to 0..100.
func (s Snapshot) ClampedProgress() int {
	return ClampProgress(s.Progress)
}

// ClampProgress limits p to 0..100.
func ClampProgress(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
