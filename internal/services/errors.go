package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrTransport      = errors.New("transport error")
	ErrNotFound       = errors.New("not found")
	ErrRemoteJob      = errors.New("remote job error")
	ErrMissingResult  = errors.New("missing result")
	ErrAlreadyRunning = errors.New("already running")
)

// FallbackMessage is shown when a failure carries no usable text.
const FallbackMessage = "generation failed"

// RemoteJobError carries the failure message reported by the generation
// service for a job whose status is error. It matches ErrRemoteJob.
type RemoteJobError struct {
	JobID   string
	Message string
}

func (e *RemoteJobError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = FallbackMessage
	}
	if e.JobID == "" {
		return fmt.Sprintf("%s: %s", ErrRemoteJob, msg)
	}
	return fmt.Sprintf("%s: job %s: %s", ErrRemoteJob, e.JobID, msg)
}

func (e *RemoteJobError) Is(target error) bool {
	return target == ErrRemoteJob
}

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a stable identifier for the error's taxonomy marker.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRemoteJob):
		return "remote_job"
	case errors.Is(err, ErrMissingResult):
		return "missing_result"
	case errors.Is(err, ErrAlreadyRunning):
		return "already_running"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "unknown"
	}
}

// UserMessage returns the text a consumer should display for err. Remote job
// failures surface the service message verbatim.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var remote *RemoteJobError
	if errors.As(err, &remote) {
		if msg := strings.TrimSpace(remote.Message); msg != "" {
			return remote.Message
		}
		return FallbackMessage
	}
	if errors.Is(err, ErrMissingResult) {
		return ErrMissingResult.Error()
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return FallbackMessage
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
