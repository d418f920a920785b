package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDecode         = errors.New("malformed document encoding")
	ErrStorage        = errors.New("object storage failure")
	ErrService        = errors.New("document analysis service failure")
	ErrJobFailed      = errors.New("analysis job failed")
	ErrPollTimeout    = errors.New("analysis job did not finish in time")
	ErrInvalidRequest = errors.New("invalid request")
)

// DefaultJobFailureMessage is used when the service reports FAILED without a message.
const DefaultJobFailureMessage = "job failed without status message"

// JobFailedError is returned when an analysis job reaches the FAILED status.
// errors.Is(err, ErrJobFailed) reports true for it.
type JobFailedError struct {
	JobID   string
	Message string
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("analysis job %s failed: %s", e.JobID, e.Message)
}

func (e *JobFailedError) Unwrap() error {
	return ErrJobFailed
}

// NewJobFailedError creates a JobFailedError, substituting the default message when
// the service did not provide one.
func NewJobFailedError(jobID, message string) *JobFailedError {
	if message == "" {
		message = DefaultJobFailureMessage
	}
	return &JobFailedError{JobID: jobID, Message: message}
}
