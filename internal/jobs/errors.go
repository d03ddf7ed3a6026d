package jobs

import (
	"errors"
	"fmt"
)

// Sentinel errors for job operations.
// These can be checked with errors.Is().
var (
	ErrJobNotFound = errors.New("job not found")
	ErrJobTerminal = errors.New("job already in terminal state")
)

// jobNotFoundError returns a wrapped error for a missing job.
func jobNotFoundError(id string) error {
	return fmt.Errorf("%w: %s", ErrJobNotFound, id)
}

// jobTerminalError returns a wrapped error for a job that already
// reached completed or failed.
func jobTerminalError(id string, status Status) error {
	return fmt.Errorf("%w (status: %s): %s", ErrJobTerminal, status, id)
}
