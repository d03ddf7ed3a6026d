// Package transcribe provides speech-to-text backends. Each backend
// turns an audio file into an ordered sequence of timed segments; the
// rest of the system never cares which recognizer produced them.
package transcribe

import (
	"context"
	"errors"

	"github.com/nlowen/captiond/internal/srt"
)

// Transcriber converts an audio file into timed transcript segments.
// Implementations must return segments in chronological order and should
// wrap backend errors with enough context to be useful in a job's
// failure message.
type Transcriber interface {
	Transcribe(ctx context.Context, path, language string) ([]srt.Segment, error)
}

// ErrNoSegments is returned when the recognizer produced output but no
// usable transcript segments could be extracted from it.
var ErrNoSegments = errors.New("transcript contains no segments")
