// Package service composes the job store, runner, and subtitle encoder
// into the two transcription entry points: submit-and-poll and
// encode-and-return.
package service

import (
	"context"
	"fmt"
	"os"

	"github.com/nlowen/captiond/internal/jobs"
	"github.com/nlowen/captiond/internal/logger"
	"github.com/nlowen/captiond/internal/srt"
)

// Service is the transcription façade used by the transport layer.
type Service struct {
	store       *jobs.Store
	runner      *jobs.Runner
	transcriber jobs.Transcriber
	defaultLang string
}

// New wires the façade. The same transcriber serves both the runner
// (async path) and the inline sync path.
func New(store *jobs.Store, runner *jobs.Runner, transcriber jobs.Transcriber, defaultLang string) *Service {
	return &Service{
		store:       store,
		runner:      runner,
		transcriber: transcriber,
		defaultLang: defaultLang,
	}
}

// SubmitAsync creates a pending job for the uploaded file and hands it
// to the runner. It returns the job id immediately; the submitter never
// blocks on transcription.
func (s *Service) SubmitAsync(sourcePath, language string) string {
	job := s.store.Create(s.language(language), sourcePath)
	s.runner.Launch(job)
	return job.ID
}

// TranscribeSync transcribes inline with no job bookkeeping and returns
// the encoded subtitle text. The source file is deleted regardless of
// outcome; deletion failure is logged, never surfaced.
func (s *Service) TranscribeSync(ctx context.Context, sourcePath, language string) (string, error) {
	defer func() {
		if err := os.Remove(sourcePath); err != nil {
			logger.Warn("Failed to remove source file", "path", sourcePath, "error", err)
		}
	}()

	segments, err := s.transcriber.Transcribe(ctx, sourcePath, s.language(language))
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	return srt.Encode(segments), nil
}

// Result is the caller-visible view of a polled job.
type Result struct {
	Status  jobs.Status
	Text    string // Set only when Status is completed
	Message string // Set only when Status is failed
}

// PollResult returns the job's status, plus the encoded subtitle text
// when completed or the failure message when failed. Unknown ids yield
// jobs.ErrJobNotFound.
func (s *Service) PollResult(id string) (Result, error) {
	job, err := s.store.Get(id)
	if err != nil {
		return Result{}, err
	}

	switch job.Status {
	case jobs.StatusCompleted:
		return Result{Status: job.Status, Text: job.Result}, nil
	case jobs.StatusFailed:
		return Result{Status: job.Status, Message: job.Error}, nil
	default:
		return Result{Status: job.Status}, nil
	}
}

// language applies the configured default when the submission carried no
// hint.
func (s *Service) language(language string) string {
	if language == "" {
		return s.defaultLang
	}
	return language
}
