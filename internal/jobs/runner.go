package jobs

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/nlowen/captiond/internal/logger"
	"github.com/nlowen/captiond/internal/srt"
)

// Transcriber is the external speech-to-text capability the runner
// drives. It must return segments already in chronological order and may
// block for seconds to minutes; once started the call is not assumed to
// be cancellable.
type Transcriber interface {
	Transcribe(ctx context.Context, path, language string) ([]srt.Segment, error)
}

// Runner executes the work for submitted jobs. Each submission gets its
// own goroutine — jobs are independent and the transcriber call dominates
// latency, so there is no pool or admission control.
type Runner struct {
	store       *Store
	transcriber Transcriber

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a runner writing results into the given store.
func NewRunner(store *Store, transcriber Transcriber) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		store:       store,
		transcriber: transcriber,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Launch starts independent execution of one job and returns
// immediately. The submitter never blocks on transcription completion;
// the outcome is only observable through the store.
func (r *Runner) Launch(job *Job) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(job)
	}()
}

// run drives a single job to a terminal state: transcribe, encode,
// record the outcome, then delete the source file. A failure here is
// isolated to this job and never surfaced synchronously.
func (r *Runner) run(job *Job) {
	log := logger.With("job_id", job.ID)

	// The job owns its source file exclusively until execution finishes;
	// it is deleted exactly once, whatever the outcome. Deletion failure
	// is not transcription failure: log it, keep the terminal status.
	defer func() {
		if err := os.Remove(job.SourcePath); err != nil {
			log.Warn("Failed to remove source file", "path", job.SourcePath, "error", err)
		}
	}()

	if err := r.store.SetProcessing(job.ID); err != nil {
		log.Warn("Could not mark job processing", "error", err)
		return
	}

	log.Info("Job started", "language", job.Language)
	start := time.Now()

	segments, err := r.transcriber.Transcribe(r.ctx, job.SourcePath, job.Language)
	if err != nil {
		log.Error("Transcription failed", "error", err.Error())
		if ferr := r.store.SetFailed(job.ID, err.Error()); ferr != nil {
			log.Warn("Could not mark job failed", "error", ferr)
		}
		return
	}

	if err := r.store.SetCompleted(job.ID, srt.Encode(segments)); err != nil {
		log.Warn("Could not mark job completed", "error", err)
		return
	}

	log.Info("Job completed", "segments", len(segments), "duration", time.Since(start).Round(time.Millisecond))
}

// Shutdown cancels the runner's root context and waits up to the grace
// period for in-flight jobs. A transcriber call that ignores
// cancellation simply runs out the timeout.
func (r *Runner) Shutdown(grace time.Duration) {
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(grace):
		logger.Warn("Shutdown grace period elapsed with jobs still running")
	}
}
