// Package runner executes a single merge job: match the directories,
// drive ffmpeg over every pair, and keep the job row current. All job
// writes for a given job happen on the runner's goroutine.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dubber/internal/jobs"
	"dubber/internal/logging"
	"dubber/internal/match"
	"dubber/internal/merge"
	"dubber/internal/services"
	"dubber/internal/services/ffmpeg"
)

// Store persists job state as the runner progresses.
type Store interface {
	Update(ctx context.Context, job *jobs.Job) error
}

// Runner merges the directory pair described by a job.
type Runner struct {
	store  Store
	client ffmpeg.Client
	logger *slog.Logger
}

// New returns a runner writing through store and invoking client.
func New(store Store, client ffmpeg.Client, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{store: store, client: client, logger: logging.WithComponent(logger, "runner")}
}

// Run takes job from pending to a terminal status. Cancelling ctx stops
// the job between pairs, or mid-pair by killing the merge process. The
// batch is best effort: one failed pair does not abort the rest, but any
// failure leaves the job failed once every pair has been attempted.
func (r *Runner) Run(ctx context.Context, job *jobs.Job, cfg merge.Config) {
	// Terminal writes must land even after ctx is cancelled.
	persistCtx := context.WithoutCancel(ctx)
	log := r.logger.With(logging.String("job_id", job.ID), logging.String("owner", job.OwnerID))

	update := func() {
		if err := r.store.Update(persistCtx, job); err != nil {
			log.Warn("persist job state", logging.Error(err))
		}
	}
	fail := func(message string) {
		log.Error("job failed", logging.String("reason", message))
		job.MarkFailed(message)
		update()
	}

	job.MarkRunning()
	job.SetProgress("Starting", 0)
	update()

	if err := r.client.Available(); err != nil {
		log.Error("merge tool unavailable", logging.Error(err))
		fail("merge tool not found")
		return
	}

	cfg = cfg.Normalized()
	pairs, err := match.Match(job.AudioDir, job.VideoDir, job.OutputDir, cfg)
	if err != nil {
		fail(err.Error())
		return
	}
	if len(pairs) == 0 {
		log.Error("nothing to merge", logging.Error(services.Wrap(services.ErrNoMatches, "match", job.AudioDir, nil)))
		fail("no matching files found")
		return
	}
	if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
		fail(fmt.Sprintf("create output directory: %v", err))
		return
	}

	log.Info("job started", logging.Int("pairs", len(pairs)))

	total := len(pairs)
	succeeded := 0
	for i, pair := range pairs {
		if ctx.Err() != nil {
			job.MarkStopped()
			update()
			log.Info("job stopped", logging.Int("merged", succeeded))
			return
		}

		base := i * 100 / total
		name := filepath.Base(pair.VideoPath)
		job.SetProgress(fmt.Sprintf("[%d/%d] Merging %s", i+1, total, name), base)
		update()

		err := r.client.Merge(ctx, pair, cfg, func(message string, percent int) {
			if percent < 0 {
				return
			}
			job.SetProgress(fmt.Sprintf("[%d/%d] %s", i+1, total, message), base)
			update()
		})
		switch {
		case errors.Is(err, services.ErrCancelled):
			job.MarkStopped()
			update()
			log.Info("job stopped", logging.Int("merged", succeeded))
			return
		case err != nil:
			log.Warn("pair failed", logging.String("video", name), logging.Error(err))
			// Percent stays at base so 100 is only ever reached by a
			// fully successful batch.
			job.SetProgress(fmt.Sprintf("[%d/%d] Failed %s", i+1, total, name), base)
		default:
			succeeded++
			next := (i + 1) * 100 / total
			if succeeded != i+1 && next > 99 {
				next = 99
			}
			job.SetProgress(fmt.Sprintf("[%d/%d] Finished %s", i+1, total, name), next)
		}
		update()
	}

	if succeeded < total {
		fail(fmt.Sprintf("%d of %d merges failed", total-succeeded, total))
		return
	}

	job.MarkCompleted(fmt.Sprintf("Completed %d of %d merges", succeeded, total))
	update()
	log.Info("job completed", logging.Int("merged", succeeded), logging.Int("total", total))
}
