// Package scheduler admits merge jobs against per-owner concurrency
// caps and supervises the goroutines running them.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"dubber/internal/jobs"
	"dubber/internal/logging"
	"dubber/internal/merge"
	"dubber/internal/prefs"
	"dubber/internal/runner"
	"dubber/internal/services"
)

// Request describes a job submission.
type Request struct {
	OwnerID   string
	AudioDir  string
	VideoDir  string
	OutputDir string
	Merge     merge.Config
}

type run struct {
	cancel context.CancelFunc
	owner  string
}

// Scheduler owns the live job table. Submissions are admitted under a
// single lock so the owner cap cannot be raced past.
type Scheduler struct {
	store  *jobs.Store
	prefs  *prefs.Store
	runner *runner.Runner
	logger *slog.Logger

	mu      sync.Mutex
	running map[string]*run
	closed  bool
	wg      sync.WaitGroup
}

// New wires a scheduler over the given stores and runner.
func New(store *jobs.Store, prefStore *prefs.Store, r *runner.Runner, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{
		store:   store,
		prefs:   prefStore,
		runner:  r,
		logger:  logging.WithComponent(logger, "scheduler"),
		running: make(map[string]*run),
	}
}

// Submit validates req, enforces the owner's concurrency cap, persists a
// pending job and spawns its runner. The returned job is a snapshot; poll
// Status for progress.
func (s *Scheduler) Submit(ctx context.Context, req Request) (*jobs.Job, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	limit, err := s.ownerLimit(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, services.Wrap(services.ErrConfiguration, "scheduler", "scheduler is shut down", nil)
	}

	active, err := s.store.CountActive(ctx, req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("count active jobs: %w", err)
	}
	if active >= limit {
		return nil, services.Wrap(services.ErrConcurrencyLimit, "scheduler",
			fmt.Sprintf("owner %s already has %d active jobs (limit %d)", req.OwnerID, active, limit), nil)
	}

	job := jobs.New(req.OwnerID, req.AudioDir, req.VideoDir, req.OutputDir)
	if err := s.store.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.running[job.ID] = &run{cancel: cancel, owner: job.OwnerID}
	s.wg.Add(1)

	cfg := req.Merge
	go func() {
		defer s.wg.Done()
		defer s.forget(job.ID)
		defer cancel()
		s.runner.Run(runCtx, job, cfg)
	}()

	s.logger.Info("job submitted",
		logging.String("job_id", job.ID),
		logging.String("owner", job.OwnerID))

	snapshot := *job
	return &snapshot, nil
}

// Status returns the job when it exists and is visible to requester.
// Non-owners get ErrNotFound rather than a permissions error.
func (s *Scheduler) Status(ctx context.Context, jobID, requester string, privileged bool) (*jobs.Job, error) {
	job, err := s.store.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !privileged && job.OwnerID != requester {
		return nil, jobs.ErrNotFound
	}
	return job, nil
}

// List returns the requester's jobs, newest first.
func (s *Scheduler) List(ctx context.Context, ownerID string, limit int) ([]*jobs.Job, error) {
	return s.store.ListByOwner(ctx, ownerID, limit)
}

// Stop cancels a job, reporting whether a cancellation was actually
// signalled. Stopping an already-terminal job returns false without
// error. Visibility follows the same rules as Status.
func (s *Scheduler) Stop(ctx context.Context, jobID, requester string, privileged bool) (bool, error) {
	job, err := s.store.GetByID(ctx, jobID)
	if err != nil {
		return false, err
	}
	if !privileged && job.OwnerID != requester {
		return false, jobs.ErrNotFound
	}
	if job.Status.IsTerminal() {
		return false, nil
	}

	s.mu.Lock()
	active, ok := s.running[jobID]
	s.mu.Unlock()

	if ok {
		active.cancel()
		s.logger.Info("stop requested", logging.String("job_id", jobID))
		return true, nil
	}

	// No live goroutine: the row predates this process. Nothing ran it,
	// so it is failed rather than stopped, and it no longer counts
	// against the owner's cap.
	job.MarkFailed("no active runner for job")
	if err := s.store.Update(ctx, job); err != nil {
		return false, fmt.Errorf("stop orphaned job: %w", err)
	}
	return true, nil
}

// Close stops accepting submissions, cancels everything in flight and
// waits for the runners to drain.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	for id, active := range s.running {
		s.logger.Info("cancelling job for shutdown", logging.String("job_id", id))
		active.cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Scheduler) forget(jobID string) {
	s.mu.Lock()
	delete(s.running, jobID)
	s.mu.Unlock()
}

func (s *Scheduler) ownerLimit(ctx context.Context, ownerID string) (int, error) {
	p, err := s.prefs.Get(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("load preferences: %w", err)
	}
	if p.MaxConcurrentJobs < 1 {
		return 1, nil
	}
	return p.MaxConcurrentJobs, nil
}

func validate(req Request) error {
	missing := func(field string) error {
		return services.Wrap(services.ErrConfiguration, "scheduler", field+" is required", nil)
	}
	if strings.TrimSpace(req.OwnerID) == "" {
		return missing("owner id")
	}
	if strings.TrimSpace(req.AudioDir) == "" {
		return missing("audio directory")
	}
	if strings.TrimSpace(req.VideoDir) == "" {
		return missing("video directory")
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		return missing("output directory")
	}
	if err := req.Merge.Normalized().Validate(); err != nil {
		return services.Wrap(services.ErrConfiguration, "scheduler", err.Error(), err)
	}
	return nil
}
