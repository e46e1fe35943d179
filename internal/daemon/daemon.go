package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"dubber/internal/config"
	"dubber/internal/jobs"
	"dubber/internal/logging"
	"dubber/internal/prefs"
	"dubber/internal/scheduler"
	"dubber/internal/services/ffmpeg"
	"dubber/internal/watch"
)

// ShutdownMessage is recorded on jobs interrupted by daemon shutdown.
const ShutdownMessage = "Daemon stopped"

// Daemon ties the scheduler, stores and API server into one lifecycle
// and enforces single-instance execution via a lock file.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *jobs.Store
	prefs  *prefs.Store
	sched  *scheduler.Scheduler
	client ffmpeg.Client

	lockPath string
	lock     *flock.Flock

	api     *apiServer
	monitor *watch.Monitor

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *jobs.Store, prefStore *prefs.Store, sched *scheduler.Scheduler, client ffmpeg.Client, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || prefStore == nil || sched == nil {
		return nil, errors.New("daemon requires config, stores and scheduler")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "dubberd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "daemon"),
		store:    store,
		prefs:    prefStore,
		sched:    sched,
		client:   client,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	if cfg.Watch.Enabled {
		d.monitor = watch.New(cfg, logger)
	}
	return d, nil
}

// Start acquires the daemon lock and brings up the API server and the
// optional directory monitor.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another dubber daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	if d.monitor != nil {
		d.monitor.Start(runCtx)
	}

	d.running.Store(true)
	d.logger.Info("dubber daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop drains the scheduler, closes out interrupted jobs and releases
// the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if d.monitor != nil {
		d.monitor.Stop()
	}
	d.sched.Close()

	if n, err := d.store.FailActive(context.Background(), ShutdownMessage); err != nil {
		d.logger.Warn("fail interrupted jobs", logging.Error(err))
	} else if n > 0 {
		d.logger.Info("closed out interrupted jobs", logging.Int64("count", n))
	}

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("dubber daemon stopped")
}

// Close stops the daemon and releases the job store.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// Addr reports the API listen address once started.
func (d *Daemon) Addr() string {
	return d.api.addr()
}
