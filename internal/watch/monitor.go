// Package watch polls configured directories for newly arrived audio
// and video files so operators can see incoming material in the daemon
// log before submitting a job over it.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"dubber/internal/config"
	"dubber/internal/logging"
)

var watchedExtensions = map[string]struct{}{
	".mp3": {},
	".mkv": {},
}

// Monitor periodically scans directories and reports files it has not
// seen before.
type Monitor struct {
	logger   *slog.Logger
	interval time.Duration
	dirs     []string

	// OnNewFile, when set, is invoked for every newly observed file in
	// addition to the log line.
	OnNewFile func(path string)

	mu     sync.Mutex
	seen   map[string]struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a monitor from the watch section of cfg.
func New(cfg *config.Config, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = logging.NewNop()
	}
	interval := time.Duration(cfg.Watch.PollInterval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Monitor{
		logger:   logging.WithComponent(logger, "watch"),
		interval: interval,
		dirs:     append([]string(nil), cfg.Watch.Dirs...),
		seen:     make(map[string]struct{}),
	}
}

// Start launches the polling loop. The first scan primes the seen set
// without reporting, so only files arriving after startup are logged.
func (m *Monitor) Start(ctx context.Context) {
	if len(m.dirs) == 0 {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	m.scan(false)
	go m.loop(runCtx)

	m.logger.Info("directory monitor started",
		logging.Int("dirs", len(m.dirs)),
		logging.Duration("interval", m.interval))
}

// Stop halts the polling loop and waits for it to exit.
func (m *Monitor) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	m.cancel = nil
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.scan(true)
		}
	}
}

func (m *Monitor) scan(report bool) {
	for _, dir := range m.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			m.logger.Warn("scan directory", logging.String("dir", dir), logging.Error(err))
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if _, ok := watchedExtensions[ext]; !ok {
				continue
			}
			path := filepath.Join(dir, entry.Name())

			m.mu.Lock()
			_, known := m.seen[path]
			if !known {
				m.seen[path] = struct{}{}
			}
			m.mu.Unlock()

			if known || !report {
				continue
			}
			m.logger.Info("new file detected", logging.String("path", path))
			if m.OnNewFile != nil {
				m.OnNewFile(path)
			}
		}
	}
}
