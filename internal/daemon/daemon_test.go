package daemon

import (
	"context"
	"testing"

	"dubber/internal/jobs"
	"dubber/internal/runner"
	"dubber/internal/scheduler"
	"dubber/internal/testsupport"
)

func TestSingleInstanceLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	prefStore := testsupport.MustOpenPrefs(t, store, cfg)

	newDaemon := func() *Daemon {
		sched := scheduler.New(store, prefStore, runner.New(store, instantClient{}, nil), nil)
		d, err := New(cfg, store, prefStore, sched, instantClient{}, nil)
		if err != nil {
			t.Fatalf("new daemon: %v", err)
		}
		return d
	}

	first := newDaemon()
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("start first: %v", err)
	}
	defer first.Stop()

	second := newDaemon()
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second daemon should fail to acquire the lock")
	}
}

func TestShutdownFailsInterruptedJobs(t *testing.T) {
	client := &blockingClient{release: make(chan struct{})}
	defer close(client.release)
	d, base := newTestDaemon(t, client, "")
	audioDir, videoDir, outDir := mediaDirs(t, "ep1")

	var started struct {
		JobID string `json:"jobId"`
	}
	postJSON(t, base+"/api/start", map[string]string{
		"mp3Dir": audioDir, "mkvDir": videoDir, "outDir": outDir,
	}, &started)

	d.Stop()

	job, err := d.store.GetByID(context.Background(), started.JobID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if !job.Status.IsTerminal() {
		t.Fatalf("job should be terminal after shutdown, got %s", job.Status)
	}
	if job.Status == jobs.StatusCompleted {
		t.Fatal("interrupted job cannot be completed")
	}
}
