// Command dubberd is the long-running merge daemon: it serves the HTTP
// API, schedules jobs and watches configured directories.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"dubber/internal/config"
	"dubber/internal/daemon"
	"dubber/internal/jobs"
	"dubber/internal/logging"
	"dubber/internal/prefs"
	"dubber/internal/runner"
	"dubber/internal/scheduler"
	"dubber/internal/services/ffmpeg"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := jobs.Open(cfg)
	if err != nil {
		logger.Error("open job store", logging.Error(err))
		return
	}

	prefStore, err := prefs.New(store.DB(), cfg)
	if err != nil {
		logger.Error("open preferences store", logging.Error(err))
		_ = store.Close()
		return
	}

	client := ffmpeg.NewCLI(
		ffmpeg.WithBinary(cfg.FFmpegBinary()),
		ffmpeg.WithProbeBinary(cfg.FFprobeBinary()),
	)
	if err := client.Available(); err != nil {
		logger.Warn("ffmpeg not found; submitted jobs will fail until it is installed", logging.Error(err))
	}

	sched := scheduler.New(store, prefStore, runner.New(store, client, logger), logger)

	d, err := daemon.New(cfg, store, prefStore, sched, client, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = store.Close()
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("dubberd shutting down")
}
