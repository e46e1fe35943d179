package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"dubber/internal/config"
	"dubber/internal/jobs"
	"dubber/internal/logging"
	"dubber/internal/merge"
	"dubber/internal/prefs"
	"dubber/internal/runner"
	"dubber/internal/scheduler"
	"dubber/internal/services/ffmpeg"
)

type mergeFlags struct {
	mp3Dir  string
	mkvDir  string
	outDir  string
	owner   string
	options mergeOptionFlags
}

type mergeOptionFlags struct {
	replaceAudio   bool
	keepOriginal   bool
	normalizeAudio bool
	audioCodec     string
	videoCodec     string
	outputFormat   string
	socialMedia    bool
	socialWidth    int
	socialHeight   int
	socialFormat   string
}

// apply layers only the flags the user actually set over base.
func (f mergeOptionFlags) apply(cmd *cobra.Command, base merge.Config) merge.Config {
	out := base
	if cmd.Flags().Changed("replace-audio") {
		out.ReplaceAudio = f.replaceAudio
	}
	if cmd.Flags().Changed("keep-original") {
		out.KeepOriginal = f.keepOriginal
	}
	if cmd.Flags().Changed("normalize") {
		out.NormalizeAudio = f.normalizeAudio
	}
	if cmd.Flags().Changed("audio-codec") {
		out.AudioCodec = f.audioCodec
	}
	if cmd.Flags().Changed("video-codec") {
		out.VideoCodec = f.videoCodec
	}
	if cmd.Flags().Changed("format") {
		out.OutputFormat = f.outputFormat
	}
	if cmd.Flags().Changed("social") {
		out.SocialMedia = f.socialMedia
	}
	if cmd.Flags().Changed("social-width") {
		out.SocialWidth = f.socialWidth
	}
	if cmd.Flags().Changed("social-height") {
		out.SocialHeight = f.socialHeight
	}
	if cmd.Flags().Changed("social-format") {
		out.SocialFormat = f.socialFormat
	}
	return out.Normalized()
}

func registerMergeOptionFlags(cmd *cobra.Command, f *mergeOptionFlags) {
	cmd.Flags().BoolVar(&f.replaceAudio, "replace-audio", false, "Drop the original audio track entirely")
	cmd.Flags().BoolVar(&f.keepOriginal, "keep-original", false, "Keep the original audio as a second track")
	cmd.Flags().BoolVar(&f.normalizeAudio, "normalize", false, "Apply loudness normalization to the new audio")
	cmd.Flags().StringVar(&f.audioCodec, "audio-codec", "", "Audio codec (aac, mp3, copy)")
	cmd.Flags().StringVar(&f.videoCodec, "video-codec", "", "Video codec (copy, h264, hevc)")
	cmd.Flags().StringVar(&f.outputFormat, "format", "", "Output container (mp4, webm, mov)")
	cmd.Flags().BoolVar(&f.socialMedia, "social", false, "Produce square social media output")
	cmd.Flags().IntVar(&f.socialWidth, "social-width", 0, "Social output width")
	cmd.Flags().IntVar(&f.socialHeight, "social-height", 0, "Social output height")
	cmd.Flags().StringVar(&f.socialFormat, "social-format", "", "Social output container (mp4, mov, webm)")
}

func newMergeCommand(ctx *commandContext) *cobra.Command {
	flags := mergeFlags{}

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Match audio to video files and merge them, waiting for the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runMerge(cmd, cfg, flags)
		},
	}

	cmd.Flags().StringVar(&flags.mp3Dir, "mp3-dir", "", "Directory holding .mp3 audio files")
	cmd.Flags().StringVar(&flags.mkvDir, "mkv-dir", "", "Directory holding .mkv video files")
	cmd.Flags().StringVar(&flags.outDir, "out-dir", "", "Directory for merged output")
	cmd.Flags().StringVar(&flags.owner, "owner", "", "Owner identity for the job")
	registerMergeOptionFlags(cmd, &flags.options)
	_ = cmd.MarkFlagRequired("mp3-dir")
	_ = cmd.MarkFlagRequired("mkv-dir")
	_ = cmd.MarkFlagRequired("out-dir")

	return cmd
}

func runMerge(cmd *cobra.Command, cfg *config.Config, flags mergeFlags) error {
	sigCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := jobs.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	prefStore, err := prefs.New(store.DB(), cfg)
	if err != nil {
		return err
	}

	owner := flags.owner
	if owner == "" {
		owner = "local"
	}
	saved, err := prefStore.Get(sigCtx, owner)
	if err != nil {
		return err
	}
	mergeCfg := flags.options.apply(cmd, saved.Merge)

	client := ffmpeg.NewCLI(
		ffmpeg.WithBinary(cfg.FFmpegBinary()),
		ffmpeg.WithProbeBinary(cfg.FFprobeBinary()),
	)
	sched := scheduler.New(store, prefStore, runner.New(store, client, logging.NewNop()), logging.NewNop())
	defer sched.Close()

	job, err := sched.Submit(sigCtx, scheduler.Request{
		OwnerID:   owner,
		AudioDir:  flags.mp3Dir,
		VideoDir:  flags.mkvDir,
		OutputDir: flags.outDir,
		Merge:     mergeCfg,
	})
	if err != nil {
		return err
	}

	final, err := watchJob(sigCtx, cmd, sched, store, job.ID, owner)
	if err != nil {
		return err
	}

	switch final.Status {
	case jobs.StatusCompleted:
		fmt.Fprintln(cmd.OutOrStdout(), final.ProgressMessage)
		return nil
	case jobs.StatusStopped:
		return fmt.Errorf("merge stopped: %s", final.ProgressMessage)
	default:
		return fmt.Errorf("merge failed: %s", final.ProgressMessage)
	}
}

// watchJob polls the job until it is terminal, rendering progress as a
// live bar on a terminal or as plain lines otherwise. A signal triggers
// a stop request and the poll continues until the runner winds down.
func watchJob(ctx context.Context, cmd *cobra.Command, sched *scheduler.Scheduler, store *jobs.Store, jobID, owner string) (*jobs.Job, error) {
	interactive := isatty.IsTerminal(os.Stdout.Fd())

	var tracker *progress.Tracker
	var writer progress.Writer
	if interactive {
		writer = progress.NewWriter()
		writer.SetOutputWriter(cmd.OutOrStdout())
		writer.SetUpdateFrequency(100 * time.Millisecond)
		writer.SetTrackerLength(30)
		tracker = &progress.Tracker{Message: "Starting", Total: 100}
		writer.AppendTracker(tracker)
		go writer.Render()
		defer writer.Stop()
	}

	stopRequested := false
	lastMessage := ""
	for {
		if ctx.Err() != nil && !stopRequested {
			stopRequested = true
			_, _ = sched.Stop(context.Background(), jobID, owner, false)
		}

		job, err := store.GetByID(context.Background(), jobID)
		if err != nil {
			return nil, err
		}

		if interactive {
			if job.ProgressPercent >= 0 {
				tracker.SetValue(int64(job.ProgressPercent))
			}
			tracker.UpdateMessage(job.ProgressMessage)
		} else if job.ProgressMessage != lastMessage {
			lastMessage = job.ProgressMessage
			fmt.Fprintln(cmd.OutOrStdout(), job.ProgressMessage)
		}

		if job.Status.IsTerminal() {
			if interactive {
				if job.Status == jobs.StatusCompleted {
					tracker.MarkAsDone()
				} else {
					tracker.MarkAsErrored()
				}
			}
			return job, nil
		}
		time.Sleep(150 * time.Millisecond)
	}
}
