package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dubber/internal/match"
	"dubber/internal/merge"
)

func newMatchesCommand(ctx *commandContext) *cobra.Command {
	var mp3Dir, mkvDir, outDir string
	var options mergeOptionFlags

	cmd := &cobra.Command{
		Use:   "matches",
		Short: "Preview which audio and video files would be paired",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			mergeCfg := options.apply(cmd, merge.FromDefaults(cfg.Merge))
			pairs, err := match.Match(mp3Dir, mkvDir, outDir, mergeCfg)
			if err != nil {
				return err
			}
			if len(pairs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching files found.")
				return nil
			}

			rows := make([][]string, 0, len(pairs))
			for _, pair := range pairs {
				rows = append(rows, []string{
					filepath.Base(pair.AudioPath),
					filepath.Base(pair.VideoPath),
					fileSize(pair.VideoPath),
					pair.OutputPath,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Audio", "Video", "Size", "Output"},
				rows, 2,
			))
			fmt.Fprintf(cmd.OutOrStdout(), "%d pair(s)\n", len(pairs))
			return nil
		},
	}

	cmd.Flags().StringVar(&mp3Dir, "mp3-dir", "", "Directory holding .mp3 audio files")
	cmd.Flags().StringVar(&mkvDir, "mkv-dir", "", "Directory holding .mkv video files")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for merged output")
	registerMergeOptionFlags(cmd, &options)
	_ = cmd.MarkFlagRequired("mp3-dir")
	_ = cmd.MarkFlagRequired("mkv-dir")

	return cmd
}

func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "?"
	}
	return humanize.Bytes(uint64(info.Size()))
}
