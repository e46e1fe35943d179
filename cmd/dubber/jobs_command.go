package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dubber/internal/jobs"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var owner string
	var limit int

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List recent merge jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := jobs.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if owner == "" {
				owner = "local"
			}
			list, err := store.ListByOwner(cmd.Context(), owner, limit)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No jobs recorded.")
				return nil
			}

			rows := make([][]string, 0, len(list))
			for _, job := range list {
				percent := strconv.Itoa(job.ProgressPercent) + "%"
				if job.ProgressPercent < 0 {
					percent = "error"
				}
				rows = append(rows, []string{
					shortID(job.ID),
					string(job.Status),
					percent,
					job.ProgressMessage,
					humanize.Time(job.CreatedAt),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Job", "Status", "Percent", "Message", "Created"},
				rows, 2,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner identity to list jobs for")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of jobs to show")

	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
