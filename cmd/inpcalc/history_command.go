package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"inpcalc/internal/history"
	"inpcalc/internal/services"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var filter history.Filter
	var status string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded calculation runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch history.Status(status) {
			case "", history.StatusSucceeded, history.StatusFailed:
				filter.Status = history.Status(status)
			default:
				return fmt.Errorf("%w: unknown status %q", services.ErrInvalidInput, status)
			}

			return ctx.withService(cmd, func(svc *services.CalculationService) error {
				runs, err := svc.History(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, runs)
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
					return nil
				}

				rows := make([][]string, 0, len(runs))
				for _, r := range runs {
					outcome := r.ReportPath
					if r.Status == history.StatusFailed {
						outcome = r.ErrorKind
						if r.FailedStage != "" {
							outcome += " at " + r.FailedStage
						}
					}
					rows = append(rows, []string{
						shortID(r.ID),
						r.StartedAt.Local().Format("2006-01-02 15:04:05"),
						sampleLabel(r),
						string(r.Status),
						strconv.Itoa(r.Rows),
						r.Duration.Round(time.Millisecond).String(),
						outcome,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Run", "Started", "Sample", "Status", "Rows", "Duration", "Outcome"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&filter.SampleType, "type", "", "Only runs of this sample type")
	cmd.Flags().StringVar(&filter.Location, "location", "", "Only runs of this location")
	cmd.Flags().StringVar(&status, "status", "", "Only runs with this status (succeeded or failed)")
	cmd.Flags().IntVarP(&filter.Limit, "limit", "n", history.DefaultListLimit, "Maximum number of runs")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(svc *services.CalculationService) error {
				run, err := svc.Run(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, run)
				}

				rows := [][]string{
					{"Run", run.ID},
					{"Status", string(run.Status)},
					{"Sample", sampleLabel(run)},
					{"Collected", run.CollectionDate},
					{"Routine", run.Routine},
					{"Started", run.StartedAt.Local().Format(time.RFC3339)},
					{"Duration", run.Duration.String()},
					{"Source", run.SourcePath},
					{"Report", run.ReportPath},
					{"Rows", strconv.Itoa(run.Rows)},
					{"Blank values", strconv.Itoa(run.BlankValues)},
				}
				if run.Status == history.StatusFailed {
					rows = append(rows,
						[]string{"Error kind", run.ErrorKind},
						[]string{"Failed stage", run.FailedStage},
						[]string{"Error", run.ErrorMessage})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run as JSON")
	return cmd
}

func sampleLabel(r *history.Run) string {
	parts := []string{r.SampleType}
	if r.Location != "" {
		parts = append(parts, r.Location)
	}
	parts = append(parts, r.Process)
	return strings.Join(parts, "/")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
