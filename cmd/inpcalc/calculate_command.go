package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"inpcalc/internal/operations"
	"inpcalc/internal/services"
)

type calculateView struct {
	RunID      string        `json:"run_id"`
	Routine    string        `json:"routine"`
	Source     string        `json:"source"`
	ReportPath string        `json:"report_path"`
	Rows       int           `json:"rows"`
	Blanks     int           `json:"blank_values"`
	Duration   time.Duration `json:"duration_ns"`
}

func newCalculateCommand(ctx *commandContext) *cobra.Command {
	var flags sampleFlags
	var jsonOutput bool
	var showStages bool

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate the IN report for one sample",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sample, err := flags.sample(cmd)
			if err != nil {
				return err
			}

			return ctx.withService(cmd, func(svc *services.CalculationService) error {
				result, err := svc.Calculate(cmd.Context(), sample)
				if showStages && result != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), stageTable(result.Progress))
				}
				if err != nil {
					return err
				}

				if jsonOutput {
					return writeJSON(cmd, calculateView{
						RunID:      result.RunID,
						Routine:    result.RoutineID,
						Source:     result.Source,
						ReportPath: result.ReportPath,
						Rows:       result.Rows,
						Blanks:     result.BlankValues,
						Duration:   result.Duration,
					})
				}
				printCalculated(cmd.OutOrStdout(), result.ReportPath)
				return nil
			})
		},
	}

	flags.bind(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run outcome as JSON")
	cmd.Flags().BoolVar(&showStages, "stages", false, "Print the pipeline stages to stderr")
	return cmd
}

func printCalculated(w io.Writer, reportPath string) {
	fmt.Fprintf(w, "...IN data calculated!\nCalculated report file saved to %s.\n", reportPath)
}

func stageTable(progress *operations.Progress) string {
	var rows [][]string
	for _, s := range progress.Stages() {
		detail := s.Message
		if s.Error != nil {
			detail = s.Error.Error()
		}
		rows = append(rows, []string{
			s.ID,
			string(s.State()),
			s.Duration().Round(time.Millisecond).String(),
			strings.TrimSpace(detail),
		})
	}
	return renderTable([]string{"Stage", "Status", "Duration", "Detail"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft})
}
