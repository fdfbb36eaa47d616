package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"inpcalc/internal/services"
	"inpcalc/pkg/contracts/domain"
)

type rawEntryView struct {
	File       string `json:"file"`
	Location   string `json:"location"`
	Process    string `json:"process"`
	Collected  string `json:"collected"`
	Calculated bool   `json:"calculated"`
	Report     string `json:"report"`
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var pending bool
	var latest bool
	var from, to string

	cmd := &cobra.Command{
		Use:   "list <type>",
		Short: "List raw files of a sample type and whether they are calculated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sampleType := domain.SampleType(strings.ToLower(strings.TrimSpace(args[0])))

			filter := services.RawFilter{LatestOnly: latest}
			var err error
			if filter.From, err = parseDateFlag("from", from); err != nil {
				return err
			}
			if filter.To, err = parseDateFlag("to", to); err != nil {
				return err
			}

			return ctx.withService(cmd, func(svc *services.CalculationService) error {
				entries, err := svc.ListRaw(sampleType, filter)
				if err != nil {
					return err
				}

				views := make([]rawEntryView, 0, len(entries))
				for _, e := range entries {
					if pending && e.Calculated {
						continue
					}
					views = append(views, rawEntryView{
						File:       e.Name,
						Location:   string(e.Key.Location),
						Process:    e.Key.Process,
						Collected:  e.CollectedAt.Format("2006-01-02 15:04"),
						Calculated: e.Calculated,
						Report:     e.ReportPath,
					})
				}

				if jsonOutput {
					return writeJSON(cmd, views)
				}
				if len(views) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No %s raw files found\n", sampleType)
					return nil
				}

				rows := make([][]string, 0, len(views))
				for _, v := range views {
					location := v.Location
					if location == "" {
						location = "-"
					}
					rows = append(rows, []string{v.File, location, v.Process, v.Collected, yesNo(v.Calculated)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"File", "Location", "Process", "Collected", "Calculated"}, rows, nil))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print entries as JSON")
	cmd.Flags().BoolVar(&pending, "pending", false, "Only list files without a report")
	cmd.Flags().BoolVar(&latest, "latest", false, "Only the most recently collected file")
	cmd.Flags().StringVar(&from, "from", "", "Collected at or after this date or timestamp")
	cmd.Flags().StringVar(&to, "to", "", "Collected at or before this date or timestamp")
	return cmd
}

func parseDateFlag(name, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	t, err := domain.ParseTimestamp(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: --%s: %v", services.ErrInvalidInput, name, err)
	}
	return t, nil
}
