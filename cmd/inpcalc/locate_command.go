package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"inpcalc/internal/config"
	"inpcalc/internal/services"
)

func newLocateCommand(ctx *commandContext) *cobra.Command {
	var flags sampleFlags

	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Show the raw file and report path a sample resolves to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sample, err := flags.sample(cmd)
			if err != nil {
				return err
			}

			return ctx.withService(cmd, func(svc *services.CalculationService) error {
				src, report := svc.Resolve(sample)
				_, locateErr := svc.Locate(sample)

				routine := "-"
				if r, err := svc.Dispatcher().Select(string(sample.Type()), string(sample.Location())); err == nil {
					routine = r.ID()
				}

				rows := [][]string{
					{"Sample", sample.String()},
					{"Routine", routine},
					{"Raw file", src.Path},
					{"Raw file exists", yesNo(locateErr == nil)},
					{"Report", report},
					{"Report exists", yesNo(config.FileExists(report))},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
				return locateErr
			})
		},
	}

	flags.bind(cmd)
	return cmd
}
