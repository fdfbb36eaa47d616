package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"inpcalc/internal/services"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var flags sampleFlags
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a sample's raw data reshaped to the template columns as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sample, err := flags.sample(cmd)
			if err != nil {
				return err
			}

			return ctx.withService(cmd, func(svc *services.CalculationService) error {
				path, rows, err := svc.Export(cmd.Context(), sample, output)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", rows, path)
				return nil
			})
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "CSV destination (next to the report when empty)")
	return cmd
}
