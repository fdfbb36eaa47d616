package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"inpcalc/internal/services"
	"inpcalc/pkg/contracts"
)

var errNotReady = errors.New("workspace is not ready")

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the template, blank source and data directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureRuntime()
			if err != nil {
				return err
			}

			status := services.NewHealthService(contracts.Version, cfg, ctx.paths, logger).
				ReadinessCheck(cmd.Context())

			if jsonOutput {
				if err := writeJSON(cmd, status); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(status.Checks))
				for _, c := range status.Checks {
					rows = append(rows, []string{c.Name, c.Status, c.Path, c.Message})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Check", "Status", "Path", "Detail"}, rows, nil))
			}

			if !status.Ready() {
				return errNotReady
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the check results as JSON")
	return cmd
}
