package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"inpcalc/pkg/contracts"
)

func newVersionCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput {
				return writeJSON(cmd, contracts.GetVersionInfo())
			}
			fmt.Fprintln(cmd.OutOrStdout(), contracts.GetFullVersionString())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print version information as JSON")
	return cmd
}
