package main

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"
)

// run executes the command line in args and releases logging and telemetry
// whatever the outcome
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cctx := newCommandContext()
	cmd := newRootCommand(cctx)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	return errors.Join(err, cctx.shutdown(ctx))
}

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "inpcalc",
		Short:         "Ice-nucleation raw data calculator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&ctx.baseDirFlag, "base-dir", "", "Directory relative paths resolve against")

	rootCmd.AddCommand(newCalculateCommand(ctx))
	rootCmd.AddCommand(newLocateCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
