package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCmd(d deps) *cobra.Command {
	root := &cobra.Command{
		Use:   "slv-action",
		Short: "Install slv and inject vault secrets into a GitHub Actions job",
		Long: `slv-action makes the requested slv version available on PATH and, when a
vault is configured, exports its secrets as masked environment variables.

Inputs are read from INPUT_* variables the way GitHub Actions passes them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSteps(cmd, d, stepSetup|stepInject)
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Install slv, then inject secrets (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSteps(cmd, d, stepSetup|stepInject)
			},
		},
		&cobra.Command{
			Use:   "setup",
			Short: "Only make the requested slv version available",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSteps(cmd, d, stepSetup)
			},
		},
		&cobra.Command{
			Use:   "inject",
			Short: "Only export secrets from the vault using slv on PATH",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSteps(cmd, d, stepInject)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the action version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "slv-action %s\n", Version)
				return err
			},
		},
	)

	return root
}

// runSteps builds the action for this invocation and runs the selected
// steps.
func runSteps(cmd *cobra.Command, d deps, steps step) error {
	a := newApp(d, cmd.OutOrStdout())
	if a.Run(cmd.Context(), steps) {
		return nil
	}
	return &SilentExitError{Code: 1}
}
