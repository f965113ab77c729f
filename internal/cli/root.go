// Package cli wires the userstats commands.
package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ProgramID string
}

// NewRootCommand creates the root command for the userstats binary.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "userstats",
		Short: "User stats program service",
		Long: `Serve and inspect owner-derived user records.

Every identity owns at most one record, stored at an address derived from
the program id, the "user-stats" salt and the identity itself.`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ProgramID, "program-id", "", "program id (base58); overrides PROGRAM_ID")

	// Add subcommands
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewDeriveCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}
