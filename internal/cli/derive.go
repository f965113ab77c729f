package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/playground/userstats/internal/core/domain"
	"github.com/playground/userstats/internal/core/pda"
	"github.com/playground/userstats/internal/infrastructure/config"
)

type deriveOutput struct {
	Owner     string `json:"owner"`
	Address   string `json:"address"`
	Bump      uint8  `json:"bump"`
	ProgramID string `json:"program_id"`
}

// NewDeriveCommand creates the derive command.
func NewDeriveCommand(rootOpts *RootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "derive <identity>",
		Short: "Print the record address and bump for an identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			programID, err := resolveProgramID(cmd, rootOpts)
			if err != nil {
				return err
			}

			d := pda.NewDeriver(programID)
			addr, bump, err := d.Derive(args[0])
			if err != nil {
				return fmt.Errorf("derive %q: %w", args[0], err)
			}

			out := deriveOutput{Owner: args[0], Address: addr.String(), Bump: bump, ProgramID: programID.String()}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "address: %s\nbump:    %d\n", out.Address, out.Bump)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	return cmd
}

// resolveProgramID prefers the --program-id flag and falls back to PROGRAM_ID
// or its default.
func resolveProgramID(cmd *cobra.Command, opts *RootOptions) (domain.Address, error) {
	raw := opts.ProgramID
	if raw == "" {
		cfg, err := config.Load(cmd.Context())
		if err != nil {
			return domain.Address{}, err
		}
		raw = cfg.ProgramID
	}
	id, err := domain.ParseAddress(raw)
	if err != nil {
		return domain.Address{}, fmt.Errorf("program id: %w", err)
	}
	return id, nil
}
