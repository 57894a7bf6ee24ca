package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paw-chain/cfmm/app"
)

// GenesisCmd groups the genesis file helpers
func GenesisCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genesis",
		Short: "Genesis file utilities",
	}
	cmd.AddCommand(defaultGenesisCmd(), validateGenesisCmd())
	return cmd
}

func defaultGenesisCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "default",
		Short: "Print a genesis with an empty ledger and the configured params",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			bz, err := json.MarshalIndent(app.NewDefaultGenesisState(cfg), "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
			return err
		},
	}
}

func validateGenesisCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate every module section of a genesis file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gs, err := app.ReadGenesisFile(args[0])
			if err != nil {
				return err
			}
			tokenGenesis, cfmmGenesis, err := gs.Modules()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "genesis is valid: %d balances, %d pairs\n",
				len(tokenGenesis.Balances), len(cfmmGenesis.Pairs))
			return err
		},
	}
}
