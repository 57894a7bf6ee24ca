package cmd

import (
	"github.com/spf13/cobra"

	"github.com/paw-chain/cfmm/app"
)

const (
	flagConfig  = "config"
	flagHome    = "home"
	flagGenesis = "genesis"
	flagListen  = "listen"
)

// NewRootCmd creates the cfmmd root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cfmmd",
		Short:         "Constant-product market maker host",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())
		},
	}
	rootCmd.PersistentFlags().String(flagConfig, "", "path to app.toml; CFMM_* environment variables override it")

	rootCmd.AddCommand(
		StartCmd(),
		GenesisCmd(),
		ExportCmd(),
	)
	return rootCmd
}

func loadConfig(cmd *cobra.Command) (app.Config, error) {
	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return app.Config{}, err
	}
	return app.LoadConfig(path)
}
