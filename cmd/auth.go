package cmd

import (
	"fmt"

	"github.com/bassamadnan/billsync/auth"
	"github.com/bassamadnan/billsync/config"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize access to Gmail and Google Sheets",
	Long: `Runs the OAuth consent flow with the client secret file and saves the
token, replacing any token already stored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		provider, err := auth.NewProvider(cfg.CredentialsFile, auth.FileTokenStore{Path: cfg.TokenFile})
		if err != nil {
			return err
		}
		provider.SetPrompt(cmd.InOrStdin(), cmd.OutOrStdout())
		if _, err := provider.Authorize(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", cfg.TokenFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
}
