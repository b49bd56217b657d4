package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "pickem",
		Short: "CLI tool for the pick'em contest API",
		Long: `pickem is a CLI tool for interacting with the pick'em contest JSON API.

It supports account management, viewing the game schedule, submitting
weekly picks, and admin operations like scheduling games and recording
results.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load tokens from files if not provided via flag/env
			if err := cfg.LoadTokens(); err != nil {
				return err
			}

			// Create HTTP client
			client = NewClient(cfg.ServerURL, cfg.Token)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: PICKEM_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Access token (env: PICKEM_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenDir, "token-dir", cfg.TokenDir, "Token directory (env: PICKEM_TOKEN_DIR)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")

	// Add subcommands
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newGamesCmd())
	rootCmd.AddCommand(newPicksCmd())
	rootCmd.AddCommand(newAdminCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
