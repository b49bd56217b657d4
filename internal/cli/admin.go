package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin commands (require an admin account)",
	}

	cmd.AddCommand(newAdminCreateGameCmd())
	cmd.AddCommand(newAdminSetResultCmd())
	cmd.AddCommand(newAdminGrantCmd())
	cmd.AddCommand(newAdminRevokeCmd())

	return cmd
}

func newAdminCreateGameCmd() *cobra.Command {
	var home, away string
	var week int

	cmd := &cobra.Command{
		Use:   "create-game",
		Short: "Schedule a game",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"home_team": home, "away_team": away, "week": week}
			var result Game

			if err := client.Post("/api/v1/admin/games", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&home, "home", "", "Home team (required)")
	cmd.Flags().StringVar(&away, "away", "", "Away team (required)")
	cmd.Flags().IntVar(&week, "week", 0, "Week number (required)")
	_ = cmd.MarkFlagRequired("home")
	_ = cmd.MarkFlagRequired("away")
	_ = cmd.MarkFlagRequired("week")

	return cmd
}

func newAdminSetResultCmd() *cobra.Command {
	var winner string

	cmd := &cobra.Command{
		Use:   "set-result <game-id>",
		Short: "Record a game's winner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"winner": winner}
			var result Game

			if err := client.Put(fmt.Sprintf("/api/v1/admin/games/%s/result", args[0]), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&winner, "winner", "", "Winning team (required)")
	_ = cmd.MarkFlagRequired("winner")

	return cmd
}

func newAdminGrantCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grant <user-id>",
		Short: "Grant admin privilege to a user",
		Args:  cobra.ExactArgs(1),
		RunE:  setAdminRunE(true),
	}
}

func newAdminRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <user-id>",
		Short: "Revoke admin privilege from a user",
		Args:  cobra.ExactArgs(1),
		RunE:  setAdminRunE(false),
	}
}

func setAdminRunE(isAdmin bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		req := map[string]bool{"is_admin": isAdmin}
		var result User

		if err := client.Put(fmt.Sprintf("/api/v1/admin/users/%s", args[0]), req, &result); err != nil {
			return err
		}

		out := NewOutput(cfg.Output)
		out.Print(result)
		return nil
	}
}
