package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPicksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "picks",
		Short: "Pick submission commands",
	}

	cmd.AddCommand(newPicksSubmitCmd())
	cmd.AddCommand(newPicksWeekCmd())

	return cmd
}

func newPicksSubmitCmd() *cobra.Command {
	var gameID, winner string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a pick for a game",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"game_id": gameID, "winner": winner}
			var result Pick

			if err := client.Post("/api/v1/picks", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&gameID, "game", "", "Game id (required)")
	cmd.Flags().StringVar(&winner, "winner", "", "Team picked to win (required)")
	_ = cmd.MarkFlagRequired("game")
	_ = cmd.MarkFlagRequired("winner")

	return cmd
}

func newPicksWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week <week>",
		Short: "List your picks for a week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PickList

			if err := client.Get(fmt.Sprintf("/api/v1/picks/week/%s", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
