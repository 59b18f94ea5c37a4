package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"chefbook/internal/chef"
)

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.AddCommand(chatAskCmd)
	chatCmd.AddCommand(chatHistoryCmd)
	chatCmd.AddCommand(chatResetCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask Chef AI about a recipe",
}

var chatAskCmd = &cobra.Command{
	Use:   "ask <idMeal> <question>...",
	Short: "Ask a question about a recipe",
	Long: `Ask Chef AI a question about one recipe. The exchange is kept in the
recipe's transcript.

Examples:
  chefbook chat ask 52772 Bisa diganti madu?`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rec, err := application.Recipes.Lookup(ctx, args[0])
		if err != nil {
			return err
		}
		answer, persisted := application.Chef.Send(ctx, rec, strings.Join(args[1:], " "))
		fmt.Fprintln(cmd.OutOrStdout(), answer.Text)
		return check(persisted)
	},
}

var chatHistoryCmd = &cobra.Command{
	Use:   "history <idMeal>",
	Short: "Show the transcript of a recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rec, err := application.Recipes.Lookup(ctx, args[0])
		if err != nil {
			return err
		}
		messages, ok := application.Chef.Transcript(ctx, rec)
		printTranscript(cmd.OutOrStdout(), messages)
		return check(ok)
	},
}

var chatResetCmd = &cobra.Command{
	Use:   "reset <idMeal>",
	Short: "Start the transcript of a recipe over",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rec, err := application.Recipes.Lookup(ctx, args[0])
		if err != nil {
			return err
		}
		messages, ok := application.Chef.Reset(ctx, rec)
		printTranscript(cmd.OutOrStdout(), messages)
		return check(ok)
	},
}

func printTranscript(out io.Writer, messages []chef.Message) {
	for _, m := range messages {
		who := "Anda"
		if m.Sender == chef.SenderAI {
			who = "Chef AI"
		}
		fmt.Fprintf(out, "%s: %s\n", who, m.Text)
	}
}
