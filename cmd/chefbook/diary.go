package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"chefbook/internal/diary"
)

func init() {
	rootCmd.AddCommand(diaryCmd)
	diaryCmd.AddCommand(diaryFinishCmd)
	diaryCmd.AddCommand(diaryListCmd)
	diaryCmd.AddCommand(diaryAchievementsCmd)
}

var diaryCmd = &cobra.Command{
	Use:   "diary",
	Short: "Cooking diary and achievements",
}

var diaryFinishCmd = &cobra.Command{
	Use:   "finish <idMeal>",
	Short: "Record a recipe as cooked",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rec, err := application.Recipes.Lookup(ctx, args[0])
		if err != nil {
			return err
		}
		created, ok := application.Diary.MarkFinished(ctx, rec.Summary())
		if err := check(ok); err != nil {
			return err
		}
		if !created {
			fmt.Fprintf(cmd.OutOrStdout(), "%s sudah ada di diary.\n", rec.Name)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s ditambahkan ke diary.\n", rec.Name)
		return nil
	},
}

var diaryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cooked recipes, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, ok := application.Diary.ListFinished(cmd.Context())
		if err := check(ok); err != nil {
			return err
		}
		if len(log) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Belum ada resep yang dimasak.")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FINISHED\tRECIPE\tCATEGORY\tID")
		for _, f := range log {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.FinishedAt, f.Name, f.Category, f.ID)
		}
		return w.Flush()
	},
}

var diaryAchievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "Show unlocked and locked badges",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		achievements, ok := application.Diary.Achievements(cmd.Context())
		if err := check(ok); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d/%d terbuka\n", diary.UnlockedCount(achievements), len(achievements))
		for _, a := range achievements {
			mark := "  "
			if a.Unlocked {
				mark = "✓ "
			}
			fmt.Fprintf(out, "%s%s: %s\n", mark, a.Title, a.Desc)
		}
		return nil
	},
}
