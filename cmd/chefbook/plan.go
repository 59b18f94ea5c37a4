package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"chefbook/internal/mealplan"
)

var planPrefs string

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.AddCommand(planShowCmd)
	planCmd.AddCommand(planGenerateCmd)
	planCmd.AddCommand(planRemoveCmd)

	planGenerateCmd.Flags().StringVar(&planPrefs, "prefs", "", "Preferences for this plan (defaults to the saved profile)")
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage the weekly meal plan",
}

var planShowCmd = &cobra.Command{
	Use:   "show [day]",
	Short: "Show the meal plan, or one day of it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if len(args) == 1 {
			if !mealplan.IsDay(args[0]) {
				return fmt.Errorf("hari tidak dikenal %q", args[0])
			}
			items, ok := application.Plans.Day(ctx, args[0])
			if err := check(ok); err != nil {
				return err
			}
			return printPlan(cmd.OutOrStdout(), mealplan.Plan{args[0]: items})
		}

		view, err := application.LoadPlanner(ctx)
		if err != nil {
			return err
		}
		if view.Plan.Len() == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Belum ada rencana makan.")
			if !view.HasCredential {
				fmt.Fprintln(cmd.OutOrStdout(), "Atur API Key dengan `chefbook settings key <key>` untuk membuat rencana.")
			}
			return nil
		}
		return printPlan(cmd.OutOrStdout(), view.Plan)
	},
}

var planGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Ask Chef AI for a new weekly plan",
	Long: `Generate a new 7-day plan and replace the stored one.

Examples:
  # Use the saved preference profile
  chefbook plan generate

  # Override preferences for this run
  chefbook plan generate --prefs "vegetarian, no peanuts"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var plan mealplan.Plan
		if cmd.Flags().Changed("prefs") {
			plan = application.Planner.Generate(ctx, planPrefs)
		} else {
			plan = application.Planner.GenerateFromProfile(ctx)
		}
		if plan == nil {
			return errPlanFailed
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Rencana makan mingguan Anda telah diperbarui oleh Chef AI!")
		return printPlan(cmd.OutOrStdout(), plan)
	},
}

var planRemoveCmd = &cobra.Command{
	Use:   "remove <day> <item-id>",
	Short: "Remove one meal from a day",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return check(application.Plans.RemoveItem(cmd.Context(), args[0], args[1]))
	},
}

func printPlan(out io.Writer, plan mealplan.Plan) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DAY\tTYPE\tMEAL\tCATEGORY\tID")
	for _, day := range plan.OrderedDays() {
		for _, item := range plan[day] {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", day, item.MealType, item.RecipeName, item.Category, item.ID)
		}
	}
	return w.Flush()
}
