package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"chefbook/internal/category"
	"chefbook/internal/recipe"
	"chefbook/internal/session"
)

var cookTick time.Duration

func init() {
	rootCmd.AddCommand(recipesCmd)
	recipesCmd.AddCommand(recipesListCmd)
	recipesCmd.AddCommand(recipesSearchCmd)
	recipesCmd.AddCommand(recipesCategoryCmd)
	recipesCmd.AddCommand(recipesCategoriesCmd)
	recipesCmd.AddCommand(recipesShowCmd)
	rootCmd.AddCommand(timerCmd)

	timerCmd.Flags().DurationVar(&cookTick, "tick", time.Second, "How often to print the remaining time")
}

var recipesCmd = &cobra.Command{
	Use:     "recipes",
	Aliases: []string{"recipe"},
	Short:   "Browse TheMealDB recipes",
}

var recipesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recipes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		recipes, err := application.Recipes.List(cmd.Context())
		if err != nil {
			return err
		}
		return printRecipes(cmd.OutOrStdout(), recipes)
	},
}

var recipesSearchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "Search recipes by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recipes, err := application.Recipes.Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printRecipes(cmd.OutOrStdout(), recipes)
	},
}

var recipesCategoryCmd = &cobra.Command{
	Use:   "category <name>",
	Short: "List recipes of one category (All lists everything)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var (
			recipes []recipe.Recipe
			err     error
		)
		if args[0] == "All" {
			recipes, err = application.Recipes.List(ctx)
		} else {
			recipes, err = application.Recipes.ByCategory(ctx, args[0])
		}
		if err != nil {
			return err
		}
		return printRecipes(cmd.OutOrStdout(), recipes)
	},
}

var recipesCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the browse filters and the full category taxonomy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Filter: %s\n", strings.Join(category.Browse, ", "))
		fmt.Fprintf(out, "Kategori: %s\n", strings.Join(category.Categories(), ", "))
		return nil
	},
}

var recipesShowCmd = &cobra.Command{
	Use:   "show <idMeal>",
	Short: "Show ingredients and steps of a recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rec, err := application.Recipes.Lookup(ctx, args[0])
		if err != nil {
			return err
		}
		printRecipe(cmd.OutOrStdout(), rec, application.Diary.IsFinished(ctx, rec.ID))
		return nil
	},
}

var timerCmd = &cobra.Command{
	Use:   "timer <duration>",
	Short: "Run a cooking countdown, e.g. 15m",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		total, err := time.ParseDuration(args[0])
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		timer := session.NewTimer(cookTick)
		defer timer.Close()

		done := make(chan struct{})
		timer.Start(total, func(remaining time.Duration) {
			fmt.Fprintf(out, "\r%s ", remaining.Round(time.Second))
		}, func() { close(done) })

		select {
		case <-done:
			fmt.Fprintln(out, "\nWaktu habis!")
			return nil
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		}
	},
}

func printRecipes(out io.Writer, recipes []recipe.Recipe) error {
	if len(recipes) == 0 {
		fmt.Fprintln(out, "Resep tidak ditemukan.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tAREA")
	for _, r := range recipes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Category, r.Area)
	}
	return w.Flush()
}

func printRecipe(out io.Writer, rec *recipe.Recipe, finished bool) {
	theme := category.ThemeFor(rec.Category)
	fmt.Fprintf(out, "%s (%s, %s) [%s]\n", rec.Name, rec.Category, rec.Area, theme.Primary)
	if finished {
		fmt.Fprintln(out, "Sudah pernah dimasak.")
	}

	fmt.Fprintln(out, "\nBahan:")
	for _, ing := range rec.Ingredients() {
		fmt.Fprintf(out, "- %s\n", ing)
	}

	fmt.Fprintln(out, "\nLangkah:")
	for i, step := range rec.Steps() {
		fmt.Fprintf(out, "%d. %s\n", i+1, step)
	}
	if rec.YouTube != "" {
		fmt.Fprintf(out, "\nVideo: %s\n", rec.YouTube)
	}
}
