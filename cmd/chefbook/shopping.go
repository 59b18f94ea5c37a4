package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"chefbook/internal/shopping"
)

var (
	shopMeasure    string
	shopRecipeID   string
	shopRecipeName string
)

func init() {
	rootCmd.AddCommand(shoppingCmd)
	shoppingCmd.AddCommand(shoppingListCmd)
	shoppingCmd.AddCommand(shoppingAddCmd)
	shoppingCmd.AddCommand(shoppingAddRecipeCmd)
	shoppingCmd.AddCommand(shoppingToggleCmd)
	shoppingCmd.AddCommand(shoppingRemoveCmd)
	shoppingCmd.AddCommand(shoppingClearCmd)

	shoppingAddCmd.Flags().StringVar(&shopMeasure, "measure", "", "Quantity, e.g. \"2 cups\"")
	shoppingAddCmd.Flags().StringVar(&shopRecipeID, "recipe-id", "", "idMeal of the recipe this item is for")
	shoppingAddCmd.Flags().StringVar(&shopRecipeName, "recipe-name", "", "Name of the recipe this item is for")
}

var shoppingCmd = &cobra.Command{
	Use:     "shopping",
	Aliases: []string{"shop"},
	Short:   "Manage the shopping list",
}

var shoppingListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the shopping list and progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		items, ok := application.Shopping.List(cmd.Context())
		if err := check(ok); err != nil {
			return err
		}
		return printShopping(cmd.OutOrStdout(), items)
	},
}

var shoppingAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an item to the shopping list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return check(application.Shopping.Add(cmd.Context(), shopping.Item{
			Name:       args[0],
			Measure:    shopMeasure,
			RecipeID:   shopRecipeID,
			RecipeName: shopRecipeName,
		}))
	},
}

var shoppingAddRecipeCmd = &cobra.Command{
	Use:   "add-recipe <idMeal>",
	Short: "Add every ingredient of a recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rec, err := application.Recipes.Lookup(ctx, args[0])
		if err != nil {
			return err
		}
		added, ok := application.Shopping.AddIngredients(ctx, rec)
		if err := check(ok); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d bahan dari %s ditambahkan ke daftar belanja.\n", added, rec.Name)
		return nil
	},
}

var shoppingToggleCmd = &cobra.Command{
	Use:   "toggle <item-id>",
	Short: "Mark an item bought or not bought",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return check(application.Shopping.Toggle(cmd.Context(), args[0]))
	},
}

var shoppingRemoveCmd = &cobra.Command{
	Use:   "remove <item-id>",
	Short: "Remove an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return check(application.Shopping.Remove(cmd.Context(), args[0]))
	},
}

var shoppingClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every bought item",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, ok := application.Shopping.ClearCompleted(cmd.Context())
		if err := check(ok); err != nil {
			return err
		}
		if removed == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Belum ada item yang selesai dibeli.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Item yang sudah dibeli telah dihapus.")
		return nil
	},
}

func printShopping(out io.Writer, items []shopping.Item) error {
	if len(items) == 0 {
		fmt.Fprintln(out, "Daftar belanja kosong.")
		return nil
	}

	done := 0
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, " \tITEM\tMEASURE\tRECIPE\tID")
	for _, item := range items {
		mark := "[ ]"
		if item.Completed {
			mark = "[x]"
			done++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", mark, item.Name, item.Measure, item.RecipeName, item.ID)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d dari %d item sudah dibeli.\n", done, len(items))
	return nil
}
