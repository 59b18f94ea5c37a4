package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	settingsKey   string
	settingsPrefs string
)

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsKeyCmd)
	settingsCmd.AddCommand(settingsRemoveKeyCmd)
	settingsCmd.AddCommand(settingsPrefsCmd)
	settingsCmd.AddCommand(settingsSaveCmd)

	settingsSaveCmd.Flags().StringVar(&settingsKey, "key", "", "Gemini API key (empty removes the stored key)")
	settingsSaveCmd.Flags().StringVar(&settingsPrefs, "prefs", "", "Diet and allergy profile")
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "API key and preference profile",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		key := application.Profile.APIKey(ctx)
		switch {
		case key != "":
			fmt.Fprintf(out, "API Key: %s\n", maskKey(key))
		case application.Config.HasDefaultKey():
			fmt.Fprintln(out, "API Key: (bawaan aplikasi)")
		default:
			fmt.Fprintln(out, "API Key: (belum diatur)")
		}

		prefs := application.Profile.Preferences(ctx)
		if prefs == "" {
			prefs = "(tidak ada)"
		}
		fmt.Fprintf(out, "Preferensi: %s\n", prefs)
		return nil
	},
}

var settingsKeyCmd = &cobra.Command{
	Use:   "key <api-key>",
	Short: "Store a personal Gemini API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(args[0]) == "" {
			return errEmptyKey
		}
		if err := check(application.Profile.SaveAPIKey(cmd.Context(), args[0])); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API Key berhasil disimpan!")
		return nil
	},
}

var settingsRemoveKeyCmd = &cobra.Command{
	Use:   "remove-key",
	Short: "Delete the stored API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := check(application.Profile.RemoveAPIKey(cmd.Context())); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API Key berhasil dihapus.")
		return nil
	},
}

var settingsPrefsCmd = &cobra.Command{
	Use:   "prefs <text>...",
	Short: "Store the diet and allergy profile",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return check(application.Profile.SavePreferences(cmd.Context(), strings.Join(args, " ")))
	},
}

var settingsSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Store key and preferences together",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return check(application.Profile.SaveSettings(cmd.Context(), settingsKey, settingsPrefs))
	},
}

// maskKey keeps the last four characters visible.
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
