package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"chefbook/internal/metrics"
)

var (
	usageDays   int
	cleanupDays int
)

func init() {
	rootCmd.AddCommand(metricsCmd)
	metricsCmd.AddCommand(metricsUsageCmd)
	metricsCmd.AddCommand(metricsCleanupCmd)
	metricsCmd.AddCommand(metricsHealthCmd)

	metricsUsageCmd.Flags().IntVar(&usageDays, "days", 7, "Number of days to report")
	metricsCleanupCmd.Flags().IntVar(&cleanupDays, "days", 30, "Delete records older than this many days")
}

var errNoMetrics = errors.New("metrics need the sqlite storage backend")

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Model usage and process health",
}

var metricsUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show daily token usage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if application.Metrics == nil {
			return errNoMetrics
		}
		usage, err := application.Metrics.GetDailyUsage(cmd.Context(), usageDays)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tCALLS\tPROMPT\tCOMPLETION")
		for _, u := range usage {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", u.Date, u.TotalExecution, u.TotalPrompt, u.TotalCompletion)
		}
		return w.Flush()
	},
}

var metricsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete old usage records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if application.Metrics == nil {
			return errNoMetrics
		}
		n, err := application.Metrics.Cleanup(cmd.Context(), cleanupDays)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d records.\n", n)
		return nil
	},
}

var metricsHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show memory and data size",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h := metrics.GetSysHealth(application.DataPaths()...)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Alloc: %d MB\nTotal alloc: %d MB\nSys: %d MB\nGC runs: %d\nGoroutines: %d\nData: %s\n",
			h.AllocMB, h.TotalAllocMB, h.SysMB, h.NumGC, h.Goroutines, h.DataDiskSize)
		return nil
	},
}
