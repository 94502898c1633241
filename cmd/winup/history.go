package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taconinja125/winup/internal/logging"
	"github.com/taconinja125/winup/internal/wua"
)

var (
	historyLimit  int
	historyOutput string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the recorded update install/uninstall history",
	Run: func(cmd *cobra.Command, args []string) {
		if code := showHistory(); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 25, "maximum number of history entries (0 = all)")
	historyCmd.Flags().StringVar(&historyOutput, "output", "text", "output format: text, json, or yaml")

	rootCmd.AddCommand(historyCmd)
}

// showHistory returns the process exit code instead of exiting so the
// deferred provider and log-file releases run on failure paths.
func showHistory() int {
	cfg := loadConfig()
	closer := setupLogging(cfg)
	defer closer.Close()
	log := logging.L("winup")

	provider, err := wua.Open(cfg)
	if err != nil {
		log.Error("Cannot open the update provider", "error", err)
		return 1
	}
	defer provider.Close()

	entries, err := provider.History(historyLimit)
	if err != nil {
		log.Error("Update history query failed", "error", err)
		return 1
	}

	if len(entries) == 0 {
		log.Info("No update history recorded")
		return 0
	}

	if err := renderHistory(entries, historyOutput); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
