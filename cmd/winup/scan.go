package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taconinja125/winup/internal/logging"
	"github.com/taconinja125/winup/internal/patching"
	"github.com/taconinja125/winup/internal/wua"
)

var (
	scanIncludeOptional bool
	scanShowDetails     bool
	scanOutput          string

	installedOutput string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List updates available for installation",
	Run: func(cmd *cobra.Command, args []string) {
		if code := scanUpdates(); code != 0 {
			os.Exit(code)
		}
	},
}

var installedCmd = &cobra.Command{
	Use:   "installed",
	Short: "List updates that are already installed",
	Run: func(cmd *cobra.Command, args []string) {
		if code := listInstalled(); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	scanCmd.Flags().BoolVar(&scanIncludeOptional, "include-optional", false, "include browse-only (optional) updates")
	scanCmd.Flags().BoolVar(&scanShowDetails, "show-details", false, "show the full per-update record")
	scanCmd.Flags().StringVar(&scanOutput, "output", "text", "output format: text, json, or yaml")

	installedCmd.Flags().StringVar(&installedOutput, "output", "text", "output format: text, json, or yaml")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(installedCmd)
}

// scanUpdates returns the process exit code instead of exiting so the
// deferred provider and log-file releases run on failure paths.
func scanUpdates() int {
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

	criteria := patching.BuildCriteria(patching.SearchOptions{
		IncludeOptional:       scanIncludeOptional || cfg.IncludeOptional,
		ExcludeRebootRequired: cfg.ExcludeRebootRequired,
	})
	updates, err := provider.Search(criteria)
	if err != nil {
		log.Error("Update search failed", "error", err)
		return 1
	}

	if len(updates) == 0 {
		log.Info("No updates found")
		return 0
	}

	if err := renderUpdates(updates, scanOutput, scanShowDetails); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func listInstalled() int {
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

	updates, err := provider.Search(patching.InstalledCriteria())
	if err != nil {
		log.Error("Update search failed", "error", err)
		return 1
	}

	if len(updates) == 0 {
		log.Info("No installed updates reported")
		return 0
	}

	if err := renderUpdates(updates, installedOutput, false); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
