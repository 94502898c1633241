package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/taconinja125/winup/internal/logging"
	"github.com/taconinja125/winup/internal/patching"
	"github.com/taconinja125/winup/internal/wua"
)

var (
	runIncludeOptional bool
	runNoDownload      bool
	runNoInstall       bool
	runShowDetails     bool
	runReboot          bool
	runAutoAcceptEula  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Search, download, and install pending updates",
	Long: `Runs the full update workflow: query the catalog, filter the
candidates, download and install the selection as one batch each, then
decide whether a reboot is needed.`,
	Run: func(cmd *cobra.Command, args []string) {
		if code := runUpdates(cmd); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	runCmd.Flags().BoolVar(&runIncludeOptional, "include-optional", false, "include browse-only (optional) updates")
	runCmd.Flags().BoolVar(&runNoDownload, "no-download", false, "skip the download stage")
	runCmd.Flags().BoolVar(&runNoInstall, "no-install", false, "skip the install stage; update content is still downloaded for a later run")
	runCmd.Flags().BoolVar(&runShowDetails, "show-details", false, "log a verbose per-update dump instead of one-line titles")
	runCmd.Flags().BoolVar(&runReboot, "reboot", false, "reboot immediately when installed updates require it")
	runCmd.Flags().BoolVar(&runAutoAcceptEula, "auto-accept-eula", false, "accept pending license agreements instead of skipping those updates")

	rootCmd.AddCommand(runCmd)
}

// runUpdates returns the process exit code instead of exiting so the
// deferred provider and log-file releases run on failure paths.
func runUpdates(cmd *cobra.Command) int {
	cfg := loadConfig()

	if cmd.Flags().Changed("include-optional") {
		cfg.IncludeOptional = runIncludeOptional
	}
	if cmd.Flags().Changed("auto-accept-eula") {
		cfg.AutoAcceptEula = runAutoAcceptEula
	}

	closer := setupLogging(cfg)
	defer closer.Close()
	log := logging.L("winup")

	if pending, reasons := wua.PendingReboot(); pending {
		log.Warn("A reboot is already pending before this run", "reasons", reasons)
	}

	provider, err := wua.Open(cfg)
	if err != nil {
		log.Error("Cannot open the update provider", "error", err)
		return 1
	}
	defer provider.Close()

	runner := patching.NewRunner(provider, wua.NewRestarter(), nil)
	_, err = runner.Run(patching.RunOptions{
		IncludeOptional:       cfg.IncludeOptional,
		ExcludeRebootRequired: cfg.ExcludeRebootRequired,
		NoDownload:            runNoDownload,
		NoInstall:             runNoInstall,
		ShowDetails:           runShowDetails,
		AutoAcceptEula:        cfg.AutoAcceptEula,
		Reboot:                runReboot,
		RebootDelaySeconds:    cfg.RebootDelaySeconds,
		RebootTimeoutSeconds:  cfg.RebootTimeoutSeconds,
	})
	if err != nil {
		return 1
	}
	return 0
}
