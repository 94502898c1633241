package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/taconinja125/winup/internal/config"
	"github.com/taconinja125/winup/internal/logging"
)

var (
	version = "0.1.0"

	cfgFile  string
	logPath  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "winup",
	Short: "Windows Update administration tool",
	Long:  `winup searches, downloads, and installs Windows updates through the Windows Update Agent`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("winup v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is winup.yaml in the per-OS config directory)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log-path", "", "log file destination (default under the local log directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the config file and applies the persistent flag
// overrides.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if logPath != "" {
		cfg.LogPath = logPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	return cfg
}

// setupLogging mirrors log lines to stdout and the configured log file,
// creating parent directories when absent. The returned closer flushes
// the file on exit.
func setupLogging(cfg *config.Config) io.Closer {
	writer, err := logging.NewRotatingWriter(cfg.LogPath, cfg.LogMaxSizeMB, cfg.LogMaxBackups)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v\n", cfg.LogPath, err)
		os.Exit(1)
	}

	logging.Init(cfg.LogFormat, cfg.LogLevel, logging.TeeWriter(os.Stdout, writer))
	return writer
}
