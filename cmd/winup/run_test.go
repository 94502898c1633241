//go:build !windows

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

// On non-Windows platforms wua.Open always fails, which makes the
// provider-unavailable path deterministic.
func TestRunUpdatesReturnsFailureCodeWithoutExiting(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	logPath = filepath.Join(dir, "winup.log")
	t.Cleanup(func() { logPath = "" })

	// Returning here at all proves the failure path does not call
	// os.Exit, so the deferred releases ran.
	if code := runUpdates(runCmd); code != 1 {
		t.Fatalf("expected exit code 1 when the provider cannot open, got %d", code)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file should exist after the failure path: %v", err)
	}
	if !strings.Contains(string(data), "Cannot open the update provider") {
		t.Fatalf("expected the provider failure to be logged, got:\n%s", data)
	}
}

func TestScanAndHistoryReturnFailureCodeWithoutExiting(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	logPath = filepath.Join(t.TempDir(), "winup.log")
	t.Cleanup(func() { logPath = "" })

	if code := scanUpdates(); code != 1 {
		t.Fatalf("expected scan exit code 1 when the provider cannot open, got %d", code)
	}
	if code := listInstalled(); code != 1 {
		t.Fatalf("expected installed exit code 1 when the provider cannot open, got %d", code)
	}
	if code := showHistory(); code != 1 {
		t.Fatalf("expected history exit code 1 when the provider cannot open, got %d", code)
	}
}

func TestNoInstallFlagHelpMentionsDownloads(t *testing.T) {
	flag := runCmd.Flags().Lookup("no-install")
	if flag == nil {
		t.Fatal("run command must define --no-install")
	}
	if !strings.Contains(flag.Usage, "still downloaded") {
		t.Fatalf("--no-install help must say content is still downloaded, got %q", flag.Usage)
	}
}
