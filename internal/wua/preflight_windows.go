//go:build windows

package wua

import (
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"

	"github.com/taconinja125/winup/internal/config"
	"github.com/taconinja125/winup/internal/patching"
)

// preflightCheck is one individual pre-flight check result.
type preflightCheck struct {
	Name    string
	Passed  bool
	Message string
}

// runPreflight verifies the machine can use the update agent: the
// process is elevated, wuauserv is running (or startable), and the
// system drive has enough free space. The first failure is returned as
// ErrPreflightFailed.
func runPreflight(cfg *config.Config) error {
	checks := []preflightCheck{checkElevation(), checkServiceHealth()}
	if cfg != nil && cfg.MinDiskSpaceGB > 0 {
		checks = append(checks, checkDiskSpace(cfg.MinDiskSpaceGB))
	}

	for _, check := range checks {
		if !check.Passed {
			return &patching.ErrPreflightFailed{Check: check.Name, Message: check.Message}
		}
		log.Debug("Preflight check passed", "check", check.Name, "message", check.Message)
	}
	return nil
}

// checkElevation verifies the process token is elevated; per-machine
// update operations are denied otherwise (WU_E_PER_MACHINE_UPDATE_ACCESS_DENIED).
func checkElevation() preflightCheck {
	check := preflightCheck{Name: "elevation"}

	if !windows.GetCurrentProcessToken().IsElevated() {
		check.Message = "process is not elevated; run as administrator"
		return check
	}

	check.Passed = true
	check.Message = "process is elevated"
	return check
}

// checkServiceHealth ensures the Windows Update service (wuauserv) is
// running. If stopped, it attempts to start it and waits up to 30 seconds.
func checkServiceHealth() preflightCheck {
	check := preflightCheck{Name: "service_health"}

	m, err := mgr.Connect()
	if err != nil {
		check.Message = fmt.Sprintf("connect to service manager: %v", err)
		return check
	}
	defer m.Disconnect()

	s, err := m.OpenService("wuauserv")
	if err != nil {
		check.Message = fmt.Sprintf("open wuauserv service: %v", err)
		return check
	}
	defer s.Close()

	status, err := s.Query()
	if err != nil {
		check.Message = fmt.Sprintf("query wuauserv status: %v", err)
		return check
	}

	if status.State == svc.Running {
		check.Passed = true
		check.Message = "wuauserv is running"
		return check
	}

	if err := s.Start(); err != nil {
		check.Message = fmt.Sprintf("wuauserv is stopped and failed to start: %v", err)
		return check
	}

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		status, err = s.Query()
		if err != nil {
			check.Message = fmt.Sprintf("query wuauserv after start: %v", err)
			return check
		}
		if status.State == svc.Running {
			check.Passed = true
			check.Message = "wuauserv started successfully"
			return check
		}
		time.Sleep(1 * time.Second)
	}

	check.Message = fmt.Sprintf("wuauserv did not reach running state within 30s (state %d)", status.State)
	return check
}

// checkDiskSpace verifies the system drive has at least minGB free.
func checkDiskSpace(minGB float64) preflightCheck {
	check := preflightCheck{Name: "disk_space"}

	systemDrive := os.Getenv("SystemDrive")
	if systemDrive == "" {
		systemDrive = "C:"
	}

	usage, err := disk.Usage(systemDrive + "\\")
	if err != nil {
		check.Message = fmt.Sprintf("check disk space on %s: %v", systemDrive, err)
		return check
	}

	freeGB := float64(usage.Free) / (1024 * 1024 * 1024)
	if freeGB < minGB {
		check.Message = fmt.Sprintf("insufficient disk space: %.1f GB free, minimum %.1f GB required", freeGB, minGB)
		return check
	}

	check.Passed = true
	check.Message = fmt.Sprintf("%.1f GB free on %s", freeGB, systemDrive)
	return check
}
