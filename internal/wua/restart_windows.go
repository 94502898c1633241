//go:build windows

package wua

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Restarter issues system restart requests through the Windows
// shutdown command. It implements patching.Rebooter.
type Restarter struct{}

// NewRestarter creates a Restarter.
func NewRestarter() *Restarter {
	return &Restarter{}
}

// Restart requests a reboot after delaySeconds. The request itself is
// bounded by timeoutSeconds; the reboot is fire-and-forget once the
// command is accepted. Reason code p:2:17 is "Operating System:
// Security fix (Planned)".
func (r *Restarter) Restart(delaySeconds, timeoutSeconds int) error {
	if delaySeconds < 0 {
		delaySeconds = 0
	}
	if timeoutSeconds <= 0 {
		timeoutSeconds = 60
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSeconds)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "shutdown",
		"/r",
		"/t", strconv.Itoa(delaySeconds),
		"/c", "Restarting to finish installing updates",
		"/d", "p:2:17",
	)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("shutdown command: %w (%s)", err, strings.TrimSpace(string(out)))
	}
	return nil
}
