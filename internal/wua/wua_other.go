//go:build !windows

package wua

import (
	"errors"

	"github.com/taconinja125/winup/internal/config"
	"github.com/taconinja125/winup/internal/patching"
)

var errUnsupported = errors.New("the Windows Update provider requires Windows")

// Provider is a stub on non-Windows platforms.
type Provider struct{}

// Open always fails on non-Windows platforms.
func Open(_ *config.Config) (*Provider, error) {
	return nil, &patching.ErrCatalogUnavailable{Err: errUnsupported}
}

func (p *Provider) Close() {}

func (p *Provider) Search(string) ([]*patching.Update, error) {
	return nil, errUnsupported
}

func (p *Provider) AcceptEula(*patching.Update) error {
	return errUnsupported
}

func (p *Provider) Download([]*patching.Update) (patching.DownloadOutcome, error) {
	return patching.DownloadOutcome{}, errUnsupported
}

func (p *Provider) Install([]*patching.Update) (patching.InstallOutcome, error) {
	return patching.InstallOutcome{}, errUnsupported
}

func (p *Provider) History(int) ([]HistoryEntry, error) {
	return nil, errUnsupported
}

// PendingReboot reports no pending reboot on non-Windows platforms.
func PendingReboot() (bool, []string) {
	return false, nil
}

// Restarter is a stub on non-Windows platforms.
type Restarter struct{}

func NewRestarter() *Restarter { return &Restarter{} }

func (r *Restarter) Restart(int, int) error { return errUnsupported }
