// Package wua drives the Windows Update Agent COM object model and
// adapts it to the patching.Provider interface.
package wua

import (
	"time"

	"github.com/taconinja125/winup/internal/patching"
)

// History operation codes from IUpdateHistoryEntry.
const (
	OperationInstall   = 1
	OperationUninstall = 2
)

// HistoryEntry is one recorded update operation from the WUA history.
type HistoryEntry struct {
	Title               string              `json:"title" yaml:"title"`
	UpdateID            string              `json:"updateId" yaml:"updateId"`
	RevisionNumber      int                 `json:"revisionNumber" yaml:"revisionNumber"`
	Operation           int                 `json:"operation" yaml:"operation"`
	Result              patching.ResultCode `json:"resultCode" yaml:"resultCode"`
	HResult             int                 `json:"hresult" yaml:"hresult"`
	Date                time.Time           `json:"date" yaml:"date"`
	ClientApplicationID string              `json:"clientApplicationId,omitempty" yaml:"clientApplicationId,omitempty"`
	ServiceID           string              `json:"serviceId,omitempty" yaml:"serviceId,omitempty"`
	SupportURL          string              `json:"supportUrl,omitempty" yaml:"supportUrl,omitempty"`
}

// OperationName returns the history operation as text.
func (e HistoryEntry) OperationName() string {
	switch e.Operation {
	case OperationInstall:
		return "install"
	case OperationUninstall:
		return "uninstall"
	default:
		return "unknown"
	}
}
