package patching

import (
	"strconv"
	"strings"
)

// InstallImpact is the WUA installation-behavior impact of an update.
type InstallImpact int

const (
	ImpactNormal InstallImpact = 0
	ImpactMinor  InstallImpact = 1
	// ImpactExclusive marks an update that must be installed by itself,
	// with no other updates in the same batch.
	ImpactExclusive InstallImpact = 2
)

func (i InstallImpact) String() string {
	switch i {
	case ImpactNormal:
		return "normal"
	case ImpactMinor:
		return "minor"
	case ImpactExclusive:
		return "exclusive"
	default:
		return "impact(" + strconv.Itoa(int(i)) + ")"
	}
}

// Category is one (name, category ID) classification pair of an update.
type Category struct {
	Name       string
	CategoryID string
}

// Update describes one catalog entry returned by the update provider.
// Instances are read-only for the remainder of a run, except for
// EulaAccepted which is flipped by an explicit accept.
type Update struct {
	ID             string // opaque UpdateID
	RevisionNumber int

	Title       string
	Description string

	Hidden              bool
	EulaAccepted        bool
	Impact              InstallImpact
	CanRequestUserInput bool
	RebootBehavior      int
	DeploymentAction    int

	KBArticleIDs []string
	Categories   []Category

	MsrcSeverity    string
	MaxDownloadSize int64
	IsDownloaded    bool
	BrowseOnly      bool
	IsMandatory     bool
}

// Key returns the identity+revision uniqueness key of the update.
func (u *Update) Key() string {
	return u.ID + ":" + strconv.Itoa(u.RevisionNumber)
}

// KBNumber returns the first KB article reference, or "".
func (u *Update) KBNumber() string {
	if len(u.KBArticleIDs) == 0 {
		return ""
	}
	kb := u.KBArticleIDs[0]
	if !strings.HasPrefix(kb, "KB") {
		kb = "KB" + kb
	}
	return kb
}

// ItemResult is the per-update outcome of an install batch.
type ItemResult struct {
	Update  *Update
	Result  ResultCode
	HResult int
}

// DownloadOutcome is the result of one download batch: the aggregate
// result code plus the subset the provider reports as downloaded.
type DownloadOutcome struct {
	Result     ResultCode
	Downloaded []*Update
}

// InstallOutcome is the result of one install batch.
type InstallOutcome struct {
	Result         ResultCode
	RebootRequired bool
	Items          []ItemResult
}

// Provider is implemented by the platform update source. All calls are
// blocking; Download and Install submit their arguments as one batch
// and wait for the terminal result.
type Provider interface {
	Search(criteria string) ([]*Update, error)
	AcceptEula(u *Update) error
	Download(updates []*Update) (DownloadOutcome, error)
	Install(updates []*Update) (InstallOutcome, error)
}

// Rebooter issues a system restart request. The delay is passed to the
// OS scheduler; the timeout bounds the request itself, not the reboot.
type Rebooter interface {
	Restart(delaySeconds, timeoutSeconds int) error
}
