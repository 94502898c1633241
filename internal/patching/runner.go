package patching

import (
	"log/slog"

	"github.com/taconinja125/winup/internal/logging"
)

var log = logging.L("patching")

// RunOptions carries the caller's flags for one workflow run.
type RunOptions struct {
	IncludeOptional       bool
	ExcludeRebootRequired bool
	NoDownload            bool
	NoInstall             bool
	ShowDetails           bool
	AutoAcceptEula        bool
	Reboot                bool
	RebootDelaySeconds    int
	RebootTimeoutSeconds  int
}

// RunReport summarizes what one run did.
type RunReport struct {
	Catalog        []*Update
	Selection      *Selection
	Skips          []Skip
	DownloadResult ResultCode
	Downloaded     []*Update
	Install        *InstallOutcome
	Reboot         RebootAction
}

// Runner drives the update workflow: query, filter, download, install,
// reboot decision. Stages run strictly in order; no stage re-enters an
// earlier one within a run.
type Runner struct {
	provider Provider
	rebooter Rebooter
	log      *slog.Logger
}

// NewRunner creates a Runner. A nil logger falls back to the package
// logger.
func NewRunner(provider Provider, rebooter Rebooter, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = log
	}
	return &Runner{provider: provider, rebooter: rebooter, log: logger}
}

// Run executes the workflow once. The returned error is fatal for the
// run; per-item failures are logged and reported in the RunReport
// without aborting.
func (r *Runner) Run(opts RunOptions) (*RunReport, error) {
	report := &RunReport{}

	criteria := BuildCriteria(SearchOptions{
		IncludeOptional:       opts.IncludeOptional,
		ExcludeRebootRequired: opts.ExcludeRebootRequired,
	})
	r.log.Debug("Searching for updates", "criteria", criteria)

	catalog, err := r.provider.Search(criteria)
	if err != nil {
		r.log.Error("Update search failed", "error", err)
		return nil, err
	}
	report.Catalog = catalog

	if len(catalog) == 0 {
		r.log.Info("No updates found")
		return report, nil
	}
	r.log.Info("Found updates", "count", len(catalog))

	sel, skips := Select(catalog, SelectOptions{AutoAcceptEula: opts.AutoAcceptEula}, r.provider)
	report.Selection = sel
	report.Skips = skips

	for _, skip := range skips {
		r.logSkip(skip)
	}
	for _, u := range sel.Updates() {
		r.logSelected(u, opts.ShowDetails)
	}

	if sel.Len() == 0 {
		r.log.Info("No updates eligible for installation")
		return report, nil
	}

	var downloaded []*Update
	if opts.NoDownload {
		r.log.Info("Skipping downloads")
	} else {
		r.log.Info("Downloading updates", "count", sel.Len())
		outcome, err := r.provider.Download(sel.Updates())
		if err != nil {
			r.log.Error("Download call failed", "error", err)
			return report, err
		}
		report.DownloadResult = outcome.Result
		downloaded = outcome.Downloaded
		r.logStageResult("Download", outcome.Result)
		r.logNotDownloaded(sel.Updates(), downloaded)
	}
	report.Downloaded = downloaded

	rebootRequired := false
	if opts.NoInstall || len(downloaded) == 0 {
		r.log.Info("Skipping installs")
	} else {
		r.log.Info("Installing updates", "count", len(downloaded))
		outcome, err := r.provider.Install(downloaded)
		if err != nil {
			r.log.Error("Install call failed", "error", err)
			return report, err
		}
		report.Install = &outcome
		r.logStageResult("Install", outcome.Result)
		for _, item := range outcome.Items {
			r.logItemResult(item)
		}
		rebootRequired = outcome.RebootRequired
	}

	action := DecideReboot(rebootRequired, opts.Reboot)
	report.Reboot = action

	switch action {
	case NoRebootNeeded:
		r.log.Info("No reboot required")
	case RebootNeededDeferred:
		r.log.Info("A reboot is required to finish installing updates; reboot manually when convenient")
	case RebootNeededImmediate:
		r.log.Info("Rebooting to finish installing updates",
			"delaySeconds", opts.RebootDelaySeconds, "timeoutSeconds", opts.RebootTimeoutSeconds)
		if err := r.rebooter.Restart(opts.RebootDelaySeconds, opts.RebootTimeoutSeconds); err != nil {
			r.log.Error("Restart request failed", "error", err)
			return report, err
		}
	}

	return report, nil
}

func (r *Runner) logSkip(skip Skip) {
	switch skip.Reason {
	case SkipHidden:
		r.log.Info("Skipping hidden update", "title", skip.Update.Title)
	case SkipEulaRequired:
		if skip.Err != nil {
			r.log.Warn("Skipping update, EULA acceptance failed",
				"title", skip.Update.Title, "error", skip.Err)
			return
		}
		r.log.Warn("Skipping update, EULA not accepted", "title", skip.Update.Title)
	case SkipRequiresUserInput:
		r.log.Warn("Skipping update, requires user input", "title", skip.Update.Title)
	case SkipExclusiveConflict:
		r.log.Warn("Skipping update, conflicts with an exclusive update in this batch",
			"title", skip.Update.Title)
	default:
		r.log.Warn("Skipping update", "title", skip.Update.Title, "reason", string(skip.Reason))
	}
}

func (r *Runner) logSelected(u *Update, details bool) {
	if !details {
		r.log.Info("Selected update", "title", u.Title)
		return
	}
	r.log.Info("Selected update",
		"title", u.Title,
		"id", u.Key(),
		"kb", u.KBNumber(),
		"severity", u.MsrcSeverity,
		"impact", u.Impact.String(),
		"sizeBytes", u.MaxDownloadSize,
		"description", u.Description,
	)
}

func (r *Runner) logStageResult(stage string, code ResultCode) {
	switch code {
	case ResultSucceeded:
		r.log.Info(stage+" completed", "result", code.String())
	case ResultSucceededWithErrors:
		r.log.Warn(stage+" completed with errors", "result", code.String())
	default:
		r.log.Error(stage+" did not succeed", "result", code.String())
	}
}

// logNotDownloaded reports every selected update the provider did not
// mark as downloaded, so no submitted update goes unaccounted for.
func (r *Runner) logNotDownloaded(selected, downloaded []*Update) {
	got := make(map[string]bool, len(downloaded))
	for _, u := range downloaded {
		got[u.Key()] = true
	}
	for _, u := range selected {
		if !got[u.Key()] {
			r.log.Warn("Update was not downloaded", "title", u.Title)
		}
	}
}

func (r *Runner) logItemResult(item ItemResult) {
	if item.Result.Succeeded() {
		r.log.Info("Installed update", "title", item.Update.Title, "result", item.Result.String())
		return
	}
	if NeedsAnotherDownload(item.HResult) {
		r.log.Warn("Update needs additional downloaded content; run again to finish installing",
			"title", item.Update.Title, "hresult", FormatHResult(item.HResult))
		return
	}
	if item.HResult != 0 {
		r.log.Warn("Update did not install", "title", item.Update.Title,
			"result", item.Result.String(), "hresult", FormatHResult(item.HResult))
		return
	}
	r.log.Warn("Update did not install", "title", item.Update.Title, "result", item.Result.String())
}
