package patching

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/taconinja125/winup/internal/logging"
)

type fakeProvider struct {
	catalog   []*Update
	searchErr error
	criteria  []string

	downloadCalls   [][]*Update
	downloadErr     error
	downloadOutcome *DownloadOutcome

	installCalls   [][]*Update
	installErr     error
	installOutcome *InstallOutcome

	accepted []string
}

func (p *fakeProvider) Search(criteria string) ([]*Update, error) {
	p.criteria = append(p.criteria, criteria)
	if p.searchErr != nil {
		return nil, p.searchErr
	}
	return p.catalog, nil
}

func (p *fakeProvider) AcceptEula(u *Update) error {
	p.accepted = append(p.accepted, u.ID)
	return nil
}

func (p *fakeProvider) Download(updates []*Update) (DownloadOutcome, error) {
	p.downloadCalls = append(p.downloadCalls, updates)
	if p.downloadErr != nil {
		return DownloadOutcome{}, p.downloadErr
	}
	if p.downloadOutcome != nil {
		return *p.downloadOutcome, nil
	}
	return DownloadOutcome{Result: ResultSucceeded, Downloaded: updates}, nil
}

func (p *fakeProvider) Install(updates []*Update) (InstallOutcome, error) {
	p.installCalls = append(p.installCalls, updates)
	if p.installErr != nil {
		return InstallOutcome{}, p.installErr
	}
	if p.installOutcome != nil {
		return *p.installOutcome, nil
	}
	outcome := InstallOutcome{Result: ResultSucceeded}
	for _, u := range updates {
		outcome.Items = append(outcome.Items, ItemResult{Update: u, Result: ResultSucceeded})
	}
	return outcome, nil
}

type fakeRebooter struct {
	calls [][2]int
	err   error
}

func (r *fakeRebooter) Restart(delaySeconds, timeoutSeconds int) error {
	r.calls = append(r.calls, [2]int{delaySeconds, timeoutSeconds})
	return r.err
}

func newTestRunner(p Provider, r Rebooter) (*Runner, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewLineHandler(&buf, slog.LevelDebug))
	return NewRunner(p, r, logger), &buf
}

func TestRunEmptyCatalogIsCleanNoop(t *testing.T) {
	provider := &fakeProvider{}
	rebooter := &fakeRebooter{}
	runner, buf := newTestRunner(provider, rebooter)

	report, err := runner.Run(RunOptions{})
	if err != nil {
		t.Fatalf("expected clean run, got %v", err)
	}
	if len(provider.downloadCalls) != 0 || len(provider.installCalls) != 0 {
		t.Fatal("no download or install call may happen on an empty catalog")
	}
	if !strings.Contains(buf.String(), "No updates found") {
		t.Fatalf("expected 'No updates found' log, got:\n%s", buf.String())
	}
	if got := strings.Count(buf.String(), "[INFO]"); got != 1 {
		t.Fatalf("an empty catalog must produce a single INFO line, got %d:\n%s", got, buf.String())
	}
	if len(report.Catalog) != 0 {
		t.Fatalf("unexpected catalog in report: %d", len(report.Catalog))
	}
}

func TestRunSearchFailureIsFatal(t *testing.T) {
	provider := &fakeProvider{searchErr: &ErrCatalogUnavailable{Err: errors.New("service down")}}
	runner, _ := newTestRunner(provider, &fakeRebooter{})

	_, err := runner.Run(RunOptions{})
	if err == nil {
		t.Fatal("expected fatal error")
	}
	var unavailable *ErrCatalogUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestRunSkipsHiddenAndInstallsRest(t *testing.T) {
	u1 := upd("u1")
	u2 := upd("u2")
	u2.Hidden = true

	provider := &fakeProvider{catalog: []*Update{u1, u2}}
	runner, buf := newTestRunner(provider, &fakeRebooter{})

	report, err := runner.Run(RunOptions{})
	if err != nil {
		t.Fatalf("expected clean run, got %v", err)
	}

	if len(provider.downloadCalls) != 1 || len(provider.downloadCalls[0]) != 1 ||
		provider.downloadCalls[0][0].ID != "u1" {
		t.Fatalf("expected download called with {u1}, got %+v", provider.downloadCalls)
	}
	if len(provider.installCalls) != 1 || len(provider.installCalls[0]) != 1 ||
		provider.installCalls[0][0].ID != "u1" {
		t.Fatalf("expected install called with downloaded {u1}, got %+v", provider.installCalls)
	}
	if n := strings.Count(buf.String(), "Skipping hidden update"); n != 1 {
		t.Fatalf("expected exactly one hidden-skip line, got %d:\n%s", n, buf.String())
	}
	if report.Reboot != NoRebootNeeded {
		t.Fatalf("expected no reboot needed, got %v", report.Reboot)
	}
}

func TestRunNoDownloadSkipsBothStages(t *testing.T) {
	provider := &fakeProvider{catalog: []*Update{upd("u1")}}
	runner, buf := newTestRunner(provider, &fakeRebooter{})

	_, err := runner.Run(RunOptions{NoDownload: true})
	if err != nil {
		t.Fatalf("expected clean run, got %v", err)
	}
	if len(provider.downloadCalls) != 0 {
		t.Fatal("download must not be invoked with NoDownload")
	}
	if len(provider.installCalls) != 0 {
		t.Fatal("install must not be invoked on an empty downloaded set")
	}

	out := buf.String()
	if !strings.Contains(out, "Skipping downloads") {
		t.Fatalf("expected 'Skipping downloads' log:\n%s", out)
	}
	if !strings.Contains(out, "Skipping installs") {
		t.Fatalf("expected 'Skipping installs' log:\n%s", out)
	}
}

func TestRunNoInstallStillDownloads(t *testing.T) {
	provider := &fakeProvider{catalog: []*Update{upd("u1")}}
	runner, buf := newTestRunner(provider, &fakeRebooter{})

	_, err := runner.Run(RunOptions{NoInstall: true})
	if err != nil {
		t.Fatalf("expected clean run, got %v", err)
	}
	if len(provider.downloadCalls) != 1 {
		t.Fatal("download should still run with NoInstall")
	}
	if len(provider.installCalls) != 0 {
		t.Fatal("install must not be invoked with NoInstall")
	}
	if !strings.Contains(buf.String(), "Skipping installs") {
		t.Fatalf("expected 'Skipping installs' log:\n%s", buf.String())
	}
}

func TestRunReportsUpdatesThatDidNotDownload(t *testing.T) {
	u1 := upd("u1")
	u2 := upd("u2")
	provider := &fakeProvider{
		catalog: []*Update{u1, u2},
		downloadOutcome: &DownloadOutcome{
			Result:     ResultSucceededWithErrors,
			Downloaded: []*Update{u1},
		},
	}
	runner, buf := newTestRunner(provider, &fakeRebooter{})

	_, err := runner.Run(RunOptions{})
	if err != nil {
		t.Fatalf("partial download failure must not be fatal, got %v", err)
	}
	if len(provider.installCalls) != 1 || len(provider.installCalls[0]) != 1 {
		t.Fatalf("expected install with the downloaded subset, got %+v", provider.installCalls)
	}
	if !strings.Contains(buf.String(), "Update was not downloaded") {
		t.Fatalf("expected not-downloaded warning for u2:\n%s", buf.String())
	}
}

func TestRunWarnsWhenUpdateNeedsAnotherDownload(t *testing.T) {
	u1 := upd("u1")
	provider := &fakeProvider{
		catalog: []*Update{u1},
		installOutcome: &InstallOutcome{
			Result: ResultSucceededWithErrors,
			Items: []ItemResult{
				{Update: u1, Result: ResultFailed, HResult: 0x8024200D},
			},
		},
	}
	runner, buf := newTestRunner(provider, &fakeRebooter{})

	_, err := runner.Run(RunOptions{})
	if err != nil {
		t.Fatalf("per-item failure must not be fatal, got %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "run again to finish installing") {
		t.Fatalf("expected re-run remediation warning:\n%s", out)
	}
	if !strings.Contains(out, "WU_E_UH_NEEDANOTHERDOWNLOAD") {
		t.Fatalf("expected translated HRESULT in warning:\n%s", out)
	}
}

func TestRunRebootNotRequiredIgnoresRebootFlag(t *testing.T) {
	provider := &fakeProvider{catalog: []*Update{upd("u1")}}
	rebooter := &fakeRebooter{}
	runner, _ := newTestRunner(provider, rebooter)

	report, err := runner.Run(RunOptions{Reboot: true})
	if err != nil {
		t.Fatalf("expected clean run, got %v", err)
	}
	if report.Reboot != NoRebootNeeded {
		t.Fatalf("expected NoRebootNeeded, got %v", report.Reboot)
	}
	if len(rebooter.calls) != 0 {
		t.Fatal("restart must not be requested when no reboot is required")
	}
}

func TestRunRebootRequiredWithOptInRestartsImmediately(t *testing.T) {
	u1 := upd("u1")
	provider := &fakeProvider{
		catalog: []*Update{u1},
		installOutcome: &InstallOutcome{
			Result:         ResultSucceeded,
			RebootRequired: true,
			Items:          []ItemResult{{Update: u1, Result: ResultSucceeded}},
		},
	}
	rebooter := &fakeRebooter{}
	runner, _ := newTestRunner(provider, rebooter)

	report, err := runner.Run(RunOptions{
		Reboot:               true,
		RebootDelaySeconds:   30,
		RebootTimeoutSeconds: 120,
	})
	if err != nil {
		t.Fatalf("expected clean run, got %v", err)
	}
	if report.Reboot != RebootNeededImmediate {
		t.Fatalf("expected RebootNeededImmediate, got %v", report.Reboot)
	}
	if len(rebooter.calls) != 1 || rebooter.calls[0] != [2]int{30, 120} {
		t.Fatalf("expected restart with configured delay/timeout, got %v", rebooter.calls)
	}
}

func TestRunRebootRequiredWithoutOptInDefers(t *testing.T) {
	u1 := upd("u1")
	provider := &fakeProvider{
		catalog: []*Update{u1},
		installOutcome: &InstallOutcome{
			Result:         ResultSucceeded,
			RebootRequired: true,
			Items:          []ItemResult{{Update: u1, Result: ResultSucceeded}},
		},
	}
	rebooter := &fakeRebooter{}
	runner, buf := newTestRunner(provider, rebooter)

	report, err := runner.Run(RunOptions{Reboot: false})
	if err != nil {
		t.Fatalf("expected clean run, got %v", err)
	}
	if report.Reboot != RebootNeededDeferred {
		t.Fatalf("expected RebootNeededDeferred, got %v", report.Reboot)
	}
	if len(rebooter.calls) != 0 {
		t.Fatal("restart must not be requested without opt-in")
	}
	if !strings.Contains(buf.String(), "reboot manually") {
		t.Fatalf("expected manual-reboot notice:\n%s", buf.String())
	}
}

func TestRunPassesCriteriaSwitchesThrough(t *testing.T) {
	provider := &fakeProvider{}
	runner, _ := newTestRunner(provider, &fakeRebooter{})

	if _, err := runner.Run(RunOptions{IncludeOptional: true, ExcludeRebootRequired: true}); err != nil {
		t.Fatalf("expected clean run, got %v", err)
	}
	want := "IsInstalled=0 and Type='Software' and RebootRequired=0"
	if len(provider.criteria) != 1 || provider.criteria[0] != want {
		t.Fatalf("expected criteria %q, got %v", want, provider.criteria)
	}
}
