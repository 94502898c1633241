//go:build windows

package wua

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"github.com/taconinja125/winup/internal/config"
	"github.com/taconinja125/winup/internal/logging"
	"github.com/taconinja125/winup/internal/patching"
)

var log = logging.L("wua")

// Provider holds one Windows Update session for the duration of a run.
// It is not safe for concurrent use; the update agent is a system-wide
// exclusive resource and all calls are made from the locked OS thread
// that opened the session.
type Provider struct {
	cfg     *config.Config
	unknown *ole.IUnknown
	session *ole.IDispatch
	// handles maps Update.Key() to the live IUpdate dispatch so the
	// same COM objects flow through download and install.
	handles map[string]*ole.IDispatch
}

// Open runs the preflight checks, initializes COM, and creates the
// update session. Every failure here means the catalog cannot be used
// and is reported as ErrCatalogUnavailable. Callers must Close the
// provider on every exit path; leaking the session blocks later runs.
func Open(cfg *config.Config) (*Provider, error) {
	runtime.LockOSThread()

	if err := runPreflight(cfg); err != nil {
		runtime.UnlockOSThread()
		return nil, &patching.ErrCatalogUnavailable{Err: err}
	}

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		runtime.UnlockOSThread()
		return nil, &patching.ErrCatalogUnavailable{Err: fmt.Errorf("initialize COM: %w", err)}
	}

	unknown, err := oleutil.CreateObject("Microsoft.Update.Session")
	if err != nil {
		ole.CoUninitialize()
		runtime.UnlockOSThread()
		return nil, &patching.ErrCatalogUnavailable{Err: fmt.Errorf("create update session: %w", err)}
	}

	session, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		unknown.Release()
		ole.CoUninitialize()
		runtime.UnlockOSThread()
		return nil, &patching.ErrCatalogUnavailable{Err: fmt.Errorf("query update session: %w", err)}
	}

	return &Provider{
		cfg:     cfg,
		unknown: unknown,
		session: session,
		handles: make(map[string]*ole.IDispatch),
	}, nil
}

// Close releases all held COM objects and the session.
func (p *Provider) Close() {
	for _, h := range p.handles {
		h.Release()
	}
	p.handles = nil

	if p.session != nil {
		p.session.Release()
		p.session = nil
	}
	if p.unknown != nil {
		p.unknown.Release()
		p.unknown = nil
	}

	ole.CoUninitialize()
	runtime.UnlockOSThread()
}

// Search queries the update catalog and returns the matching updates
// in catalog order. The underlying IUpdate objects stay alive inside
// the provider until Close.
func (p *Provider) Search(criteria string) ([]*patching.Update, error) {
	searcherVar, err := oleutil.CallMethod(p.session, "CreateUpdateSearcher")
	if err != nil {
		return nil, fmt.Errorf("create searcher: %w", err)
	}
	defer searcherVar.Clear()

	searcher := searcherVar.ToIDispatch()
	if searcher == nil {
		return nil, fmt.Errorf("create searcher: nil searcher")
	}
	defer searcher.Release()

	resultVar, err := callWithRetry("Search", func() (*ole.VARIANT, error) {
		return oleutil.CallMethod(searcher, "Search", criteria)
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", criteria, err)
	}
	defer resultVar.Clear()

	result := resultVar.ToIDispatch()
	if result == nil {
		return nil, fmt.Errorf("search %q: nil result", criteria)
	}
	defer result.Release()

	updatesVar, err := oleutil.GetProperty(result, "Updates")
	if err != nil {
		return nil, fmt.Errorf("updates collection: %w", err)
	}
	defer updatesVar.Clear()

	updates := updatesVar.ToIDispatch()
	if updates == nil {
		return nil, fmt.Errorf("updates collection missing")
	}
	defer updates.Release()

	count, err := collectionCount(updates)
	if err != nil {
		return nil, err
	}

	out := make([]*patching.Update, 0, count)
	for i := 0; i < count; i++ {
		itemVar, err := oleutil.CallMethod(updates, "Item", i)
		if err != nil {
			continue
		}
		item := itemVar.ToIDispatch()
		itemVar.Clear()
		if item == nil {
			continue
		}

		u, err := expandUpdate(item)
		if err != nil {
			log.Warn("Skipping unreadable catalog entry", "index", i, "error", err)
			item.Release()
			continue
		}

		if prev, ok := p.handles[u.Key()]; ok {
			prev.Release()
		}
		p.handles[u.Key()] = item
		out = append(out, u)
	}

	return out, nil
}

// AcceptEula flips the EULA-accepted flag on the live update object.
func (p *Provider) AcceptEula(u *patching.Update) error {
	item, ok := p.handles[u.Key()]
	if !ok {
		return fmt.Errorf("update %s not held by this session", u.Key())
	}
	if _, err := oleutil.CallMethod(item, "AcceptEula"); err != nil {
		return fmt.Errorf("AcceptEula %s: %w", u.Key(), err)
	}
	return nil
}

// Download submits the updates as one batch to the update downloader
// and reports the aggregate result plus the subset the agent marks as
// downloaded.
func (p *Provider) Download(updates []*patching.Update) (patching.DownloadOutcome, error) {
	var outcome patching.DownloadOutcome

	collection, err := p.buildCollection(updates)
	if err != nil {
		return outcome, err
	}
	defer collection.Release()

	downloaderVar, err := oleutil.CallMethod(p.session, "CreateUpdateDownloader")
	if err != nil {
		return outcome, fmt.Errorf("create downloader: %w", err)
	}
	defer downloaderVar.Clear()

	downloader := downloaderVar.ToIDispatch()
	if downloader == nil {
		return outcome, fmt.Errorf("create downloader: nil downloader")
	}
	defer downloader.Release()

	if _, err := oleutil.PutProperty(downloader, "Updates", collection); err != nil {
		return outcome, fmt.Errorf("set downloader updates: %w", err)
	}

	resultVar, err := callWithRetry("Download", func() (*ole.VARIANT, error) {
		return oleutil.CallMethod(downloader, "Download")
	})
	if err != nil {
		return outcome, fmt.Errorf("download: %w", err)
	}
	defer resultVar.Clear()

	result := resultVar.ToIDispatch()
	if result == nil {
		return outcome, fmt.Errorf("download: nil result")
	}
	defer result.Release()

	code, _ := getIntProperty(result, "ResultCode")
	outcome.Result = patching.ResultCode(code)

	// The agent decides per update what actually landed; refresh the
	// IsDownloaded flags rather than trusting the aggregate code.
	for _, u := range updates {
		item, ok := p.handles[u.Key()]
		if !ok {
			continue
		}
		downloaded, _ := getBoolProperty(item, "IsDownloaded")
		u.IsDownloaded = downloaded
		if downloaded {
			outcome.Downloaded = append(outcome.Downloaded, u)
		}
	}

	return outcome, nil
}

// Install submits the updates as one batch to the update installer and
// reports the aggregate result, the reboot-required flag, and the
// per-update (result code, HRESULT) pairs in submission order.
func (p *Provider) Install(updates []*patching.Update) (patching.InstallOutcome, error) {
	var outcome patching.InstallOutcome

	collection, err := p.buildCollection(updates)
	if err != nil {
		return outcome, err
	}
	defer collection.Release()

	installerVar, err := oleutil.CallMethod(p.session, "CreateUpdateInstaller")
	if err != nil {
		return outcome, fmt.Errorf("create installer: %w", err)
	}
	defer installerVar.Clear()

	installer := installerVar.ToIDispatch()
	if installer == nil {
		return outcome, fmt.Errorf("create installer: nil installer")
	}
	defer installer.Release()

	if _, err := oleutil.PutProperty(installer, "Updates", collection); err != nil {
		return outcome, fmt.Errorf("set installer updates: %w", err)
	}

	resultVar, err := callWithRetry("Install", func() (*ole.VARIANT, error) {
		return oleutil.CallMethod(installer, "Install")
	})
	if err != nil {
		return outcome, fmt.Errorf("install: %w", err)
	}
	defer resultVar.Clear()

	result := resultVar.ToIDispatch()
	if result == nil {
		return outcome, fmt.Errorf("install: nil result")
	}
	defer result.Release()

	code, _ := getIntProperty(result, "ResultCode")
	outcome.Result = patching.ResultCode(code)

	rebootRequired, _ := getBoolProperty(result, "RebootRequired")
	outcome.RebootRequired = rebootRequired

	for i, u := range updates {
		item := patching.ItemResult{Update: u}

		itemVar, err := oleutil.CallMethod(result, "GetUpdateResult", i)
		if err != nil {
			item.Result = outcome.Result
			outcome.Items = append(outcome.Items, item)
			continue
		}

		itemResult := itemVar.ToIDispatch()
		itemVar.Clear()
		if itemResult == nil {
			item.Result = outcome.Result
			outcome.Items = append(outcome.Items, item)
			continue
		}

		itemCode, _ := getIntProperty(itemResult, "ResultCode")
		hresult, _ := getIntProperty(itemResult, "HResult")
		itemResult.Release()

		item.Result = patching.ResultCode(itemCode)
		item.HResult = hresult
		outcome.Items = append(outcome.Items, item)
	}

	return outcome, nil
}

// buildCollection assembles a Microsoft.Update.UpdateColl from held
// update handles, preserving order.
func (p *Provider) buildCollection(updates []*patching.Update) (*ole.IDispatch, error) {
	collectionObj, err := oleutil.CreateObject("Microsoft.Update.UpdateColl")
	if err != nil {
		return nil, fmt.Errorf("create update collection: %w", err)
	}
	defer collectionObj.Release()

	collection, err := collectionObj.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return nil, fmt.Errorf("update collection dispatch: %w", err)
	}

	for _, u := range updates {
		item, ok := p.handles[u.Key()]
		if !ok {
			collection.Release()
			return nil, fmt.Errorf("update %s not held by this session", u.Key())
		}
		if _, err := oleutil.CallMethod(collection, "Add", item); err != nil {
			collection.Release()
			return nil, fmt.Errorf("add update %s to collection: %w", u.Key(), err)
		}
	}

	return collection, nil
}

// callWithRetry wraps a WUA COM call with retry logic for concurrent
// operation conflicts (another client holding the agent). Failed result
// codes are never retried here; this only covers pre-submission
// contention.
func callWithRetry(operation string, fn func() (*ole.VARIANT, error)) (*ole.VARIANT, error) {
	backoffs := []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second}

	result, err := fn()
	if err == nil {
		return result, nil
	}

	for attempt, backoff := range backoffs {
		if !isOperationInProgressError(err.Error()) {
			return nil, err
		}

		log.Warn("Update agent busy, retrying",
			"operation", operation, "attempt", attempt+2, "backoff", backoff.String())
		time.Sleep(backoff)

		result, err = fn()
		if err == nil {
			return result, nil
		}
	}

	return nil, fmt.Errorf("%s failed after retries: %w", operation, err)
}

// isOperationInProgressError checks the COM error text for the WUA
// concurrent operation HRESULTs.
func isOperationInProgressError(errStr string) bool {
	return strings.Contains(errStr, "8024000E") || strings.Contains(errStr, "80240016")
}

func collectionCount(collection *ole.IDispatch) (int, error) {
	countVar, err := oleutil.GetProperty(collection, "Count")
	if err != nil {
		return 0, fmt.Errorf("collection count: %w", err)
	}
	defer countVar.Clear()
	return int(countVar.Val), nil
}

func getStringProperty(dispatch *ole.IDispatch, name string) (string, error) {
	value, err := oleutil.GetProperty(dispatch, name)
	if err != nil {
		return "", err
	}
	defer value.Clear()
	return value.ToString(), nil
}

func getIntProperty(dispatch *ole.IDispatch, name string) (int, error) {
	value, err := oleutil.GetProperty(dispatch, name)
	if err != nil {
		return 0, err
	}
	defer value.Clear()
	return int(value.Val), nil
}

func getBoolProperty(dispatch *ole.IDispatch, name string) (bool, error) {
	value, err := oleutil.GetProperty(dispatch, name)
	if err != nil {
		return false, err
	}
	defer value.Clear()
	return value.Val != 0, nil
}
