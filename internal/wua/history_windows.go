//go:build windows

package wua

import (
	"fmt"
	"time"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"github.com/taconinja125/winup/internal/patching"
)

// History returns the most recent update history entries, newest
// first (the order QueryHistory reports them). limit <= 0 returns the
// whole history.
func (p *Provider) History(limit int) ([]HistoryEntry, error) {
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

	totalVar, err := oleutil.CallMethod(searcher, "GetTotalHistoryCount")
	if err != nil {
		return nil, fmt.Errorf("history count: %w", err)
	}
	total := int(totalVar.Val)
	totalVar.Clear()

	if total == 0 {
		return nil, nil
	}
	count := total
	if limit > 0 && limit < count {
		count = limit
	}

	historyVar, err := oleutil.CallMethod(searcher, "QueryHistory", 0, count)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer historyVar.Clear()

	history := historyVar.ToIDispatch()
	if history == nil {
		return nil, fmt.Errorf("query history: nil result")
	}
	defer history.Release()

	n, err := collectionCount(history)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, n)
	for i := 0; i < n; i++ {
		itemVar, err := oleutil.CallMethod(history, "Item", i)
		if err != nil {
			continue
		}
		item := itemVar.ToIDispatch()
		itemVar.Clear()
		if item == nil {
			continue
		}

		entry := expandHistoryEntry(item)
		item.Release()
		entries = append(entries, entry)
	}

	return entries, nil
}

func expandHistoryEntry(item *ole.IDispatch) HistoryEntry {
	var e HistoryEntry

	e.Title, _ = getStringProperty(item, "Title")
	e.Operation, _ = getIntProperty(item, "Operation")
	if code, err := getIntProperty(item, "ResultCode"); err == nil {
		e.Result = patching.ResultCode(code)
	}
	e.HResult, _ = getIntProperty(item, "HResult")
	e.ClientApplicationID, _ = getStringProperty(item, "ClientApplicationID")
	e.ServiceID, _ = getStringProperty(item, "ServiceID")
	e.SupportURL, _ = getStringProperty(item, "SupportUrl")

	if dateVar, err := oleutil.GetProperty(item, "Date"); err == nil {
		if t, ok := dateVar.Value().(time.Time); ok {
			e.Date = t.UTC()
		}
		dateVar.Clear()
	}

	if identityVar, err := oleutil.GetProperty(item, "UpdateIdentity"); err == nil {
		if identity := identityVar.ToIDispatch(); identity != nil {
			e.UpdateID, _ = getStringProperty(identity, "UpdateID")
			e.RevisionNumber, _ = getIntProperty(identity, "RevisionNumber")
			identity.Release()
		}
		identityVar.Clear()
	}

	return e
}
