//go:build windows

package wua

import (
	"fmt"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"github.com/taconinja125/winup/internal/patching"
)

// expandUpdate reads an IUpdate dispatch into a plain Update struct.
// Identity and revision must be present; everything else is best-effort.
func expandUpdate(item *ole.IDispatch) (*patching.Update, error) {
	identityVar, err := oleutil.GetProperty(item, "Identity")
	if err != nil {
		return nil, fmt.Errorf("update identity: %w", err)
	}
	defer identityVar.Clear()

	identity := identityVar.ToIDispatch()
	if identity == nil {
		return nil, fmt.Errorf("update identity missing")
	}
	defer identity.Release()

	updateID, err := getStringProperty(identity, "UpdateID")
	if err != nil {
		return nil, fmt.Errorf("update id: %w", err)
	}
	revision, _ := getIntProperty(identity, "RevisionNumber")

	u := &patching.Update{
		ID:             updateID,
		RevisionNumber: revision,
	}

	u.Title, _ = getStringProperty(item, "Title")
	u.Description, _ = getStringProperty(item, "Description")
	u.Hidden, _ = getBoolProperty(item, "IsHidden")
	u.EulaAccepted, _ = getBoolProperty(item, "EulaAccepted")
	u.IsDownloaded, _ = getBoolProperty(item, "IsDownloaded")
	u.BrowseOnly, _ = getBoolProperty(item, "BrowseOnly")
	u.IsMandatory, _ = getBoolProperty(item, "IsMandatory")
	u.MsrcSeverity, _ = getStringProperty(item, "MsrcSeverity")
	u.DeploymentAction, _ = getIntProperty(item, "DeploymentAction")

	if size, err := getIntProperty(item, "MaxDownloadSize"); err == nil {
		u.MaxDownloadSize = int64(size)
	}

	readInstallationBehavior(item, u)
	u.KBArticleIDs = readStringCollection(item, "KBArticleIDs")
	u.Categories = readCategories(item)

	return u, nil
}

// readInstallationBehavior extracts the impact level, interactive-input
// flag, and reboot behavior from the IInstallationBehavior descriptor.
func readInstallationBehavior(item *ole.IDispatch, u *patching.Update) {
	behaviorVar, err := oleutil.GetProperty(item, "InstallationBehavior")
	if err != nil {
		return
	}
	defer behaviorVar.Clear()

	behavior := behaviorVar.ToIDispatch()
	if behavior == nil {
		return
	}
	defer behavior.Release()

	if impact, err := getIntProperty(behavior, "Impact"); err == nil {
		u.Impact = patching.InstallImpact(impact)
	}
	u.CanRequestUserInput, _ = getBoolProperty(behavior, "CanRequestUserInput")
	u.RebootBehavior, _ = getIntProperty(behavior, "RebootBehavior")
}

// readStringCollection reads a WUA IStringCollection property.
func readStringCollection(item *ole.IDispatch, name string) []string {
	collVar, err := oleutil.GetProperty(item, name)
	if err != nil {
		return nil
	}
	defer collVar.Clear()

	coll := collVar.ToIDispatch()
	if coll == nil {
		return nil
	}
	defer coll.Release()

	count, err := collectionCount(coll)
	if err != nil || count == 0 {
		return nil
	}

	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		itemVar, err := oleutil.CallMethod(coll, "Item", i)
		if err != nil {
			continue
		}
		s := itemVar.ToString()
		itemVar.Clear()
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// readCategories reads the (name, category ID) classification pairs.
func readCategories(item *ole.IDispatch) []patching.Category {
	catsVar, err := oleutil.GetProperty(item, "Categories")
	if err != nil {
		return nil
	}
	defer catsVar.Clear()

	cats := catsVar.ToIDispatch()
	if cats == nil {
		return nil
	}
	defer cats.Release()

	count, err := collectionCount(cats)
	if err != nil || count == 0 {
		return nil
	}

	out := make([]patching.Category, 0, count)
	for i := 0; i < count; i++ {
		catVar, err := oleutil.CallMethod(cats, "Item", i)
		if err != nil {
			continue
		}
		cat := catVar.ToIDispatch()
		catVar.Clear()
		if cat == nil {
			continue
		}

		name, _ := getStringProperty(cat, "Name")
		categoryID, _ := getStringProperty(cat, "CategoryID")
		cat.Release()

		out = append(out, patching.Category{Name: name, CategoryID: categoryID})
	}
	return out
}
