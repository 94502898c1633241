package patching

import "strings"

// SearchOptions controls the WUA criteria string for a catalog query.
type SearchOptions struct {
	// IncludeOptional keeps browse-only (optional) updates in the result.
	IncludeOptional bool
	// ExcludeRebootRequired drops updates that cannot proceed until a
	// pending reboot completes.
	ExcludeRebootRequired bool
}

// BuildCriteria assembles the search criteria for not-yet-installed
// software updates.
func BuildCriteria(opts SearchOptions) string {
	parts := []string{"IsInstalled=0", "Type='Software'"}
	if !opts.IncludeOptional {
		parts = append(parts, "BrowseOnly=0")
	}
	if opts.ExcludeRebootRequired {
		parts = append(parts, "RebootRequired=0")
	}
	return strings.Join(parts, " and ")
}

// InstalledCriteria is the criteria string for listing installed
// software updates.
func InstalledCriteria() string {
	return "IsInstalled=1 and Type='Software'"
}
