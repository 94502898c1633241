package patching

// SkipReason explains why the selection filter rejected an update.
type SkipReason string

const (
	SkipHidden            SkipReason = "hidden"
	SkipEulaRequired      SkipReason = "EULA required"
	SkipRequiresUserInput SkipReason = "requires user input"
	SkipExclusiveConflict SkipReason = "exclusive conflict"
)

// Skip records one update rejected by the filter, for logging.
type Skip struct {
	Update *Update
	Reason SkipReason
	// Err is set when a side effect (EULA acceptance) failed and caused
	// the skip.
	Err error
}

// Selection is the ordered set of updates chosen for download and
// install in one run. If any member has exclusive impact it is the
// only member.
type Selection struct {
	updates   []*Update
	exclusive bool
}

// Updates returns the selected updates in catalog order.
func (s *Selection) Updates() []*Update { return s.updates }

// Len returns the number of selected updates.
func (s *Selection) Len() int { return len(s.updates) }

// Exclusive reports whether the selection is locked to a single
// exclusive update.
func (s *Selection) Exclusive() bool { return s.exclusive }

func (s *Selection) add(u *Update) { s.updates = append(s.updates, u) }

// EulaAcceptor accepts the license agreement of an update as a side
// effect against the provider.
type EulaAcceptor interface {
	AcceptEula(u *Update) error
}

// SelectOptions controls the selection filter.
type SelectOptions struct {
	AutoAcceptEula bool
}

// Select walks the catalog in order and decides, per update, whether it
// is eligible for this run. Each rule short-circuits:
//
//  1. hidden updates are skipped;
//  2. updates with an unaccepted EULA are accepted (when auto-accept is
//     enabled) or skipped;
//  3. updates that can request interactive input are skipped, since an
//     unattended run cannot satisfy a prompt;
//  4. an exclusive update is selected only as the sole member; once the
//     selection holds anything, exclusive candidates are skipped, and
//     once an exclusive update is selected, everything after is skipped.
//
// The exclusivity tie-break is first-seen-wins: whichever eligible
// update locks or fills the selection first, in catalog order, stays.
func Select(catalog []*Update, opts SelectOptions, eula EulaAcceptor) (*Selection, []Skip) {
	sel := &Selection{}
	var skips []Skip

	for _, u := range catalog {
		if u.Hidden {
			skips = append(skips, Skip{Update: u, Reason: SkipHidden})
			continue
		}

		if !u.EulaAccepted {
			if !opts.AutoAcceptEula {
				skips = append(skips, Skip{Update: u, Reason: SkipEulaRequired})
				continue
			}
			if err := eula.AcceptEula(u); err != nil {
				skips = append(skips, Skip{Update: u, Reason: SkipEulaRequired, Err: err})
				continue
			}
			u.EulaAccepted = true
		}

		if u.CanRequestUserInput {
			skips = append(skips, Skip{Update: u, Reason: SkipRequiresUserInput})
			continue
		}

		if u.Impact == ImpactExclusive {
			if sel.Len() > 0 {
				skips = append(skips, Skip{Update: u, Reason: SkipExclusiveConflict})
				continue
			}
			sel.exclusive = true
			sel.add(u)
			continue
		}

		if sel.exclusive {
			skips = append(skips, Skip{Update: u, Reason: SkipExclusiveConflict})
			continue
		}

		sel.add(u)
	}

	return sel, skips
}
