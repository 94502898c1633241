package patching

// RebootAction is the terminal state of the reboot decision, evaluated
// exactly once after the install stage.
type RebootAction int

const (
	NoRebootNeeded RebootAction = iota
	RebootNeededDeferred
	RebootNeededImmediate
)

func (a RebootAction) String() string {
	switch a {
	case NoRebootNeeded:
		return "no reboot needed"
	case RebootNeededDeferred:
		return "reboot needed (deferred)"
	case RebootNeededImmediate:
		return "reboot needed (immediate)"
	default:
		return "unknown"
	}
}

// DecideReboot maps the aggregate reboot-required flag and the caller's
// auto-reboot opt-in to the terminal reboot action.
func DecideReboot(rebootRequired, autoReboot bool) RebootAction {
	if !rebootRequired {
		return NoRebootNeeded
	}
	if autoReboot {
		return RebootNeededImmediate
	}
	return RebootNeededDeferred
}
