package patching

import "fmt"

// ErrCatalogUnavailable indicates the update provider could not be
// reached or initialized. Fatal for the run.
type ErrCatalogUnavailable struct {
	Err error
}

func (e *ErrCatalogUnavailable) Error() string {
	return fmt.Sprintf("update catalog unavailable: %v", e.Err)
}

func (e *ErrCatalogUnavailable) Unwrap() error { return e.Err }

// ErrPreflightFailed indicates a pre-flight check failed before the
// update provider could be used.
type ErrPreflightFailed struct {
	Check   string // e.g. "service_health", "disk_space", "elevation"
	Message string
}

func (e *ErrPreflightFailed) Error() string {
	return fmt.Sprintf("preflight check %q failed: %s", e.Check, e.Message)
}
