package patching

import "fmt"

// ResultCode is a WUA operation result code, returned both as the
// aggregate outcome of a download/install batch and per update.
type ResultCode int

const (
	ResultNotStarted          ResultCode = 0
	ResultInProgress          ResultCode = 1
	ResultSucceeded           ResultCode = 2
	ResultSucceededWithErrors ResultCode = 3
	ResultFailed              ResultCode = 4
	ResultAborted             ResultCode = 5
)

// String maps the closed result-code enumeration to its description.
func (c ResultCode) String() string {
	switch c {
	case ResultSucceeded:
		return "succeeded"
	case ResultSucceededWithErrors:
		return "succeeded with errors"
	case ResultFailed:
		return "failed"
	case ResultAborted:
		return "cancelled"
	default:
		return fmt.Sprintf("unexpected result code %d", int(c))
	}
}

// Succeeded reports whether the code counts as a success (2 or 3).
func (c ResultCode) Succeeded() bool {
	return c == ResultSucceeded || c == ResultSucceededWithErrors
}
