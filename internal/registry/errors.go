package registry

import "errors"

// FailureKind categorizes why a classification lookup resolved to Unknown.
type FailureKind int

const (
	FailureNoProjectID FailureKind = iota
	FailureNetwork
	FailureStatus
	FailureDecode
	FailureUnknown
)

// String returns the string representation of FailureKind.
func (k FailureKind) String() string {
	switch k {
	case FailureNoProjectID:
		return "no_project_id"
	case FailureNetwork:
		return "network"
	case FailureStatus:
		return "status"
	case FailureDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// lookupError tags a lookup failure with its kind so logging and counters
// can distinguish transport faults from bad responses.
type lookupError struct {
	kind FailureKind
	err  error
}

func (e *lookupError) Error() string {
	return e.err.Error()
}

func (e *lookupError) Unwrap() error {
	return e.err
}

// classifyFailure extracts the FailureKind from a lookup error.
func classifyFailure(err error) FailureKind {
	var le *lookupError
	if errors.As(err, &le) {
		return le.kind
	}
	return FailureUnknown
}
