package executor

import (
	"fmt"
	"strings"
)

// ErrorKind classifies an ActionError.
type ErrorKind string

// Action error kinds.
const (
	TargetNotFound    ErrorKind = "target_not_found"
	AmbiguousTarget   ErrorKind = "ambiguous_target"
	UnsupportedAction ErrorKind = "unsupported_action"
	BridgeUnavailable ErrorKind = "bridge_unavailable"
	ExecutionFailed   ErrorKind = "execution_failed"
)

// ActionError describes why an action could not be carried out.
//
// Query is set for TargetNotFound, Candidates for AmbiguousTarget and
// Reason for UnsupportedAction and ExecutionFailed.
type ActionError struct {
	Kind       ErrorKind
	Query      string
	Candidates []string
	Reason     string
}

func (e *ActionError) Error() string {
	switch e.Kind {
	case TargetNotFound:
		return fmt.Sprintf("target not found: %s", e.Query)
	case AmbiguousTarget:
		return fmt.Sprintf("ambiguous target, matches: %s", strings.Join(e.Candidates, ", "))
	case UnsupportedAction:
		return fmt.Sprintf("unsupported action: %s", e.Reason)
	case BridgeUnavailable:
		return "bridge unavailable"
	case ExecutionFailed:
		return fmt.Sprintf("execution failed: %s", e.Reason)
	default:
		return "action error"
	}
}

// Is matches another *ActionError of the same kind.
func (e *ActionError) Is(target error) bool {
	t, ok := target.(*ActionError)
	return ok && t.Kind == e.Kind
}
