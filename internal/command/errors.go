package command

import "fmt"

// ParseErrorKind classifies a parse failure.
type ParseErrorKind string

// Parse error kinds.
const (
	EmptyCommand  ParseErrorKind = "empty_command"
	UnknownAction ParseErrorKind = "unknown_action"
	MissingTarget ParseErrorKind = "missing_target"
	InvalidValue  ParseErrorKind = "invalid_value"
)

// ParseError reports why a command could not be parsed. Input is the
// original command text; Token is the offending token for UnknownAction
// and InvalidValue.
type ParseError struct {
	Kind  ParseErrorKind
	Input string
	Token string
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case EmptyCommand:
		return "command: empty command"
	case UnknownAction:
		return fmt.Sprintf("command: unknown action %q", e.Token)
	case MissingTarget:
		return fmt.Sprintf("command: missing target in %q", e.Input)
	case InvalidValue:
		return fmt.Sprintf("command: invalid value %q", e.Token)
	default:
		return fmt.Sprintf("command: parse error in %q", e.Input)
	}
}

// Is matches another *ParseError of the same kind, so callers can use
// errors.Is(err, &command.ParseError{Kind: command.MissingTarget}).
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	return ok && t.Kind == e.Kind
}
