package definition

import (
	"errors"
	"fmt"
)

var (
	ErrRuleOutsideGroup   = errors.New("rule outside group")
	ErrUnterminatedHeader = errors.New("group header must end with ']'")
	ErrFieldCount         = errors.New("expected \"<index> <category> <title>\"")
	ErrBadIndex           = errors.New("index is not an integer")
	ErrUnknownCategory    = errors.New("unknown month, weekday or \"easter\"")
	ErrUnknownWeekday     = errors.New("unknown weekday")
	ErrUnknownMonth       = errors.New("unknown month")
	ErrOutOfRange         = errors.New("index out of range")
)

// SyntaxError pinpoints the first malformed line of a definition document.
type SyntaxError struct {
	Line   int
	Reason error
	// Detail names the offending token, if any.
	Detail string
}

func (e *SyntaxError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Reason)
	}
	return fmt.Sprintf("line %d: %v: %s", e.Line, e.Reason, e.Detail)
}

func (e *SyntaxError) Unwrap() error {
	return e.Reason
}

func syntaxErr(line int, reason error, detail string) *SyntaxError {
	return &SyntaxError{Line: line, Reason: reason, Detail: detail}
}
