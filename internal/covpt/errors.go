package covpt

import (
	"errors"
	"fmt"
)

var (
	ErrLex           = errors.New("lex error")
	ErrStructure     = errors.New("malformed coverpoint")
	ErrTooManyModels = errors.New("too many models")
)

// ParseError reports where a coverage point failed to lex or build. Err is
// ErrLex or ErrStructure.
type ParseError struct {
	Covpt string
	Pos   int
	Msg   string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("coverpoint %q: offset %d: %s", e.Covpt, e.Pos, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

func lexError(src string, pos int, msg string) error {
	return &ParseError{Covpt: src, Pos: pos, Msg: msg, Err: ErrLex}
}

func structError(src string, pos int, format string, args ...any) error {
	return &ParseError{Covpt: src, Pos: pos, Msg: fmt.Sprintf(format, args...), Err: ErrStructure}
}
