package expression

import (
	"errors"
	"fmt"
)

var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrDomain         = errors.New("domain error")
	ErrNotFinite      = errors.New("result is not finite")
	ErrTooManyValues  = errors.New("too many candidate values")
	ErrUnbound        = errors.New("variable is not bound")
)

// ParseError reports malformed expression text. Offset is a byte offset into Text.
type ParseError struct {
	Text    string
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %q at offset %d: %s", e.Text, e.Offset, e.Message)
}

// EvalError reports a failed evaluation. Op names the operator or function that failed.
type EvalError struct {
	Op  string
	Err error
}

func (e *EvalError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("evaluating: %s", e.Err)
	}
	return fmt.Sprintf("evaluating %s: %s", e.Op, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}
