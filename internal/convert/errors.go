package convert

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is wrapped by UnsupportedError.
	ErrUnsupported = errors.New("unsupported construct")

	// ErrUnknownOperator is wrapped by OperatorError.
	ErrUnknownOperator = errors.New("unknown operator")
)

// UnsupportedError reports a parser construct with no node variant.
type UnsupportedError struct {
	Construct string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("convert: %s: %s", ErrUnsupported, e.Construct)
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }

// OperatorError reports an operator token missing from the conversion tables.
type OperatorError struct {
	Class string
	Token string
}

func (e *OperatorError) Error() string {
	return fmt.Sprintf("convert: %s %s %q", ErrUnknownOperator, e.Class, e.Token)
}

func (e *OperatorError) Unwrap() error { return ErrUnknownOperator }
