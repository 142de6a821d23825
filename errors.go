package avulto

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is. Every typed error below unwraps to one of them.
var (
	ErrMissingType = errors.New("missing type")
	ErrMissingProc = errors.New("missing proc")
	ErrEmptyProc   = errors.New("empty proc")
	ErrMissingVar  = errors.New("missing var")

	// ErrProcsNotParsed is returned by walks when the loaded dump carries no
	// proc bodies.
	ErrProcsNotParsed = errors.New("proc bodies were not included in the loaded dump")

	// ErrNotLoaded is returned when the store holds no program.
	ErrNotLoaded = errors.New("no program loaded")
)

// MissingTypeError reports a type path absent from the object tree.
type MissingTypeError struct {
	Path string
	// lookup is set for TypeDecl lookups, which word the message as a path.
	lookup bool
}

func (e *MissingTypeError) Error() string {
	if e.lookup {
		return fmt.Sprintf("cannot find path %s", e.Path)
	}
	return fmt.Sprintf("cannot find type %s", e.Path)
}

func (e *MissingTypeError) Unwrap() error { return ErrMissingType }

// MissingProcError reports a proc absent from a type.
type MissingProcError struct {
	Type string
	Proc string
}

func (e *MissingProcError) Error() string {
	return fmt.Sprintf("cannot find proc %s on type %s", e.Proc, e.Type)
}

func (e *MissingProcError) Unwrap() error { return ErrMissingProc }

// EmptyProcError reports a proc whose definition has no body.
type EmptyProcError struct {
	Type string
	Proc string
}

func (e *EmptyProcError) Error() string {
	return fmt.Sprintf("no code statements found in proc %s on type %s", e.Proc, e.Type)
}

func (e *EmptyProcError) Unwrap() error { return ErrEmptyProc }

// MissingVarError reports a var that neither a type nor any ancestor
// records.
type MissingVarError struct {
	Type string
	Var  string
}

func (e *MissingVarError) Error() string {
	return fmt.Sprintf("cannot find value for %s/%s", e.Type, e.Var)
}

func (e *MissingVarError) Unwrap() error { return ErrMissingVar }
