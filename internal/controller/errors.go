package controller

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	// FatalInit means no session could be established, nothing was changed on the BMC
	FatalInit ErrorKind = iota
	// RecoverableSample is a failure reading sensors, the cycle is retried
	RecoverableSample
	// RecoverableActuate is a failure sending a fan command, the loop continues
	RecoverableActuate
	// Unexpected terminates the loop
	Unexpected
)

func (k ErrorKind) String() string {
	switch k {
	case FatalInit:
		return "fatal init"
	case RecoverableSample:
		return "recoverable sample"
	case RecoverableActuate:
		return "recoverable actuate"
	default:
		return "unexpected"
	}
}

type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var controllerErr *Error
	if errors.As(err, &controllerErr) {
		return controllerErr.Kind == kind
	}
	return false
}
