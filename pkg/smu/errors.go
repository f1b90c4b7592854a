package smu

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured marks a setter that ended without changing the store.
	// It is not fatal; callers may continue with other fields.
	ErrNotConfigured = errors.New("smu: not configured")

	// ErrRunInProgress rejects reconfiguration while a run is active.
	ErrRunInProgress = errors.New("smu: run in progress")

	// ErrAborted is returned by Run when Abort interrupted it.
	ErrAborted = errors.New("smu: run aborted")

	// ErrBufferNotCleared is returned by Run when the trace buffer still
	// holds readings from a previous run.
	ErrBufferNotCleared = errors.New("smu: data points not cleared")

	// ErrNoSession is the reason given when no instrument is connected.
	ErrNoSession = errors.New("smu: no instrument session")
)

// NotConfiguredError explains why a field was left unchanged.
type NotConfiguredError struct {
	Field  Field
	Reason string
	Err    error
}

func (e *NotConfiguredError) Error() string {
	msg := fmt.Sprintf("smu: %s not configured: %s", e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NotConfiguredError) Is(target error) bool { return target == ErrNotConfigured }

func (e *NotConfiguredError) Unwrap() error { return e.Err }

// PreconditionError reports a malformed constraint. It is a programming or
// configuration error and stops bulk operations.
type PreconditionError struct {
	Field  Field
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("smu: precondition failed for %s: %s", e.Field, e.Reason)
}

// ReadinessError is returned by Run when the readiness gate fails.
type ReadinessError struct {
	Readiness Readiness
}

func (e *ReadinessError) Error() string {
	return "smu: not ready to run: " + e.Readiness.Failed()
}

func notConfigured(f Field, reason string, err error) error {
	return &NotConfiguredError{Field: f, Reason: reason, Err: err}
}

// IsNotConfigured reports whether err is the non-fatal "not configured" signal.
func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}
