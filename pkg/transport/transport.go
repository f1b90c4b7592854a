// Package transport moves SCPI command strings to and from an instrument.
package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Transport is a line-oriented SCPI connection.
type Transport interface {
	// Write sends a command that produces no reply.
	Write(ctx context.Context, cmd string) error
	// Query sends a command and returns the instrument's reply with the
	// terminator removed.
	Query(ctx context.Context, q string) (string, error)
	// Clear issues a device clear, discarding pending input and output.
	Clear() error
	Close() error
}

// ErrNotImplemented lets backends signal that a requested capability is not
// available on the link.
var ErrNotImplemented = errors.New("transport: not implemented")

// ErrClosed is returned for operations on a closed transport.
var ErrClosed = errors.New("transport: closed")

// Error wraps a failure reported by the link layer with the command that
// triggered it.
type Error struct {
	Op  string // "write", "query", "clear", "open"
	Cmd string
	Err error
}

func (e *Error) Error() string {
	if e.Cmd == "" {
		return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transport: %s %q: %v", e.Op, e.Cmd, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Kind selects a backend.
type Kind string

const (
	KindSim      Kind = "sim"
	KindUSBTMC   Kind = "usbtmc"
	KindPrologix Kind = "prologix"
	KindSocket   Kind = "socket"
)

// DefaultTimeout bounds a single exchange when Spec.Timeout is zero.
const DefaultTimeout = 5 * time.Second

// Spec describes how to reach an instrument.
type Spec struct {
	Kind    Kind
	Address string        // "host:5025", "/dev/ttyUSB0", "05e6:2400"
	GPIB    int           // primary GPIB address for prologix
	Timeout time.Duration // per exchange; zero means DefaultTimeout
}

func (s Spec) timeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultTimeout
	}
	return s.Timeout
}

// Open connects using the backend named by spec.Kind.
func Open(ctx context.Context, spec Spec) (Transport, error) {
	switch Kind(strings.ToLower(string(spec.Kind))) {
	case KindSim, "":
		return NewSim(), nil
	case KindUSBTMC:
		vid, pid, err := ParseVIDPID(spec.Address)
		if err != nil {
			return nil, &Error{Op: "open", Err: err}
		}
		return NewUSBTMC(vid, pid, spec.timeout())
	case KindPrologix:
		return NewPrologix(spec.Address, spec.GPIB)
	case KindSocket:
		return DialSocket(ctx, spec.Address, spec.timeout())
	default:
		return nil, &Error{Op: "open", Err: fmt.Errorf("unknown transport kind %q", spec.Kind)}
	}
}

func trimReply(s string) string {
	return strings.TrimRight(s, "\r\n")
}

type unboundedKey struct{}

// Unbounded marks ctx so that backends skip their default timeout. The
// exchange then ends only when the instrument answers or ctx is done.
func Unbounded(ctx context.Context) context.Context {
	return context.WithValue(ctx, unboundedKey{}, true)
}

func isUnbounded(ctx context.Context) bool {
	v, _ := ctx.Value(unboundedKey{}).(bool)
	return v
}
