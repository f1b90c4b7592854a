package transport

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/scpi"
)

// SimIdentity is the *IDN? reply of a Sim with no override.
const SimIdentity = "SIMULATED,MODEL 2400,0,0"

// QueryHook intercepts a query message unit before the Sim's defaults.
// Returning handled=false falls through to the normal reply logic.
type QueryHook func(ctx context.Context, header, unit string) (reply string, handled bool, err error)

// Sim is an in-memory instrument that records every message unit it
// receives. Queries are answered by the hook, then by Replies, then by
// built-in defaults, then by echoing the argument of the most recent
// setting with the same header. Anything else reads back as "0".
type Sim struct {
	mu       sync.Mutex
	units    []string
	settings map[string]string
	closed   bool
	clears   int

	// Replies maps an upper-case header without '?' to a fixed reply.
	Replies map[string]string
	// Fail maps an upper-case header to an error returned when any unit
	// with that header is sent.
	Fail    map[string]error
	OnQuery QueryHook
}

// NewSim returns an empty simulator.
func NewSim() *Sim {
	return &Sim{
		settings: make(map[string]string),
		Replies:  make(map[string]string),
		Fail:     make(map[string]error),
	}
}

// Write records cmd.
func (s *Sim) Write(ctx context.Context, cmd string) error {
	if err := ctx.Err(); err != nil {
		return &Error{Op: "write", Cmd: cmd, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &Error{Op: "write", Cmd: cmd, Err: ErrClosed}
	}
	for _, u := range scpi.Split(cmd) {
		if err := s.recordLocked(u); err != nil {
			return &Error{Op: "write", Cmd: cmd, Err: err}
		}
	}
	return nil
}

// Query records q and answers every query unit in it, joining replies
// with ';' the way an instrument does for compound queries.
func (s *Sim) Query(ctx context.Context, q string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{Op: "query", Cmd: q, Err: err}
	}
	var replies []string
	for _, u := range scpi.Split(q) {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return "", &Error{Op: "query", Cmd: q, Err: ErrClosed}
		}
		err := s.recordLocked(u)
		hook := s.OnQuery
		s.mu.Unlock()
		if err != nil {
			return "", &Error{Op: "query", Cmd: q, Err: err}
		}
		if !scpi.IsQuery(u) {
			continue
		}
		header := scpi.Header(u)
		if hook != nil {
			r, handled, err := hook(ctx, header, u)
			if err != nil {
				return "", &Error{Op: "query", Cmd: q, Err: err}
			}
			if handled {
				replies = append(replies, r)
				continue
			}
		}
		s.mu.Lock()
		replies = append(replies, s.replyLocked(header))
		s.mu.Unlock()
	}
	return strings.Join(replies, ";"), nil
}

// Clear counts device clears.
func (s *Sim) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &Error{Op: "clear", Err: ErrClosed}
	}
	s.clears++
	return nil
}

// Close marks the simulator closed.
func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Units returns a copy of every message unit received so far.
func (s *Sim) Units() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.units...)
}

// Commands returns the non-query units received so far.
func (s *Sim) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, u := range s.units {
		if !scpi.IsQuery(u) {
			out = append(out, u)
		}
	}
	return out
}

// Sent reports whether a unit equal to unit (case-insensitive) was received.
func (s *Sim) Sent(unit string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.units {
		if strings.EqualFold(u, unit) {
			return true
		}
	}
	return false
}

// Setting returns the last argument written under header.
func (s *Sim) Setting(header string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.settings[strings.ToUpper(header)]
	return v, ok
}

// Clears returns how many device clears were issued.
func (s *Sim) Clears() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears
}

// ResetLog forgets recorded units but keeps settings.
func (s *Sim) ResetLog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units = nil
}

func (s *Sim) recordLocked(unit string) error {
	s.units = append(s.units, unit)
	header := scpi.Header(unit)
	if err, ok := s.Fail[header]; ok && err != nil {
		return err
	}
	switch header {
	case "*RST":
		s.settings = make(map[string]string)
	case "TRAC:CLE":
		s.settings["TRAC:POIN:ACT"] = "0"
	}
	if !scpi.IsQuery(unit) {
		if arg := scpi.Argument(unit); arg != "" {
			s.settings[header] = arg
		}
	}
	return nil
}

func (s *Sim) replyLocked(header string) string {
	if r, ok := s.Replies[header]; ok {
		return r
	}
	switch header {
	case "*IDN":
		return SimIdentity
	case "*OPC":
		return "1"
	case "TRAC:DATA":
		return s.traceLocked()
	}
	if v, ok := s.settings[header]; ok {
		return v
	}
	return "0"
}

// traceLocked fills the buffer with zeros sized by the configured trigger
// count and element list.
func (s *Sim) traceLocked() string {
	points, _ := strconv.Atoi(s.settings["TRIG:COUN"])
	elems := 5
	if v, ok := s.settings["FORM:ELEM"]; ok {
		elems = len(strings.Split(v, ","))
	}
	n := points * elems
	if n <= 0 {
		return ""
	}
	vals := make([]string, n)
	for i := range vals {
		vals[i] = "0"
	}
	return strings.Join(vals, ",")
}
