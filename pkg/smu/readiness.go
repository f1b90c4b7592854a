package smu

import (
	"fmt"
	"strings"
)

// Readiness itemizes the run gate.
type Readiness struct {
	Output      bool
	Measurement bool
	Buffer      bool
	Session     bool
}

// Ready reports whether every category holds.
func (r Readiness) Ready() bool {
	return r.Output && r.Measurement && r.Buffer && r.Session
}

func (r Readiness) String() string {
	return fmt.Sprintf("output ok = %t\nmeasure ok = %t\nbuffer ok = %t\nconnection ok = %t",
		r.Output, r.Measurement, r.Buffer, r.Session)
}

// Failed lists the categories that do not hold.
func (r Readiness) Failed() string {
	var failed []string
	if !r.Output {
		failed = append(failed, "output")
	}
	if !r.Measurement {
		failed = append(failed, "measurement")
	}
	if !r.Buffer {
		failed = append(failed, "buffer")
	}
	if !r.Session {
		failed = append(failed, "connection")
	}
	if len(failed) == 0 {
		return "none"
	}
	return strings.Join(failed, ", ")
}

func has(m map[Channel]Value, ch Channel) bool {
	v, ok := m[ch]
	return ok && v.IsSet()
}

// CheckReadiness evaluates s, with connected standing for session presence.
func CheckReadiness(s Store, connected bool) Readiness {
	out := s.OutputChannel
	meas := s.MeasurementChannel
	return Readiness{
		Output: (out == Voltage || out == Current) &&
			has(s.OutputValue, out) && has(s.OutputRange, out) && has(s.Compliance, out),
		Measurement: meas != Unset &&
			has(s.MeasurementRange, meas) && has(s.MeasurementSpeed, meas) &&
			(meas != Resistance || s.SenseMode != SenseUnset),
		Buffer:  s.PointCount != nil,
		Session: connected,
	}
}

// Readiness evaluates the run gate for the controller.
func (c *Controller) Readiness() Readiness {
	return CheckReadiness(c.store, c.session != nil)
}
