package smu

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/transport"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// newConnected returns a controller connected to a fresh simulator with the
// connect traffic already cleared from the log.
func newConnected(t *testing.T, opts ...Option) (*Controller, *transport.Sim) {
	t.Helper()
	c := New(append([]Option{WithLogger(quietLogger())}, opts...)...)
	sim := transport.NewSim()
	if err := c.Connect(context.Background(), sim); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	sim.ResetLog()
	return c, sim
}

// scriptedPrompter answers from a fixed list and counts calls.
type scriptedPrompter struct {
	answers []string
	calls   int
}

func (p *scriptedPrompter) Prompt(_ context.Context, _ Request) (string, bool) {
	p.calls++
	if len(p.answers) == 0 {
		return "", false
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, true
}

func mustNotConfigured(t *testing.T, err error) {
	t.Helper()
	if !IsNotConfigured(err) {
		t.Fatalf("expected not configured, got %v", err)
	}
}

func newSim() *transport.Sim {
	return transport.NewSim()
}
