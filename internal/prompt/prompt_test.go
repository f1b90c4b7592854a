package prompt

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/smu"
)

func request(attempt int) smu.Request {
	return smu.Request{
		Message:    "How many measurements?",
		Constraint: smu.NumericRange{Min: 0, Max: 2500, Integer: true},
		Attempt:    attempt,
	}
}

func TestNone(t *testing.T) {
	if _, ok := (None{}).Prompt(context.Background(), request(1)); ok {
		t.Errorf("None returned a value")
	}
}

func TestTerminalReadsLines(t *testing.T) {
	var out strings.Builder
	term := NewTerminal(strings.NewReader("  42 \n\n"), &out)
	ctx := context.Background()

	got, ok := term.Prompt(ctx, request(1))
	if !ok || got != "42" {
		t.Errorf("first answer = %q, %t", got, ok)
	}
	if _, ok := term.Prompt(ctx, request(2)); ok {
		t.Errorf("empty line should mean no value")
	}
	if _, ok := term.Prompt(ctx, request(3)); ok {
		t.Errorf("end of input should mean no value")
	}
	text := out.String()
	if !strings.Contains(text, "How many measurements?") {
		t.Errorf("question not shown: %q", text)
	}
	if !strings.Contains(text, "attempt 2") {
		t.Errorf("retry not shown: %q", text)
	}
}

func TestTerminalCancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	term := NewTerminal(r, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, ok := term.Prompt(ctx, request(1)); ok {
		t.Errorf("cancelled prompt returned a value")
	}
}

func TestTerminalCloseReleasesReader(t *testing.T) {
	r, w := io.Pipe()
	term := NewTerminal(r, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, ok := term.Prompt(ctx, request(1)); ok {
		t.Fatalf("cancelled prompt returned a value")
	}
	if err := term.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Lines nobody asked for must not keep the reader alive after Close.
	go func() {
		_, _ = io.WriteString(w, "1\n2\n3\n")
		_ = w.Close()
	}()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-term.lines:
			if !ok {
				if _, ok := term.Prompt(context.Background(), request(2)); ok {
					t.Errorf("prompt after Close returned a value")
				}
				return
			}
		case <-deadline:
			t.Fatalf("reader goroutine still running after Close")
		}
	}
}

func TestTerminalCloseIsIdempotent(t *testing.T) {
	term := NewTerminal(strings.NewReader("5\n"), io.Discard)
	for i := 0; i < 2; i++ {
		if err := term.Close(); err != nil {
			t.Fatalf("Close %d failed: %v", i, err)
		}
	}
	if _, ok := term.Prompt(context.Background(), request(1)); ok {
		t.Errorf("closed terminal returned a value")
	}
}

func TestTerminalDrivesSetter(t *testing.T) {
	term := NewTerminal(strings.NewReader("9000\n12\n"), io.Discard)
	v := smu.Validator{Prompter: term, MaxAttempts: 3, Logger: log.New(io.Discard)}
	in, err := v.Resolve(context.Background(), smu.FieldPointCount, "How many measurements?",
		smu.NumericRange{Min: 0, Max: 2500, Integer: true}, smu.Input{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if in.Num != 12 {
		t.Errorf("resolved %v, want 12", in.Num)
	}
}
