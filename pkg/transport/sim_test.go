package transport

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSimEchoesSettings(t *testing.T) {
	sim := NewSim()
	ctx := context.Background()

	if err := sim.Write(ctx, ":SOUR:FUNC:MODE VOLT; :SENS:CURR:PROT 0.01"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := sim.Query(ctx, "SOUR:FUNC:MODE?")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if got != "VOLT" {
		t.Errorf("SOUR:FUNC:MODE? = %q, want VOLT", got)
	}
	got, _ = sim.Query(ctx, "sens:curr:prot?")
	if got != "0.01" {
		t.Errorf("SENS:CURR:PROT? = %q, want 0.01", got)
	}
	got, _ = sim.Query(ctx, "SYST:ERR?")
	if got != "0" {
		t.Errorf("unknown query = %q, want 0", got)
	}
	if !sim.Sent("SOUR:FUNC:MODE VOLT") {
		t.Errorf("expected unit to be recorded, have %v", sim.Units())
	}
}

func TestSimDefaultsAndReplies(t *testing.T) {
	sim := NewSim()
	ctx := context.Background()

	if got, _ := sim.Query(ctx, "*IDN?"); got != SimIdentity {
		t.Errorf("*IDN? = %q", got)
	}
	if got, _ := sim.Query(ctx, "OUTP ON; INIT:IMM; *OPC?"); got != "1" {
		t.Errorf("*OPC? = %q", got)
	}
	if !sim.Sent("OUTP ON") || !sim.Sent("INIT:IMM") {
		t.Errorf("compound query units not recorded: %v", sim.Units())
	}

	sim.Replies["TRAC:POIN:ACT"] = "12"
	if got, _ := sim.Query(ctx, "TRAC:POIN:ACT?"); got != "12" {
		t.Errorf("TRAC:POIN:ACT? = %q", got)
	}
}

func TestSimTraceData(t *testing.T) {
	sim := NewSim()
	ctx := context.Background()

	_ = sim.Write(ctx, "TRIG:COUN 4; FORM:ELEM VOLT,CURR")
	got, err := sim.Query(ctx, "TRAC:DATA?")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if n := len(strings.Split(got, ",")); n != 8 {
		t.Errorf("TRAC:DATA? returned %d values, want 8", n)
	}

	_ = sim.Write(ctx, "TRAC:CLE")
	if got, _ := sim.Query(ctx, "TRAC:POIN:ACT?"); got != "0" {
		t.Errorf("TRAC:POIN:ACT? after clear = %q", got)
	}
}

func TestSimHookAndFailures(t *testing.T) {
	sim := NewSim()
	ctx := context.Background()
	boom := errors.New("boom")

	sim.OnQuery = func(_ context.Context, header, _ string) (string, bool, error) {
		if header == "MEAS:VOLT" {
			return "1.5", true, nil
		}
		return "", false, nil
	}
	if got, _ := sim.Query(ctx, "MEAS:VOLT?"); got != "1.5" {
		t.Errorf("hooked query = %q", got)
	}

	sim.Fail["OUTP"] = boom
	err := sim.Write(ctx, "OUTP ON")
	var terr *Error
	if !errors.As(err, &terr) || !errors.Is(err, boom) {
		t.Fatalf("expected *Error wrapping boom, got %v", err)
	}
	if terr.Op != "write" || terr.Cmd != "OUTP ON" {
		t.Errorf("unexpected error fields: %+v", terr)
	}
}

func TestSimClosed(t *testing.T) {
	sim := NewSim()
	_ = sim.Close()
	if err := sim.Write(context.Background(), "*CLS"); !errors.Is(err, ErrClosed) {
		t.Errorf("Write after Close = %v, want ErrClosed", err)
	}
	if _, err := sim.Query(context.Background(), "*IDN?"); !errors.Is(err, ErrClosed) {
		t.Errorf("Query after Close = %v, want ErrClosed", err)
	}
}

func TestSimCancelledContext(t *testing.T) {
	sim := NewSim()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sim.Query(ctx, "*IDN?"); !errors.Is(err, context.Canceled) {
		t.Errorf("Query with cancelled ctx = %v", err)
	}
	if len(sim.Units()) != 0 {
		t.Errorf("cancelled query should not be recorded")
	}
}
