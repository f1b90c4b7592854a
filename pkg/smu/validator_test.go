package smu

import (
	"context"
	"errors"
	"testing"
)

func newValidator(p Prompter) *Validator {
	return &Validator{Prompter: p, MaxAttempts: 3, Logger: quietLogger()}
}

func TestResolveAcceptsValidCandidate(t *testing.T) {
	p := &scriptedPrompter{}
	v := newValidator(p)
	got, err := v.Resolve(context.Background(), FieldCompliance, "", NumericRange{Min: 1e-9, Max: 1.05}, NumberInput(0.03))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got.Num != 0.03 || p.calls != 0 {
		t.Errorf("got %v after %d prompts", got, p.calls)
	}
}

func TestResolvePromptsForReplacement(t *testing.T) {
	p := &scriptedPrompter{answers: []string{"banana", "5", "0.5"}}
	v := newValidator(p)
	got, err := v.Resolve(context.Background(), FieldCompliance, "", NumericRange{Min: 1e-9, Max: 1.05}, NumberInput(2))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got.Num != 0.5 {
		t.Errorf("got %v, want 0.5", got)
	}
	if p.calls != 3 {
		t.Errorf("prompted %d times, want 3", p.calls)
	}
}

func TestResolveGivesUp(t *testing.T) {
	p := &scriptedPrompter{answers: []string{"9", "9", "9", "0.1"}}
	v := newValidator(p)
	_, err := v.Resolve(context.Background(), FieldMeasurementSpeed, "", NumericRange{Min: 0.01, Max: 1}, Input{})
	mustNotConfigured(t, err)
	if p.calls != 3 {
		t.Errorf("prompted %d times, want 3", p.calls)
	}
	var nc *NotConfiguredError
	if !errors.As(err, &nc) || nc.Field != FieldMeasurementSpeed {
		t.Errorf("unexpected error %v", err)
	}
}

func TestResolveNoValueStopsImmediately(t *testing.T) {
	p := &scriptedPrompter{}
	v := newValidator(p)
	_, err := v.Resolve(context.Background(), FieldOutputChannel, "", Choice{Options: []string{"volt*"}}, Input{})
	mustNotConfigured(t, err)
	if p.calls != 1 {
		t.Errorf("prompted %d times, want 1", p.calls)
	}
}

func TestResolveWithoutPrompter(t *testing.T) {
	v := newValidator(nil)
	_, err := v.Resolve(context.Background(), FieldOutputChannel, "", Choice{Options: []string{"volt*", "cur*"}}, WordInput("ohms"))
	mustNotConfigured(t, err)
}

func TestResolveMalformedConstraintIsFatal(t *testing.T) {
	tests := []struct {
		name string
		con  Constraint
	}{
		{"min above max", NumericRange{Min: 2, Max: 1}},
		{"empty exclusive range", NumericRange{Min: 1, Max: 1, ExclusiveMin: true}},
		{"empty choices", Choice{}},
		{"bad list lengths", FreeformList{MinLen: 3, MaxLen: 1, Max: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &scriptedPrompter{answers: []string{"1"}}
			_, err := newValidator(p).Resolve(context.Background(), FieldDelay, "", tt.con, NumberInput(1))
			var pe *PreconditionError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *PreconditionError, got %v", err)
			}
			if IsNotConfigured(err) {
				t.Errorf("precondition error must not read as not configured")
			}
			if p.calls != 0 {
				t.Errorf("prompted on a malformed constraint")
			}
		})
	}
}

func TestConstraintChecks(t *testing.T) {
	tests := []struct {
		name string
		con  Constraint
		in   Input
		ok   bool
	}{
		{"in range", NumericRange{Min: 0, Max: 1}, NumberInput(1), true},
		{"exclusive min", NumericRange{Min: 0, Max: 1, ExclusiveMin: true}, NumberInput(0), false},
		{"auto allowed", NumericRange{Max: 1, AllowAuto: true}, WordInput("Auto"), true},
		{"auto refused", NumericRange{Max: 1}, WordInput("auto"), false},
		{"integer", NumericRange{Max: 2500, Integer: true}, NumberInput(2.5), false},
		{"choice wildcard", Choice{Options: []string{"volt*"}}, WordInput("VOLTS"), true},
		{"choice miss", Choice{Options: []string{"volt*"}}, WordInput("amps"), false},
		{"list ok", FreeformList{MinLen: 1, MaxLen: 3, Min: -1, Max: 1}, ListInput(0.1, 0.2), true},
		{"list too long", FreeformList{MinLen: 1, MaxLen: 1, Min: -1, Max: 1}, ListInput(0.1, 0.2), false},
		{"list entry out of range", FreeformList{MinLen: 1, MaxLen: 3, Min: -1, Max: 1}, ListInput(2), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.con.check(tt.in)
			if (err == nil) != tt.ok {
				t.Errorf("check(%v) = %v, want ok=%v", tt.in, err, tt.ok)
			}
		})
	}
}

func TestFreeformListParse(t *testing.T) {
	in, err := FreeformList{}.parse("[0.1, 0.2 0.3]")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(in.List) != 3 || in.List[2] != 0.3 {
		t.Errorf("parse = %v", in.List)
	}
}
