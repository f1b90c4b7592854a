package smu

import (
	"context"

	"github.com/charmbracelet/log"
)

// DefaultMaxAttempts bounds how often a field is prompted for.
const DefaultMaxAttempts = 3

// Request describes the value a Prompter is asked for.
type Request struct {
	Field      Field
	Message    string
	Constraint Constraint
	Attempt    int
}

// Prompter supplies a replacement value for a field. Returning ok=false
// means no value is available.
type Prompter interface {
	Prompt(ctx context.Context, req Request) (answer string, ok bool)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, req Request) (string, bool)

func (f PrompterFunc) Prompt(ctx context.Context, req Request) (string, bool) {
	return f(ctx, req)
}

// Validator checks candidates against constraints and asks the Prompter
// for replacements.
type Validator struct {
	Prompter    Prompter
	MaxAttempts int
	Logger      *log.Logger
}

// Resolve returns a candidate that satisfies c. A malformed constraint is a
// *PreconditionError. When no conforming value is available it returns a
// *NotConfiguredError.
func (v *Validator) Resolve(ctx context.Context, f Field, message string, c Constraint, in Input) (Input, error) {
	if err := c.validate(); err != nil {
		return Input{}, &PreconditionError{Field: f, Reason: err.Error()}
	}
	reason := "no value given"
	if in.Present() {
		err := c.check(in)
		if err == nil {
			return in, nil
		}
		reason = err.Error()
		v.logger().Warn("invalid value", "field", f, "value", in, "err", err)
	}

	limit := v.MaxAttempts
	if limit <= 0 {
		limit = DefaultMaxAttempts
	}
	for attempt := 1; v.Prompter != nil && attempt <= limit; attempt++ {
		if err := ctx.Err(); err != nil {
			return Input{}, notConfigured(f, "cancelled", err)
		}
		answer, ok := v.Prompter.Prompt(ctx, Request{Field: f, Message: message, Constraint: c, Attempt: attempt})
		if !ok {
			reason = "no value given"
			break
		}
		cand, err := c.parse(answer)
		if err == nil {
			err = c.check(cand)
		}
		if err == nil {
			return cand, nil
		}
		reason = err.Error()
		v.logger().Warn("invalid value", "field", f, "value", answer, "attempt", attempt, "err", err)
	}
	return Input{}, notConfigured(f, reason, nil)
}

func (v *Validator) logger() *log.Logger {
	if v.Logger == nil {
		return log.Default()
	}
	return v.Logger
}
