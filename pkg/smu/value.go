package smu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/match"
	"github.com/OpenTraceLab/OpenTraceSMU/pkg/scpi"
)

// Value is an optional numeric setting that may also be the "Auto"
// sentinel. The zero Value is unset.
type Value struct {
	Auto bool
	Num  float64
	set  bool
}

// Auto returns the Auto sentinel.
func Auto() Value { return Value{Auto: true, set: true} }

// Num returns a numeric value.
func Num(v float64) Value { return Value{Num: v, set: true} }

// IsSet reports whether v holds a number or Auto.
func (v Value) IsSet() bool { return v.set }

func (v Value) String() string {
	switch {
	case !v.set:
		return "unset"
	case v.Auto:
		return "AUTO"
	default:
		return scpi.FormatFloat(v.Num)
	}
}

// UnmarshalText accepts a number or any spelling matching "auto*".
func (v *Value) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*v = Value{}
		return nil
	}
	if match.Match("auto*", s) {
		*v = Auto()
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("smu: %q is neither a number nor auto", s)
	}
	*v = Num(f)
	return nil
}

// MarshalText renders v the way UnmarshalText reads it.
func (v Value) MarshalText() ([]byte, error) {
	if !v.set {
		return nil, nil
	}
	return []byte(v.String()), nil
}

func (v Value) input() Input {
	switch {
	case !v.set:
		return Input{}
	case v.Auto:
		return WordInput("AUTO")
	default:
		return NumberInput(v.Num)
	}
}

// valueOf converts a resolved numeric-or-auto input back to a Value.
func valueOf(in Input) Value {
	if in.Kind == InputWord {
		return Auto()
	}
	return Num(in.Num)
}
