package smu

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/match"
	"github.com/OpenTraceLab/OpenTraceSMU/pkg/scpi"
)

// InputKind tags the payload of an Input.
type InputKind uint8

const (
	InputNone InputKind = iota
	InputNumber
	InputWord
	InputList
)

// Input is a candidate value for a setter before validation.
type Input struct {
	Kind InputKind
	Num  float64
	Word string
	List []float64
}

// NumberInput wraps a number.
func NumberInput(v float64) Input { return Input{Kind: InputNumber, Num: v} }

// WordInput wraps a word.
func WordInput(s string) Input { return Input{Kind: InputWord, Word: s} }

// ListInput wraps a list of numbers.
func ListInput(v ...float64) Input { return Input{Kind: InputList, List: v} }

// Present reports whether in carries a candidate.
func (in Input) Present() bool { return in.Kind != InputNone }

func optionalWord(s string) Input {
	if strings.TrimSpace(s) == "" {
		return Input{}
	}
	return WordInput(strings.TrimSpace(s))
}

func (in Input) String() string {
	switch in.Kind {
	case InputNumber:
		return scpi.FormatFloat(in.Num)
	case InputWord:
		return in.Word
	case InputList:
		parts := make([]string, len(in.List))
		for i, v := range in.List {
			parts[i] = scpi.FormatFloat(v)
		}
		return strings.Join(parts, ", ")
	}
	return "<none>"
}

// Constraint is one of NumericRange, Choice or FreeformList.
type Constraint interface {
	// validate checks the constraint itself.
	validate() error
	// check tests a candidate against the constraint.
	check(in Input) error
	// parse converts prompt text into a candidate.
	parse(text string) (Input, error)
	// Describe is a short human readable form used in prompts.
	Describe() string
}

// NumericRange accepts numbers in [Min, Max] (or (Min, Max] with
// ExclusiveMin), optionally integers only, optionally the Auto sentinel.
type NumericRange struct {
	Min, Max     float64
	ExclusiveMin bool
	Integer      bool
	AllowAuto    bool
	Unit         string
}

func (r NumericRange) validate() error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) {
		return fmt.Errorf("bound is NaN")
	}
	if r.Min > r.Max || (r.ExclusiveMin && r.Min == r.Max) {
		return fmt.Errorf("empty range: min %s > max %s", scpi.FormatFloat(r.Min), scpi.FormatFloat(r.Max))
	}
	return nil
}

func (r NumericRange) check(in Input) error {
	switch in.Kind {
	case InputWord:
		if r.AllowAuto && match.Match("auto*", in.Word) {
			return nil
		}
		return fmt.Errorf("%q is not a number", in.Word)
	case InputNumber:
	default:
		return fmt.Errorf("expected a number")
	}
	v := in.Num
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%v is not finite", v)
	}
	if r.Integer && v != math.Trunc(v) {
		return fmt.Errorf("%s is not an integer", scpi.FormatFloat(v))
	}
	if v < r.Min || (r.ExclusiveMin && v == r.Min) || v > r.Max {
		return fmt.Errorf("%s outside %s", scpi.FormatFloat(v), r.Describe())
	}
	return nil
}

func (r NumericRange) parse(text string) (Input, error) {
	text = strings.TrimSpace(text)
	if r.AllowAuto && match.Match("auto*", text) {
		return WordInput("AUTO"), nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Input{}, fmt.Errorf("%q is not a number", text)
	}
	return NumberInput(v), nil
}

func (r NumericRange) Describe() string {
	open := "["
	if r.ExclusiveMin {
		open = "("
	}
	s := fmt.Sprintf("%s%s, %s]", open, scpi.FormatFloat(r.Min), scpi.FormatFloat(r.Max))
	if r.Unit != "" {
		s += " " + r.Unit
	}
	if r.Integer {
		s += " integer"
	}
	if r.AllowAuto {
		s += " or auto"
	}
	return s
}

// Choice accepts a word matching one of Options (wildcard patterns).
type Choice struct {
	Options []string
}

func (c Choice) validate() error {
	if len(c.Options) == 0 {
		return fmt.Errorf("empty choice set")
	}
	return nil
}

func (c Choice) check(in Input) error {
	if in.Kind != InputWord {
		return fmt.Errorf("expected one of %s", c.Describe())
	}
	if !match.Includes(&in.Word, c.Options...) {
		return fmt.Errorf("%q is not one of %s", in.Word, c.Describe())
	}
	return nil
}

func (c Choice) parse(text string) (Input, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Input{}, fmt.Errorf("empty answer")
	}
	return WordInput(text), nil
}

func (c Choice) Describe() string {
	return "{" + strings.Join(c.Options, ", ") + "}"
}

// FreeformList accepts between MinLen and MaxLen numbers, each in
// [Min, Max].
type FreeformList struct {
	MinLen, MaxLen int
	Min, Max       float64
}

func (l FreeformList) validate() error {
	if l.MinLen < 0 || l.MinLen > l.MaxLen {
		return fmt.Errorf("invalid length bounds %d..%d", l.MinLen, l.MaxLen)
	}
	if l.Min > l.Max {
		return fmt.Errorf("empty range: min %s > max %s", scpi.FormatFloat(l.Min), scpi.FormatFloat(l.Max))
	}
	return nil
}

func (l FreeformList) check(in Input) error {
	if in.Kind != InputList {
		return fmt.Errorf("expected a list of numbers")
	}
	if n := len(in.List); n < l.MinLen || n > l.MaxLen {
		return fmt.Errorf("list has %d entries, want %d..%d", n, l.MinLen, l.MaxLen)
	}
	for i, v := range in.List {
		if math.IsNaN(v) || v < l.Min || v > l.Max {
			return fmt.Errorf("entry %d (%s) outside [%s, %s]", i, scpi.FormatFloat(v), scpi.FormatFloat(l.Min), scpi.FormatFloat(l.Max))
		}
	}
	return nil
}

func (l FreeformList) parse(text string) (Input, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '[' || r == ']'
	})
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Input{}, fmt.Errorf("%q is not a number", f)
		}
		out = append(out, v)
	}
	return ListInput(out...), nil
}

func (l FreeformList) Describe() string {
	return fmt.Sprintf("%d..%d values in [%s, %s]", l.MinLen, l.MaxLen, scpi.FormatFloat(l.Min), scpi.FormatFloat(l.Max))
}
