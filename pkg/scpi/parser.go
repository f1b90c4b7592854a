package scpi

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/alecthomas/participle/v2"
)

// Parser turns raw response strings into Reply values.
type Parser struct {
	parser *participle.Parser[Reply]
}

// NewParser builds a reply parser.
func NewParser() (*Parser, error) {
	parser, err := participle.Build[Reply](
		participle.Lexer(ReplyLexer),
		participle.Elide("Whitespace"),
	)
	if err != nil {
		return nil, fmt.Errorf("scpi: failed to build parser: %w", err)
	}
	return &Parser{parser: parser}, nil
}

// ParseString parses a raw reply.
func (p *Parser) ParseString(input string) (*Reply, error) {
	reply, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("scpi: parse reply %q: %w", input, err)
	}
	return reply, nil
}

var (
	defaultOnce   sync.Once
	defaultParser *Parser
	defaultErr    error
)

// Parse parses a reply with a shared parser instance.
func Parse(input string) (*Reply, error) {
	defaultOnce.Do(func() {
		defaultParser, defaultErr = NewParser()
	})
	if defaultErr != nil {
		return nil, defaultErr
	}
	return defaultParser.ParseString(input)
}

// Elements flattens all units into one element list.
func (r *Reply) Elements() []*Element {
	if r == nil {
		return nil
	}
	var out []*Element
	for _, u := range r.Units {
		out = append(out, u.Elements...)
	}
	return out
}

// Empty reports whether the reply carried no data.
func (r *Reply) Empty() bool {
	return len(r.Elements()) == 0
}

// First returns the first element, or nil for an empty reply.
func (r *Reply) First() *Element {
	elems := r.Elements()
	if len(elems) == 0 {
		return nil
	}
	return elems[0]
}

// Float returns the first element as a number.
func (r *Reply) Float() (float64, error) {
	e := r.First()
	if e == nil || e.Number == nil {
		return 0, fmt.Errorf("scpi: reply is not numeric")
	}
	return *e.Number, nil
}

// Int returns the first element as an integer.
func (r *Reply) Int() (int, error) {
	f, err := r.Float()
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("scpi: reply %v is not an integer", f)
	}
	return int(f), nil
}

// Bool interprets the first element as a boolean (1/0, ON/OFF).
func (r *Reply) Bool() (bool, error) {
	e := r.First()
	if e == nil {
		return false, fmt.Errorf("scpi: empty reply")
	}
	if e.Number != nil {
		return *e.Number != 0, nil
	}
	switch strings.ToUpper(e.Text()) {
	case "ON", "TRUE":
		return true, nil
	case "OFF", "FALSE":
		return false, nil
	}
	return false, fmt.Errorf("scpi: reply %q is not boolean", e.Text())
}

// Word returns the first element's text in upper case.
func (r *Reply) Word() (string, error) {
	e := r.First()
	if e == nil {
		return "", fmt.Errorf("scpi: empty reply")
	}
	return strings.ToUpper(e.Text()), nil
}

// Words returns every element's text in upper case.
func (r *Reply) Words() []string {
	elems := r.Elements()
	out := make([]string, len(elems))
	for i, e := range elems {
		out[i] = strings.ToUpper(e.Text())
	}
	return out
}

// Floats returns every element as a number.
func (r *Reply) Floats() ([]float64, error) {
	elems := r.Elements()
	out := make([]float64, len(elems))
	for i, e := range elems {
		if e.Number == nil {
			return nil, fmt.Errorf("scpi: element %d (%q) is not numeric", i, e.Text())
		}
		out[i] = *e.Number
	}
	return out, nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
