package scpi

import "strings"

// Reply is a parsed response message: one or more response units separated
// by semicolons, each unit a comma separated element list.
type Reply struct {
	Units []*Unit `parser:"( @@ ( Semicolon @@ )* )?"`
}

// Unit is the response to a single query.
type Unit struct {
	Elements []*Element `parser:"@@ ( Comma @@ )*"`
}

// Element is one response datum.
type Element struct {
	Number *float64 `parser:"  @Number"`
	String *string  `parser:"| @String"`
	Word   *string  `parser:"| @Word"`
}

// Text returns the element as the instrument printed it, without quotes.
func (e *Element) Text() string {
	switch {
	case e == nil:
		return ""
	case e.String != nil:
		return unquote(*e.String)
	case e.Word != nil:
		return *e.Word
	case e.Number != nil:
		return formatNumber(*e.Number)
	}
	return ""
}

// unquote strips the delimiters of a string response and collapses doubled
// quote characters.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	q := s[0]
	if (q != '"' && q != '\'') || s[len(s)-1] != q {
		return s
	}
	inner := s[1 : len(s)-1]
	return strings.ReplaceAll(inner, string([]byte{q, q}), string(q))
}
