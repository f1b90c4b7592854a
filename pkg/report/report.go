// Package report persists a measurement run as a header line followed by the
// reshaped body.
package report

import (
	"strings"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/match"
)

// Delimiters accepted for the report body.
const (
	Tab   = "\t"
	Comma = ", "
)

var labels = []struct {
	pattern string
	label   string
}{
	{"VOLT*", "Voltage (V)"},
	{"CURR*", "Current (A)"},
	{"RES*", "Resistance (ohms)"},
	{"TIME*", "Time (s)"},
	{"STAT*", "Status"},
}

// Label returns the column heading for a FORM:ELEM element name, or the
// element itself when it is not recognised.
func Label(element string) string {
	element = strings.TrimSpace(element)
	for _, l := range labels {
		if match.Match(l.pattern, element) {
			return l.label
		}
	}
	return element
}

// Header joins the labels of elements with delim.
func Header(elements []string, delim string) string {
	out := make([]string, len(elements))
	for i, e := range elements {
		out[i] = Label(e)
	}
	return strings.Join(out, delim)
}

// Delimiter maps a configured name ("tab", "comma") to its separator.
func Delimiter(name string) string {
	if match.Any(name, "comma", "csv", ",") {
		return Comma
	}
	return Tab
}

// Document renders header and body the way a Sink stores them.
func Document(header, body string) []byte {
	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')
	if body != "" {
		b.WriteString(body)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
