package scpi

import (
	"strconv"
	"strings"
)

// Join concatenates program message units into one command string. Every
// unit after the first is rooted with a leading colon so that header paths
// do not inherit the previous unit's subsystem.
func Join(units ...string) string {
	var b strings.Builder
	for _, u := range units {
		u = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(u), ";"))
		if u == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("; ")
			if !strings.HasPrefix(u, ":") && !strings.HasPrefix(u, "*") {
				b.WriteByte(':')
			}
		}
		b.WriteString(u)
	}
	return b.String()
}

// Split breaks a command string into its message units with leading colons
// and surrounding whitespace removed. Semicolons inside quotes are kept.
func Split(cmd string) []string {
	var (
		units []string
		cur   strings.Builder
		quote rune
	)
	flush := func() {
		u := strings.TrimSpace(cur.String())
		u = strings.TrimPrefix(u, ":")
		if u != "" {
			units = append(units, u)
		}
		cur.Reset()
	}
	for _, r := range cmd {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == ';':
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	flush()
	return units
}

// Header returns the header of a message unit, upper-cased and without the
// query mark, e.g. "SOUR:VOLT:RANG 2" and "sour:volt:rang?" both give
// "SOUR:VOLT:RANG".
func Header(unit string) string {
	unit = strings.TrimPrefix(strings.TrimSpace(unit), ":")
	if i := strings.IndexAny(unit, " \t"); i >= 0 {
		unit = unit[:i]
	}
	return strings.ToUpper(strings.TrimSuffix(unit, "?"))
}

// Argument returns everything after the header of a message unit.
func Argument(unit string) string {
	unit = strings.TrimSpace(unit)
	if i := strings.IndexAny(unit, " \t"); i >= 0 {
		return strings.TrimSpace(unit[i+1:])
	}
	return ""
}

// IsQuery reports whether a message unit is a query.
func IsQuery(unit string) bool {
	unit = strings.TrimSpace(unit)
	if i := strings.IndexAny(unit, " \t"); i >= 0 {
		unit = unit[:i]
	}
	return strings.HasSuffix(unit, "?")
}

// FormatFloat renders a value the way commands expect it.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// OnOff renders a boolean as ON or OFF.
func OnOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
