package scpi

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// ReplyLexer tokenizes instrument responses. Replies are comma separated
// lists of numbers, mnemonics ("VOLT", "ON", "CURR:DC") and quoted strings.
var ReplyLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},

	// Double quotes are escaped by doubling them, single quotes likewise.
	{Name: "String", Pattern: `"(?:[^"]|"")*"|'(?:[^']|'')*'`},

	// NR1/NR2/NR3 numeric forms, e.g. 12, -0.5, +1.000000E-03.
	{Name: "Number", Pattern: `[-+]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][-+]?[0-9]+)?`},

	{Name: "Word", Pattern: `[A-Za-z_*][A-Za-z0-9_:*]*`},

	{Name: "Comma", Pattern: `,`},
	{Name: "Semicolon", Pattern: `;`},
})
