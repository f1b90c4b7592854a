/*
Package scpi handles the text side of the instrument protocol.

Commands are built from message units. Join turns units into one compound
message, rooting every unit after the first with ':' so each is read from
the top of the command tree:

	scpi.Join("OUTP OFF", "ABOR", "*CLS") // "OUTP OFF; :ABOR; *CLS"

Split reverses Join and Header/Argument/IsQuery take a unit apart.

Replies are parsed with a small participle grammar covering numbers,
mnemonics, quoted strings, comma lists and ';' separated units:

	reply, err := scpi.Parse(`"VOLT:DC","CURR:DC"`)
	words := reply.Words() // [VOLT:DC CURR:DC]
*/
package scpi
