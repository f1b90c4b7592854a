// Package idn decodes IEEE 488.2 *IDN? replies and maps them to the known
// SourceMeter models and their source limits.
package idn

// Identity represents a parsed IEEE 488.2 *IDN? response
type Identity struct {
	Raw          string // full response
	Manufacturer string // "KEITHLEY INSTRUMENTS INC."
	Model        string // "MODEL 2400"
	Serial       string // "1234567"
	Firmware     string // "C30   Mar 17 2006 09:29:29/A02  /K/J"
}

// Model describes a known source-measure unit
type Model struct {
	Number      string // "2400"
	Description string
	MaxVoltage  float64 // volts
	MaxCurrent  float64 // amps
}
