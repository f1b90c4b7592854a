package smu

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/scpi"
)

// Field names a logical configuration field.
type Field uint8

const (
	FieldSession Field = iota
	FieldOutputChannel
	FieldOutputRange
	FieldOutputAutorange
	FieldOutputValue
	FieldMeasurementChannel
	FieldCompliance
	FieldMeasurementRange
	FieldMeasurementAutorange
	FieldDelay
	FieldSenseMode
	FieldMeasurementSpeed
	FieldPointCount
	FieldSweepOutput
	FieldSweepShape
	FieldSweepRanging
	FieldSweepStart
	FieldSweepStop
	FieldSweepPoints
	FieldSweepList
	FieldFormat
)

var fieldNames = map[Field]string{
	FieldSession:              "session",
	FieldOutputChannel:        "output channel",
	FieldOutputRange:          "output range",
	FieldOutputAutorange:      "output autorange",
	FieldOutputValue:          "output value",
	FieldMeasurementChannel:   "measurement channel",
	FieldCompliance:           "compliance",
	FieldMeasurementRange:     "measurement range",
	FieldMeasurementAutorange: "measurement autorange",
	FieldDelay:                "source delay",
	FieldSenseMode:            "sense mode",
	FieldMeasurementSpeed:     "measurement speed",
	FieldPointCount:           "point count",
	FieldSweepOutput:          "sweep output",
	FieldSweepShape:           "sweep shape",
	FieldSweepRanging:         "sweep ranging",
	FieldSweepStart:           "sweep start",
	FieldSweepStop:            "sweep stop",
	FieldSweepPoints:          "sweep points",
	FieldSweepList:            "sweep list",
	FieldFormat:               "output format",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Field(%d)", f)
}

// Command is a compiled command and the query that confirms it.
type Command struct {
	Field Field
	Cmd   string
	Query string
}

// Placeholders: {CH} output or sweep channel, {M} measured channel,
// {Q} compliance quantity, {V} the value.
type template struct {
	command string
	query   string
}

var templates = map[Field]template{
	FieldOutputChannel:        {"SOUR:FUNC {CH}", "SOUR:FUNC?"},
	FieldOutputRange:          {"SOUR:{CH}:RANG {V}", "SOUR:{CH}:RANG?"},
	FieldOutputAutorange:      {"SOUR:{CH}:RANG:AUTO {V}", "SOUR:{CH}:RANG:AUTO?"},
	FieldOutputValue:          {"SOUR:{CH}:MODE FIX; :SOUR:{CH} {V}", "SOUR:{CH}?"},
	FieldCompliance:           {"SENS:{Q}:PROT {V}", "SENS:{Q}:PROT?"},
	FieldMeasurementRange:     {"SENS:{M}:RANG {V}", "SENS:{M}:RANG?"},
	FieldMeasurementAutorange: {"SENS:{M}:RANG:AUTO {V}", "SENS:{M}:RANG:AUTO?"},
	FieldMeasurementSpeed:     {"SENS:{M}:NPLC {V}", "SENS:{M}:NPLC?"},
	FieldPointCount: {
		"TRAC:FEED:CONT NEV; :TRAC:CLE; :TRAC:POIN {V}; :TRAC:FEED SENS; :TRAC:TST:FORM ABS; " +
			":TRAC:FEED:CONT NEXT; :ARM:SEQ:COUN 1; :TRIG:COUN {V}",
		"TRAC:POIN?",
	},
	FieldSweepOutput:  {"SOUR:{CH}:MODE {V}", "SOUR:{CH}:MODE?"},
	FieldSweepRanging: {"SOUR:SWE:RANG {V}", "SOUR:SWE:RANG?"},
	FieldSweepStart:   {"SOUR:{CH}:STAR {V}", "SOUR:{CH}:STAR?"},
	FieldSweepStop:    {"SOUR:{CH}:STOP {V}", "SOUR:{CH}:STOP?"},
	FieldSweepPoints:  {"SOUR:SWE:POIN {V}; :TRIG:COUN {V}", "SOUR:SWE:POIN?"},
	FieldSweepList:    {"SOUR:LIST:{CH} {V}", "SOUR:LIST:{CH}?"},
	FieldFormat:       {"FORM:ELEM {CH}, {M}, TIME", "FORM:ELEM?"},
}

// args fills template placeholders.
type args struct {
	ch, meas, quantity Channel
	value              string
}

func compile(f Field, a args) (Command, error) {
	t, ok := templates[f]
	if !ok {
		return Command{}, fmt.Errorf("smu: no command template for %s", f)
	}
	r := strings.NewReplacer(
		"{CH}", a.ch.Mnemonic(),
		"{M}", a.meas.Mnemonic(),
		"{Q}", a.quantity.Mnemonic(),
		"{V}", a.value,
	)
	return Command{Field: f, Cmd: r.Replace(t.command), Query: r.Replace(t.query)}, nil
}

// compileMeasurementChannel enables concurrent measurement of the sourced
// and measured quantities. Resistance adds auto-sourcing and offset
// compensation.
func compileMeasurementChannel(meas, out Channel, fourWire bool) Command {
	funcs := fmt.Sprintf("SENS:FUNC %q, %q", meas.Mnemonic(), out.Mnemonic())
	if meas == out {
		funcs = fmt.Sprintf("SENS:FUNC %q", meas.Mnemonic())
	}
	units := []string{
		"SENS:FUNC:CONC ON",
		"SENS:FUNC:OFF:ALL",
		funcs,
		"SYST:RSEN " + scpi.OnOff(fourWire),
	}
	if meas == Resistance {
		units = append(units, "SENS:RES:MODE AUTO", "SENS:RES:OCOM ON")
	}
	return Command{Field: FieldMeasurementChannel, Cmd: scpi.Join(units...), Query: "SENS:FUNC?"}
}

// compileDelay uses the auto form for Auto and disables auto delay before
// setting a fixed value otherwise.
func compileDelay(v Value) Command {
	if v.Auto {
		return Command{Field: FieldDelay, Cmd: "SOUR:DEL:AUTO ON", Query: "SOUR:DEL:AUTO?"}
	}
	return Command{
		Field: FieldDelay,
		Cmd:   scpi.Join("SOUR:DEL:AUTO OFF", "SOUR:DEL "+scpi.FormatFloat(v.Num)),
		Query: "SOUR:DEL?",
	}
}

// compileSenseMode turns remote sense on for four- and six-wire, and guards
// ohms only for six-wire.
func compileSenseMode(m SenseMode) Command {
	guard := "CABL"
	if m == SenseSix {
		guard = "OHMS"
	}
	return Command{
		Field: FieldSenseMode,
		Cmd:   scpi.Join("SYST:RSEN "+scpi.OnOff(m == SenseFour || m == SenseSix), "SYST:GUAR "+guard),
		Query: "SYST:RSEN?",
	}
}

func compileSweepShape(s SweepShape, ch Channel) Command {
	if s == ShapeList {
		return Command{
			Field: FieldSweepShape,
			Cmd:   "SOUR:" + ch.Mnemonic() + ":MODE LIST",
			Query: "SOUR:" + ch.Mnemonic() + ":MODE?",
		}
	}
	return Command{Field: FieldSweepShape, Cmd: "SOUR:SWE:SPAC " + shapeMnemonics[s], Query: "SOUR:SWE:SPAC?"}
}

func formatList(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = scpi.FormatFloat(v)
	}
	return strings.Join(parts, ", ")
}
