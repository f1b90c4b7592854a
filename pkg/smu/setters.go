package smu

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/match"
	"github.com/OpenTraceLab/OpenTraceSMU/pkg/scpi"
)

var (
	outputChoices      = Choice{Options: []string{"volt*", "cur*"}}
	measurementChoices = Choice{Options: []string{"volt*", "curr*", "res*"}}
	senseChoices       = Choice{Options: []string{"two*", "2*", "four*", "4*", "six*", "6*"}}
)

// measurement range bounds per measured channel
var measurementRanges = map[Channel]NumericRange{
	Voltage:    {Min: 0, Max: 210, AllowAuto: true, Unit: "V"},
	Current:    {Min: 0, Max: 1.05, AllowAuto: true, Unit: "A"},
	Resistance: {Min: 20, Max: 2.1e8, AllowAuto: true, Unit: "ohms"},
}

const (
	maxPoints    = 2500
	maxDelay     = 9999.999
	minNPLC      = 0.01
	maxNPLC      = 10
	maxVoltLimit = 210
	minVoltLimit = 200e-6
	maxCurrLimit = 1.05
	minCurrLimit = 1e-9
)

// SetOutputChannel selects whether the instrument sources voltage or current.
func (c *Controller) SetOutputChannel(ctx context.Context, ch string) error {
	const f = FieldOutputChannel
	if err := c.begin(); err != nil {
		return err
	}
	if err := c.requireSession(f); err != nil {
		return err
	}
	in, err := c.resolve(ctx, f, "Source voltage or current?", outputChoices, optionalWord(ch))
	if err != nil {
		return err
	}
	cmd, err := compile(f, args{ch: ParseChannel(in.Word)})
	if err != nil {
		return err
	}
	word, err := c.confirmWord(ctx, cmd)
	if err != nil {
		return err
	}
	got := ParseChannel(word)
	if got != Voltage && got != Current {
		return notConfigured(f, fmt.Sprintf("instrument reported %q", word), nil)
	}
	c.store.OutputChannel = got
	return nil
}

// SetOutputRange sets the fixed source range. Auto enables autorange.
func (c *Controller) SetOutputRange(ctx context.Context, v Value) error {
	const f = FieldOutputRange
	if err := c.begin(); err != nil {
		return err
	}
	out, err := c.requireOutput(f)
	if err != nil {
		return err
	}
	if v.Auto {
		return c.SetOutputAutorange(ctx, true)
	}
	con := NumericRange{Min: 0, Max: c.ceiling(out, out.Ceiling()), ExclusiveMin: true, AllowAuto: true, Unit: out.Unit()}
	in, err := c.resolve(ctx, f, fmt.Sprintf("Maximum %s output (%s)?", out, out.Unit()), con, v.input())
	if err != nil {
		return err
	}
	if in.Kind == InputWord {
		return c.SetOutputAutorange(ctx, true)
	}
	cmd, err := compile(f, args{ch: out, value: scpi.FormatFloat(in.Num)})
	if err != nil {
		return err
	}
	got, err := c.confirmFloat(ctx, cmd)
	if err != nil {
		return err
	}
	c.store.OutputRange[out] = Num(got)
	return nil
}

// SetOutputAutorange toggles source autoranging. Turning it off keeps a
// previously confirmed fixed range and forgets an Auto one.
func (c *Controller) SetOutputAutorange(ctx context.Context, on bool) error {
	const f = FieldOutputAutorange
	if err := c.begin(); err != nil {
		return err
	}
	out, err := c.requireOutput(f)
	if err != nil {
		return err
	}
	cmd, err := compile(f, args{ch: out, value: scpi.OnOff(on)})
	if err != nil {
		return err
	}
	got, err := c.confirmBool(ctx, cmd)
	if err != nil {
		return err
	}
	setAutorange(c.store.OutputRange, out, got)
	return nil
}

func setAutorange(m map[Channel]Value, ch Channel, on bool) {
	if on {
		m[ch] = Auto()
		return
	}
	if m[ch].Auto {
		delete(m, ch)
	}
}

// SetOutputValue sets the fixed source level. A magnitude above the
// channel ceiling is reported and replaced by 0.
func (c *Controller) SetOutputValue(ctx context.Context, v Value) error {
	const f = FieldOutputValue
	if err := c.begin(); err != nil {
		return err
	}
	out, err := c.requireOutput(f)
	if err != nil {
		return err
	}
	ceil := c.ceiling(out, out.Ceiling())
	in := v.input()
	if in.Kind == InputNumber && math.Abs(in.Num) > ceil {
		c.logger.Warn("output value beyond ceiling, sourcing 0 instead",
			"channel", out, "value", in.Num, "ceiling", ceil)
		in = NumberInput(0)
	}
	con := NumericRange{Min: -ceil, Max: ceil, Unit: out.Unit()}
	in, err = c.resolve(ctx, f, fmt.Sprintf("Output value (%s)?", out.Unit()), con, in)
	if err != nil {
		return err
	}
	cmd, err := compile(f, args{ch: out, value: scpi.FormatFloat(in.Num)})
	if err != nil {
		return err
	}
	got, err := c.confirmFloat(ctx, cmd)
	if err != nil {
		return err
	}
	c.store.OutputValue[out] = Num(got)
	return nil
}

// SetMeasurementChannel selects the measured quantity. Remote sense is
// enabled only when fourWire is set.
func (c *Controller) SetMeasurementChannel(ctx context.Context, ch string, fourWire bool) error {
	const f = FieldMeasurementChannel
	if err := c.begin(); err != nil {
		return err
	}
	out, err := c.requireOutput(f)
	if err != nil {
		return err
	}
	in, err := c.resolve(ctx, f, "Measure current, voltage or resistance?", measurementChoices, optionalWord(ch))
	if err != nil {
		return err
	}
	meas := ParseChannel(in.Word)
	reply, err := c.confirm(ctx, compileMeasurementChannel(meas, out, fourWire))
	if err != nil {
		return err
	}
	if !match.Any(meas.Mnemonic(), prefixes(reply.Words())...) {
		return notConfigured(f, fmt.Sprintf("instrument reported %v", reply.Words()), nil)
	}
	c.store.MeasurementChannel = meas
	c.store.FourWire = fourWire
	// SYST:RSEN was just rewritten, so a previous sense mode no longer holds.
	c.store.SenseMode = SenseUnset
	return nil
}

// prefixes turns reported function names ("CURR:DC") into patterns
// matching their leading keyword.
func prefixes(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		head, _, _ := strings.Cut(w, ":")
		out[i] = head + "*"
	}
	return out
}

// complianceConstraint bounds the protection limit on the non-sourced
// quantity. For a current source the ceiling follows the voltage
// measurement range when one is fixed; a fixed range below the compliance
// floor leaves compliance not configured.
func (c *Controller) complianceConstraint(out Channel) (Channel, NumericRange, error) {
	if out == Voltage {
		return Current, NumericRange{Min: minCurrLimit, Max: c.ceiling(Current, maxCurrLimit), Unit: "A"}, nil
	}
	ceil := c.ceiling(Voltage, maxVoltLimit)
	if r, ok := c.store.MeasurementRange[Voltage]; ok && r.IsSet() && !r.Auto {
		if r.Num < minVoltLimit {
			return Voltage, NumericRange{}, notConfigured(FieldCompliance,
				fmt.Sprintf("voltage measurement range %s V is below the %s V compliance floor",
					scpi.FormatFloat(r.Num), scpi.FormatFloat(minVoltLimit)), nil)
		}
		ceil = math.Min(ceil, r.Num)
	}
	return Voltage, NumericRange{Min: minVoltLimit, Max: ceil, Unit: "V"}, nil
}

// SetCompliance sets the protection limit for the current output channel.
func (c *Controller) SetCompliance(ctx context.Context, v Value) error {
	const f = FieldCompliance
	if err := c.begin(); err != nil {
		return err
	}
	out, err := c.requireOutput(f)
	if err != nil {
		return err
	}
	if _, err := c.requireMeasurement(f); err != nil {
		return err
	}
	q, con, err := c.complianceConstraint(out)
	if err != nil {
		return err
	}
	in, err := c.resolve(ctx, f, fmt.Sprintf("%s compliance (%s)?", q, q.Unit()), con, v.input())
	if err != nil {
		return err
	}
	cmd, err := compile(f, args{quantity: q, value: scpi.FormatFloat(in.Num)})
	if err != nil {
		return err
	}
	got, err := c.confirmFloat(ctx, cmd)
	if err != nil {
		return err
	}
	c.store.Compliance[out] = Num(got)
	return nil
}

// SetMeasurementRange sets the fixed measurement range. Auto enables
// autorange.
func (c *Controller) SetMeasurementRange(ctx context.Context, v Value) error {
	const f = FieldMeasurementRange
	if err := c.begin(); err != nil {
		return err
	}
	meas, err := c.requireMeasurement(f)
	if err != nil {
		return err
	}
	if v.Auto {
		return c.SetMeasurementAutorange(ctx, true)
	}
	con := measurementRanges[meas]
	in, err := c.resolve(ctx, f, fmt.Sprintf("%s measurement range (%s)?", meas, meas.Unit()), con, v.input())
	if err != nil {
		return err
	}
	if in.Kind == InputWord {
		return c.SetMeasurementAutorange(ctx, true)
	}
	cmd, err := compile(f, args{meas: meas, value: scpi.FormatFloat(in.Num)})
	if err != nil {
		return err
	}
	got, err := c.confirmFloat(ctx, cmd)
	if err != nil {
		return err
	}
	c.store.MeasurementRange[meas] = Num(got)
	return nil
}

// SetMeasurementAutorange toggles measurement autoranging.
func (c *Controller) SetMeasurementAutorange(ctx context.Context, on bool) error {
	const f = FieldMeasurementAutorange
	if err := c.begin(); err != nil {
		return err
	}
	meas, err := c.requireMeasurement(f)
	if err != nil {
		return err
	}
	cmd, err := compile(f, args{meas: meas, value: scpi.OnOff(on)})
	if err != nil {
		return err
	}
	got, err := c.confirmBool(ctx, cmd)
	if err != nil {
		return err
	}
	setAutorange(c.store.MeasurementRange, meas, got)
	return nil
}

// SetDelay sets the source delay in seconds, or Auto.
func (c *Controller) SetDelay(ctx context.Context, v Value) error {
	const f = FieldDelay
	if err := c.begin(); err != nil {
		return err
	}
	if err := c.requireSession(f); err != nil {
		return err
	}
	con := NumericRange{Min: 0, Max: maxDelay, AllowAuto: true, Unit: "s"}
	in, err := c.resolve(ctx, f, "Source delay in seconds (or auto)?", con, v.input())
	if err != nil {
		return err
	}
	val := valueOf(in)
	cmd := compileDelay(val)
	if val.Auto {
		on, err := c.confirmBool(ctx, cmd)
		if err != nil {
			return err
		}
		if !on {
			return notConfigured(f, "auto delay not enabled", nil)
		}
		c.store.Delay = Auto()
		return nil
	}
	got, err := c.confirmFloat(ctx, cmd)
	if err != nil {
		return err
	}
	c.store.Delay = Num(got)
	return nil
}

// SetSenseMode selects two-, four- or six-wire resistance measurement.
func (c *Controller) SetSenseMode(ctx context.Context, mode string) error {
	const f = FieldSenseMode
	if err := c.begin(); err != nil {
		return err
	}
	meas, err := c.requireMeasurement(f)
	if err != nil {
		return err
	}
	if meas != Resistance {
		return notConfigured(f, "measurement channel is not resistance", nil)
	}
	in, err := c.resolve(ctx, f, "Two-, four- or six-wire resistance measurement?", senseChoices, optionalWord(mode))
	if err != nil {
		return err
	}
	m := parseSenseMode(in.Word)
	remote := m == SenseFour || m == SenseSix
	on, err := c.confirmBool(ctx, compileSenseMode(m))
	if err != nil {
		return err
	}
	if on != remote {
		return notConfigured(f, fmt.Sprintf("remote sense reads %s", scpi.OnOff(on)), nil)
	}
	c.store.SenseMode = m
	c.store.FourWire = remote
	return nil
}

// SetMeasurementSpeed sets the integration time in power line cycles.
func (c *Controller) SetMeasurementSpeed(ctx context.Context, v Value) error {
	const f = FieldMeasurementSpeed
	if err := c.begin(); err != nil {
		return err
	}
	meas, err := c.requireMeasurement(f)
	if err != nil {
		return err
	}
	con := NumericRange{Min: minNPLC, Max: maxNPLC, Unit: "PLC"}
	in, err := c.resolve(ctx, f, "Integration time in power line cycles?", con, v.input())
	if err != nil {
		return err
	}
	cmd, err := compile(f, args{meas: meas, value: scpi.FormatFloat(in.Num)})
	if err != nil {
		return err
	}
	got, err := c.confirmFloat(ctx, cmd)
	if err != nil {
		return err
	}
	c.store.MeasurementSpeed[meas] = Num(got)
	return nil
}

// SetPointCount sets the number of readings and prepares the trace buffer.
// While a sweep is active the count follows the sweep instead.
func (c *Controller) SetPointCount(ctx context.Context, n Value) error {
	const f = FieldPointCount
	if err := c.begin(); err != nil {
		return err
	}
	if err := c.requireSession(f); err != nil {
		return err
	}
	if c.store.Sweep.Active() {
		return notConfigured(f, "a sweep is active; its point count applies", nil)
	}
	con := NumericRange{Min: 0, Max: maxPoints, Integer: true}
	in, err := c.resolve(ctx, f, "How many measurements?", con, n.input())
	if err != nil {
		return err
	}
	return c.setupBuffer(ctx, f, int(in.Num))
}

// setupBuffer configures the trace buffer and trigger count for n points.
func (c *Controller) setupBuffer(ctx context.Context, f Field, n int) error {
	cmd, err := compile(FieldPointCount, args{value: fmt.Sprint(n)})
	if err != nil {
		return err
	}
	cmd.Field = f
	got, err := c.confirmInt(ctx, cmd)
	if err != nil {
		return err
	}
	c.store.PointCount = &got
	return nil
}

// SetFormat selects the buffer elements: output, measured quantity and
// timestamp. The confirmed element list sets the report columns.
func (c *Controller) SetFormat(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	return c.setFormat(ctx)
}

func (c *Controller) setFormat(ctx context.Context) error {
	const f = FieldFormat
	out, err := c.requireOutput(f)
	if err != nil {
		return err
	}
	meas, err := c.requireMeasurement(f)
	if err != nil {
		return err
	}
	cmd, err := compile(f, args{ch: out, meas: meas})
	if err != nil {
		return err
	}
	reply, err := c.confirm(ctx, cmd)
	if err != nil {
		return err
	}
	elems := reply.Words()
	if len(elems) == 0 {
		return notConfigured(f, "empty element list", nil)
	}
	c.store.Format = elems
	return nil
}
