package smu

import (
	"context"
	"fmt"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/match"
	"github.com/OpenTraceLab/OpenTraceSMU/pkg/scpi"
)

// SweepState is the orchestrator's progress through sweep configuration.
type SweepState uint8

const (
	SweepIdle SweepState = iota
	SweepOutputArmed
	SweepShapeArmed
	SweepRangingArmed
	SweepBoundsArmed
	SweepListArmed
	SweepReady
)

var sweepStateNames = map[SweepState]string{
	SweepIdle:         "Idle",
	SweepOutputArmed:  "OutputArmed",
	SweepShapeArmed:   "ShapeArmed",
	SweepRangingArmed: "RangingArmed",
	SweepBoundsArmed:  "BoundsArmed",
	SweepListArmed:    "ListArmed",
	SweepReady:        "Ready",
}

func (s SweepState) String() string {
	if name, ok := sweepStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SweepState(%d)", s)
}

var sweepTransitions = map[SweepState][]SweepState{
	SweepIdle:         {SweepOutputArmed},
	SweepOutputArmed:  {SweepShapeArmed},
	SweepShapeArmed:   {SweepRangingArmed},
	SweepRangingArmed: {SweepBoundsArmed, SweepListArmed},
	SweepBoundsArmed:  {SweepReady},
	SweepListArmed:    {SweepReady},
	SweepReady:        {},
}

// CanAdvance reports whether to directly follows from.
func CanAdvance(from, to SweepState) bool {
	for _, next := range sweepTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SweepConfig is the full sweep request handed to ConfigureSweep.
type SweepConfig struct {
	Enabled bool      `yaml:"enabled"`
	Output  string    `yaml:"output"`
	Shape   string    `yaml:"shape"`
	Ranging string    `yaml:"ranging"`
	Start   Value     `yaml:"start"`
	Stop    Value     `yaml:"stop"`
	Points  Value     `yaml:"points"`
	List    []float64 `yaml:"list"`
}

// SweepState returns the state reached by the last ConfigureSweep.
func (c *Controller) SweepState() SweepState {
	return c.sweepState
}

// ConfigureSweep applies cfg in dependency order: output, shape, ranging,
// then start, stop and points, or the explicit list. The first step that
// is not configured ends the chain. Steps already applied stay applied and
// the returned state is the last one reached.
func (c *Controller) ConfigureSweep(ctx context.Context, cfg SweepConfig) (SweepState, error) {
	if err := c.begin(); err != nil {
		return c.sweepState, err
	}
	if !cfg.Enabled {
		err := c.SetSweepOutput(ctx, false, cfg.Output)
		return c.sweepState, err
	}

	c.sweepState = SweepIdle
	step := func(next SweepState, apply func() error) error {
		if !CanAdvance(c.sweepState, next) {
			return fmt.Errorf("smu: invalid sweep transition %s -> %s", c.sweepState, next)
		}
		if err := apply(); err != nil {
			c.logger.Warn("sweep configuration stopped", "state", c.sweepState, "err", err)
			return err
		}
		c.sweepState = next
		c.logger.Debug("sweep", "state", next)
		return nil
	}

	if err := step(SweepOutputArmed, func() error { return c.SetSweepOutput(ctx, true, cfg.Output) }); err != nil {
		return c.sweepState, err
	}
	if err := step(SweepShapeArmed, func() error { return c.SetSweepShape(ctx, cfg.Shape) }); err != nil {
		return c.sweepState, err
	}
	list := c.store.Sweep.Shape == ShapeList
	err := step(SweepRangingArmed, func() error {
		if list {
			if cfg.Ranging != "" {
				c.logger.Warn("ranging ignored for a list sweep", "ranging", cfg.Ranging)
			}
			return nil
		}
		return c.SetSweepRanging(ctx, cfg.Ranging)
	})
	if err != nil {
		return c.sweepState, err
	}

	if list {
		if err := step(SweepListArmed, func() error { return c.SetSweepList(ctx, cfg.List) }); err != nil {
			return c.sweepState, err
		}
	} else {
		err := step(SweepBoundsArmed, func() error {
			if err := c.SetSweepStart(ctx, cfg.Start); err != nil {
				return err
			}
			if err := c.SetSweepStop(ctx, cfg.Stop); err != nil {
				return err
			}
			return c.SetSweepPoints(ctx, cfg.Points)
		})
		if err != nil {
			return c.sweepState, err
		}
	}
	err = step(SweepReady, func() error { return nil })
	return c.sweepState, err
}

func (c *Controller) requireSweep(f Field) (Channel, error) {
	if err := c.requireSession(f); err != nil {
		return Unset, err
	}
	if !c.store.Sweep.Active() {
		return Unset, notConfigured(f, "sweep output not enabled", nil)
	}
	return c.store.Sweep.Output, nil
}

// SetSweepOutput enables a sweep on the voltage or current source, or
// disables it and returns the armed output to fixed mode.
func (c *Controller) SetSweepOutput(ctx context.Context, enabled bool, ch string) error {
	const f = FieldSweepOutput
	if err := c.begin(); err != nil {
		return err
	}
	if err := c.requireSession(f); err != nil {
		return err
	}
	if !enabled {
		if prev := c.store.Sweep.Output; prev != Unset {
			cmd, err := compile(f, args{ch: prev, value: "FIX"})
			if err != nil {
				return err
			}
			word, err := c.confirmWord(ctx, cmd)
			if err != nil {
				return err
			}
			if !match.Match("FIX*", word) {
				return notConfigured(f, fmt.Sprintf("instrument reported %q", word), nil)
			}
		}
		c.store.Sweep = Sweep{}
		c.sweepState = SweepIdle
		return nil
	}

	in, err := c.resolve(ctx, f, "Sweep the voltage or current source?", Choice{Options: []string{"volt*", "curr*"}}, optionalWord(ch))
	if err != nil {
		return err
	}
	out := ParseChannel(in.Word)
	cmd, err := compile(f, args{ch: out, value: "SWE"})
	if err != nil {
		return err
	}
	word, err := c.confirmWord(ctx, cmd)
	if err != nil {
		return err
	}
	if !match.Any(word, "SWE*", "LIST") {
		return notConfigured(f, fmt.Sprintf("instrument reported %q", word), nil)
	}
	c.store.Sweep = Sweep{Enabled: true, Output: out}
	return nil
}

// SetSweepShape selects a linear, logarithmic or list sweep.
func (c *Controller) SetSweepShape(ctx context.Context, shape string) error {
	const f = FieldSweepShape
	if err := c.begin(); err != nil {
		return err
	}
	out, err := c.requireSweep(f)
	if err != nil {
		return err
	}
	in, err := c.resolve(ctx, f, "Linear, logarithmic or list sweep?", Choice{Options: []string{"lin*", "log*", "list*"}}, optionalWord(shape))
	if err != nil {
		return err
	}
	s := parseSweepShape(in.Word)
	word, err := c.confirmWord(ctx, compileSweepShape(s, out))
	if err != nil {
		return err
	}
	if !match.Match(shapeMnemonics[s]+"*", word) {
		return notConfigured(f, fmt.Sprintf("instrument reported %q", word), nil)
	}
	c.store.Sweep.Shape = s
	return nil
}

// SetSweepRanging selects best, auto or fixed source ranging for the sweep.
func (c *Controller) SetSweepRanging(ctx context.Context, ranging string) error {
	const f = FieldSweepRanging
	if err := c.begin(); err != nil {
		return err
	}
	if _, err := c.requireSweep(f); err != nil {
		return err
	}
	in, err := c.resolve(ctx, f, "Best, auto or fixed ranging?", Choice{Options: []string{"best*", "auto*", "fix*"}}, optionalWord(ranging))
	if err != nil {
		return err
	}
	r := parseSweepRanging(in.Word)
	cmd, err := compile(f, args{value: rangingMnemonics[r]})
	if err != nil {
		return err
	}
	word, err := c.confirmWord(ctx, cmd)
	if err != nil {
		return err
	}
	if !match.Match(rangingMnemonics[r]+"*", word) {
		return notConfigured(f, fmt.Sprintf("instrument reported %q", word), nil)
	}
	c.store.Sweep.Ranging = r
	return nil
}

// SetSweepStart sets the first sweep level.
func (c *Controller) SetSweepStart(ctx context.Context, v Value) error {
	const f = FieldSweepStart
	if err := c.begin(); err != nil {
		return err
	}
	out, err := c.requireSweep(f)
	if err != nil {
		return err
	}
	ceil := c.ceiling(out, out.Ceiling())
	con := NumericRange{Min: -ceil, Max: ceil, Unit: out.Unit()}
	in, err := c.resolve(ctx, f, fmt.Sprintf("Sweep start (%s)?", out.Unit()), con, v.input())
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
	c.store.Sweep.Start = Num(got)
	return nil
}

// SetSweepStop sets the last sweep level. It may not be below the start.
func (c *Controller) SetSweepStop(ctx context.Context, v Value) error {
	const f = FieldSweepStop
	if err := c.begin(); err != nil {
		return err
	}
	out, err := c.requireSweep(f)
	if err != nil {
		return err
	}
	ceil := c.ceiling(out, out.Ceiling())
	lo := -ceil
	if start := c.store.Sweep.Start; start.IsSet() {
		lo = start.Num
	}
	con := NumericRange{Min: lo, Max: ceil, Unit: out.Unit()}
	in, err := c.resolve(ctx, f, fmt.Sprintf("Sweep stop (%s)?", out.Unit()), con, v.input())
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
	c.store.Sweep.Stop = Num(got)
	return nil
}

// SetSweepPoints sets the number of sweep points and sizes the trace
// buffer to match.
func (c *Controller) SetSweepPoints(ctx context.Context, n Value) error {
	const f = FieldSweepPoints
	if err := c.begin(); err != nil {
		return err
	}
	if _, err := c.requireSweep(f); err != nil {
		return err
	}
	con := NumericRange{Min: 1, Max: maxPoints, Integer: true}
	in, err := c.resolve(ctx, f, "How many sweep points?", con, n.input())
	if err != nil {
		return err
	}
	return c.setSweepPoints(ctx, int(in.Num))
}

func (c *Controller) setSweepPoints(ctx context.Context, n int) error {
	const f = FieldSweepPoints
	cmd, err := compile(f, args{value: fmt.Sprint(n)})
	if err != nil {
		return err
	}
	got, err := c.confirmInt(ctx, cmd)
	if err != nil {
		return err
	}
	c.store.Sweep.Points = &got
	return c.setupBuffer(ctx, f, got)
}

// SetSweepList sets the explicit levels of a list sweep. The point count
// becomes the list length.
func (c *Controller) SetSweepList(ctx context.Context, values []float64) error {
	const f = FieldSweepList
	if err := c.begin(); err != nil {
		return err
	}
	out, err := c.requireSweep(f)
	if err != nil {
		return err
	}
	if c.store.Sweep.Shape != ShapeList {
		return notConfigured(f, "sweep shape is not list", nil)
	}
	var in Input
	if values != nil {
		in = ListInput(values...)
	}
	ceil := c.ceiling(out, out.Ceiling())
	con := FreeformList{MinLen: 1, MaxLen: maxPoints, Min: -ceil, Max: ceil}
	in, err = c.resolve(ctx, f, fmt.Sprintf("Sweep levels (%s), comma separated?", out.Unit()), con, in)
	if err != nil {
		return err
	}
	cmd, err := compile(f, args{ch: out, value: formatList(in.List)})
	if err != nil {
		return err
	}
	reply, err := c.confirm(ctx, cmd)
	if err != nil {
		return err
	}
	got, err := reply.Floats()
	if err != nil || len(got) != len(in.List) {
		return notConfigured(f, "list not confirmed", err)
	}
	c.store.Sweep.List = got
	return c.setSweepPoints(ctx, len(got))
}
