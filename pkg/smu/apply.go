package smu

import (
	"context"
	"errors"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/transport"
)

// Record is a complete configuration, replayed by Apply.
type Record struct {
	OutputChannel      string      `yaml:"output_channel"`
	OutputRange        Value       `yaml:"output_range"`
	OutputValue        Value       `yaml:"output_value"`
	MeasurementChannel string      `yaml:"measurement_channel"`
	FourWire           bool        `yaml:"four_wire"`
	Delay              Value       `yaml:"delay"`
	Compliance         Value       `yaml:"compliance"`
	MeasurementRange   Value       `yaml:"measurement_range"`
	SenseMode          string      `yaml:"sense_mode"`
	MeasurementSpeed   Value       `yaml:"measurement_speed"`
	PointCount         Value       `yaml:"point_count"`
	Sweep              SweepConfig `yaml:"sweep"`
}

// ApplyReport lists the fields Apply left unconfigured.
type ApplyReport struct {
	Skipped    []*NotConfiguredError
	SweepState SweepState
}

// Complete reports whether every step succeeded.
func (r *ApplyReport) Complete() bool {
	return len(r.Skipped) == 0
}

// Apply replays every setter from rec in a fixed order: session, output
// channel, output range, output value, measurement channel, delay,
// compliance, measurement range, sense mode (resistance only), speed,
// sweep or point count, and output format. A field that is not configured
// is recorded and Apply moves on. Any other error stops it.
//
// A nil tr keeps the current session.
func (c *Controller) Apply(ctx context.Context, rec Record, tr transport.Transport) (*ApplyReport, error) {
	rep := &ApplyReport{}
	steps := []func() error{
		func() error {
			if tr == nil {
				return c.requireSession(FieldSession)
			}
			return c.Connect(ctx, tr)
		},
		func() error { return c.SetOutputChannel(ctx, rec.OutputChannel) },
		func() error { return c.SetOutputRange(ctx, rec.OutputRange) },
		func() error { return c.SetOutputValue(ctx, rec.OutputValue) },
		func() error { return c.SetMeasurementChannel(ctx, rec.MeasurementChannel, rec.FourWire) },
		func() error { return c.SetDelay(ctx, rec.Delay) },
		func() error { return c.SetCompliance(ctx, rec.Compliance) },
		func() error { return c.SetMeasurementRange(ctx, rec.MeasurementRange) },
		func() error {
			if c.store.MeasurementChannel != Resistance {
				return nil
			}
			return c.SetSenseMode(ctx, rec.SenseMode)
		},
		func() error { return c.SetMeasurementSpeed(ctx, rec.MeasurementSpeed) },
		func() error {
			if rec.Sweep.Enabled {
				state, err := c.ConfigureSweep(ctx, rec.Sweep)
				rep.SweepState = state
				return err
			}
			if c.store.Sweep.Active() {
				if err := c.SetSweepOutput(ctx, false, ""); err != nil {
					return err
				}
			}
			return c.SetPointCount(ctx, rec.PointCount)
		},
		func() error { return c.SetFormat(ctx) },
	}
	for _, step := range steps {
		err := step()
		if err == nil {
			continue
		}
		var nc *NotConfiguredError
		if errors.As(err, &nc) {
			c.logger.Warn("skipped", "field", nc.Field, "reason", nc.Reason)
			rep.Skipped = append(rep.Skipped, nc)
			continue
		}
		return rep, err
	}
	return rep, nil
}
