package smu

import (
	"context"
	"testing"
)

func scenarioRecord() Record {
	return Record{
		OutputChannel:      "voltage",
		OutputRange:        Auto(),
		OutputValue:        Num(0),
		MeasurementChannel: "current",
		Delay:              Num(0),
		Compliance:         Num(30e-3),
		MeasurementRange:   Auto(),
		MeasurementSpeed:   Num(1),
		PointCount:         Num(2500),
	}
}

func TestApplyComplete(t *testing.T) {
	c := New(WithLogger(quietLogger()))
	sim := newSim()
	rep, err := c.Apply(context.Background(), scenarioRecord(), sim)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !rep.Complete() {
		for _, s := range rep.Skipped {
			t.Errorf("skipped %v", s)
		}
	}
	if !c.Readiness().Ready() {
		t.Fatalf("not ready after Apply:\n%s", c.Readiness())
	}
	p := c.Params()
	if p.OutputChannel != Voltage || p.MeasurementChannel != Current {
		t.Errorf("channels = %v/%v", p.OutputChannel, p.MeasurementChannel)
	}
	if got := p.Format; len(got) != 3 || got[2] != "TIME" {
		t.Errorf("Format = %v", got)
	}
	if !sim.Sent("*IDN?") {
		t.Errorf("Apply did not identify the instrument")
	}
}

func TestApplySkipsUnconfigured(t *testing.T) {
	rec := scenarioRecord()
	rec.Compliance = Value{}
	rec.MeasurementSpeed = Num(50)

	c := New(WithLogger(quietLogger()))
	rep, err := c.Apply(context.Background(), rec, newSim())
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	var fields []Field
	for _, s := range rep.Skipped {
		fields = append(fields, s.Field)
	}
	if len(fields) != 2 || fields[0] != FieldCompliance || fields[1] != FieldMeasurementSpeed {
		t.Fatalf("skipped fields = %v", fields)
	}
	r := c.Readiness()
	if r.Output || r.Measurement || !r.Buffer {
		t.Errorf("readiness = %+v", r)
	}
}

func TestApplyResistanceSenseMode(t *testing.T) {
	rec := scenarioRecord()
	rec.OutputChannel = "current"
	rec.Compliance = Num(2)
	rec.MeasurementChannel = "resistance"
	rec.SenseMode = "four"

	c := New(WithLogger(quietLogger()))
	rep, err := c.Apply(context.Background(), rec, newSim())
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !rep.Complete() {
		t.Fatalf("skipped %v", rep.Skipped)
	}
	if p := c.Params(); p.SenseMode != SenseFour || !p.FourWire {
		t.Errorf("sense = %v fourWire = %t", p.SenseMode, p.FourWire)
	}
}

func TestApplySweepRecord(t *testing.T) {
	rec := scenarioRecord()
	rec.Sweep = SweepConfig{
		Enabled: true,
		Output:  "voltage",
		Shape:   "list",
		List:    []float64{0, 0.5, 1},
	}
	c := New(WithLogger(quietLogger()))
	rep, err := c.Apply(context.Background(), rec, newSim())
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if rep.SweepState != SweepReady {
		t.Errorf("SweepState = %v", rep.SweepState)
	}
	if p := c.Params(); p.PointCount == nil || *p.PointCount != 3 {
		t.Errorf("point count should follow the list")
	}

	// Replaying without the sweep falls back to a fixed source.
	rec.Sweep = SweepConfig{}
	rep, err = c.Apply(context.Background(), rec, nil)
	if err != nil || !rep.Complete() {
		t.Fatalf("second Apply: %v %v", err, rep.Skipped)
	}
	if p := c.Params(); p.Sweep.Active() || *p.PointCount != 2500 {
		t.Errorf("sweep still active or wrong point count")
	}
}
