package smu

// Sweep holds the sweep sub-configuration.
type Sweep struct {
	Enabled bool
	Output  Channel
	Shape   SweepShape
	Ranging SweepRanging
	Start   Value
	Stop    Value
	Points  *int
	List    []float64
}

// Active reports whether a sweep is enabled on an output.
func (s Sweep) Active() bool {
	return s.Enabled && s.Output != Unset
}

// Store is the confirmed configuration. A field changes only after the
// instrument has acknowledged the matching command.
type Store struct {
	OutputChannel      Channel
	MeasurementChannel Channel

	// keyed by Voltage and Current
	OutputValue map[Channel]Value
	OutputRange map[Channel]Value
	Compliance  map[Channel]Value

	// keyed by Voltage, Current and Resistance
	MeasurementRange map[Channel]Value
	MeasurementSpeed map[Channel]Value

	SenseMode  SenseMode
	FourWire   bool
	Delay      Value
	PointCount *int
	Format     []string
	Sweep      Sweep
}

// NewStore returns a store with every field unset.
func NewStore() Store {
	return Store{
		OutputValue:      make(map[Channel]Value),
		OutputRange:      make(map[Channel]Value),
		Compliance:       make(map[Channel]Value),
		MeasurementRange: make(map[Channel]Value),
		MeasurementSpeed: make(map[Channel]Value),
	}
}

func cloneMap(m map[Channel]Value) map[Channel]Value {
	out := make(map[Channel]Value, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Clone returns a deep copy.
func (s Store) Clone() Store {
	out := s
	out.OutputValue = cloneMap(s.OutputValue)
	out.OutputRange = cloneMap(s.OutputRange)
	out.Compliance = cloneMap(s.Compliance)
	out.MeasurementRange = cloneMap(s.MeasurementRange)
	out.MeasurementSpeed = cloneMap(s.MeasurementSpeed)
	out.PointCount = cloneInt(s.PointCount)
	out.Format = append([]string(nil), s.Format...)
	out.Sweep.Points = cloneInt(s.Sweep.Points)
	out.Sweep.List = append([]float64(nil), s.Sweep.List...)
	return out
}
