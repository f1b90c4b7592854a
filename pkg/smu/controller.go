// Package smu configures and runs a Keithley 2400 style source-measure unit.
//
// A Controller owns the confirmed configuration (Store) and an optional
// Session. Every setter validates its input, compiles a command and a
// confirming query, and commits the parsed confirmation to the Store. A
// setter that cannot obtain a valid value, or whose command is not
// confirmed, returns an error matching ErrNotConfigured and leaves the
// Store unchanged.
package smu

import (
	"context"
	"fmt"
	"math"
	"os"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/idn"
	"github.com/OpenTraceLab/OpenTraceSMU/pkg/report"
	"github.com/OpenTraceLab/OpenTraceSMU/pkg/scpi"
	"github.com/OpenTraceLab/OpenTraceSMU/pkg/transport"
)

// Controller is the configuration context for one instrument.
type Controller struct {
	store      Store
	session    *Session
	validator  Validator
	logger     *log.Logger
	delimiter  string
	sweepState SweepState

	running   atomic.Bool
	aborted   atomic.Bool
	cancelMu  sync.Mutex
	cancelRun context.CancelFunc
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithPrompter sets the source of replacement values.
func WithPrompter(p Prompter) Option {
	return func(c *Controller) { c.validator.Prompter = p }
}

// Prompter returns the source of replacement values, or nil.
func (c *Controller) Prompter() Prompter {
	return c.validator.Prompter
}

// WithMaxAttempts bounds prompting per field.
func WithMaxAttempts(n int) Option {
	return func(c *Controller) { c.validator.MaxAttempts = n }
}

// WithDelimiter sets the report field separator (report.Tab by default).
func WithDelimiter(d string) Option {
	return func(c *Controller) { c.delimiter = d }
}

// New returns a Controller with an empty store and no session.
func New(opts ...Option) *Controller {
	c := &Controller{
		store:     NewStore(),
		delimiter: report.Tab,
		validator: Validator{MaxAttempts: DefaultMaxAttempts},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "smu"})
	}
	c.validator.Logger = c.logger
	return c
}

// Params returns a copy of the confirmed configuration.
func (c *Controller) Params() Store {
	return c.store.Clone()
}

// Session returns the live session, or nil.
func (c *Controller) Session() *Session {
	return c.session
}

// Running reports whether a run is in progress.
func (c *Controller) Running() bool {
	return c.running.Load()
}

// Connect identifies the instrument behind tr and opens a session. The
// instrument is put in a known state: auto output-off, high impedance
// off-state and remote sense disabled.
func (c *Controller) Connect(ctx context.Context, tr transport.Transport) error {
	if err := c.begin(); err != nil {
		return err
	}
	if tr == nil {
		return notConfigured(FieldSession, "no transport", ErrNoSession)
	}
	raw, err := tr.Query(ctx, "*IDN?")
	if err != nil {
		return notConfigured(FieldSession, "instrument not responding", err)
	}
	id, err := idn.Parse(raw)
	if err != nil {
		return notConfigured(FieldSession, "unrecognised identity", err)
	}
	model, known := idn.LookupModel(id)
	s := &Session{tr: tr, identity: id, model: model, known: known, logger: c.logger}
	if err := s.write(ctx, scpi.Join("SOUR:CLE:AUTO ON", "OUTP:SMOD HIMP", "SYST:RSEN OFF")); err != nil {
		return notConfigured(FieldSession, "initialisation rejected", err)
	}
	if c.session != nil && c.session.tr != tr {
		_ = c.session.close()
	}
	c.session = s
	c.store.FourWire = false
	c.store.SenseMode = SenseUnset
	if !known {
		c.logger.Warn("unknown instrument model", "model", id.Model)
	} else if model.MaxVoltage < Voltage.Ceiling() || model.MaxCurrent < Current.Ceiling() {
		c.logger.Warn("model limits below the default source ceilings",
			"model", model.Number, "max_voltage", model.MaxVoltage, "max_current", model.MaxCurrent)
	}
	c.logger.Info("connected", "instrument", id.String())
	return nil
}

// Disconnect closes the transport and drops the session.
func (c *Controller) Disconnect() error {
	if err := c.begin(); err != nil {
		return err
	}
	if c.session == nil {
		return nil
	}
	err := c.session.close()
	c.session = nil
	if err != nil {
		return fmt.Errorf("smu: disconnect: %w", err)
	}
	return nil
}

// ceiling returns limit lowered to the connected model's rating for ch.
func (c *Controller) ceiling(ch Channel, limit float64) float64 {
	if c.session == nil || !c.session.known {
		return limit
	}
	switch ch {
	case Voltage:
		return math.Min(limit, c.session.model.MaxVoltage)
	case Current:
		return math.Min(limit, c.session.model.MaxCurrent)
	}
	return limit
}

// begin rejects reconfiguration during a run.
func (c *Controller) begin() error {
	if c.running.Load() {
		return ErrRunInProgress
	}
	return nil
}

func (c *Controller) requireSession(f Field) error {
	if c.session == nil {
		return notConfigured(f, "no instrument session", ErrNoSession)
	}
	return nil
}

func (c *Controller) requireOutput(f Field) (Channel, error) {
	if err := c.requireSession(f); err != nil {
		return Unset, err
	}
	if c.store.OutputChannel == Unset {
		return Unset, notConfigured(f, "output channel not set", nil)
	}
	return c.store.OutputChannel, nil
}

func (c *Controller) requireMeasurement(f Field) (Channel, error) {
	if err := c.requireSession(f); err != nil {
		return Unset, err
	}
	if c.store.MeasurementChannel == Unset {
		return Unset, notConfigured(f, "measurement channel not set", nil)
	}
	return c.store.MeasurementChannel, nil
}

// confirm sends cmd, reads back its query and parses the reply.
func (c *Controller) confirm(ctx context.Context, cmd Command) (*scpi.Reply, error) {
	if err := c.requireSession(cmd.Field); err != nil {
		return nil, err
	}
	raw, err := c.session.exchange(ctx, cmd.Cmd, cmd.Query)
	if err != nil {
		return nil, notConfigured(cmd.Field, "no confirmation", err)
	}
	reply, err := scpi.Parse(raw)
	if err != nil {
		return nil, notConfigured(cmd.Field, "unreadable confirmation", err)
	}
	return reply, nil
}

func (c *Controller) confirmFloat(ctx context.Context, cmd Command) (float64, error) {
	reply, err := c.confirm(ctx, cmd)
	if err != nil {
		return 0, err
	}
	v, err := reply.Float()
	if err != nil {
		return 0, notConfigured(cmd.Field, "unexpected confirmation", err)
	}
	return v, nil
}

func (c *Controller) confirmInt(ctx context.Context, cmd Command) (int, error) {
	reply, err := c.confirm(ctx, cmd)
	if err != nil {
		return 0, err
	}
	v, err := reply.Int()
	if err != nil {
		return 0, notConfigured(cmd.Field, "unexpected confirmation", err)
	}
	return v, nil
}

func (c *Controller) confirmBool(ctx context.Context, cmd Command) (bool, error) {
	reply, err := c.confirm(ctx, cmd)
	if err != nil {
		return false, err
	}
	v, err := reply.Bool()
	if err != nil {
		return false, notConfigured(cmd.Field, "unexpected confirmation", err)
	}
	return v, nil
}

func (c *Controller) confirmWord(ctx context.Context, cmd Command) (string, error) {
	reply, err := c.confirm(ctx, cmd)
	if err != nil {
		return "", err
	}
	v, err := reply.Word()
	if err != nil {
		return "", notConfigured(cmd.Field, "unexpected confirmation", err)
	}
	return v, nil
}

func (c *Controller) resolve(ctx context.Context, f Field, message string, con Constraint, in Input) (Input, error) {
	return c.validator.Resolve(ctx, f, message, con, in)
}
