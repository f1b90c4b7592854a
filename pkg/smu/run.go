package smu

import (
	"context"
	"errors"
	"fmt"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/buffer"
	"github.com/OpenTraceLab/OpenTraceSMU/pkg/report"
	"github.com/OpenTraceLab/OpenTraceSMU/pkg/scpi"
	"github.com/OpenTraceLab/OpenTraceSMU/pkg/transport"
)

// Result is the data of a completed run.
type Result struct {
	Elements []string
	Header   string
	Body     string
	Table    *buffer.Table
}

// Columns returns one slice per buffer element.
func (r *Result) Columns() [][]string {
	return r.Table.Columns()
}

var (
	startCmd   = scpi.Join("ABOR", "*CLS")
	startQuery = scpi.Join("OUTP ON", "INIT:IMM", "*OPC?")
	fetchCmd   = scpi.Join("OUTP OFF", "ABOR", "*CLS")
	fetchQuery = "TRAC:DATA?"
	safeCmd    = scpi.Join("OUTP OFF", "ABOR", "*CLS")
	clearCmd   = scpi.Join("OUTP OFF", "ABOR", "*CLS", "TRAC:CLE")
	resetCmd   = scpi.Join("*RST", "*CLS")
)

// Run triggers a measurement, waits for completion without a timeout,
// fetches the trace buffer and writes it to sink (if not nil). Abort ends
// a run early.
func (c *Controller) Run(ctx context.Context, sink report.Sink) (*Result, error) {
	if !c.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer c.finishRun()

	if c.session == nil {
		r := c.Readiness()
		c.logger.Error("not ready to run", "failed", r.Failed())
		return nil, &ReadinessError{Readiness: r}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := c.publishCancel(cancel); err != nil {
		return nil, err
	}

	raw, err := c.session.exchange(runCtx, "", "TRAC:POIN:ACT?")
	if err != nil {
		return nil, c.runError("buffer check", err)
	}
	reply, err := scpi.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("smu: run: buffer check: %w", err)
	}
	if n, err := reply.Int(); err != nil {
		return nil, fmt.Errorf("smu: run: buffer check: %w", err)
	} else if n > 0 {
		c.logger.Error("data points not cleared", "points", n)
		return nil, ErrBufferNotCleared
	}

	r := c.Readiness()
	if !r.Ready() {
		c.logger.Error("not ready to run", "failed", r.Failed())
		return nil, &ReadinessError{Readiness: r}
	}
	if err := c.setFormat(runCtx); err != nil {
		return nil, c.runError("format", err)
	}
	elements := append([]string(nil), c.store.Format...)

	c.logger.Info("run started", "points", *c.store.PointCount, "elements", elements)
	if err := c.session.write(runCtx, startCmd); err != nil {
		return nil, c.runError("start", err)
	}
	if _, err := c.session.exchange(transport.Unbounded(runCtx), "", startQuery); err != nil {
		return nil, c.runError("wait", err)
	}
	data, err := c.session.exchange(runCtx, fetchCmd, fetchQuery)
	if err != nil {
		return nil, c.runError("fetch", err)
	}

	tbl, err := buffer.ReshapeText(data, len(elements))
	if err != nil {
		c.logger.Error("malformed buffer", "err", err)
		return nil, fmt.Errorf("smu: run: %w", err)
	}
	res := &Result{
		Elements: elements,
		Header:   report.Header(elements, c.delimiter),
		Body:     tbl.Text(c.delimiter),
		Table:    tbl,
	}
	c.logger.Info("run finished", "rows", tbl.Len())
	if sink != nil {
		if err := sink.Write(res.Header, res.Body); err != nil {
			return res, fmt.Errorf("smu: run: save: %w", err)
		}
	}
	return res, nil
}

// publishCancel makes cancel reachable from Abort. An Abort that arrived
// after the run was marked running but before this point is honored here.
func (c *Controller) publishCancel(cancel context.CancelFunc) error {
	c.cancelMu.Lock()
	defer c.cancelMu.Unlock()
	if c.aborted.Load() {
		cancel()
		return fmt.Errorf("%w before start", ErrAborted)
	}
	c.cancelRun = cancel
	return nil
}

// finishRun clears the run state under the same lock Abort takes, so an
// abort never outlives the run it was aimed at.
func (c *Controller) finishRun() {
	c.cancelMu.Lock()
	defer c.cancelMu.Unlock()
	c.cancelRun = nil
	c.aborted.Store(false)
	c.running.Store(false)
}

func (c *Controller) runError(stage string, err error) error {
	if c.aborted.Load() {
		return fmt.Errorf("%w during %s", ErrAborted, stage)
	}
	return fmt.Errorf("smu: run: %s: %w", stage, err)
}

// Abort forces the instrument to a safe state: output off, pending
// operation aborted, status cleared and unread replies discarded. It may
// be called from another goroutine while Run is waiting. Partial data is
// not recovered.
func (c *Controller) Abort(ctx context.Context) error {
	c.cancelMu.Lock()
	if c.running.Load() {
		c.aborted.Store(true)
	}
	if c.cancelRun != nil {
		c.cancelRun()
	}
	c.cancelMu.Unlock()

	if c.session == nil {
		return ErrNoSession
	}
	var errs []error
	if err := c.session.clear(); err != nil {
		errs = append(errs, err)
	}
	if err := c.session.write(ctx, safeCmd); err != nil {
		errs = append(errs, err)
	}
	c.logger.Warn("run aborted")
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("smu: abort: %w", err)
	}
	return nil
}

// ClearData empties the instrument's trace buffer. The configuration is
// kept.
func (c *Controller) ClearData(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	if c.session == nil {
		return ErrNoSession
	}
	if err := c.session.write(ctx, clearCmd); err != nil {
		return fmt.Errorf("smu: clear data: %w", err)
	}
	return nil
}

// Reset returns the instrument to its power-on defaults and forgets the
// confirmed configuration. The session is kept.
func (c *Controller) Reset(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	if c.session == nil {
		return ErrNoSession
	}
	if err := c.session.write(ctx, resetCmd); err != nil {
		return fmt.Errorf("smu: reset: %w", err)
	}
	c.store = NewStore()
	c.sweepState = SweepIdle
	return nil
}
