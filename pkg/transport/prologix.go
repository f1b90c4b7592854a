package transport

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/gotmc/prologix"
	"github.com/gotmc/prologix/driver/vcp"
)

// Prologix reaches a GPIB instrument through a Prologix USB-GPIB controller
// on a virtual serial port.
type Prologix struct {
	mu   sync.Mutex
	port *vcp.VCP
	gpib *prologix.Controller
}

// NewPrologix opens serialPort and addresses the instrument at gpibAddr.
func NewPrologix(serialPort string, gpibAddr int) (*Prologix, error) {
	port, err := vcp.NewVCP(serialPort)
	if err != nil {
		return nil, &Error{Op: "open", Cmd: serialPort, Err: err}
	}
	gpib, err := prologix.NewController(port, gpibAddr, false)
	if err != nil {
		port.Close()
		return nil, &Error{Op: "open", Cmd: serialPort, Err: err}
	}
	return &Prologix{port: port, gpib: gpib}, nil
}

// Write sends a command.
func (p *Prologix) Write(ctx context.Context, cmd string) error {
	if err := ctx.Err(); err != nil {
		return &Error{Op: "write", Cmd: cmd, Err: err}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gpib == nil {
		return &Error{Op: "write", Cmd: cmd, Err: ErrClosed}
	}
	if err := p.gpib.Command(cmd); err != nil {
		return &Error{Op: "write", Cmd: cmd, Err: err}
	}
	return nil
}

type queryResult struct {
	reply string
	err   error
}

// Query sends q and waits for the reply or for ctx to end. The serial read
// itself cannot be interrupted, so on cancellation the exchange finishes in
// the background and its reply is dropped.
func (p *Prologix) Query(ctx context.Context, q string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{Op: "query", Cmd: q, Err: err}
	}
	done := make(chan queryResult, 1)
	go func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.gpib == nil {
			done <- queryResult{err: ErrClosed}
			return
		}
		reply, err := p.gpib.Query(q)
		if errors.Is(err, io.EOF) && reply != "" {
			err = nil
		}
		done <- queryResult{reply: trimReply(reply), err: err}
	}()
	select {
	case res := <-done:
		if res.err != nil {
			return "", &Error{Op: "query", Cmd: q, Err: res.err}
		}
		return res.reply, nil
	case <-ctx.Done():
		return "", &Error{Op: "query", Cmd: q, Err: ctx.Err()}
	}
}

// Clear sends the Selected Device Clear message.
func (p *Prologix) Clear() error {
	if p.gpib == nil {
		return &Error{Op: "clear", Err: ErrClosed}
	}
	if err := p.gpib.ClearDevice(); err != nil {
		return &Error{Op: "clear", Err: err}
	}
	return nil
}

// Close discards unread data and closes the serial port.
func (p *Prologix) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.port == nil {
		return nil
	}
	_ = p.port.Flush()
	err := p.port.Close()
	p.port, p.gpib = nil, nil
	return err
}
