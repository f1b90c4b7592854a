package transport

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"time"
)

// DefaultSocketPort is the raw SCPI port used by LAN instruments and
// serial-to-Ethernet bridges.
const DefaultSocketPort = "5025"

// Socket is a raw SCPI connection over TCP with newline terminated messages.
type Socket struct {
	mu      sync.Mutex
	conn    net.Conn
	r       *bufio.Reader
	timeout time.Duration
}

// DialSocket connects to addr ("host" or "host:port").
func DialSocket(ctx context.Context, addr string, timeout time.Duration) (*Socket, error) {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, DefaultSocketPort)
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &Error{Op: "open", Cmd: addr, Err: err}
	}
	return NewSocket(conn, timeout), nil
}

// NewSocket wraps an established connection.
func NewSocket(conn net.Conn, timeout time.Duration) *Socket {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Socket{conn: conn, r: bufio.NewReader(conn), timeout: timeout}
}

// arm applies ctx's deadline (or the default timeout unless ctx is
// Unbounded) and forces an immediate deadline if ctx is cancelled
// mid-exchange.
func (s *Socket) arm(ctx context.Context) func() bool {
	deadline, ok := ctx.Deadline()
	if !ok && !isUnbounded(ctx) {
		deadline = time.Now().Add(s.timeout)
	}
	// zero deadline means none
	_ = s.conn.SetDeadline(deadline)
	return context.AfterFunc(ctx, func() {
		_ = s.conn.SetDeadline(time.Now())
	})
}

// Write sends a command.
func (s *Socket) Write(ctx context.Context, cmd string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return &Error{Op: "write", Cmd: cmd, Err: ErrClosed}
	}
	stop := s.arm(ctx)
	defer stop()
	if _, err := fmt.Fprintf(s.conn, "%s\n", cmd); err != nil {
		return &Error{Op: "write", Cmd: cmd, Err: s.cause(ctx, err)}
	}
	return nil
}

// Query sends q and reads one line.
func (s *Socket) Query(ctx context.Context, q string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return "", &Error{Op: "query", Cmd: q, Err: ErrClosed}
	}
	stop := s.arm(ctx)
	defer stop()
	if _, err := fmt.Fprintf(s.conn, "%s\n", q); err != nil {
		return "", &Error{Op: "query", Cmd: q, Err: s.cause(ctx, err)}
	}
	line, err := s.r.ReadString('\n')
	if err != nil {
		return "", &Error{Op: "query", Cmd: q, Err: s.cause(ctx, err)}
	}
	return trimReply(line), nil
}

func (s *Socket) cause(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// Clear is not available on a raw socket.
func (s *Socket) Clear() error {
	return &Error{Op: "clear", Err: ErrNotImplemented}
}

// Close closes the connection.
func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
