package transport

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"
)

// serveLines answers each received line using reply until the pipe closes.
func serveLines(conn net.Conn, reply func(string) (string, bool)) {
	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		if out, ok := reply(strings.TrimSpace(line)); ok {
			if _, err := conn.Write([]byte(out + "\n")); err != nil {
				return
			}
		}
	}
}

func TestSocketQuery(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	go serveLines(server, func(line string) (string, bool) {
		if strings.HasSuffix(line, "?") {
			return "KEITHLEY,MODEL 2400,1,C30", true
		}
		return "", false
	})

	s := NewSocket(client, time.Second)
	defer s.Close()
	ctx := context.Background()

	if err := s.Write(ctx, "*CLS"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := s.Query(ctx, "*IDN?")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if got != "KEITHLEY,MODEL 2400,1,C30" {
		t.Errorf("Query() = %q", got)
	}
}

func TestSocketQueryCancelled(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	go serveLines(server, func(string) (string, bool) { return "", false })

	s := NewSocket(client, time.Minute)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := s.Query(ctx, "*OPC?")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Query() error = %v, want context.Canceled", err)
	}
}

func TestSocketClearNotImplemented(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	s := NewSocket(client, 0)
	defer s.Close()
	if err := s.Clear(); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("Clear() = %v, want ErrNotImplemented", err)
	}
}

func TestOpenSim(t *testing.T) {
	tr, err := Open(context.Background(), Spec{Kind: "SIM"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, ok := tr.(*Sim); !ok {
		t.Errorf("Open(sim) returned %T", tr)
	}
	if _, err := Open(context.Background(), Spec{Kind: "carrier-pigeon"}); err == nil {
		t.Errorf("expected error for unknown kind")
	}
}

func TestSocketUnboundedOutlastsTimeout(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	go serveLines(server, func(string) (string, bool) {
		time.Sleep(150 * time.Millisecond)
		return "1", true
	})

	s := NewSocket(client, 30*time.Millisecond)
	defer s.Close()

	if _, err := s.Query(context.Background(), "*OPC?"); err == nil {
		t.Fatalf("expected a timeout with the default deadline")
	}

	client2, server2 := net.Pipe()
	defer server2.Close()
	go serveLines(server2, func(string) (string, bool) {
		time.Sleep(150 * time.Millisecond)
		return "1", true
	})
	s2 := NewSocket(client2, 30*time.Millisecond)
	defer s2.Close()
	got, err := s2.Query(Unbounded(context.Background()), "*OPC?")
	if err != nil {
		t.Fatalf("unbounded Query failed: %v", err)
	}
	if got != "1" {
		t.Errorf("Query() = %q", got)
	}
}
