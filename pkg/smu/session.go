package smu

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/idn"
	"github.com/OpenTraceLab/OpenTraceSMU/pkg/transport"
)

// Session is a live, identified instrument connection. Commands reach the
// instrument only through a Session.
type Session struct {
	tr       transport.Transport
	identity idn.Identity
	model    idn.Model
	known    bool
	logger   *log.Logger
}

// Identity returns the instrument's *IDN? fields.
func (s *Session) Identity() idn.Identity { return s.identity }

// Model returns the model table entry and whether the model is known.
func (s *Session) Model() (idn.Model, bool) { return s.model, s.known }

// exchange sends cmd (if any) and then query (if any), returning the raw
// reply. It is the only place transport errors surface.
func (s *Session) exchange(ctx context.Context, cmd, query string) (string, error) {
	if cmd != "" {
		s.logger.Debug("write", "cmd", cmd)
		if err := s.tr.Write(ctx, cmd); err != nil {
			s.logger.Error("transport failure", "cmd", cmd, "err", err)
			return "", err
		}
	}
	if query == "" {
		return "", nil
	}
	s.logger.Debug("query", "q", query)
	reply, err := s.tr.Query(ctx, query)
	if err != nil {
		s.logger.Error("transport failure", "query", query, "err", err)
		return "", err
	}
	s.logger.Debug("reply", "q", query, "reply", reply)
	return reply, nil
}

func (s *Session) write(ctx context.Context, cmd string) error {
	_, err := s.exchange(ctx, cmd, "")
	return err
}

// clear issues a device clear. Links without one are not an error.
func (s *Session) clear() error {
	if err := s.tr.Clear(); err != nil && !errors.Is(err, transport.ErrNotImplemented) {
		return err
	}
	return nil
}

func (s *Session) close() error {
	return s.tr.Close()
}
