// Package prompt supplies replacement values for smu setters.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/smu"
)

var (
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Italic(true)
	retryStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// None never has a value, so every invalid field ends not configured.
type None struct{}

// Prompt implements smu.Prompter.
func (None) Prompt(context.Context, smu.Request) (string, bool) {
	return "", false
}

// Terminal asks on Out and reads one line per request from In. An empty
// line or end of input means no value. Close releases the reader goroutine
// once In delivers its next line or ends.
type Terminal struct {
	In  io.Reader
	Out io.Writer

	once      sync.Once
	closeOnce sync.Once
	lines     chan string
	done      chan struct{}
}

// NewTerminal returns a prompter reading in and writing out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{In: in, Out: out}
}

func (t *Terminal) start() {
	t.lines = make(chan string, 1)
	t.done = make(chan struct{})
	go func() {
		defer close(t.lines)
		sc := bufio.NewScanner(t.In)
		for sc.Scan() {
			select {
			case t.lines <- sc.Text():
			case <-t.done:
				return
			}
		}
	}()
}

// Close stops the terminal. Later prompts have no value.
func (t *Terminal) Close() error {
	t.once.Do(t.start)
	t.closeOnce.Do(func() { close(t.done) })
	return nil
}

// Prompt implements smu.Prompter.
func (t *Terminal) Prompt(ctx context.Context, req smu.Request) (string, bool) {
	t.once.Do(t.start)
	select {
	case <-t.done:
		return "", false
	default:
	}

	if req.Attempt > 1 {
		fmt.Fprintln(t.Out, retryStyle.Render(fmt.Sprintf("attempt %d", req.Attempt)))
	}
	hint := ""
	if req.Constraint != nil {
		hint = " " + hintStyle.Render("["+req.Constraint.Describe()+"]")
	}
	fmt.Fprintf(t.Out, "%s%s ", questionStyle.Render(req.Message), hint)

	select {
	case <-ctx.Done():
		fmt.Fprintln(t.Out)
		return "", false
	case <-t.done:
		fmt.Fprintln(t.Out)
		return "", false
	case line, ok := <-t.lines:
		if !ok {
			fmt.Fprintln(t.Out)
			return "", false
		}
		line = strings.TrimSpace(line)
		return line, line != ""
	}
}
