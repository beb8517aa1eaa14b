// Package prompt implements the interactive confirmation port for
// cross-platform executions: a visible countdown that proceeds on timeout
// and cancels on a keypress.
package prompt

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/aretw0/stateline/pkg/ports"
)

// Console prompts on a terminal. When stdin is a real terminal it switches
// to raw mode so a single keypress cancels; otherwise it falls back to
// line-buffered reads. Terminal state is restored on every exit path.
type Console struct {
	In  *os.File
	Out io.Writer
}

// NewConsole creates a prompt bound to stdin/stderr.
func NewConsole() *Console {
	return &Console{In: os.Stdin, Out: os.Stderr}
}

// Confirm displays the message and counts down. The timeout resolves to
// Proceed; any keypress resolves to Cancel.
func (c *Console) Confirm(ctx context.Context, message string, timeout time.Duration) (ports.Decision, error) {
	out := c.Out
	if out == nil {
		out = os.Stderr
	}

	p := termenv.ColorProfile()
	fmt.Fprintln(out)
	fmt.Fprintln(out, termenv.String(message).Foreground(p.Color("#f59e0b")).Bold())

	keypress, restore, err := c.listen()
	if err != nil {
		return ports.Cancel, err
	}
	defer restore()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	remaining := int(timeout.Round(time.Second) / time.Second)
	render := func() {
		line := fmt.Sprintf("proceeding in %ds, press any key to cancel", remaining)
		fmt.Fprintf(out, "\r%s ", termenv.String(line).Foreground(p.Color("#94a3b8")))
	}
	render()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return ports.Cancel, ctx.Err()
		case <-deadline.C:
			fmt.Fprintln(out)
			return ports.Proceed, nil
		case <-tick.C:
			if remaining > 0 {
				remaining--
			}
			render()
		case _, ok := <-keypress:
			fmt.Fprintln(out)
			if !ok {
				// Input closed without a keypress: nobody is attending,
				// treat like the timeout.
				return ports.Proceed, nil
			}
			return ports.Cancel, nil
		}
	}
}

// listen starts a reader goroutine and returns a channel signaled on the
// first byte of input, plus a restore func for terminal state.
func (c *Console) listen() (<-chan byte, func(), error) {
	in := c.In
	if in == nil {
		in = os.Stdin
	}

	restore := func() {}
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to enter raw mode: %w", err)
		}
		restore = func() { _ = term.Restore(fd, oldState) }
	}

	ch := make(chan byte, 1)
	go func() {
		defer close(ch)
		buf := make([]byte, 1)
		n, err := in.Read(buf)
		if err != nil || n == 0 {
			return
		}
		ch <- buf[0]
	}()
	return ch, restore, nil
}

// Auto is a non-interactive prompt with a fixed decision, for CI runs and
// tests.
type Auto struct {
	Decision ports.Decision
}

// Confirm returns the configured decision immediately.
func (a Auto) Confirm(ctx context.Context, message string, timeout time.Duration) (ports.Decision, error) {
	return a.Decision, nil
}
