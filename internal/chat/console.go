package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Console is a stdin/stdout chat transport for local development. Lines
// are treated as messages from a fixed handle with moderator privileges;
// a "handle: text" prefix impersonates another user.
type Console struct {
	out           io.Writer
	defaultHandle string
}

// Ensure Console implements both transport interfaces
var (
	_ Speaker   = (*Console)(nil)
	_ Whisperer = (*Console)(nil)
)

// NewConsole creates a console transport writing to out
func NewConsole(out io.Writer, defaultHandle string) *Console {
	return &Console{out: out, defaultHandle: defaultHandle}
}

// Say prints a public message
func (c *Console) Say(message string) {
	fmt.Fprintf(c.out, "[chat] %s\n", message)
}

// Whisper prints a private message
func (c *Console) Whisper(ctx context.Context, handle, message string) error {
	fmt.Fprintf(c.out, "[whisper -> %s] %s\n", handle, message)
	return nil
}

// Run reads lines from in and feeds them to onMessage until EOF or the
// context is cancelled.
func (c *Console) Run(ctx context.Context, in io.Reader, onMessage func(Message)) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		handle := c.defaultHandle
		if idx := strings.Index(line, ": "); idx > 0 && !strings.HasPrefix(line, "!") {
			handle = line[:idx]
			line = line[idx+2:]
		}

		onMessage(Message{Handle: handle, Text: line, IsMod: true})
	}
	return scanner.Err()
}
