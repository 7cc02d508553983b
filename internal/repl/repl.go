// Package repl implements the line-oriented question loop.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Defaults for the interactive loop.
const (
	Prompt         = "Question > "
	ExitCommand    = "exit"
	ClosingMessage = "Session ended."
)

// maxLineBytes bounds a single pasted question.
const maxLineBytes = 1 << 20

// Asker answers one question.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// REPL reads questions line by line and prints the answers.
type REPL struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	asker  Asker

	promptStyle lipgloss.Style
	answerStyle lipgloss.Style
	errorStyle  lipgloss.Style
	dimStyle    lipgloss.Style
}

// New creates a REPL. Answers go to out, diagnostics to errOut.
func New(in io.Reader, out, errOut io.Writer, asker Asker) *REPL {
	outR := lipgloss.NewRenderer(out)
	errR := lipgloss.NewRenderer(errOut)
	return &REPL{
		in:          in,
		out:         out,
		errOut:      errOut,
		asker:       asker,
		promptStyle: outR.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		answerStyle: outR.NewStyle(),
		errorStyle:  errR.NewStyle().Foreground(lipgloss.Color("9")),
		dimStyle:    outR.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// IsExit reports whether line is the exit command, ignoring case and
// surrounding whitespace.
func IsExit(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), ExitCommand)
}

// Run loops until the exit command, end of input, or ctx is cancelled.
// A failed question is reported and the loop continues.
func (r *REPL) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(r.out, r.promptStyle.Render(Prompt))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintln(r.out)
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if IsExit(line) {
			break
		}

		answer, err := r.asker.Ask(ctx, line)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Fprintln(r.errOut, r.errorStyle.Render("Error: "+err.Error()))
			continue
		}
		fmt.Fprintln(r.out, r.answerStyle.Render(answer))
		fmt.Fprintln(r.out)
	}

	fmt.Fprintln(r.out, r.dimStyle.Render(ClosingMessage))
	return nil
}
