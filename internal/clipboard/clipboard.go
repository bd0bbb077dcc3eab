// Package clipboard copies text to the system clipboard through whichever copy
// command the platform provides.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/trezy/git-switch/internal/runner"
	"github.com/trezy/git-switch/internal/types"
	"github.com/trezy/git-switch/internal/utils"
)

// ErrUnavailable indicates no clipboard command could be found.
var ErrUnavailable = errors.New("no clipboard command available")

// Copier places text on the clipboard.
type Copier interface {
	Write(ctx context.Context, text string) error
}

// candidates are tried in order when no command is configured.
var candidates = [][]string{
	{"pbcopy"},
	{"wl-copy"},
	{"xclip", "-selection", "clipboard"},
	{"xsel", "--clipboard", "--input"},
	{"clip.exe"},
}

// Writer pipes text into a copy command.
type Writer struct {
	runner  runner.Runner
	command []string
}

// New creates a clipboard writer. command is a whitespace separated command
// line; when empty the first available candidate is used.
func New(r runner.Runner, command string) *Writer {
	return &Writer{runner: r, command: strings.Fields(command)}
}

// Command returns the command line that Write would run.
func (w *Writer) Command() ([]string, error) {
	if len(w.command) > 0 {
		if _, err := w.runner.LookPath(w.command[0]); err != nil {
			return nil, fmt.Errorf("%w: %s not found", ErrUnavailable, w.command[0])
		}
		return w.command, nil
	}
	for _, c := range candidates {
		if _, err := w.runner.LookPath(c[0]); err == nil {
			return c, nil
		}
	}
	return nil, ErrUnavailable
}

// Write implements Copier.
func (w *Writer) Write(ctx context.Context, text string) error {
	cmd, err := w.Command()
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrExternalTool, err)
	}
	if _, err := runner.Output(ctx, w.runner, strings.NewReader(text), cmd[0], cmd[1:]...); err != nil {
		// X11 and Wayland tools fail this way over SSH or in a bare TTY.
		if utils.ContainsAny(err.Error(), "can't open display", "no display", "wayland_display", "failed to connect to a wayland server") {
			return fmt.Errorf("%w: %w: %v", types.ErrExternalTool, ErrUnavailable, err)
		}
		return fmt.Errorf("%w: %v", types.ErrExternalTool, err)
	}
	return nil
}
