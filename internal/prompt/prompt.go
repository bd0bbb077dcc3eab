// Package prompt asks line-oriented questions on a terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// MaxAttempts bounds how often a question is repeated after invalid input.
const MaxAttempts = 3

var (
	// ErrAborted indicates input ended before a valid answer was given.
	ErrAborted = errors.New("input aborted")
	// ErrNotInteractive indicates stdin is not a terminal.
	ErrNotInteractive = errors.New("not an interactive terminal")
)

// Question describes a single free-text prompt.
type Question struct {
	Label    string
	Default  string
	Required bool
	// Validate rejects an answer; the question is repeated with the error
	// shown.
	Validate func(string) error
}

// Asker is the interactive input used by commands.
type Asker interface {
	Ask(q Question) (string, error)
	Confirm(label string, def bool) (bool, error)
	Choose(label string, options []string) (string, error)
}

// Prompter reads answers line by line from in and writes questions to out.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// New creates a prompter over arbitrary streams. It is treated as
// interactive.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, interactive: true}
}

// Stdio creates a prompter on stdin and stderr. It is interactive only when
// stdin is a terminal.
func Stdio() *Prompter {
	p := New(os.Stdin, os.Stderr)
	p.interactive = term.IsTerminal(int(os.Stdin.Fd()))
	return p
}

// Interactive reports whether questions can be answered.
func (p *Prompter) Interactive() bool {
	return p.interactive
}

// readLine returns the next trimmed line. A final line without newline is
// returned; io.EOF is returned only when nothing was read.
func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *Prompter) check() error {
	if !p.interactive {
		return ErrNotInteractive
	}
	return nil
}

// Ask asks q until a valid answer is given. An empty answer selects the
// default.
func (p *Prompter) Ask(q Question) (string, error) {
	if err := p.check(); err != nil {
		return "", err
	}

	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if q.Default != "" {
			fmt.Fprintf(p.out, "%s (default: %s): ", q.Label, q.Default)
		} else {
			fmt.Fprintf(p.out, "%s: ", q.Label)
		}

		answer, err := p.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(p.out)
				return "", ErrAborted
			}
			return "", fmt.Errorf("failed to read input: %w", err)
		}

		if answer == "" {
			answer = q.Default
		}
		if answer == "" && q.Required {
			fmt.Fprintln(p.out, "  A value is required.")
			continue
		}
		if q.Validate != nil {
			if err := q.Validate(answer); err != nil {
				fmt.Fprintf(p.out, "  %v\n", err)
				continue
			}
		}
		return answer, nil
	}
	return "", fmt.Errorf("%w: no valid answer after %d attempts", ErrAborted, MaxAttempts)
}

// ParseYesNo interprets a yes/no answer. ok is false for anything else.
func ParseYesNo(answer string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "yup":
		return true, true
	case "n", "no", "nope":
		return false, true
	}
	return false, false
}

// Confirm asks a yes/no question. An empty answer selects def.
func (p *Prompter) Confirm(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}

	answer, err := p.Ask(Question{
		Label: fmt.Sprintf("%s [%s]", label, hint),
		Validate: func(s string) error {
			if s == "" {
				return nil
			}
			if _, ok := ParseYesNo(s); !ok {
				return fmt.Errorf("please answer yes or no")
			}
			return nil
		},
	})
	if err != nil {
		return false, err
	}
	if answer == "" {
		return def, nil
	}
	value, _ := ParseYesNo(answer)
	return value, nil
}

// Choose asks for one of options, by number or by name.
func (p *Prompter) Choose(label string, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("nothing to choose from")
	}
	if err := p.check(); err != nil {
		return "", err
	}

	for i, opt := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, opt)
	}

	answer, err := p.Ask(Question{
		Label:    label,
		Required: true,
		Validate: func(s string) error {
			if _, ok := pick(s, options); !ok {
				return fmt.Errorf("choose one of: %s", strings.Join(options, ", "))
			}
			return nil
		},
	})
	if err != nil {
		return "", err
	}
	choice, _ := pick(answer, options)
	return choice, nil
}

func pick(answer string, options []string) (string, bool) {
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
		return options[n-1], true
	}
	for _, opt := range options {
		if opt == answer {
			return opt, true
		}
	}
	return "", false
}
