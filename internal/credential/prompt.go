package credential

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// Prompter asks the operator for a value.
type Prompter interface {
	// Prompt returns the value entered for name. sensitive values must not
	// be echoed.
	Prompt(ctx context.Context, name string, sensitive bool) (string, error)
}

// FormPrompter prompts with a single-field huh form.
type FormPrompter struct {
	// Output receives the form. Defaults to os.Stderr, keeping stdout for
	// the mirrored bootstrap log.
	Output io.Writer
}

// Compile-time interface satisfaction check.
var _ Prompter = (*FormPrompter)(nil)

// Prompt implements Prompter.
func (p *FormPrompter) Prompt(ctx context.Context, name string, sensitive bool) (string, error) {
	var value string
	input := huh.NewInput().Title(name + ":").Value(&value)
	if sensitive {
		input = input.EchoMode(huh.EchoModePassword)
	}

	out := p.Output
	if out == nil {
		out = os.Stderr
	}
	form := huh.NewForm(huh.NewGroup(input)).WithOutput(out).WithShowHelp(false)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", fmt.Errorf("prompt for %s: aborted by operator: %w", name, err)
		}
		return "", fmt.Errorf("prompt for %s: %w", name, err)
	}
	return value, nil
}

// StdinIsTerminal reports whether stdin is an interactive terminal.
func StdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
