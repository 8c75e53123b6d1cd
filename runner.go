package tex2png

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/google/shlex"

	"github.com/alnah/go-tex2png/internal/process"
)

// Command describes one external tool invocation.
type Command struct {
	Name   string
	Args   []string
	Dir    string    // working directory; empty = current
	Stdout io.Writer // nil = os.Stdout
	Stderr io.Writer // nil = os.Stderr
}

// CommandRunner abstracts process execution so backends can be tested
// without TeX installed.
//
// Run blocks until the process exits. It returns an error wrapping
// ErrToolStart when the process could not be started, and an *ExitError when
// it ran and exited unsuccessfully.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExitError reports a tool that ran and exited with a non-zero status.
type ExitError struct {
	Name string
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExecRunner implements CommandRunner using os/exec.
// The tool's output streams are passed through unchanged; stdin is not.
type ExecRunner struct{}

// Compile-time interface implementation check.
var _ CommandRunner = (*ExecRunner)(nil)

func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...) // #nosec G204 -- tool commands come from flags/config
	cmd.Dir = c.Dir
	cmd.Stdout = orDefault(c.Stdout, os.Stdout)
	cmd.Stderr = orDefault(c.Stderr, os.Stderr)

	// Cancellation kills the whole group: latex may have spawned font tools.
	process.StartInGroup(cmd)
	cmd.Cancel = func() error {
		return process.KillGroup(cmd.Process.Pid)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrToolStart, c.Name, err)
	}

	err := cmd.Wait()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", c.Name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Name: c.Name, Code: exitErr.ExitCode(), Err: err}
	}
	return fmt.Errorf("waiting for %s: %w", c.Name, err)
}

func orDefault(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}

// ParseCommand splits a configured tool command such as
// `latex -interaction=nonstopmode` into argv using shell quoting rules.
func ParseCommand(s string) ([]string, error) {
	argv, err := shlex.Split(s)
	if err != nil {
		return nil, fmt.Errorf("parsing command %q: %w", s, err)
	}
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}
	return argv, nil
}
