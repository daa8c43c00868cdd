// internal/executil/executil.go
package executil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
)

// Cmd describes one external process invocation.
type Cmd struct {
	Dir   string    // working directory; "" means the current one
	Name  string    // binary, e.g. "docker"
	Args  []string  // arguments after Name
	Stdin io.Reader // optional; used for secrets such as --password-stdin
	Quiet bool      // discard stdout/stderr (version probes)

	// Display replaces the echoed command line, e.g. with secrets redacted.
	Display string
}

// String renders the command the way it is echoed to the operator.
func (c Cmd) String() string {
	if c.Display != "" {
		return c.Display
	}
	return c.Name + " " + ShellQuoteArgs(c.Args)
}

// Runner executes commands. The real implementation shells out; tests record.
type Runner interface {
	Run(ctx context.Context, cmd Cmd) error
}

// New returns the runner for the requested mode.
func New(dry bool) Runner {
	if dry {
		return &DryRunner{Out: os.Stdout}
	}
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// ExecRunner runs commands with inherited stdout/stderr.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run blocks until the process exits. Cancelling ctx kills the process.
func (r *ExecRunner) Run(ctx context.Context, c Cmd) error {
	return runCore(ctx, r, c)
}

// DryRunner logs the command that would be run without executing.
type DryRunner struct {
	Out io.Writer
}

// Run prints the command and returns nil.
func (r *DryRunner) Run(_ context.Context, c Cmd) error {
	if c.Dir != "" {
		fmt.Fprintf(r.Out, "[DRY RUN in %s] %s\n", c.Dir, c)
	} else {
		fmt.Fprintf(r.Out, "[DRY RUN] %s\n", c)
	}
	return nil
}

// ----------------------------------------------------------------

func runCore(ctx context.Context, r *ExecRunner, c Cmd) error {
	fullCmd := c.String()
	prefix := ""
	if c.Dir != "" {
		prefix = " in " + c.Dir
	}

	if ctx == nil {
		ctx = context.Background()
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	if c.Quiet {
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
	} else {
		cmd.Stdout = r.Stdout
		cmd.Stderr = r.Stderr
	}
	if !c.Quiet {
		logrus.Infof("Running%s: %s", prefix, fullCmd)
	} else {
		logrus.Debugf("Running%s: %s", prefix, fullCmd)
	}
	if err := cmd.Run(); err != nil {
		// context cancellations show clearly
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				return fmt.Errorf("command timed out: %s", fullCmd)
			}
			return fmt.Errorf("command canceled: %s: %w", fullCmd, ctxErr)
		}
		// include exit status if available
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
				return fmt.Errorf("command failed (exit=%d): %s: %w", status.ExitStatus(), fullCmd, err)
			}
		}
		return fmt.Errorf("failed to run command: %s: %w", fullCmd, err)
	}
	return nil
}

// ShellQuoteArgs returns a printable, shell-safe representation of args.
func ShellQuoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\n\"'`$\\*?[]{}()<>|&;") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		quoted[i] = a
	}
	return strings.Join(quoted, " ")
}
