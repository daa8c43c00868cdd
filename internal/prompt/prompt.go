// Package prompt supplies the two operator decisions a build needs: which
// configuration profile to bake in and whether to push the result.
//
// Decisions can come from a terminal (Survey), from any line-oriented reader
// (Lines), or be fixed up front by flags (Preset). All of them apply the same
// coercion rules from the runtime package, so unrecognized answers fall back to
// the documented defaults instead of failing.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"imgbuild/internal/runtime"
)

// Decider answers the questions asked during a run.
type Decider interface {
	Profile(ctx context.Context) (runtime.Profile, error)
	ConfirmPush(ctx context.Context, ref string) (bool, error)
}

const (
	profileQuestion = "Select the build environment:\n[1] local\n[2] development"
	profileMessage  = "Enter choice (1/2)"
	pushMessage     = "Push the image to the remote registry? (Y/N)"
)

// Lines reads one line per question from In and writes prompts to Out.
// End of input counts as an empty answer. A cancelled context ends the wait
// even while a read is blocked.
type Lines struct {
	In  io.Reader
	Out io.Writer

	br      *bufio.Reader
	pending chan lineResult // read still in flight after a cancelled ask
}

type lineResult struct {
	line string
	err  error
}

// NewLines returns a Lines prompter.
func NewLines(in io.Reader, out io.Writer) *Lines {
	return &Lines{In: in, Out: out}
}

// Profile asks for the configuration profile; default "1".
func (l *Lines) Profile(ctx context.Context) (runtime.Profile, error) {
	fmt.Fprintln(l.Out, profileQuestion)
	ans, err := l.ask(ctx, profileMessage+" [1]: ")
	if err != nil {
		return "", err
	}
	return runtime.ResolveProfile(ans), nil
}

// ConfirmPush asks whether to push ref; default yes.
func (l *Lines) ConfirmPush(ctx context.Context, ref string) (bool, error) {
	fmt.Fprintf(l.Out, "Image: %s\n", ref)
	ans, err := l.ask(ctx, pushMessage+" [Y]: ")
	if err != nil {
		return false, err
	}
	return runtime.ResolvePush(ans), nil
}

func (l *Lines) ask(ctx context.Context, msg string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if l.br == nil {
		l.br = bufio.NewReader(l.In)
	}
	fmt.Fprint(l.Out, msg)

	if l.pending == nil {
		ch := make(chan lineResult, 1)
		go func() {
			line, err := l.br.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
		l.pending = ch
	}

	var res lineResult
	select {
	case <-ctx.Done():
		fmt.Fprintln(l.Out)
		return "", ctx.Err()
	case res = <-l.pending:
		l.pending = nil
	}

	if res.err != nil && res.err != io.EOF {
		return "", fmt.Errorf("read answer: %w", res.err)
	}
	if res.err == io.EOF {
		fmt.Fprintln(l.Out)
	}
	return strings.TrimSpace(res.line), nil
}
