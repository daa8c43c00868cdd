package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"imgbuild/internal/runtime"
)

// ErrInterrupted is returned when the operator aborts a prompt with Ctrl-C.
var ErrInterrupted = errors.New("prompt interrupted")

// Survey asks on an interactive terminal.
type Survey struct {
	opts []survey.AskOpt
}

// NewSurvey returns a terminal prompter bound to the given stdio.
func NewSurvey(in terminal.FileReader, out terminal.FileWriter, errOut io.Writer) *Survey {
	return &Survey{opts: []survey.AskOpt{survey.WithStdio(in, out, errOut)}}
}

// Profile asks for the configuration profile; default "1".
func (s *Survey) Profile(ctx context.Context) (runtime.Profile, error) {
	var ans string
	q := &survey.Input{
		Message: profileQuestion + "\n" + profileMessage,
		Default: "1",
	}
	if err := s.ask(ctx, q, &ans); err != nil {
		return "", err
	}
	return runtime.ResolveProfile(ans), nil
}

// ConfirmPush asks whether to push ref; default yes.
//
// An Input is used rather than a Confirm so any answer other than "N" means
// yes instead of being rejected.
func (s *Survey) ConfirmPush(ctx context.Context, ref string) (bool, error) {
	var ans string
	q := &survey.Input{
		Message: fmt.Sprintf("%s\nImage: %s", pushMessage, ref),
		Default: "Y",
	}
	if err := s.ask(ctx, q, &ans); err != nil {
		return false, err
	}
	return runtime.ResolvePush(ans), nil
}

func (s *Survey) ask(ctx context.Context, q survey.Prompt, ans *string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return askError(survey.AskOne(q, ans, s.opts...))
}

// askError maps a survey failure to the errors callers tell apart.
func askError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, terminal.InterruptErr) {
		return ErrInterrupted
	}
	return fmt.Errorf("prompt failed: %w", err)
}
