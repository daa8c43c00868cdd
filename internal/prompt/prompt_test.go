package prompt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgbuild/internal/runtime"
)

func TestLines(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantProfile runtime.Profile
		wantPush    bool
	}{
		{name: "defaults on empty lines", input: "\n\n", wantProfile: runtime.ProfileLocal, wantPush: true},
		{name: "defaults on EOF", input: "", wantProfile: runtime.ProfileLocal, wantPush: true},
		{name: "dev and decline", input: "2\nN\n", wantProfile: runtime.ProfileDev, wantPush: false},
		{name: "lowercase n declines", input: "1\nn\n", wantProfile: runtime.ProfileLocal, wantPush: false},
		{name: "unknown choice falls back", input: "9\ny\n", wantProfile: runtime.ProfileLocal, wantPush: true},
		{name: "no trailing newline", input: "2\nN", wantProfile: runtime.ProfileDev, wantPush: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			l := NewLines(strings.NewReader(tt.input), &out)

			p, err := l.Profile(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantProfile, p)

			push, err := l.ConfirmPush(context.Background(), "reg/ns/app:1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantPush, push)

			assert.Contains(t, out.String(), "[1]: ")
			assert.Contains(t, out.String(), "reg/ns/app:1")
		})
	}
}

func TestLinesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := NewLines(strings.NewReader("2\n"), &bytes.Buffer{})
	_, err := l.Profile(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLinesCanceledWhileWaiting(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	l := NewLines(pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := l.Profile(ctx)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Profile did not return after cancellation")
	}
}

func TestLinesKeepsAnswerAfterCanceledAsk(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	l := NewLines(pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := l.Profile(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// The read left blocked by the cancelled ask delivers the next answer.
	go func() { _, _ = pw.Write([]byte("2\n")) }()
	p, err := l.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, runtime.ProfileDev, p)
}

type stubDecider struct {
	profile runtime.Profile
	push    bool
	err     error
	asked   int
}

func (s *stubDecider) Profile(context.Context) (runtime.Profile, error) {
	s.asked++
	return s.profile, s.err
}

func (s *stubDecider) ConfirmPush(context.Context, string) (bool, error) {
	s.asked++
	return s.push, s.err
}

func TestPreset(t *testing.T) {
	dev := runtime.ProfileDev
	no := false

	t.Run("fixed answers skip the fallback", func(t *testing.T) {
		fb := &stubDecider{profile: runtime.ProfileLocal, push: true}
		p := &Preset{ProfileChoice: &dev, PushChoice: &no, Fallback: fb}

		got, err := p.Profile(context.Background())
		require.NoError(t, err)
		assert.Equal(t, runtime.ProfileDev, got)
		push, err := p.ConfirmPush(context.Background(), "x")
		require.NoError(t, err)
		assert.False(t, push)
		assert.Zero(t, fb.asked)
	})

	t.Run("unset answers use the fallback", func(t *testing.T) {
		fb := &stubDecider{profile: runtime.ProfileDev, push: false}
		p := &Preset{Fallback: fb}

		got, err := p.Profile(context.Background())
		require.NoError(t, err)
		assert.Equal(t, runtime.ProfileDev, got)
		push, err := p.ConfirmPush(context.Background(), "x")
		require.NoError(t, err)
		assert.False(t, push)
		assert.Equal(t, 2, fb.asked)
	})

	t.Run("fallback errors propagate", func(t *testing.T) {
		boom := errors.New("boom")
		p := &Preset{Fallback: &stubDecider{err: boom}}
		_, err := p.Profile(context.Background())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("no fallback means defaults", func(t *testing.T) {
		p := &Preset{}
		got, err := p.Profile(context.Background())
		require.NoError(t, err)
		assert.Equal(t, runtime.ProfileLocal, got)
		push, err := p.ConfirmPush(context.Background(), "x")
		require.NoError(t, err)
		assert.True(t, push)
	})
}

func TestAskError(t *testing.T) {
	assert.NoError(t, askError(nil))
	assert.ErrorIs(t, askError(terminal.InterruptErr), ErrInterrupted)
	assert.ErrorIs(t, askError(fmt.Errorf("read: %w", terminal.InterruptErr)), ErrInterrupted)

	boom := errors.New("boom")
	err := askError(boom)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInterrupted)
}
