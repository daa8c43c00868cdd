// internal/docker/push.go
//
// Handles pushing built images to the registry.
// - Logs in with the password on stdin, pushes each tag, logs out.
// - Never puts the password on the command line.
//
// Keep this file focused only on the registry side of the flow.
// Building/tagging is handled elsewhere.

package docker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"imgbuild/internal/executil"
)

// LoginError and PushError let callers tell the two failure points apart.
type LoginError struct{ Err error }

func (e *LoginError) Error() string { return "registry login failed: " + e.Err.Error() }
func (e *LoginError) Unwrap() error { return e.Err }

type PushError struct {
	Ref string
	Err error
}

func (e *PushError) Error() string { return fmt.Sprintf("push %s failed: %v", e.Ref, e.Err) }
func (e *PushError) Unwrap() error { return e.Err }

// PushImage logs into creds.Registry and pushes every ref in opts.FullRefs.
func PushImage(ctx context.Context, r executil.Runner, opts *BuildOptions, creds Credentials) error {
	if opts == nil {
		return errors.New("PushImage: opts is nil")
	}
	refs := dedupRefs(opts.FullRefs)
	if len(refs) == 0 {
		return errors.New("PushImage: no refs to push (FullRefs empty)")
	}
	if creds.Registry == "" || creds.Username == "" || creds.Password == "" {
		return errors.New("PushImage: registry, username and password are required")
	}
	engine := opts.Engine
	if engine == "" {
		engine = "docker"
	}

	logrus.Infof("Logging in to %s", creds.Registry)
	if err := login(ctx, r, engine, creds); err != nil {
		return &LoginError{Err: err}
	}
	defer logout(r, engine, creds.Registry)

	// Push each tag
	for _, ref := range refs {
		if err := pushRef(ctx, r, engine, ref); err != nil {
			return &PushError{Ref: ref, Err: err}
		}
	}
	return nil
}

// login runs "<engine> login" with the password on stdin.
func login(ctx context.Context, r executil.Runner, engine string, creds Credentials) error {
	return r.Run(ctx, executil.Cmd{
		Name:  engine,
		Args:  []string{"login", creds.Registry, "-u", creds.Username, "--password-stdin"},
		Stdin: strings.NewReader(creds.Password),
	})
}

// logout runs "<engine> logout", but doesn't fail the run if it errors.
// It uses a fresh context so an interrupted push still logs out.
func logout(r executil.Runner, engine, registry string) {
	if err := r.Run(context.Background(), executil.Cmd{Name: engine, Args: []string{"logout", registry}}); err != nil {
		logrus.Warnf("%s logout failed: %v", engine, err)
	}
}

// pushRef pushes a single tag.
func pushRef(ctx context.Context, r executil.Runner, engine, ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	logrus.Infof("Pushing image: %s", ref)
	return r.Run(ctx, executil.Cmd{Name: engine, Args: []string{"push", ref}})
}
