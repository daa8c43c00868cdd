// Package pipeline runs one image build from start to finish:
//
//	engine check -> profile -> stage project (+ sibling library) -> build
//	-> confirm -> login + push -> cleanup
//
// Every step is sequential and the first failure ends the run. The staging
// directory is released by a deferred Remove, so it is gone on every return
// path, including failures and interrupts. Callers map a non-nil error to a
// non-zero exit; the sentinel errors tell the failure classes apart.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"imgbuild/internal/config"
	"imgbuild/internal/docker"
	"imgbuild/internal/executil"
	"imgbuild/internal/prompt"
	"imgbuild/internal/runtime"
	"imgbuild/internal/staging"
)

// Pipeline holds the collaborators for a run. Config must already be
// validated.
type Pipeline struct {
	Config     config.Config
	ProjectDir string
	Runner     executil.Runner
	Probe      executil.Runner // engine availability check; Runner when nil
	Decider    prompt.Decider
	Out        io.Writer // summary and remediation text; os.Stdout when nil
}

// Result describes a completed run.
type Result struct {
	ImageRef string
	Profile  runtime.Profile
	Pushed   bool
}

// Run executes the pipeline.
func (p *Pipeline) Run(ctx context.Context) (res Result, err error) {
	out := p.Out
	if out == nil {
		out = os.Stdout
	}

	// 1) Engine must answer before anything touches the filesystem.
	probe := p.Probe
	if probe == nil {
		probe = p.Runner
	}
	if err := docker.CheckEngine(ctx, probe, p.Config.Engine); err != nil {
		logrus.Errorf("%v", err)
		fmt.Fprintln(out, docker.Remediation)
		return res, fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}

	// 2) Profile
	profile, err := p.Decider.Profile(ctx)
	if err != nil {
		return res, err
	}
	res.Profile = profile

	// 3) Resolve and validate the image before staging.
	rc, err := runtime.LoadContext(p.Config, p.ProjectDir, profile)
	if err != nil {
		return res, err
	}
	plan, err := docker.PlanImage(rc)
	if err != nil {
		return res, err
	}
	res.ImageRef = plan.Ref
	rc.PrintSummary(out)

	// 4) Stage
	stage, err := staging.Create(rc.StagingDir)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrStaging, err)
	}
	defer func() {
		logrus.Info("Cleaning up temporary files...")
		if rerr := stage.Remove(); rerr != nil {
			logrus.Errorf("%v", rerr)
			if err == nil {
				err = fmt.Errorf("%w: %w", ErrStaging, rerr)
			}
		}
	}()

	logrus.Info("Copying project files...")
	if err := stage.Populate(rc.ProjectDir); err != nil {
		return res, fmt.Errorf("%w: %w", ErrStaging, err)
	}
	if rc.LibDir != "" {
		merged, err := stage.Merge(rc.LibDir, rc.LibDest)
		if err != nil {
			return res, fmt.Errorf("%w: %w", ErrStaging, err)
		}
		if merged {
			logrus.Infof("Copied %s into %s", filepath.Base(rc.LibDir), rc.LibDest)
		} else {
			logrus.Debugf("Library %s not found; skipping", rc.LibDir)
		}
	}

	// 5) Build
	opts, err := docker.BuildOptionsFromContext(&rc, plan)
	if err != nil {
		return res, err
	}
	logrus.Infof("Building image with %s...", rc.ConfigDir)
	if err := docker.BuildImage(ctx, p.Runner, opts); err != nil {
		return res, fmt.Errorf("%w: %w", ErrBuild, err)
	}

	// 6) Confirm + push
	push, err := p.Decider.ConfirmPush(ctx, plan.Ref)
	if err != nil {
		return res, err
	}
	if !push {
		logrus.Info("Push cancelled")
		return res, nil
	}
	if err := p.Config.RequireCredentials(); err != nil {
		return res, fmt.Errorf("%w: %w", ErrMissingCredentials, err)
	}

	creds := docker.Credentials{
		Registry: plan.Registry,
		Username: p.Config.RegistryUsername,
		Password: p.Config.RegistryPassword,
	}
	if err := docker.PushImage(ctx, p.Runner, opts, creds); err != nil {
		var le *docker.LoginError
		if errors.As(err, &le) {
			return res, fmt.Errorf("%w: %w", ErrLogin, err)
		}
		return res, fmt.Errorf("%w: %w", ErrPush, err)
	}
	res.Pushed = true
	logrus.Info("Image push complete")
	return res, nil
}
