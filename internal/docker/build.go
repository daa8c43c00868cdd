// internal/docker/build.go
package docker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"imgbuild/internal/executil"
)

// BuildImage runs "<engine> build" from inside opts.ContextPath.
func BuildImage(ctx context.Context, r executil.Runner, opts *BuildOptions) error {
	if opts == nil {
		return errors.New("BuildImage: opts is nil")
	}
	if len(opts.FullRefs) == 0 {
		return errors.New("BuildImage: FullRefs must have at least one repo:tag")
	}

	engine := strings.TrimSpace(opts.Engine)
	if engine == "" {
		engine = "docker"
	}
	df := strings.TrimSpace(opts.Dockerfile)
	if df == "" {
		df = "Dockerfile"
	}
	ctxPath := strings.TrimSpace(opts.ContextPath)
	if ctxPath == "" {
		return errors.New("BuildImage: ContextPath is empty")
	}

	if st, err := os.Stat(ctxPath); err != nil || !st.IsDir() {
		return fmt.Errorf("BuildImage: context %q not found or not a directory", ctxPath)
	}
	// The Dockerfile itself is left to the engine, which reports a missing one.
	dfPath := df
	if !filepath.IsAbs(dfPath) {
		dfPath = filepath.Join(ctxPath, df)
	}

	refs := dedupRefs(opts.FullRefs)
	args := buildArgs(opts, refs, df)

	// Logs
	logrus.Info("— Build Plan —")
	for _, ref := range refs {
		logrus.Infof("  tag       : %s", ref)
	}
	logrus.Infof("  Dockerfile: %s", dfPath)
	logrus.Infof("  Context   : %s", ctxPath)

	return r.Run(ctx, executil.Cmd{
		Dir:     ctxPath,
		Name:    engine,
		Args:    args,
		Display: engine + " " + executil.ShellQuoteArgs(redactBuildArgs(args)),
	})
}

// buildArgs assembles the argument list; the build context is always ".".
func buildArgs(opts *BuildOptions, refs []string, df string) []string {
	args := []string{"build"}
	for _, ref := range refs {
		args = append(args, "-t", ref)
	}
	args = append(args, "-f", df)
	if opts.Pull {
		args = append(args, "--pull")
	}
	if opts.NoCache {
		args = append(args, "--no-cache")
	}
	if opts.Target != "" {
		args = append(args, "--target", opts.Target)
	}
	for _, kv := range opts.Labels {
		if kv[0] != "" && kv[1] != "" {
			args = append(args, "--label", kv[0]+"="+kv[1])
		}
	}
	for _, kv := range opts.BuildArgs {
		if kv[0] != "" {
			args = append(args, "--build-arg", kv[0]+"="+kv[1])
		}
	}
	return append(args, ".")
}
