// internal/docker/options.go
//
// This layer adapts a runtime.Context plus its Plan into concrete
// BuildOptions for the build runner: tag, build args and OCI labels.

package docker

import (
	"fmt"
	"strings"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"imgbuild/internal/runtime"
)

// BuildOptionsFromContext produces the options for building c's image.
func BuildOptionsFromContext(c *runtime.Context, plan Plan) (*BuildOptions, error) {
	if c == nil {
		return nil, fmt.Errorf("nil build context")
	}
	if strings.TrimSpace(c.StagingDir) == "" {
		return nil, fmt.Errorf("staging dir is empty")
	}
	if plan.Ref == "" {
		return nil, fmt.Errorf("no image ref produced by planner")
	}
	if strings.TrimSpace(c.ConfigArg) == "" || strings.TrimSpace(c.ConfigDir) == "" {
		return nil, fmt.Errorf("configuration build arg is empty (profile=%s)", c.Profile)
	}

	labels := [][2]string{
		{ocispec.AnnotationTitle, c.Image},
		{ocispec.AnnotationVersion, c.Version.String()},
		{ocispec.AnnotationRevision, c.GitSHA},
		{ocispec.AnnotationSource, c.SourceURL},
	}

	return &BuildOptions{
		Engine:      c.Engine,
		Dockerfile:  c.Dockerfile,
		ContextPath: c.StagingDir,
		BuildArgs:   [][2]string{{c.ConfigArg, c.ConfigDir}},
		Labels:      labels,
		FullRefs:    []string{plan.Ref},
		Target:      c.Target,
		Pull:        c.Pull,
		NoCache:     c.NoCache,
	}, nil
}
