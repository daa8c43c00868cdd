// internal/docker/plan.go
//
// The planner turns a runtime.Context into a validated image reference.
// There is exactly one tag per run: <registry>/<namespace>/<image>:<version>.

package docker

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"

	"imgbuild/internal/runtime"
)

// Plan is the output of the planner.
type Plan struct {
	Ref      string // fully-qualified repo:tag
	Registry string // registry host the ref lives on
	Tag      string
}

// PlanImage validates the context's image reference.
func PlanImage(ctx runtime.Context) (Plan, error) {
	raw := strings.TrimSpace(ctx.ImageRef)
	if raw == "" {
		return Plan{}, fmt.Errorf("empty image reference")
	}
	named, err := reference.ParseNormalizedNamed(raw)
	if err != nil {
		return Plan{}, fmt.Errorf("invalid image reference %q: %w", raw, err)
	}
	tagged, ok := named.(reference.NamedTagged)
	if !ok {
		return Plan{}, fmt.Errorf("image reference %q has no tag", raw)
	}
	if _, digested := named.(reference.Digested); digested {
		return Plan{}, fmt.Errorf("image reference %q must not carry a digest", raw)
	}
	// Normalization would silently push somewhere else (e.g. docker.io).
	if named.String() != raw {
		return Plan{}, fmt.Errorf("image reference %q is not fully qualified (normalizes to %q)", raw, named.String())
	}
	return Plan{
		Ref:      named.String(),
		Registry: reference.Domain(named),
		Tag:      tagged.Tag(),
	}, nil
}
