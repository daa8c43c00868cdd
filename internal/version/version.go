package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is an image version as written in config, e.g. "1.5.0-SNAPSHOT".
type Version struct {
	raw string
	sv  *semver.Version
}

// Parse parses a version string in the format "X.Y.Z[-pre][+meta]".
// A leading "v" is accepted and kept.
func Parse(versionStr string) (Version, error) {
	s := strings.TrimSpace(versionStr)
	if s == "" {
		return Version{}, fmt.Errorf("invalid version: empty")
	}
	sv, err := semver.StrictNewVersion(strings.TrimPrefix(s, "v"))
	if err != nil {
		return Version{}, fmt.Errorf("invalid version format: expected X.Y.Z[-pre], got %s: %w", versionStr, err)
	}
	if sv.Metadata() != "" {
		// Docker tags cannot carry "+".
		return Version{}, fmt.Errorf("invalid version %s: build metadata is not allowed in image tags", versionStr)
	}
	return Version{raw: s, sv: sv}, nil
}

// String returns the version exactly as configured; it is used as the image tag.
func (v Version) String() string {
	return v.raw
}

// Prerelease returns the pre-release part, e.g. "SNAPSHOT".
func (v Version) Prerelease() string {
	if v.sv == nil {
		return ""
	}
	return v.sv.Prerelease()
}

// IsSnapshot reports whether the pre-release marks a development build.
func (v Version) IsSnapshot() bool {
	return strings.Contains(strings.ToUpper(v.Prerelease()), "SNAPSHOT")
}
