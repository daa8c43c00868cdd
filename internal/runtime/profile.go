package runtime

import (
	"fmt"
	"strings"

	"imgbuild/internal/config"
)

// Profile selects which configuration directory is baked into the image.
type Profile string

const (
	ProfileLocal Profile = "local"
	ProfileDev   Profile = "dev"
)

// ResolveProfile maps a prompt answer to a profile. "2" selects dev; anything
// else, including empty input, selects local.
func ResolveProfile(answer string) Profile {
	if strings.TrimSpace(answer) == "2" {
		return ProfileDev
	}
	return ProfileLocal
}

// ParseProfile is the strict variant used for flags.
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "local":
		return ProfileLocal, nil
	case "2", "dev", "development":
		return ProfileDev, nil
	default:
		return "", fmt.Errorf("invalid profile %q: must be one of local (1), dev (2)", s)
	}
}

// ConfigDir returns the configuration directory name for p.
func (p Profile) ConfigDir(c config.Config) string {
	if p == ProfileDev {
		return c.DevConfigDir
	}
	return c.LocalConfigDir
}

// Label is the human-readable name shown in prompts and summaries.
func (p Profile) Label() string {
	if p == ProfileDev {
		return "development"
	}
	return "local"
}

// ResolvePush maps a confirmation answer to a decision. Only "N" (any case)
// declines; empty input means yes.
func ResolvePush(answer string) bool {
	return strings.ToUpper(strings.TrimSpace(answer)) != "N"
}
