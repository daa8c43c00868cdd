package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Set via -ldflags "-X imgbuild/internal/version.buildVersion=..." in release builds.
var (
	buildVersion = ""
	gitCommit    = ""
)

// Tool returns the version of this binary, or "(local)" when it was built
// without linker flags.
func Tool() string {
	v := strings.TrimPrefix(strings.TrimSpace(buildVersion), "v")
	c := strings.TrimSpace(gitCommit)
	if v == "" || c == "" {
		return "(local)"
	}
	return fmt.Sprintf("%s %s [%s]", v, c, runtime.GOARCH)
}
