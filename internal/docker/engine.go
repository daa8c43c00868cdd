package docker

import (
	"context"
	"fmt"

	"imgbuild/internal/executil"
)

// Remediation is shown when the engine cannot be reached.
const Remediation = `Please make sure that:
  1. Docker Desktop (or the Docker engine) is installed
  2. Docker is running
  3. WSL2 integration is enabled in Docker Desktop settings (Windows hosts)

Details: https://docs.docker.com/go/wsl2/`

// CheckEngine runs "<engine> --version" and reports whether it succeeded.
func CheckEngine(ctx context.Context, r executil.Runner, engine string) error {
	if engine == "" {
		engine = "docker"
	}
	if err := r.Run(ctx, executil.Cmd{Name: engine, Args: []string{"--version"}, Quiet: true}); err != nil {
		return fmt.Errorf("%s is not installed or not running: %w", engine, err)
	}
	return nil
}
