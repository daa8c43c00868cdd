// internal/docker/types.go
package docker

type BuildOptions struct {
	Engine      string      // default: "docker"
	Dockerfile  string      // relative to ContextPath; default: "Dockerfile"
	ContextPath string      // staged tree; the build runs from inside it
	BuildArgs   [][2]string // KEY,VALUE (deterministic)
	Labels      [][2]string // optional

	FullRefs []string // e.g. ["reg/ns/app:1.5.0-SNAPSHOT"]

	Target  string // optional multi-stage target
	Pull    bool   // docker build --pull
	NoCache bool   // docker build --no-cache
}

// Credentials authenticate against a registry host.
type Credentials struct {
	Registry string
	Username string
	Password string
}
