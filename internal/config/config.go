// internal/config/config.go
//
// Everything the build needs to know that is not an operator decision:
// image coordinates, engine binary, staging layout and registry credentials.
//
// Values are layered (lowest wins first):
//   - built-in defaults
//   - YAML config file (--config, ./imgbuild.yaml, $XDG_CONFIG_HOME/imgbuild/config.yaml)
//   - environment, IMGBUILD_* (a project-local .env is loaded first, never overriding)
//   - command-line flags bound by the caller
//
// Credentials have no default and are only required once a push is confirmed.

package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"imgbuild/internal/version"
)

// EnvPrefix is prepended to every environment key, e.g. IMGBUILD_REGISTRY_PASSWORD.
const EnvPrefix = "IMGBUILD"

// Keys shared by viper, flags and YAML files.
const (
	KeyEngine           = "engine"
	KeyVersion          = "version"
	KeyRegistry         = "registry"
	KeyNamespace        = "namespace"
	KeyImage            = "image"
	KeyDockerfile       = "dockerfile"
	KeyConfigArg        = "config-arg"
	KeyLocalConfigDir   = "local-config-dir"
	KeyDevConfigDir     = "dev-config-dir"
	KeyStagingDir       = "staging-dir"
	KeyLibPath          = "lib-path"
	KeyLibDest          = "lib-dest"
	KeyRegistryUsername = "registry-username"
	KeyRegistryPassword = "registry-password"
	KeyPull             = "pull"
	KeyNoCache          = "no-cache"
	KeyDryRun           = "dry-run"
	KeyTarget           = "target"
)

// Config is loaded once at start and read-only afterwards.
type Config struct {
	Engine     string // container engine CLI, "docker" unless overridden
	Version    string // image tag, e.g. "1.5.0-SNAPSHOT"
	Registry   string // registry host
	Namespace  string // registry namespace
	Image      string // image name
	Dockerfile string // relative to the staged tree
	ConfigArg  string // build-arg key receiving the configuration dir
	Target     string // optional multi-stage target

	LocalConfigDir string // profile "local"
	DevConfigDir   string // profile "dev"

	StagingDir string // directory name created inside the project root
	LibPath    string // sibling library, relative to the project root
	LibDest    string // subdirectory of the staging tree receiving LibPath

	RegistryUsername string
	RegistryPassword string

	Pull    bool
	NoCache bool
	DryRun  bool
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Engine:         "docker",
		Version:        "1.5.0-SNAPSHOT",
		Registry:       "registry.cn-shenzhen.aliyuncs.com",
		Namespace:      "golfonline-cloud",
		Image:          "golfonline-im-biz",
		Dockerfile:     "Dockerfile",
		ConfigArg:      "CONFIG_DIR",
		LocalConfigDir: "configs",
		DevConfigDir:   "dev-configs",
		StagingDir:     "build_temp",
		LibPath:        "../TangSengDaoDaoServerLib",
		LibDest:        "TangSengDaoDaoServerLib",
	}
}

// NewViper returns a viper instance with defaults and environment binding set
// up. Callers bind flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	d := Defaults()
	v.SetDefault(KeyEngine, d.Engine)
	v.SetDefault(KeyVersion, d.Version)
	v.SetDefault(KeyRegistry, d.Registry)
	v.SetDefault(KeyNamespace, d.Namespace)
	v.SetDefault(KeyImage, d.Image)
	v.SetDefault(KeyDockerfile, d.Dockerfile)
	v.SetDefault(KeyConfigArg, d.ConfigArg)
	v.SetDefault(KeyLocalConfigDir, d.LocalConfigDir)
	v.SetDefault(KeyDevConfigDir, d.DevConfigDir)
	v.SetDefault(KeyStagingDir, d.StagingDir)
	v.SetDefault(KeyLibPath, d.LibPath)
	v.SetDefault(KeyLibDest, d.LibDest)
	v.SetDefault(KeyRegistryUsername, "")
	v.SetDefault(KeyRegistryPassword, "")
	v.SetDefault(KeyPull, false)
	v.SetDefault(KeyNoCache, false)
	v.SetDefault(KeyDryRun, false)
	v.SetDefault(KeyTarget, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the project's .env and config file into v and returns the
// resulting Config. configFile may be empty.
func Load(v *viper.Viper, projectDir, configFile string) (Config, error) {
	// Local overrides for dev runs; never replaces variables already set.
	envFile := filepath.Join(projectDir, ".env")
	if err := godotenv.Load(envFile); err == nil {
		logrus.Debugf("Loaded environment from %s", envFile)
	}

	path, err := findConfigFile(projectDir, configFile)
	if err != nil {
		return Config{}, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "unable to read config file %s", path)
		}
		logrus.Debugf("Using config file %s", path)
	}

	c := Config{
		Engine:           strings.TrimSpace(v.GetString(KeyEngine)),
		Version:          strings.TrimSpace(v.GetString(KeyVersion)),
		Registry:         strings.TrimRight(strings.TrimSpace(v.GetString(KeyRegistry)), "/"),
		Namespace:        strings.Trim(strings.TrimSpace(v.GetString(KeyNamespace)), "/"),
		Image:            strings.TrimSpace(v.GetString(KeyImage)),
		Dockerfile:       strings.TrimSpace(v.GetString(KeyDockerfile)),
		ConfigArg:        strings.TrimSpace(v.GetString(KeyConfigArg)),
		LocalConfigDir:   strings.TrimSpace(v.GetString(KeyLocalConfigDir)),
		DevConfigDir:     strings.TrimSpace(v.GetString(KeyDevConfigDir)),
		StagingDir:       strings.TrimSpace(v.GetString(KeyStagingDir)),
		LibPath:          strings.TrimSpace(v.GetString(KeyLibPath)),
		LibDest:          strings.TrimSpace(v.GetString(KeyLibDest)),
		RegistryUsername: v.GetString(KeyRegistryUsername),
		RegistryPassword: v.GetString(KeyRegistryPassword),
		Pull:             v.GetBool(KeyPull),
		NoCache:          v.GetBool(KeyNoCache),
		DryRun:           v.GetBool(KeyDryRun),
		Target:           strings.TrimSpace(v.GetString(KeyTarget)),
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// findConfigFile resolves the config file to read, or "" when there is none.
// An explicitly requested file must exist.
func findConfigFile(projectDir, explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errors.Wrapf(err, "config file %s", explicit)
		}
		return explicit, nil
	}
	local := filepath.Join(projectDir, "imgbuild.yaml")
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}
	if p, err := xdg.SearchConfigFile(filepath.Join("imgbuild", "config.yaml")); err == nil {
		return p, nil
	}
	return "", nil
}

// Validate checks the fields every run needs. Credentials are checked by
// RequireCredentials once a push is confirmed.
func (c Config) Validate() error {
	required := []struct{ key, val string }{
		{KeyEngine, c.Engine},
		{KeyVersion, c.Version},
		{KeyRegistry, c.Registry},
		{KeyNamespace, c.Namespace},
		{KeyImage, c.Image},
		{KeyDockerfile, c.Dockerfile},
		{KeyConfigArg, c.ConfigArg},
		{KeyLocalConfigDir, c.LocalConfigDir},
		{KeyDevConfigDir, c.DevConfigDir},
		{KeyStagingDir, c.StagingDir},
		{KeyLibDest, c.LibDest},
	}
	for _, r := range required {
		if r.val == "" {
			return errors.Errorf("config %q must not be empty", r.key)
		}
	}
	if strings.ContainsAny(c.StagingDir, `/\`) || c.StagingDir == "." || c.StagingDir == ".." {
		return errors.Errorf("config %q must be a plain directory name, got %q", KeyStagingDir, c.StagingDir)
	}
	if _, err := version.Parse(c.Version); err != nil {
		return errors.Wrapf(err, "config %q", KeyVersion)
	}
	return nil
}

// RequireCredentials reports whether registry credentials are present.
func (c Config) RequireCredentials() error {
	if strings.TrimSpace(c.RegistryUsername) == "" {
		return errors.Errorf("missing %s_REGISTRY_USERNAME", EnvPrefix)
	}
	if c.RegistryPassword == "" {
		return errors.Errorf("missing %s_REGISTRY_PASSWORD", EnvPrefix)
	}
	return nil
}
