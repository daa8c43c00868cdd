package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps the user's own XDG config out of the test.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	return t.TempDir()
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	c, err := Load(NewViper(), dir, "")
	require.NoError(t, err)

	d := Defaults()
	assert.Equal(t, d.Engine, c.Engine)
	assert.Equal(t, "1.5.0-SNAPSHOT", c.Version)
	assert.Equal(t, "registry.cn-shenzhen.aliyuncs.com", c.Registry)
	assert.Equal(t, "golfonline-cloud", c.Namespace)
	assert.Equal(t, "golfonline-im-biz", c.Image)
	assert.Equal(t, "configs", c.LocalConfigDir)
	assert.Equal(t, "dev-configs", c.DevConfigDir)
	assert.Equal(t, "build_temp", c.StagingDir)
	assert.Equal(t, "../TangSengDaoDaoServerLib", c.LibPath)
	assert.Equal(t, "TangSengDaoDaoServerLib", c.LibDest)
	assert.Empty(t, c.RegistryUsername)
	assert.Empty(t, c.RegistryPassword)
	assert.False(t, c.DryRun)
}

func TestLoadEnvironment(t *testing.T) {
	dir := isolate(t)
	t.Setenv("IMGBUILD_VERSION", "2.0.0")
	t.Setenv("IMGBUILD_REGISTRY_USERNAME", "builder")
	t.Setenv("IMGBUILD_REGISTRY_PASSWORD", "s3cret")
	t.Setenv("IMGBUILD_DRY_RUN", "true")
	t.Setenv("IMGBUILD_TARGET", "runtime")

	c, err := Load(NewViper(), dir, "")
	require.NoError(t, err)

	assert.Equal(t, "2.0.0", c.Version)
	assert.Equal(t, "builder", c.RegistryUsername)
	assert.Equal(t, "s3cret", c.RegistryPassword)
	assert.True(t, c.DryRun)
	assert.Equal(t, "runtime", c.Target)
	assert.NoError(t, c.RequireCredentials())
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	// Cleared on exit; godotenv sets variables that are absent.
	t.Setenv("IMGBUILD_IMAGE", "")
	require.NoError(t, os.Unsetenv("IMGBUILD_IMAGE"))
	t.Setenv("IMGBUILD_NAMESPACE", "from-env")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("IMGBUILD_IMAGE=from-dotenv\nIMGBUILD_NAMESPACE=ignored\n"), 0o600))

	c, err := Load(NewViper(), dir, "")
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", c.Image)
	assert.Equal(t, "from-env", c.Namespace, "existing environment wins over .env")
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "imgbuild.yaml"),
		[]byte("registry: registry.example.com/\nimage: im-biz\nno-cache: true\n"), 0o644))

	c, err := Load(NewViper(), dir, "")
	require.NoError(t, err)

	assert.Equal(t, "registry.example.com", c.Registry)
	assert.Equal(t, "im-biz", c.Image)
	assert.True(t, c.NoCache)
}

func TestLoadExplicitConfigFileMissing(t *testing.T) {
	dir := isolate(t)
	_, err := Load(NewViper(), dir, filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty engine", mutate: func(c *Config) { c.Engine = "" }, wantErr: true},
		{name: "empty image", mutate: func(c *Config) { c.Image = "" }, wantErr: true},
		{name: "bad version", mutate: func(c *Config) { c.Version = "latest" }, wantErr: true},
		{name: "nested staging dir", mutate: func(c *Config) { c.StagingDir = "tmp/stage" }, wantErr: true},
		{name: "dot staging dir", mutate: func(c *Config) { c.StagingDir = "." }, wantErr: true},
		{name: "empty lib path is allowed", mutate: func(c *Config) { c.LibPath = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Defaults()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequireCredentials(t *testing.T) {
	c := Defaults()
	assert.Error(t, c.RequireCredentials())

	c.RegistryUsername = "u"
	assert.Error(t, c.RequireCredentials())

	c.RegistryPassword = "p"
	assert.NoError(t, c.RequireCredentials())
}
