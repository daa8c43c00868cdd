package runtime

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"imgbuild/internal/config"
	"imgbuild/internal/version"
)

// Context captures everything resolved for one run: where the project lives,
// where it is staged, which profile was chosen and what the image is called.
type Context struct {
	ProjectDir string // absolute project root (the tree that gets staged)
	StagingDir string // absolute staging path inside ProjectDir
	LibDir     string // absolute sibling library path; "" when disabled
	LibDest    string // subdirectory of StagingDir receiving LibDir
	LibPresent bool   // LibDir exists at load time

	Profile   Profile
	ConfigDir string // value passed as ConfigArg
	ConfigArg string // build-arg key, e.g. CONFIG_DIR

	Engine     string
	Dockerfile string
	Target     string
	Registry   string
	Namespace  string
	Image      string
	Version    version.Version

	// Proposed image reference: <registry>/<namespace>/<image>:<version>.
	// Validated by the docker planner before use.
	ImageRef string

	// Provenance picked up from the environment when available.
	GitSHA    string
	SourceURL string

	Pull    bool
	NoCache bool
	DryRun  bool
}

// LoadContext resolves cfg against projectDir for the chosen profile.
func LoadContext(cfg config.Config, projectDir string, profile Profile) (Context, error) {
	root, err := filepath.Abs(projectDir)
	if err != nil {
		return Context{}, fmt.Errorf("resolve project dir %q: %w", projectDir, err)
	}
	if st, err := os.Stat(root); err != nil || !st.IsDir() {
		return Context{}, fmt.Errorf("project dir %q not found or not a directory", root)
	}

	v, err := version.Parse(cfg.Version)
	if err != nil {
		return Context{}, err
	}

	ctx := Context{
		ProjectDir: root,
		StagingDir: filepath.Join(root, cfg.StagingDir),
		LibDest:    cfg.LibDest,
		Profile:    profile,
		ConfigDir:  profile.ConfigDir(cfg),
		ConfigArg:  cfg.ConfigArg,
		Engine:     cfg.Engine,
		Dockerfile: cfg.Dockerfile,
		Target:     cfg.Target,
		Registry:   cfg.Registry,
		Namespace:  cfg.Namespace,
		Image:      cfg.Image,
		Version:    v,
		GitSHA:     firstNonEmpty(os.Getenv("GIT_SHA"), os.Getenv("CI_COMMIT_SHA")),
		SourceURL:  firstNonEmpty(os.Getenv("CI_PROJECT_URL"), os.Getenv("SOURCE_URL")),
		Pull:       cfg.Pull,
		NoCache:    cfg.NoCache,
		DryRun:     cfg.DryRun,
	}

	if lib := strings.TrimSpace(cfg.LibPath); lib != "" {
		if !filepath.IsAbs(lib) {
			lib = filepath.Join(root, lib)
		}
		ctx.LibDir = filepath.Clean(lib)
		if st, err := os.Stat(ctx.LibDir); err == nil && st.IsDir() {
			ctx.LibPresent = true
		}
	}

	ctx.ImageRef = fmt.Sprintf("%s/%s/%s:%s", ctx.Registry, ctx.Namespace, ctx.Image, v.String())
	return ctx, nil
}

// PrintSummary emits a scannable report of what is about to be built.
func (c *Context) PrintSummary(w io.Writer) {
	fmt.Fprintln(w, "Build Summary")
	fmt.Fprintln(w, "-------------")

	// ── Project ─────────────────────────────────────────────────────────────────
	fmt.Fprintln(w, "Project")
	fmt.Fprintf(w, "  Project Dir           : %s\n", c.ProjectDir)
	fmt.Fprintf(w, "  Staging Dir           : %s\n", c.StagingDir)
	fmt.Fprintf(w, "  Library Dir           : %s\n", formatOrNone(c.LibDir))
	fmt.Fprintf(w, "  Library Present       : %s\n", emoji(c.LibPresent))
	fmt.Fprintln(w)

	// ── Profile ─────────────────────────────────────────────────────────────────
	fmt.Fprintln(w, "Profile")
	fmt.Fprintf(w, "  Profile               : %s\n", c.Profile.Label())
	fmt.Fprintf(w, "  Build Arg             : %s=%s\n", c.ConfigArg, c.ConfigDir)
	fmt.Fprintln(w)

	// ── Image ───────────────────────────────────────────────────────────────────
	fmt.Fprintln(w, "Image")
	fmt.Fprintf(w, "  Image Ref             : %s\n", c.ImageRef)
	fmt.Fprintf(w, "  Version               : %s\n", c.Version)
	fmt.Fprintf(w, "  Snapshot              : %s\n", emoji(c.Version.IsSnapshot()))
	fmt.Fprintf(w, "  Dockerfile            : %s\n", c.Dockerfile)
	fmt.Fprintf(w, "  Target                : %s\n", formatOrNone(c.Target))
	fmt.Fprintf(w, "  Git SHA               : %s\n", formatOrNone(c.GitSHA))
	fmt.Fprintln(w)

	// ── Flags ───────────────────────────────────────────────────────────────────
	fmt.Fprintln(w, "Flags")
	fmt.Fprintf(w, "  Engine                : %s\n", c.Engine)
	fmt.Fprintf(w, "  Pull Base Image       : %s\n", emoji(c.Pull))
	fmt.Fprintf(w, "  No Cache              : %s\n", emoji(c.NoCache))
	fmt.Fprintf(w, "  Dry Run Mode          : %s\n", emoji(c.DryRun))
	fmt.Fprintln(w)
}
