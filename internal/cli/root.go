// Package cli wires flags, configuration and logging to the build pipeline.
package cli

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"imgbuild/internal/config"
	"imgbuild/internal/executil"
	"imgbuild/internal/pipeline"
	"imgbuild/internal/prompt"
	"imgbuild/internal/runtime"
)

const (
	projectDirFlag = "project-dir"
	configFlag     = "config"
	profileFlag    = "profile"
	pushFlag       = "push"
	verboseFlag    = "verbose"
	imageVersion   = "image-version"
)

type rootFlags struct {
	projectDir string
	configFile string
	profile    string
	push       bool
	verbose    bool
}

// NewRootCommand builds the imgbuild command tree. v receives the flag
// bindings and is read once the command runs.
func NewRootCommand(v *viper.Viper) *cobra.Command {
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}

	flags := rootFlags{}
	rootCmd := &cobra.Command{
		Use:   "imgbuild",
		Short: "Build and optionally push the server container image",
		Long: `imgbuild stages the project tree (plus the sibling server library, when present)
into a temporary build context, builds the container image with the selected
configuration profile and optionally pushes it to the registry.

Registry credentials are read from IMGBUILD_REGISTRY_USERNAME and
IMGBUILD_REGISTRY_PASSWORD, or from a .env file in the project directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if flags.verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, v, flags)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, verboseFlag, "v", false, "Enable verbose output")

	f := rootCmd.Flags()
	f.StringVarP(&flags.projectDir, projectDirFlag, "C", ".", "Project directory to stage and build.")
	f.StringVar(&flags.configFile, configFlag, "", "Config file (default ./imgbuild.yaml, then $XDG_CONFIG_HOME/imgbuild/config.yaml).")
	f.StringVarP(&flags.profile, profileFlag, "p", "", "Configuration profile: local (1) or dev (2). Prompts when omitted.")
	f.BoolVar(&flags.push, pushFlag, true, "Push after building. Prompts when omitted.")

	f.String(config.KeyEngine, config.Defaults().Engine, "Container engine CLI.")
	f.Bool(config.KeyDryRun, false, "Print engine commands instead of running them.")
	f.Bool(config.KeyPull, false, "Always pull the base image.")
	f.Bool(config.KeyNoCache, false, "Do not use the build cache.")
	f.String(config.KeyTarget, "", "Multi-stage build target.")
	f.String(imageVersion, config.Defaults().Version, "Image version (tag).")

	for _, key := range []string{config.KeyEngine, config.KeyDryRun, config.KeyPull, config.KeyNoCache, config.KeyTarget} {
		must(v.BindPFlag(key, f.Lookup(key)))
	}
	must(v.BindPFlag(config.KeyVersion, f.Lookup(imageVersion)))

	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

func runBuild(cmd *cobra.Command, v *viper.Viper, flags rootFlags) error {
	cfg, err := config.Load(v, flags.projectDir, flags.configFile)
	if err != nil {
		return err
	}

	decider := &prompt.Preset{Fallback: interactiveDecider()}
	if cmd.Flags().Changed(profileFlag) {
		p, err := runtime.ParseProfile(flags.profile)
		if err != nil {
			return err
		}
		decider.ProfileChoice = &p
	}
	if cmd.Flags().Changed(pushFlag) {
		push := flags.push
		decider.PushChoice = &push
	}

	p := &pipeline.Pipeline{
		Config:     cfg,
		ProjectDir: flags.projectDir,
		Runner:     executil.New(cfg.DryRun),
		Probe:      executil.New(false), // a dry run still reports a missing engine
		Decider:    decider,
		Out:        cmd.OutOrStdout(),
	}
	res, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}
	logrus.Debugf("done: image=%s profile=%s pushed=%t", res.ImageRef, res.Profile, res.Pushed)
	return nil
}

// interactiveDecider prompts on a terminal and falls back to plain line
// reading when stdin is piped.
func interactiveDecider() prompt.Decider {
	if isatty(os.Stdin) && isatty(os.Stdout) {
		return prompt.NewSurvey(os.Stdin, os.Stdout, os.Stderr)
	}
	return prompt.NewLines(os.Stdin, os.Stdout)
}

// Whether the given file is an interactive terminal.
func isatty(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
