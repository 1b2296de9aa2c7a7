// Package cmd implements the CLI for the orchestrator package
package cmd

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ngld/buildorch/pkg/config"
	"github.com/ngld/buildorch/pkg/orchestrator"
)

// LoggedError marks an error that has already been reported through the logger
type LoggedError struct {
	Err error
}

func (e *LoggedError) Error() string {
	return e.Err.Error()
}

func (e *LoggedError) Unwrap() error {
	return e.Err
}

// IsLogged reports whether err has already been shown to the user
func IsLogged(err error) bool {
	var logged *LoggedError
	return eris.As(err, &logged)
}

var RootCmd = &cobra.Command{
	Use:   "buildorch",
	Short: "Configures and builds a CMake project",
	Long: `This command creates the build directory (build by default), runs the configure
step (cmake) inside of it against the parent directory and then runs the build
step (make). The first failing step stops the run and its exit code is returned.

Settings are read from buildorch.toml and BUILDORCH_* environment variables.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(os.Stderr, false, false, zerolog.InfoLevel)

		cfg, err := loadConfig(cmd)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to load configuration")
			return &LoggedError{Err: err}
		}

		configureErrorMarshaling(cfg.Debug)
		logger = newLogger(os.Stderr, cfg.Log.JSON, cfg.Debug, cfg.LogLevel())

		helper, err := os.Executable()
		if err != nil {
			logger.Warn().Err(err).Msg("Could not determine the helper binary, mkdir, mv and rm will use the system tools")
			helper = ""
		}

		orch, err := orchestrator.New(optionsFromConfig(cfg, helper, cmd.OutOrStdout(), cmd.ErrOrStderr()))
		if err != nil {
			logger.Error().Err(err).Msg("Invalid configuration")
			return &LoggedError{Err: err}
		}

		logger = logger.With().Str("run", orch.RunID()).Logger()
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = orchestrator.WithLogger(ctx, &logger)

		err = orch.Run(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Build failed")
			return &LoggedError{Err: err}
		}

		return nil
	},
}

func newLogger(out io.Writer, jsonOutput, debug bool, level zerolog.Level) zerolog.Logger {
	var writer io.Writer = out
	if !jsonOutput {
		writer = NewConsoleWriter(out, debug)
	}

	logger := zerolog.New(writer).Level(level)
	if jsonOutput {
		logger = logger.With().Timestamp().Logger()
	}

	return logger
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	cfgFile, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if flags.Changed("dry") {
		cfg.DryRun, err = flags.GetBool("dry")
		if err != nil {
			return nil, err
		}
	}

	if flags.Changed("build-dir") {
		cfg.BuildDir, err = flags.GetString("build-dir")
		if err != nil {
			return nil, err
		}
	}

	if flags.Changed("report") {
		cfg.Report, err = flags.GetString("report")
		if err != nil {
			return nil, err
		}
	}

	return cfg, cfg.Validate()
}

func optionsFromConfig(cfg *config.Config, helper string, stdout, stderr io.Writer) orchestrator.Options {
	return orchestrator.Options{
		BuildDir:              cfg.BuildDir,
		SourceDir:             cfg.SourceDir,
		ProjectFile:           cfg.ProjectFile,
		Configure:             cfg.Configure,
		Build:                 cfg.Build,
		Env:                   cfg.Env,
		DryRun:                cfg.DryRun,
		ReportPath:            cfg.Report,
		CheckCompileCommands:  cfg.CheckCompileCommands,
		ExportCompileCommands: cfg.ExportCompileCommands,
		HelperBinary:          helper,
		Stdout:                stdout,
		Stderr:                stderr,
	}
}

func init() {
	RootCmd.Flags().BoolP("dry", "n", false, "dry run; only print the commands, don't execute anything")
	RootCmd.PersistentFlags().String("config", "", "read settings from this file instead of "+config.DefaultFile)
	RootCmd.PersistentFlags().String("build-dir", "", "override the build directory")
	RootCmd.Flags().String("report", "", "write a YAML run report to this file")
}
