package orchestrator

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aidarkhanov/nanoid"
	"github.com/rotisserie/eris"
)

// Step names as used in logs and the run report
const (
	StepCreateBuildDir = "create-build-dir"
	StepConfigure      = "configure"
	StepBuild          = "build"
)

// Options controls a single run
type Options struct {
	// BuildDir is created if necessary and used as the working directory for both steps.
	BuildDir string
	// SourceDir contains the project description. Defaults to the parent of BuildDir.
	SourceDir string
	// ProjectFile is the file that's expected inside SourceDir. Its absence is only reported.
	ProjectFile string
	// Configure and Build are shell scripts. SOURCE_DIR and BUILD_DIR are available as variables.
	Configure string
	Build     string
	// Env holds additional KEY=VALUE entries for both steps.
	Env    []string
	DryRun bool
	// ReportPath enables the YAML run report if not empty.
	ReportPath            string
	CheckCompileCommands  bool
	ExportCompileCommands string
	// HelperBinary provides the mkdir, mv and rm subcommands. Empty disables the redirection.
	HelperBinary string
	CaptureLimit int
	Stdout       io.Writer
	Stderr       io.Writer
}

// Orchestrator runs the build directory, configure and build steps in order
type Orchestrator struct {
	opts      Options
	buildDir  string
	sourceDir string
	env       []string
	report    *Report
}

// New validates opts and resolves all paths. It doesn't touch the filesystem.
func New(opts Options) (*Orchestrator, error) {
	buildDir, sourceDir, err := resolveDirs(opts.BuildDir, opts.SourceDir)
	if err != nil {
		return nil, err
	}

	overrides, err := parseEnvList(opts.Env)
	if err != nil {
		return nil, err
	}
	overrides["SOURCE_DIR"] = sourceDir
	overrides["BUILD_DIR"] = buildDir

	for name, script := range map[string]string{StepConfigure: opts.Configure, StepBuild: opts.Build} {
		if _, err = ParseScript(name, script); err != nil {
			return nil, err
		}
	}

	if opts.ReportPath != "" {
		opts.ReportPath, err = filepath.Abs(opts.ReportPath)
		if err != nil {
			return nil, eris.Wrap(err, "failed to resolve report path")
		}
	}

	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	return &Orchestrator{
		opts:      opts,
		buildDir:  buildDir,
		sourceDir: sourceDir,
		env:       getEnvVars(os.Environ(), overrides),
		report: &Report{
			RunID:     nanoid.New(),
			Started:   time.Now(),
			BuildDir:  buildDir,
			SourceDir: sourceDir,
			DryRun:    opts.DryRun,
		},
	}, nil
}

// RunID identifies this run in logs and the report
func (o *Orchestrator) RunID() string {
	return o.report.RunID
}

// BuildDir returns the absolute build directory
func (o *Orchestrator) BuildDir() string {
	return o.buildDir
}

// SourceDir returns the absolute source directory
func (o *Orchestrator) SourceDir() string {
	return o.sourceDir
}

// Report returns the results recorded so far
func (o *Orchestrator) Report() *Report {
	return o.report
}

// CreateBuildDir makes sure that path exists and is a directory. An existing directory is not an error.
func CreateBuildDir(path string) error {
	err := os.MkdirAll(path, 0777)
	if err != nil {
		return &FilesystemError{Op: "mkdir", Path: path, Err: err}
	}

	return nil
}

// CreateBuildDir creates the configured build directory
func (o *Orchestrator) CreateBuildDir(ctx context.Context) error {
	start := time.Now()
	log(ctx).Info().
		Str("step", StepCreateBuildDir).
		Str("path", o.buildDir).
		Msgf("Creating build directory: %s", o.buildDir)

	result := StepResult{
		Name:   StepCreateBuildDir,
		Dir:    o.buildDir,
		Status: StatusOK,
	}

	var err error
	if o.opts.DryRun {
		result.Status = StatusDryRun
	} else {
		err = CreateBuildDir(o.buildDir)
		if err != nil {
			result.Status = StatusFailed
			result.ExitCode = ExitFailure
		}
	}

	result.Duration = time.Since(start)
	o.report.add(result)
	return err
}

// RunConfigure runs the configure script inside the build directory
func (o *Orchestrator) RunConfigure(ctx context.Context) error {
	if err := o.checkBuildDir(StepConfigure); err != nil {
		return err
	}

	o.checkProjectFile(ctx)
	log(ctx).Info().
		Str("step", StepConfigure).
		Str("path", o.sourceDir).
		Msgf("Generating build files for %s", o.sourceDir)

	return o.runStep(ctx, StepConfigure, o.opts.Configure)
}

// RunBuild runs the build script inside the build directory
func (o *Orchestrator) RunBuild(ctx context.Context) error {
	if err := o.checkBuildDir(StepBuild); err != nil {
		return err
	}

	log(ctx).Info().
		Str("step", StepBuild).
		Msg("Compiling the project")

	return o.runStep(ctx, StepBuild, o.opts.Build)
}

// Run executes all steps in order and stops at the first failure. Steps that didn't run are marked as skipped
// in the report.
func (o *Orchestrator) Run(ctx context.Context) (err error) {
	defer func() {
		o.finish(ctx, err)
	}()

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{StepCreateBuildDir, o.CreateBuildDir},
		{StepConfigure, o.RunConfigure},
		{StepBuild, o.RunBuild},
	}

	for idx, step := range steps {
		err = step.run(ctx)
		if err != nil {
			for _, skipped := range steps[idx+1:] {
				o.report.add(StepResult{Name: skipped.name, Status: StatusSkipped})
			}

			return err
		}
	}

	if !o.opts.DryRun {
		err = o.processCompileCommands(ctx)
		if err != nil {
			return err
		}
	}

	log(ctx).Info().
		Str("path", o.buildDir).
		Msgf("Build complete. Artifacts are in %s", o.buildDir)
	return nil
}

func (o *Orchestrator) finish(ctx context.Context, err error) {
	o.report.ExitCode = ExitCode(err)
	if o.opts.ReportPath == "" {
		return
	}

	werr := WriteReport(o.opts.ReportPath, o.report)
	if werr != nil {
		log(ctx).Warn().Err(werr).Msg("Failed to write the run report")
		return
	}

	log(ctx).Debug().Str("path", o.opts.ReportPath).Msgf("Wrote run report to %s", o.opts.ReportPath)
}

func (o *Orchestrator) checkBuildDir(step string) error {
	if o.opts.DryRun {
		return nil
	}

	var err error
	info, statErr := os.Stat(o.buildDir)
	if statErr != nil {
		err = &FilesystemError{Op: "stat", Path: o.buildDir, Err: statErr}
	} else if !info.IsDir() {
		err = &FilesystemError{Op: "stat", Path: o.buildDir, Err: eris.New("not a directory")}
	}

	if err != nil {
		o.report.add(StepResult{
			Name:     step,
			Dir:      o.buildDir,
			Status:   StatusFailed,
			ExitCode: ExitFailure,
		})
	}

	return err
}

func (o *Orchestrator) checkProjectFile(ctx context.Context) {
	if o.opts.ProjectFile == "" {
		return
	}

	path := filepath.Join(o.sourceDir, o.opts.ProjectFile)
	_, err := os.Stat(path)
	if err == nil {
		return
	}

	if eris.Is(err, os.ErrNotExist) {
		log(ctx).Warn().
			Str("step", StepConfigure).
			Str("path", path).
			Msgf("%s does not exist, the configure step will most likely fail", path)
	} else {
		log(ctx).Warn().
			Str("step", StepConfigure).
			Err(err).
			Msgf("Failed to check %s", path)
	}
}
