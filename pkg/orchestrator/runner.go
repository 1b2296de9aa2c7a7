package orchestrator

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// HelperCommands lists the commands that are routed to the cross-platform implementations of the helper binary.
var HelperCommands = []string{"mkdir", "mv", "rm"}

func helperArgs(helper string, args []string) []string {
	if helper == "" || len(args) == 0 {
		return args
	}

	for _, name := range HelperCommands {
		if args[0] == name {
			// always use our cross-platform implementation for these operations to make sure
			// they behave consistently
			return append([]string{helper}, args...)
		}
	}

	return args
}

func helperMiddleware(helper string) func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			return next(ctx, helperArgs(helper, args))
		}
	}
}

var defaultOpenHandler = interp.DefaultOpenHandler()

func openHandler(ctx context.Context, path string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	if path == "/dev/null" {
		path = os.DevNull
	}

	return defaultOpenHandler(ctx, path, flag, perm)
}

// ParseScript parses a step script. name is only used for error messages.
func ParseScript(name, script string) (*syntax.File, error) {
	parser := syntax.NewParser()
	result, err := parser.Parse(strings.NewReader(script), name)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to parse %s script %q", name, script)
	}

	if len(result.Stmts) == 0 {
		return nil, eris.Errorf("the %s script is empty", name)
	}

	return result, nil
}

// runScript executes each statement of script inside the build directory. It returns the statement that was
// running when an error occurred.
func (o *Orchestrator) runScript(ctx context.Context, step, script string, output io.Writer) (string, error) {
	file, err := ParseScript(step, script)
	if err != nil {
		return "", err
	}

	var runner *interp.Runner
	if !o.opts.DryRun {
		runner, err = interp.New(
			interp.Dir(o.buildDir),
			interp.Env(expand.ListEnviron(o.env...)),
			interp.ExecHandlers(helperMiddleware(o.opts.HelperBinary)),
			interp.OpenHandler(openHandler),
			interp.StdIO(nil, io.MultiWriter(o.opts.Stdout, output), io.MultiWriter(o.opts.Stderr, output)),
			interp.Params("-e"),
		)
		if err != nil {
			return "", eris.Wrap(err, "failed to initialize runner")
		}
	}

	printer := syntax.NewPrinter(syntax.Minify(true))
	strBuffer := strings.Builder{}

	for _, stmt := range file.Stmts {
		strBuffer.Reset()
		err = printer.Print(&strBuffer, stmt)
		if err != nil {
			return "", eris.Wrapf(err, "failed to print %s command", step)
		}

		command := strBuffer.String()
		log(ctx).Info().
			Str("step", step).
			Bool("command", true).
			Msg(command)

		if runner == nil {
			continue
		}

		err = runner.Run(ctx, stmt)
		if err != nil {
			return command, err
		}

		if runner.Exited() {
			return "", nil
		}

		if err = ctx.Err(); err != nil {
			return command, err
		}
	}

	return "", nil
}

// runStep runs a step script and records the result in the run report.
func (o *Orchestrator) runStep(ctx context.Context, step, script string) error {
	start := time.Now()
	output := newTailBuffer(o.opts.CaptureLimit)

	command, err := o.runScript(ctx, step, script, output)
	result := StepResult{
		Name:     step,
		Command:  script,
		Dir:      o.buildDir,
		Duration: time.Since(start),
		Status:   StatusOK,
	}
	if o.opts.DryRun {
		result.Status = StatusDryRun
	}

	if err != nil {
		result.Status = StatusFailed
		result.ExitCode = ExitFailure

		if status, ok := interp.IsExitStatus(err); ok {
			result.ExitCode = int(status)
			err = &ExternalToolError{
				Step:     step,
				Command:  command,
				ExitCode: int(status),
				Output:   output.String(),
				Err:      err,
			}
		} else {
			err = eris.Wrapf(err, "%s step failed", step)
		}
	}

	o.report.add(result)
	return err
}
