package orchestrator

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// Exit codes used when a failure doesn't carry its own status.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// FilesystemError is returned when a path the orchestrator needs can't be created or used.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// ExternalToolError is returned when a step's command exits with a non-zero status.
// Output holds the tail of everything the command wrote to stdout and stderr.
type ExternalToolError struct {
	Step     string
	Command  string
	ExitCode int
	Output   string
	Err      error
}

func (e *ExternalToolError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("%s step failed with exit status %d", e.Step, e.ExitCode)
	}

	return fmt.Sprintf("%s step failed with exit status %d (%s)", e.Step, e.ExitCode, e.Command)
}

func (e *ExternalToolError) Unwrap() error {
	return e.Err
}

// ExitCode maps the result of a run to the process exit status. A failing tool's status is passed through
// unchanged; every other failure maps to ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var toolErr *ExternalToolError
	if eris.As(err, &toolErr) && toolErr.ExitCode != 0 {
		return toolErr.ExitCode
	}

	return ExitFailure
}
