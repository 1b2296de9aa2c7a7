package orchestrator

import (
	"io/ioutil"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Step statuses as they appear in the run report
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
	StatusDryRun  = "dry-run"
)

// StepResult describes the outcome of a single step
type StepResult struct {
	Name     string        `yaml:"name"`
	Command  string        `yaml:"command,omitempty"`
	Dir      string        `yaml:"dir,omitempty"`
	Status   string        `yaml:"status"`
	ExitCode int           `yaml:"exit_code"`
	Duration time.Duration `yaml:"duration"`
}

// Report summarizes a run. It's written to Options.ReportPath once the run ends.
type Report struct {
	RunID     string       `yaml:"run_id"`
	Started   time.Time    `yaml:"started"`
	BuildDir  string       `yaml:"build_dir"`
	SourceDir string       `yaml:"source_dir"`
	DryRun    bool         `yaml:"dry_run,omitempty"`
	Steps     []StepResult `yaml:"steps"`
	ExitCode  int          `yaml:"exit_code"`
}

func (r *Report) add(result StepResult) {
	r.Steps = append(r.Steps, result)
}

// Step returns the recorded result for the named step
func (r *Report) Step(name string) (StepResult, bool) {
	for _, step := range r.Steps {
		if step.Name == name {
			return step, true
		}
	}

	return StepResult{}, false
}

// WriteReport stores the report as YAML
func WriteReport(path string, report *Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "failed to encode report")
	}

	err = ioutil.WriteFile(path, data, 0660)
	if err != nil {
		return eris.Wrapf(err, "failed to write report to %s", path)
	}

	return nil
}

// ReadReport loads a report written by WriteReport
func ReadReport(path string) (*Report, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read report %s", path)
	}

	report := new(Report)
	err = yaml.Unmarshal(data, report)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to parse report %s", path)
	}

	return report, nil
}
