package config

import (
	"os"
	"strings"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigtoml"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"mvdan.cc/sh/v3/syntax"
)

// DefaultFile is loaded from the working directory if it exists
const DefaultFile = "buildorch.toml"

// EnvPrefix is prepended to the environment variable of each config field
const EnvPrefix = "BUILDORCH"

// Config describes all configuration options
type Config struct {
	BuildDir              string   `default:"build" toml:"build_dir" usage:"Directory for generated build files and artifacts"`
	SourceDir             string   `toml:"source_dir" usage:"Project directory passed to the configure step (defaults to the parent of build_dir)"`
	ProjectFile           string   `default:"CMakeLists.txt" toml:"project_file" usage:"File expected in the source directory"`
	Configure             string   `default:"cmake \"$SOURCE_DIR\"" toml:"configure" usage:"Shell script that generates the build files"`
	Build                 string   `default:"make" toml:"build" usage:"Shell script that compiles the project"`
	Env                   []string `env:"ENV" toml:"env" usage:"Additional KEY=VALUE environment entries for both steps (comma separated in BUILDORCH_ENV)"`
	DryRun                bool     `default:"false" toml:"dry_run" usage:"Only print the commands, don't execute anything"`
	Report                string   `toml:"report" usage:"Write a YAML run report to this file"`
	CheckCompileCommands  bool     `default:"true" toml:"check_compile_commands" usage:"Report on compile_commands.json after the build"`
	ExportCompileCommands string   `toml:"export_compile_commands" usage:"Copy compile_commands.json to this path (relative to the source directory)"`
	Debug                 bool     `default:"false" toml:"debug" usage:"Include error traces and all log fields"`
	Log                   struct {
		Level string `default:"info" toml:"level"`
		JSON  bool   `default:"false" toml:"json" usage:"Output JSONND instead of pretty console messages"`
	} `toml:"log"`
}

var logLevels = map[string]zerolog.Level{
	"trace":   zerolog.TraceLevel,
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
}

// Loader initializes an empty config object and returns a new Loader for this object. files lists the config
// files to read; missing files have to be filtered out by the caller.
func Loader(files ...string) (*Config, *aconfig.Loader) {
	cfg := Config{}
	return &cfg, aconfig.LoaderFor(&cfg, aconfig.Config{
		SkipFlags: true,
		EnvPrefix: EnvPrefix,
		// aconfig splits variables at every '=' which turns values like CC=clang into bogus names.
		// checkUnknownEnvs does this check instead.
		AllowUnknownEnvs: true,
		Files:            files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".toml": aconfigtoml.New(),
		},
	})
}

// Load reads the configuration from defaults, the config file and the environment. If file is empty, DefaultFile
// is used if present. An explicitly passed file has to exist.
func Load(file string) (*Config, error) {
	files := []string{}
	if file != "" {
		_, err := os.Stat(file)
		if err != nil {
			return nil, eris.Wrapf(err, "could not open config file %s", file)
		}

		files = append(files, file)
	} else {
		_, err := os.Stat(DefaultFile)
		if err == nil {
			files = append(files, DefaultFile)
		} else if !eris.Is(err, os.ErrNotExist) {
			return nil, eris.Wrapf(err, "failed to check %s", DefaultFile)
		}
	}

	cfg, loader := Loader(files...)
	if err := checkUnknownEnvs(loader, os.Environ()); err != nil {
		return nil, err
	}

	if err := loader.Load(); err != nil {
		return nil, eris.Wrap(err, "failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// envNames returns the full environment variable name of every field known to loader
func envNames(loader *aconfig.Loader) map[string]bool {
	names := map[string]bool{}
	loader.WalkFields(func(f aconfig.Field) bool {
		name := f.Tag("env")
		for parent, ok := f.Parent(); ok; parent, ok = parent.Parent() {
			name = parent.Tag("env") + "_" + name
		}

		names[EnvPrefix+"_"+name] = true
		return true
	})

	return names
}

// checkUnknownEnvs rejects BUILDORCH_* variables that don't belong to any field. This catches typos like
// BUILDORCH_BUILDDIR which would otherwise be ignored silently.
func checkUnknownEnvs(loader *aconfig.Loader, environ []string) error {
	known := envNames(loader)
	for _, entry := range environ {
		name := strings.SplitN(entry, "=", 2)[0]
		if strings.HasPrefix(name, EnvPrefix+"_") && !known[name] {
			return eris.Errorf("unknown environment variable %s", name)
		}
	}

	return nil
}

// Validate verifies that all config fields have valid values
func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.BuildDir) == "" {
		return eris.New("build_dir must not be empty")
	}

	parser := syntax.NewParser()
	for name, script := range map[string]string{"configure": cfg.Configure, "build": cfg.Build} {
		if strings.TrimSpace(script) == "" {
			return eris.Errorf("%s must not be empty", name)
		}

		_, err := parser.Parse(strings.NewReader(script), name)
		if err != nil {
			return eris.Wrapf(err, "invalid value for %s", name)
		}
	}

	for _, entry := range cfg.Env {
		if !strings.Contains(entry, "=") || strings.HasPrefix(entry, "=") {
			return eris.Errorf("invalid env entry %q, expected KEY=VALUE", entry)
		}
	}

	_, ok := logLevels[cfg.Log.Level]
	if !ok {
		return eris.Errorf("invalid value for log.level: %s", cfg.Log.Level)
	}

	return nil
}

// LogLevel converts the .Log.Level field to a zerolog.Level
func (cfg *Config) LogLevel() zerolog.Level {
	return logLevels[cfg.Log.Level]
}
