package cmd

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngld/buildorch/pkg/orchestrator"
)

func setupProject(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, ioutil.WriteFile(filepath.Join(root, "CMakeLists.txt"), []byte("project(demo C)\n"), 0644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(root))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
	})

	t.Setenv("BUILDORCH_CONFIGURE", `test -f "$SOURCE_DIR/CMakeLists.txt"`)
	t.Setenv("BUILDORCH_BUILD", "echo built > artifact.txt")
	return root
}

// resetFlags restores the defaults since cobra keeps flag values between Execute calls on RootCmd
func resetFlags(t *testing.T) {
	t.Helper()

	for _, flags := range []*pflag.FlagSet{RootCmd.Flags(), RootCmd.PersistentFlags(), checkToolsCmd.Flags()} {
		flags.VisitAll(func(f *pflag.Flag) {
			require.NoError(t, f.Value.Set(f.DefValue))
			f.Changed = false
		})
	}
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags(t)

	if args == nil {
		args = []string{}
	}

	stdout := new(bytes.Buffer)
	RootCmd.SetArgs(args)
	RootCmd.SetOut(stdout)
	RootCmd.SetErr(stdout)
	return RootCmd.Execute()
}

func TestRootCommandBuilds(t *testing.T) {
	root := setupProject(t)

	err := execute(t)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "build", "artifact.txt"))
	assert.NoError(t, err)
}

func TestRootCommandPropagatesExitCode(t *testing.T) {
	root := setupProject(t)
	t.Setenv("BUILDORCH_CONFIGURE", "exit 4")

	err := execute(t)
	require.Error(t, err)
	assert.True(t, IsLogged(err))
	assert.Equal(t, 4, orchestrator.ExitCode(err))

	_, err = os.Stat(filepath.Join(root, "build", "artifact.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestRootCommandRejectsArguments(t *testing.T) {
	setupProject(t)

	err := execute(t, "unexpected")
	require.Error(t, err)
	assert.False(t, IsLogged(err))
}

func TestRootCommandFlags(t *testing.T) {
	root := setupProject(t)

	err := execute(t, "--build-dir", "out", "--report", "report.yml")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "out", "artifact.txt"))
	assert.NoError(t, err)

	report, err := orchestrator.ReadReport(filepath.Join(root, "report.yml"))
	require.NoError(t, err)
	assert.Equal(t, orchestrator.ExitSuccess, report.ExitCode)
	assert.Len(t, report.Steps, 3)
}

func TestRootCommandFlagsDontLeak(t *testing.T) {
	root := setupProject(t)

	require.NoError(t, execute(t, "--dry", "--build-dir", "out"))
	assert.NoDirExists(t, filepath.Join(root, "out"))

	require.NoError(t, execute(t))
	assert.FileExists(t, filepath.Join(root, "build", "artifact.txt"))
	assert.NoDirExists(t, filepath.Join(root, "out"))
}

func TestConsoleWriter(t *testing.T) {
	out := new(bytes.Buffer)
	writer := NewConsoleWriter(out, false)
	writer.NoColor = true

	logger := zerolog.New(writer)
	logger.Info().Str("step", "configure").Msg("cmake ..")
	logger.Warn().Msg("careful")

	assert.Equal(t, "configure: cmake ..\ncareful\n", out.String())
}

func TestConsoleWriterErrors(t *testing.T) {
	out := new(bytes.Buffer)
	writer := NewConsoleWriter(out, false)
	writer.NoColor = true

	logger := zerolog.New(writer)
	logger.Error().Str("step", "build").Msg("make failed")

	assert.Equal(t, "build: Error: make failed\n", out.String())
}

func TestConsoleWriterRejectsGarbage(t *testing.T) {
	writer := NewConsoleWriter(new(bytes.Buffer), false)

	_, err := writer.Write([]byte("not json"))
	assert.Error(t, err)
}
