package cmd

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeTool(t *testing.T, name string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), 0755))
	return dir
}

func TestCheckToolsFound(t *testing.T) {
	setupProject(t)
	t.Setenv("PATH", fakeTool(t, "fakecc"))
	t.Setenv("BUILDORCH_CONFIGURE", "fakecc --version")
	t.Setenv("BUILDORCH_BUILD", "echo done")

	out := new(bytes.Buffer)
	resetFlags(t)
	RootCmd.SetArgs([]string{"check-tools"})
	RootCmd.SetOut(out)
	RootCmd.SetErr(out)

	require.NoError(t, RootCmd.Execute())
	assert.Contains(t, out.String(), "fakecc")
}

func TestCheckToolsMissing(t *testing.T) {
	setupProject(t)
	t.Setenv("PATH", t.TempDir())
	t.Setenv("BUILDORCH_CONFIGURE", "definitely-not-installed .")

	out := new(bytes.Buffer)
	resetFlags(t)
	RootCmd.SetArgs([]string{"check-tools"})
	RootCmd.SetOut(out)
	RootCmd.SetErr(out)

	err := RootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, out.String(), "definitely-not-installed: not found")
}
