package orchestrator

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptTools(t *testing.T) {
	tools, err := ScriptTools("build", `
helper() { echo hi; }
helper
CC=clang cmake -G Ninja "$SOURCE_DIR" && ninja
mkdir -p out
test -f out/app || $BUILD_TOOL
ninja install
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"cmake", "ninja"}, tools)
}

func TestScriptToolsRejectsEmpty(t *testing.T) {
	_, err := ScriptTools("build", "  ")
	assert.Error(t, err)
}

func TestCheckTools(t *testing.T) {
	bin := t.TempDir()
	require.NoError(t, ioutil.WriteFile(filepath.Join(bin, "fakecmake"), []byte("#!/bin/sh\n"), 0755))

	root := t.TempDir()
	orch, err := New(Options{
		BuildDir:  filepath.Join(root, "build"),
		Configure: `fakecmake "$SOURCE_DIR"`,
		Build:     "fakemake all",
		Env:       []string{"PATH=" + bin},
	})
	require.NoError(t, err)

	tools, err := orch.CheckTools()
	require.NoError(t, err)
	require.Len(t, tools, 2)

	assert.Equal(t, StepConfigure, tools[0].Step)
	assert.Equal(t, "fakecmake", tools[0].Name)
	assert.True(t, tools[0].Found())
	assert.Equal(t, filepath.Join(bin, "fakecmake"), tools[0].Path)

	assert.Equal(t, StepBuild, tools[1].Step)
	assert.Equal(t, "fakemake", tools[1].Name)
	assert.False(t, tools[1].Found())
}
