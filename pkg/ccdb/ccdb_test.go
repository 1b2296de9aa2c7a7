package ccdb

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `[
  {"directory": "/src/build", "command": "cc -c /src/main.c", "file": "/src/main.c", "output": "main.o"},
  {"directory": "/src/build", "arguments": ["cc", "-c", "/src/util.c"], "file": "/src/util.c"}
]`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, ioutil.WriteFile(path, []byte(sample), 0644))

	db, err := Load(path)
	require.NoError(t, err)
	require.Len(t, db, 2)

	assert.Equal(t, "/src/main.c", db[0].File)
	assert.Equal(t, "cc -c /src/main.c", db[0].Command)
	assert.Equal(t, "main.o", db[0].Output)
	assert.Equal(t, []string{"cc", "-c", "/src/util.c"}, db[1].Arguments)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, ioutil.WriteFile(broken, []byte("{"), 0644))
	_, err = Load(broken)
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	a := Database{{Directory: "/a", File: "/a/x.c", Command: "cc x.c"}}
	b := Database{{Directory: "/b", File: "/b/y.c", Command: "cc y.c"}}

	merged := Merge(a, nil, b)
	require.Len(t, merged, 2)
	assert.Equal(t, "/a/x.c", merged[0].File)
	assert.Equal(t, "/b/y.c", merged[1].File)
}

func TestMergeFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")
	output := filepath.Join(dir, "merged.json")

	require.NoError(t, ioutil.WriteFile(first, []byte(sample), 0644))
	require.NoError(t, Database{{Directory: "/other", File: "/other/z.c", Command: "cc z.c"}}.Write(second))

	require.NoError(t, MergeFiles(output, first, second))

	db, err := Load(output)
	require.NoError(t, err)
	assert.Len(t, db, 3)
	assert.Equal(t, "/other/z.c", db[2].File)

	assert.Error(t, MergeFiles(output))
}

func TestMergeKeepsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.json")
	output := filepath.Join(dir, "merged.json")

	require.NoError(t, ioutil.WriteFile(input, []byte(`[
  {"directory": "/src", "file": "/src/a.c", "command": "cc -c a.c", "x-tool": {"cached": true}}
]`), 0644))
	require.NoError(t, MergeFiles(output, input))

	db, err := Load(output)
	require.NoError(t, err)
	require.Len(t, db, 1)
	assert.Equal(t, "/src/a.c", db[0].File)
	assert.JSONEq(t, `{"cached": true}`, string(db[0].Extra["x-tool"]))

	data, err := ioutil.ReadFile(output)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"directory": "/src", "file": "/src/a.c", "command": "cc -c a.c", "x-tool": {"cached": true}}]`, string(data))
}

func TestWriteEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Database(nil).Write(path))

	data, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
