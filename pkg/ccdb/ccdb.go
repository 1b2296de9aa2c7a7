// Package ccdb reads and writes compile command databases (compile_commands.json) as produced by CMake's
// CMAKE_EXPORT_COMPILE_COMMANDS option.
package ccdb

import (
	"encoding/json"
	"io/ioutil"

	"github.com/rotisserie/eris"
)

// FileName is the name CMake uses for the database inside the build directory
const FileName = "compile_commands.json"

// Entry describes how a single translation unit is compiled. Keys that aren't part of the format are kept in
// Extra so that tool-specific data survives a merge.
type Entry struct {
	Directory string                     `json:"directory"`
	File      string                     `json:"file"`
	Command   string                     `json:"command,omitempty"`
	Arguments []string                   `json:"arguments,omitempty"`
	Output    string                     `json:"output,omitempty"`
	Extra     map[string]json.RawMessage `json:"-"`
}

// entryFields has the same fields as Entry without the custom (un)marshalers
type entryFields Entry

var knownKeys = []string{"directory", "file", "command", "arguments", "output"}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var fields entryFields
	err := json.Unmarshal(data, &fields)
	if err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	err = json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	for _, key := range knownKeys {
		delete(raw, key)
	}

	*e = Entry(fields)
	e.Extra = nil
	if len(raw) > 0 {
		e.Extra = raw
	}

	return nil
}

func (e Entry) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(entryFields(e))
	if err != nil || len(e.Extra) == 0 {
		return data, err
	}

	var merged map[string]json.RawMessage
	err = json.Unmarshal(data, &merged)
	if err != nil {
		return nil, err
	}

	for key, value := range e.Extra {
		if _, ok := merged[key]; !ok {
			merged[key] = value
		}
	}

	return json.Marshal(merged)
}

// Database is the content of a compile_commands.json file
type Database []Entry

// Load reads the database stored at path
func Load(path string) (Database, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read %s", path)
	}

	var db Database
	err = json.Unmarshal(data, &db)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to decode %s", path)
	}

	return db, nil
}

// Write stores the database at path
func (db Database) Write(path string) error {
	if db == nil {
		db = Database{}
	}

	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return eris.Wrap(err, "failed to encode compile commands")
	}

	err = ioutil.WriteFile(path, data, 0660)
	if err != nil {
		return eris.Wrapf(err, "failed to write to %s", path)
	}

	return nil
}

// Merge concatenates the passed databases. Assumes that only absolute paths are used.
func Merge(dbs ...Database) Database {
	size := 0
	for _, db := range dbs {
		size += len(db)
	}

	result := make(Database, 0, size)
	for _, db := range dbs {
		result = append(result, db...)
	}

	return result
}

// MergeFiles loads every input database and writes the combined result to output
func MergeFiles(output string, inputs ...string) error {
	if len(inputs) < 1 {
		return eris.New("no input files passed")
	}

	dbs := make([]Database, 0, len(inputs))
	for _, fpath := range inputs {
		db, err := Load(fpath)
		if err != nil {
			return err
		}

		dbs = append(dbs, db)
	}

	return Merge(dbs...).Write(output)
}
