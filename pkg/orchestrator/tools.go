package orchestrator

import (
	"sort"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// shellBuiltins is the set of commands the interpreter handles without looking them up in PATH
var shellBuiltins = map[string]bool{}

func init() {
	for _, name := range []string{
		"true", ":", "false", "exit", "set", "shift", "unset",
		"echo", "printf", "break", "continue", "pwd", "cd",
		"wait", "builtin", "trap", "type", "source", ".", "command",
		"dirs", "pushd", "popd", "umask", "alias", "unalias",
		"fg", "bg", "getopts", "eval", "test", "[", "exec",
		"return", "read", "mapfile", "readarray", "shopt",
	} {
		shellBuiltins[name] = true
	}

	for _, name := range HelperCommands {
		shellBuiltins[name] = true
	}
}

// ToolStatus describes whether an external command used by a step could be found
type ToolStatus struct {
	Step string
	Name string
	Path string
	Err  error
}

// Found reports whether the tool was located
func (s ToolStatus) Found() bool {
	return s.Err == nil
}

// ScriptTools returns the sorted names of all external commands called by script. Commands built from
// expansions, shell builtins, functions declared in the script and the helper commands are skipped.
func ScriptTools(name, script string) ([]string, error) {
	file, err := ParseScript(name, script)
	if err != nil {
		return nil, err
	}

	funcs := map[string]bool{}
	syntax.Walk(file, func(node syntax.Node) bool {
		if decl, ok := node.(*syntax.FuncDecl); ok {
			funcs[decl.Name.Value] = true
		}
		return true
	})

	seen := map[string]bool{}
	tools := []string{}
	syntax.Walk(file, func(node syntax.Node) bool {
		call, ok := node.(*syntax.CallExpr)
		if !ok || len(call.Args) == 0 {
			return true
		}

		cmd := call.Args[0].Lit()
		if cmd == "" || shellBuiltins[cmd] || funcs[cmd] || seen[cmd] {
			return true
		}

		seen[cmd] = true
		tools = append(tools, cmd)
		return true
	})

	sort.Strings(tools)
	return tools, nil
}

// CheckTools looks up every external command used by the configure and build steps in the step environment
func (o *Orchestrator) CheckTools() ([]ToolStatus, error) {
	env := expand.ListEnviron(o.env...)
	result := []ToolStatus{}

	for _, step := range []struct {
		name   string
		script string
	}{
		{StepConfigure, o.opts.Configure},
		{StepBuild, o.opts.Build},
	} {
		tools, err := ScriptTools(step.name, step.script)
		if err != nil {
			return nil, err
		}

		for _, tool := range tools {
			path, err := interp.LookPathDir(o.buildDir, env, tool)
			result = append(result, ToolStatus{
				Step: step.name,
				Name: tool,
				Path: path,
				Err:  err,
			})
		}
	}

	return result, nil
}
