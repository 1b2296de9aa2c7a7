package cmd

import (
	"os"

	"github.com/ngld/buildorch/pkg"
	"github.com/ngld/buildorch/pkg/orchestrator"
	buildcmd "github.com/ngld/buildorch/pkg/orchestrator/cmd"
)

var rootCmd = buildcmd.RootCmd

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		if !buildcmd.IsLogged(err) {
			pkg.PrintError(os.Stderr, err.Error())
		}

		os.Exit(orchestrator.ExitCode(err))
	}
}
