package cmd

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ngld/buildorch/pkg"
	"github.com/ngld/buildorch/pkg/orchestrator"
)

var checkToolsCmd = &cobra.Command{
	Use:   "check-tools",
	Short: "Checks that the commands used by the configure and build steps are available",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		orch, err := orchestrator.New(optionsFromConfig(cfg, "", cmd.OutOrStdout(), cmd.ErrOrStderr()))
		if err != nil {
			return err
		}

		tools, err := orch.CheckTools()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		missing := 0
		step := ""
		for _, tool := range tools {
			if tool.Step != step {
				step = tool.Step
				pkg.PrintTask(out, step)
			}

			if tool.Found() {
				pkg.PrintSubtask(out, fmt.Sprintf("%s: %s", tool.Name, tool.Path))
			} else {
				missing++
				pkg.PrintError(out, fmt.Sprintf("%s: not found", tool.Name))
			}
		}

		if missing > 0 {
			return eris.Errorf("%d required tools are missing", missing)
		}

		return nil
	},
}

func init() {
	RootCmd.AddCommand(checkToolsCmd)
}
