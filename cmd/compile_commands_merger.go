package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ngld/buildorch/pkg/ccdb"
)

var mergeCompileCommandsCmd = &cobra.Command{
	Use:   "merge-compile-commands <output file> <input files...>",
	Short: "Merges several compile_commands.json files. Assumes that only absolute paths are used.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ccdb.MergeFiles(args[0], args[1:]...)
	},
}

func init() {
	rootCmd.AddCommand(mergeCompileCommandsCmd)
}
