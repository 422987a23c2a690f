package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/knowgen/knowgen/internal/scaffold"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Scaffold a knowgen workspace in the current directory",
		Long:  "Creates knowgen.config.yml, the themes/ directory, and an editable copy of the prompt templates.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			return scaffold.Init(cwd, getLogger())
		},
	}
}
