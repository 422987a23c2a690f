package cmd

import (
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "knowgen",
	Short:         "LLM-powered structured knowledge generator.",
	Long:          "knowgen drives an LLM through templated prompts to produce long-form structured documents: titled sections plus an overview, rendered to markdown, HTML, EPUB and PDF.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newCoverCmd())
	rootCmd.AddCommand(newSchemaCmd())
}

func Execute() error {
	return rootCmd.Execute()
}
