package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/knowgen/knowgen/pkg/config"
	"github.com/knowgen/knowgen/pkg/verify"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that all output formats can be generated",
		Long: `Creates a test file with dummy content and converts it to every
supported format. Useful for verifying that pandoc and weasyprint are
installed and the output directory is writable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := getLogger()

			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := config.Load(cwd)
			if err != nil {
				return err
			}

			verifier := verify.New(filepath.Join(cwd, cfg.OutputDir), filepath.Join(cwd, "themes"), logger)
			results, err := verifier.Run()
			if err != nil {
				return err
			}

			fmt.Print(verify.Report(results))
			if !verify.AllOK(results) {
				return fmt.Errorf("some output formats cannot be generated")
			}
			return nil
		},
	}
}
