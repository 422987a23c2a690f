package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/knowgen/knowgen/pkg/cover"
)

func newCoverCmd() *cobra.Command {
	cfg := cover.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "cover",
		Short: "Render an SVG cover image for a document",
		Long: `Renders a cover image with the document title and subtitle as SVG
paths, suitable for embedding in EPUB output. Requires a TTF/OTF font
file for the text-to-path conversion.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := cover.New(getLogger())
			if err := gen.Generate(cfg); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", cfg.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.Title, "title", "", "Cover title")
	cmd.Flags().StringVar(&cfg.Subtitle, "subtitle", "", "Cover subtitle, e.g. category and level")
	cmd.Flags().StringVar(&cfg.FontPath, "font", "", "Path to a TTF/OTF font file")
	cmd.Flags().StringVarP(&cfg.OutputPath, "output", "o", "cover.svg", "Output SVG path")
	cmd.Flags().Float64Var(&cfg.Width, "width", cfg.Width, "Cover width in pixels")
	cmd.Flags().Float64Var(&cfg.Height, "height", cfg.Height, "Cover height in pixels")
	cmd.Flags().StringVar(&cfg.Background, "background", cfg.Background, "Background color")
	cmd.Flags().StringVar(&cfg.TextColor, "text-color", cfg.TextColor, "Text color")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("font")

	return cmd
}
