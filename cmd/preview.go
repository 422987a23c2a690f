package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/knowgen/knowgen/pkg/config"
	"github.com/knowgen/knowgen/pkg/convert"
	"github.com/knowgen/knowgen/pkg/watcher"
)

func newPreviewCmd() *cobra.Command {
	var (
		theme string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "preview <markdown-file>",
		Short: "Render a generated document to themed HTML",
		Long: `Renders a markdown document to HTML with the selected theme. With
--watch, the document and the themes directory are watched and the HTML
is re-rendered on every change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := getLogger()
			mdPath := args[0]

			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := config.Load(cwd)
			if err != nil {
				return err
			}
			if theme == "" {
				theme = cfg.Theme
			}
			themesDir := filepath.Join(cwd, "themes")

			render := func() error {
				converter, err := convert.New(themesDir, theme, logger)
				if err != nil {
					return err
				}
				outPath, err := converter.HTML(mdPath, true)
				if err != nil {
					return err
				}
				logger.Infof("Rendered %s", outPath)
				return nil
			}

			if err := render(); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			w, err := watcher.New(logger)
			if err != nil {
				return err
			}
			defer w.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			fmt.Fprintln(os.Stderr, "Watching for changes, press Ctrl-C to stop...")
			err = w.WatchPreview(ctx, mdPath, themesDir, render)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "", "Theme to render with (overrides config)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-render on changes")

	return cmd
}
