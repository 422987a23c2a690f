// Package cover renders an SVG cover image for a generated document.
// Text is converted to paths so the cover displays identically without
// the font installed.
package cover

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/svg"
)

// Generator renders document covers.
type Generator struct {
	logger *logrus.Logger
}

// New creates a new Generator instance.
func New(logger *logrus.Logger) *Generator {
	return &Generator{logger: logger}
}

// Config holds the settings for one cover.
type Config struct {
	Title      string  // document title, wrapped across lines as needed
	Subtitle   string  // category and expertise level line
	FontPath   string  // path to a TTF/OTF file, required
	OutputPath string  // destination SVG path
	Width      float64 // cover width in pixels (defaults to 600)
	Height     float64 // cover height in pixels (defaults to 800)
	Background string  // background color (defaults to "#1e1e2e")
	TextColor  string  // text color (defaults to "#cdd6f4")
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Width:      600,
		Height:     800,
		Background: "#1e1e2e",
		TextColor:  "#cdd6f4",
	}
}

// Generate renders the cover and writes it to cfg.OutputPath.
func (g *Generator) Generate(cfg Config) error {
	if cfg.FontPath == "" {
		return fmt.Errorf("font path is required for text-to-path conversion")
	}
	if cfg.Width == 0 {
		cfg.Width = DefaultConfig().Width
	}
	if cfg.Height == 0 {
		cfg.Height = DefaultConfig().Height
	}
	if cfg.Background == "" {
		cfg.Background = DefaultConfig().Background
	}
	if cfg.TextColor == "" {
		cfg.TextColor = DefaultConfig().TextColor
	}

	fontFamily := canvas.NewFontFamily("cover")
	if err := fontFamily.LoadFontFile(cfg.FontPath, canvas.FontRegular); err != nil {
		return fmt.Errorf("failed to load font %s: %w", cfg.FontPath, err)
	}

	textColor := canvas.Hex(cfg.TextColor)
	titleFace := fontFamily.Face(48, textColor, canvas.FontBold, canvas.FontNormal)
	subtitleFace := fontFamily.Face(24, textColor, canvas.FontRegular, canvas.FontNormal)

	c := canvas.New(cfg.Width, cfg.Height)
	ctx := canvas.NewContext(c)

	ctx.SetFillColor(canvas.Hex(cfg.Background))
	ctx.DrawPath(0, 0, canvas.Rectangle(cfg.Width, cfg.Height))

	margin := cfg.Width * 0.1
	textWidth := cfg.Width - 2*margin

	title := canvas.NewTextBox(titleFace, cfg.Title, textWidth, 0, canvas.Center, canvas.Top, nil)
	ctx.DrawText(margin, cfg.Height*0.7, title)

	if cfg.Subtitle != "" {
		subtitle := canvas.NewTextBox(subtitleFace, cfg.Subtitle, textWidth, 0, canvas.Center, canvas.Top, nil)
		ctx.DrawText(margin, cfg.Height*0.25, subtitle)
	}

	var buf bytes.Buffer
	renderer := svg.New(&buf, c.W, c.H, nil)
	c.RenderTo(renderer)
	if err := renderer.Close(); err != nil {
		return fmt.Errorf("failed to render cover SVG: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(cfg.OutputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write cover SVG: %w", err)
	}

	g.logger.Debugf("Generated cover: %s", cfg.OutputPath)
	return nil
}
