// Package convert turns a generated markdown document into HTML, EPUB
// and PDF. HTML is rendered in-process; EPUB and PDF shell out to pandoc
// and weasyprint, which are expected on PATH.
package convert

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Converter renders one markdown file into the output formats, styled by
// a CSS theme.
type Converter struct {
	theme   string
	cssPath string
	css     []byte
	logger  *logrus.Logger
}

// New resolves the theme CSS under themesDir. An unknown theme falls
// back to default.css with a warning; a missing themes directory is
// fatal.
func New(themesDir, theme string, logger *logrus.Logger) (*Converter, error) {
	if _, err := os.Stat(themesDir); err != nil {
		return nil, fmt.Errorf("themes directory not found at %s: %w", themesDir, err)
	}

	cssPath := filepath.Join(themesDir, theme+".css")
	if _, err := os.Stat(cssPath); err != nil {
		logger.Warnf("Theme %q not found, falling back to default theme", theme)
		cssPath = filepath.Join(themesDir, "default.css")
	}
	css, err := os.ReadFile(cssPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme css: %w", err)
	}

	return &Converter{theme: theme, cssPath: cssPath, css: css, logger: logger}, nil
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML renders the markdown file into a standalone HTML page with the
// theme CSS inlined, written next to the input. Returns the output path.
func (c *Converter) HTML(mdPath string, force bool) (string, error) {
	outPath := withExt(mdPath, ".html")
	if err := checkOverwrite(outPath, force); err != nil {
		return "", err
	}

	source, err := os.ReadFile(mdPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", mdPath, err)
	}

	var body bytes.Buffer
	if err := markdown.Convert(source, &body); err != nil {
		return "", fmt.Errorf("markdown conversion failed: %w", err)
	}

	title := strings.TrimSuffix(filepath.Base(mdPath), ".md")
	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(title))
	page.WriteString("<style>\n")
	page.Write(c.css)
	page.WriteString("\n</style>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")

	if err := os.WriteFile(outPath, page.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	c.logger.Infof("Wrote %s", outPath)
	return outPath, nil
}

// EPUB converts the markdown file with pandoc, embedding metadata.
func (c *Converter) EPUB(mdPath string, metadata map[string]string, force bool) (string, error) {
	outPath := withExt(mdPath, ".epub")
	if err := checkOverwrite(outPath, force); err != nil {
		return "", err
	}

	args := []string{
		mdPath, "-o", outPath, "--standalone", "--embed-resources",
		"--css=" + c.cssPath, "--highlight-style=kate",
	}
	for key, value := range metadata {
		args = append(args, "--metadata", key+"="+value)
	}
	if err := c.run("pandoc", args...); err != nil {
		return "", err
	}
	return outPath, nil
}

// PDF renders the HTML output to PDF with weasyprint.
func (c *Converter) PDF(htmlPath string, force bool) (string, error) {
	outPath := withExt(htmlPath, ".pdf")
	if err := checkOverwrite(outPath, force); err != nil {
		return "", err
	}
	if err := c.run("weasyprint", htmlPath, outPath); err != nil {
		return "", err
	}
	return outPath, nil
}

// All produces every output format for the markdown file. A failing
// external tool is logged and skipped rather than aborting the rest,
// since the markdown itself is already on disk.
func (c *Converter) All(mdPath string, metadata map[string]string, force bool) {
	htmlPath, err := c.HTML(mdPath, force)
	if err != nil {
		c.logger.WithError(err).Error("HTML conversion failed")
	}
	if _, err := c.EPUB(mdPath, metadata, force); err != nil {
		c.logger.WithError(err).Error("EPUB conversion failed")
	}
	if htmlPath != "" {
		if _, err := c.PDF(htmlPath, force); err != nil {
			c.logger.WithError(err).Error("PDF conversion failed")
		}
	}
}

func (c *Converter) run(name string, args ...string) error {
	c.logger.Infof("Running command: %s %s", name, strings.Join(args, " "))
	cmd := exec.Command(name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w\nOutput: %s", name, err, string(output))
	}
	return nil
}

func withExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func checkOverwrite(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("output file already exists: %s (use --force to overwrite)", path)
	}
	return nil
}
