// Package verify checks that every output format can actually be
// produced on this machine, using dummy content. Useful after install to
// confirm pandoc and weasyprint are present and the output directory is
// writable.
package verify

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/knowgen/knowgen/pkg/convert"
)

const dummyContent = `# Dummy Output

This is a test file for verification mode.

## Section 1
Dummy content.

## Section 2
More dummy content.
`

// Formats lists the verified output formats in report order.
var Formats = []string{".md", ".html", ".epub", ".pdf"}

// Result is the outcome for one output format.
type Result struct {
	Format string
	OK     bool
}

// Verifier exercises the full conversion pipeline with dummy content.
type Verifier struct {
	outputDir string
	themesDir string
	logger    *logrus.Logger
}

func New(outputDir, themesDir string, logger *logrus.Logger) *Verifier {
	return &Verifier{outputDir: outputDir, themesDir: themesDir, logger: logger}
}

// Run writes a dummy markdown file, converts it to every format, records
// which outputs exist, and cleans up after itself.
func (v *Verifier) Run() ([]Result, error) {
	if err := os.MkdirAll(v.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(v.outputDir, "check_*.md")
	if err != nil {
		return nil, fmt.Errorf("failed to create test file: %w", err)
	}
	mdPath := tmp.Name()
	if _, err := tmp.WriteString(dummyContent); err != nil {
		tmp.Close()
		return nil, err
	}
	tmp.Close()
	v.logger.Infof("Dummy markdown saved as %s", mdPath)

	base := strings.TrimSuffix(mdPath, ".md")
	defer func() {
		for _, format := range Formats {
			os.Remove(base + format)
		}
	}()

	converter, err := convert.New(v.themesDir, "default", v.logger)
	if err != nil {
		return nil, err
	}

	htmlPath, err := converter.HTML(mdPath, true)
	if err != nil {
		v.logger.WithError(err).Error("HTML conversion failed")
	}
	if _, err := converter.EPUB(mdPath, nil, true); err != nil {
		v.logger.WithError(err).Error("EPUB conversion failed")
	}
	if htmlPath != "" {
		if _, err := converter.PDF(htmlPath, true); err != nil {
			v.logger.WithError(err).Error("PDF conversion failed")
		}
	}

	results := make([]Result, 0, len(Formats))
	for _, format := range Formats {
		_, statErr := os.Stat(base + format)
		results = append(results, Result{Format: format, OK: statErr == nil})
	}
	return results, nil
}

// Report renders the results as a short human-readable table.
func Report(results []Result) string {
	var sb strings.Builder
	sb.WriteString("Conversion check results:\n")
	for _, r := range results {
		status := "FAIL"
		if r.OK {
			status = "OK"
		}
		fmt.Fprintf(&sb, "  %-6s %s\n", r.Format, status)
	}
	return sb.String()
}

// AllOK reports whether every format succeeded.
func AllOK(results []Result) bool {
	for _, r := range results {
		if !r.OK {
			return false
		}
	}
	return true
}
