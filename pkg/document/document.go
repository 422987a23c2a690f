// Package document assembles generated sections into the final markdown
// file and derives its metadata: header, reading time, output filename.
package document

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// readingWPM is the baseline reading speed for the reading-time estimate.
const readingWPM = 200

var (
	unsafeChars = regexp.MustCompile(`[^\w\s-]`)
	separators  = regexp.MustCompile(`[\s-]+`)
)

// Meta carries the run metadata written into the document header.
type Meta struct {
	Topic          string
	Category       string
	ExpertiseLevel string
	Model          string
	TokensUsed     int
	GeneratedAt    time.Time
	Elapsed        time.Duration
}

// Assemble renders the complete markdown document: metadata header,
// overview (when present), then each section body in order.
func Assemble(meta Meta, overview string, bodies []string) string {
	var sb strings.Builder

	content := overview
	for _, body := range bodies {
		content += "\n" + body
	}

	sb.WriteString(fmt.Sprintf("# %s (%s)\n\n", meta.Topic, meta.Category))
	sb.WriteString("---\n\n")
	sb.WriteString("## Document Info\n\n")
	sb.WriteString(fmt.Sprintf("- **Expertise Level:** %s\n", meta.ExpertiseLevel))
	sb.WriteString(fmt.Sprintf("- **Category:** %s\n", meta.Category))
	sb.WriteString(fmt.Sprintf("- **Model Used:** %s\n", meta.Model))
	sb.WriteString(fmt.Sprintf("- **Total Tokens Used:** %d\n", meta.TokensUsed))
	sb.WriteString(fmt.Sprintf("- **Generated on:** %s\n", meta.GeneratedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("- **Generated in:** %s\n", FormatElapsed(meta.Elapsed)))
	sb.WriteString(fmt.Sprintf("- **Reading Time:** %s\n\n", ReadingTime(content)))
	sb.WriteString("---\n\n")

	if overview != "" {
		sb.WriteString(overview + "\n\n")
	}
	for _, body := range bodies {
		sb.WriteString(strings.TrimSpace(body) + "\n\n")
	}
	return sb.String()
}

// FormatElapsed renders a duration as "2 hours, 3 minutes, 15 seconds",
// omitting zero components except for a bare "0 seconds".
func FormatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", hours, plural("hour", hours)))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", minutes, plural("minute", minutes)))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d %s", seconds, plural("second", seconds)))
	}
	return strings.Join(parts, ", ")
}

// ReadingTime estimates reading time at 200 words per minute, never
// reporting less than one minute.
func ReadingTime(content string) string {
	words := len(strings.Fields(content))
	minutes := (words + readingWPM/2) / readingWPM
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d %s", minutes, plural("minute", minutes))
}

// SanitizeFilename lowercases s and reduces it to word characters joined
// by underscores.
func SanitizeFilename(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = unsafeChars.ReplaceAllString(s, "")
	s = separators.ReplaceAllString(s, "_")
	return s
}

// OutputFilename derives the markdown filename for one run from its
// parameters, so repeated runs with the same settings collide on purpose.
func OutputFilename(topic, category, level, engineName, model string) string {
	return fmt.Sprintf("%s_%s_%s_%s_%s.md",
		SanitizeFilename(topic),
		SanitizeFilename(category),
		SanitizeFilename(level),
		engineName,
		SanitizeFilename(model),
	)
}

func plural(unit string, n int) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
