package document

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatElapsed(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0 seconds"},
		{time.Second, "1 second"},
		{45 * time.Second, "45 seconds"},
		{time.Minute, "1 minute"},
		{2*time.Hour + 3*time.Minute, "2 hours, 3 minutes"},
		{time.Hour + time.Minute + time.Second, "1 hour, 1 minute, 1 second"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatElapsed(tc.d), tc.d.String())
	}
}

func TestReadingTime(t *testing.T) {
	assert.Equal(t, "1 minute", ReadingTime("short"))
	assert.Equal(t, "1 minute", ReadingTime(strings.Repeat("word ", 200)))
	assert.Equal(t, "3 minutes", ReadingTime(strings.Repeat("word ", 600)))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "linux_tips", SanitizeFilename("  Linux Tips! "))
	assert.Equal(t, "cc_best_practices", SanitizeFilename("C/C++ Best-Practices"))
	assert.Equal(t, "gpt_4", SanitizeFilename("gpt-4"))
}

func TestOutputFilename(t *testing.T) {
	name := OutputFilename("Linux Admin", "Best Practices", "Novice", "ollama", "llama3.2:8b")
	assert.Equal(t, "linux_admin_best_practices_novice_ollama_llama328b.md", name)
}

func TestAssemble(t *testing.T) {
	meta := Meta{
		Topic:          "Linux",
		Category:       "Tip",
		ExpertiseLevel: "Novice",
		Model:          "gpt-4",
		TokensUsed:     1234,
		GeneratedAt:    time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC),
		Elapsed:        95 * time.Second,
	}
	doc := Assemble(meta, "An overview.", []string{"## First\nBody one.\n", "## Second\nBody two."})

	assert.True(t, strings.HasPrefix(doc, "# Linux (Tip)\n\n---\n\n## Document Info\n\n"))
	assert.Contains(t, doc, "- **Model Used:** gpt-4\n")
	assert.Contains(t, doc, "- **Total Tokens Used:** 1234\n")
	assert.Contains(t, doc, "- **Generated on:** 2026-08-25 10:30:00\n")
	assert.Contains(t, doc, "- **Generated in:** 1 minute, 35 seconds\n")
	assert.Contains(t, doc, "An overview.\n\n## First\nBody one.\n\n## Second\nBody two.\n\n")
}

func TestAssembleWithoutOverview(t *testing.T) {
	doc := Assemble(Meta{Topic: "Go", Category: "Guide"}, "", []string{"body"})
	assert.NotContains(t, doc, "\n\n\n\n")
	assert.Contains(t, doc, "---\n\nbody\n\n")
}
