// Package parse extracts structured blocks from model output.
//
// The title phase asks the model to wrap its list in <TITLE_BLOCK> tags
// and the overview in <TITLE_OVERVIEW> tags. The two blocks fail very
// differently: without titles there is nothing to generate, so a missing
// or empty title block aborts the run, while a damaged overview block is
// repaired or replaced with an empty overview and a warning.
package parse

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	titleBlock    = regexp.MustCompile(`(?is)<TITLE_BLOCK>(.*?)</TITLE_BLOCK>`)
	titleLine     = regexp.MustCompile(`^\s*\d+\.\s*(.*?)\s*\|\s*(.*)$`)
	overviewBlock = regexp.MustCompile(`(?is)<TITLE_OVERVIEW>(.*?)</TITLE_OVERVIEW>`)
	overviewOpen  = regexp.MustCompile(`(?i)<TITLE_OVERVIEW>`)
)

// FormatError reports model output that does not carry the required
// structure. It aborts the run.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed model output: %s", e.Reason)
}

// TitleEntry is one planned section: the full title and a short variant
// used for progress display and prompts.
type TitleEntry struct {
	Full  string
	Short string
}

// Titles extracts the numbered title list from text.
//
// Each line of the block is expected as "N. Full Title | Short Title".
// Lines that do not match are skipped; a matching line with an empty
// short part falls back to the full title. A missing block or a block
// with zero usable entries is a *FormatError.
func Titles(text string) ([]TitleEntry, error) {
	m := titleBlock.FindStringSubmatch(text)
	if m == nil {
		return nil, &FormatError{Reason: "no <TITLE_BLOCK> section found"}
	}

	var entries []TitleEntry
	for _, line := range strings.Split(m[1], "\n") {
		lm := titleLine.FindStringSubmatch(line)
		if lm == nil {
			continue
		}
		full := strings.TrimSpace(lm[1])
		short := strings.TrimSpace(lm[2])
		if full == "" {
			continue
		}
		if short == "" {
			short = full
		}
		entries = append(entries, TitleEntry{Full: full, Short: short})
	}

	if len(entries) == 0 {
		return nil, &FormatError{Reason: "<TITLE_BLOCK> contains no title entries"}
	}
	return entries, nil
}

// Overview extracts the overview block from text.
//
// When the opening tag is present but the closing tag is missing, a
// closing tag is appended once and extraction retried. When the opening
// tag is absent entirely, the overview is empty and repaired reports
// false while missing reports true, letting the caller log a warning
// instead of failing the run.
func Overview(text string) (overview string, repaired, missing bool) {
	if m := overviewBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), false, false
	}

	if overviewOpen.MatchString(text) {
		patched := text + "</TITLE_OVERVIEW>"
		if m := overviewBlock.FindStringSubmatch(patched); m != nil {
			return strings.TrimSpace(m[1]), true, false
		}
	}

	return "", false, true
}
