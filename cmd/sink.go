package cmd

import (
	"fmt"
	"os"

	"github.com/knowgen/knowgen/pkg/generator"
)

const (
	ansiGray  = "\033[90m"
	ansiRed   = "\033[31m"
	ansiCyan  = "\033[36m"
	ansiReset = "\033[0m"
)

// consoleSink prints generation events to the terminal: status lines in
// cyan, response text in gray, reasoning text in red.
type consoleSink struct {
	showOutput bool
}

func (s *consoleSink) Event(kind generator.EventKind, text string) {
	switch kind {
	case generator.EventStatus:
		fmt.Fprintf(os.Stderr, "%s%s%s\n", ansiCyan, text, ansiReset)
	case generator.EventReasoning:
		if s.showOutput {
			fmt.Fprintf(os.Stderr, "%s%s%s", ansiRed, text, ansiReset)
		}
	case generator.EventContent:
		if s.showOutput {
			fmt.Fprintf(os.Stderr, "%s%s%s", ansiGray, text, ansiReset)
		}
	}
}

// progressPrinter reports each completed section.
type progressPrinter struct {
	total int
}

func (p *progressPrinter) Update(current int, shortTitle string) {
	fmt.Fprintf(os.Stderr, "%s[%d/%d] %s%s\n", ansiCyan, current, p.total, shortTitle, ansiReset)
}
