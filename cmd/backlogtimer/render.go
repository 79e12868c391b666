package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"backlogtimer/internal/matching"
	"backlogtimer/internal/ranking"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
)

const maxMissingListed = 15

// newNumberPrinter formats numbers with thousands separators.
func newNumberPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func qualityColor(q matching.Quality) string {
	switch q {
	case matching.QualityExact, matching.QualityFuzzy:
		return ansiGreen
	case matching.QualityLoose, matching.QualityPoor:
		return ansiYellow
	case matching.QualityNone, matching.QualityFailed:
		return ansiRed
	default:
		return ""
	}
}

func colorText(text, color string, colorize bool) string {
	if !colorize || color == "" || text == "" {
		return text
	}
	return color + text + ansiReset
}

func formatHours(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1fh", *v)
}

var qualityRows = []struct {
	quality matching.Quality
	label   string
}{
	{matching.QualityExact, "Exact matches"},
	{matching.QualityFuzzy, "Fuzzy matches"},
	{matching.QualityLoose, "Loose matches"},
	{matching.QualityPoor, "Poor matches (needs review)"},
	{matching.QualityNone, "No match found"},
	{matching.QualityFailed, "Lookup errors"},
}

func printQuality(out io.Writer, summary ranking.Summary, colorize bool) {
	fmt.Fprintln(out, "HLTB match quality:")
	for _, row := range qualityRows {
		count := summary.Quality[row.quality]
		label := fmt.Sprintf("%-28s %d", row.label+":", count)
		if count > 0 {
			label = colorText(label, qualityColor(row.quality), colorize)
		}
		fmt.Fprintf(out, "  %s\n", label)
	}
}

func printMissing(out io.Writer, titles []string) {
	if len(titles) == 0 {
		return
	}
	fmt.Fprintf(out, "\nGames without any time data (%d):\n", len(titles))
	for i, title := range titles {
		if i == maxMissingListed {
			fmt.Fprintf(out, "  ... and %d more\n", len(titles)-maxMissingListed)
			break
		}
		fmt.Fprintf(out, "  - %s\n", title)
	}
}
