package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/DocSum/internal/emoji"
)

// wrapWidth is the column limit for paragraphs in text output
const wrapWidth = 80

// formatNumber formats numbers with commas for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return addCommas(fmt.Sprintf("%d", n))
}

// addCommas adds commas to number strings
func addCommas(s string) string {
	if len(s) <= 3 {
		return s
	}
	return addCommas(s[:len(s)-3]) + "," + s[len(s)-3:]
}

// wordCount counts whitespace-separated words
func wordCount(s string) int {
	return len(strings.Fields(s))
}

// wrap breaks text into lines of at most width columns, keeping paragraphs
func wrap(text string, width int) string {
	return ansi.Wordwrap(strings.TrimSpace(text), width, "")
}

// symbol returns the termfmt emoji for key, falling back to the local table
func symbol(key string, opts *termfmt.TerminalOptions) string {
	if !opts.Emoji {
		return emoji.Fallback(key)
	}
	if s := termfmt.GetEmoji(key, opts); s != "" {
		return s
	}
	return emoji.GetEmoji(key)
}
