package formatter

import (
	"fmt"
	"strings"
	"time"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) Format(result *Result) ([]byte, error) {
	var b strings.Builder

	title := "Document Summary"
	if result.File != "" {
		title += ": " + escapeMarkdown(result.File)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if !result.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "Generated: %s\n\n", result.GeneratedAt.Format("2006-01-02 15:04:05"))
	}

	if result.Summary != nil {
		f.writeSummary(&b, result)
	}

	if result.Answer != nil {
		b.WriteString("## Answer\n\n")
		if result.Question != "" {
			fmt.Fprintf(&b, "> %s\n\n", strings.TrimSpace(result.Question))
		}
		b.WriteString(strings.TrimSpace(result.Answer.Answer) + "\n")
	}

	return []byte(b.String()), nil
}

func (f *markdownFormatter) writeSummary(b *strings.Builder, result *Result) {
	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(b, "| Words | %s |\n", formatNumber(wordCount(result.Summary.Summary)))
	fmt.Fprintf(b, "| Suggested Questions | %d |\n", len(result.Summary.Questions))
	if result.Duration > 0 {
		fmt.Fprintf(b, "| Duration | %s |\n", result.Duration.Round(time.Millisecond))
	}
	b.WriteString("\n")

	if text := strings.TrimSpace(result.Summary.Summary); text != "" {
		b.WriteString(text + "\n\n")
	}

	if len(result.Summary.Questions) > 0 {
		b.WriteString("### Suggested Questions\n\n")
		for i, q := range result.Summary.Questions {
			fmt.Fprintf(b, "%d. %s\n", i+1, q)
		}
		b.WriteString("\n")
	}
}

// escapeMarkdown escapes characters that would change heading rendering
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer("*", "\\*", "_", "\\_", "`", "\\`", "#", "\\#")
	return replacer.Replace(s)
}
