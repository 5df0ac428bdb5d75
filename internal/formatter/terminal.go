package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/DocSum/internal/emoji"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewTerminal creates a new terminal formatter with optional color support
func NewTerminal(color bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = !emoji.IsEmojiDisabled()
	return &terminalFormatter{opts: opts}
}

func (f *terminalFormatter) Format(result *Result) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b, result)
	f.writeDetails(&b, result)

	if result.Summary != nil {
		f.writeSummary(&b, result.Summary.Summary)
		f.writeQuestions(&b, result.Summary.Questions)
	}

	if result.Answer != nil {
		f.writeAnswer(&b, result.Question, result.Answer.Answer)
	}

	return []byte(b.String()), nil
}

// writeHeader writes a box drawn around the document name
func (f *terminalFormatter) writeHeader(b *strings.Builder, result *Result) {
	header := "Document Summary"
	if result.File != "" {
		header += ": " + result.File
	}
	headerLen := len([]rune(header))

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n\n")
}

// writeDetails writes run statistics as a tree
func (f *terminalFormatter) writeDetails(b *strings.Builder, result *Result) {
	b.WriteString(symbol("statistics", f.opts) + " Details\n")

	var items []termfmt.TreeItem
	if result.Summary != nil {
		items = append(items,
			termfmt.TreeItem{Label: "Summary Words", Value: formatNumber(wordCount(result.Summary.Summary))},
			termfmt.TreeItem{Label: "Suggested Questions", Value: formatNumber(len(result.Summary.Questions))},
		)
		if result.Summary.TextLength > 0 {
			items = append(items, termfmt.TreeItem{Label: "Source Characters", Value: formatNumber(result.Summary.TextLength)})
		}
	}
	if result.Duration > 0 {
		items = append(items, termfmt.TreeItem{Label: "Duration", Value: result.Duration.Round(time.Millisecond).String()})
	}
	if len(items) == 0 {
		items = append(items, termfmt.TreeItem{Label: "Summary", Value: "N/A"})
	}
	items[len(items)-1].Last = true

	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

// writeSummary writes the summary paragraph; an empty summary prints nothing
func (f *terminalFormatter) writeSummary(b *strings.Builder, summary string) {
	if strings.TrimSpace(summary) == "" {
		return
	}
	b.WriteString(symbol("summary", f.opts) + " Summary\n")
	b.WriteString(wrap(summary, wrapWidth) + "\n\n")
}

// writeQuestions writes the numbered suggested questions
func (f *terminalFormatter) writeQuestions(b *strings.Builder, questions []string) {
	if len(questions) == 0 {
		return
	}
	b.WriteString(symbol("help", f.opts) + " Suggested Questions\n")
	for i, q := range questions {
		branch := "├─"
		if i == len(questions)-1 {
			branch = "└─"
		}
		fmt.Fprintf(b, "%s %d. %s\n", branch, i+1, q)
	}
	b.WriteString("\n")
}

// writeAnswer writes the question and its answer
func (f *terminalFormatter) writeAnswer(b *strings.Builder, question, answer string) {
	b.WriteString(symbol("answer", f.opts) + " Answer\n")
	if question != "" {
		fmt.Fprintf(b, "Q: %s\n", strings.TrimSpace(question))
	}
	b.WriteString(wrap(answer, wrapWidth) + "\n")
}
