package formatter

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/DocSum/internal/docservice"
	"github.com/yildizm/DocSum/internal/session"
)

func plainFormatter() *terminalFormatter {
	opts := termfmt.DefaultOptions()
	opts.Color = false
	opts.Emoji = false
	return &terminalFormatter{opts: opts}
}

func sampleResult() *Result {
	return &Result{
		SessionID: "s-1",
		File:      "notes.pdf",
		Summary: &docservice.Summary{
			Summary:   "Topic A. Topic B.",
			Questions: []string{"What is Topic A?", "Why Topic B?"},
		},
		Duration:    1500 * time.Millisecond,
		GeneratedAt: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
	}
}

func TestTerminalFormat_Summary(t *testing.T) {
	out, err := plainFormatter().Format(sampleResult())
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	output := string(out)

	for _, want := range []string{
		"Document Summary: notes.pdf",
		"[SUM] Summary",
		"Topic A. Topic B.",
		"├─ 1. What is Topic A?",
		"└─ 2. Why Topic B?",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q\n%s", want, output)
		}
	}

	if strings.Contains(output, "Answer") {
		t.Error("did not expect an answer section")
	}
}

func TestTerminalFormat_NoQuestions(t *testing.T) {
	result := sampleResult()
	result.Summary.Questions = nil

	out, _ := plainFormatter().Format(result)
	if strings.Contains(string(out), "Suggested Questions\n") {
		t.Error("expected no suggested questions section")
	}
}

func TestTerminalFormat_Answer(t *testing.T) {
	result := sampleResult()
	result.Question = "Explain Topic A"
	result.Answer = &docservice.Answer{Answer: "Topic A is..."}

	out, _ := plainFormatter().Format(result)
	output := string(out)

	if !strings.Contains(output, "Q: Explain Topic A") {
		t.Errorf("expected question line\n%s", output)
	}
	if !strings.Contains(output, "Topic A is...") {
		t.Errorf("expected answer text\n%s", output)
	}
}

func TestWrap(t *testing.T) {
	text := strings.Repeat("word ", 40)
	for _, line := range strings.Split(wrap(text, 20), "\n") {
		if len(line) > 20 {
			t.Errorf("line exceeds width: %q", line)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567"}
	for n, want := range tests {
		if got := formatNumber(n); got != want {
			t.Errorf("formatNumber(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestJSONFormat(t *testing.T) {
	result := sampleResult()
	result.Summary.Questions = nil

	out, err := NewJSON().Format(result)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var decoded JSONOutput
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Summary == nil || decoded.Summary.Words != 4 {
		t.Errorf("unexpected summary: %+v", decoded.Summary)
	}
	if decoded.Summary.Questions == nil {
		t.Error("expected empty questions array, got null")
	}
	if decoded.DurationMS != 1500 {
		t.Errorf("expected duration 1500ms, got %d", decoded.DurationMS)
	}
	if decoded.Answer != nil {
		t.Error("did not expect an answer")
	}
}

func TestMarkdownFormat(t *testing.T) {
	result := sampleResult()
	result.File = "my_notes.pdf"
	result.Question = "Explain"
	result.Answer = &docservice.Answer{Answer: "Because."}

	out, _ := NewMarkdown().Format(result)
	output := string(out)

	for _, want := range []string{
		"# Document Summary: my\\_notes.pdf",
		"Generated: 2026-03-04 05:06:07",
		"| Suggested Questions | 2 |",
		"1. What is Topic A?",
		"> Explain",
		"Because.",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected markdown to contain %q\n%s", want, output)
		}
	}
}

func TestNew(t *testing.T) {
	for _, format := range []string{"", "text", "json", "markdown", "md"} {
		if _, err := New(format, false); err != nil {
			t.Errorf("New(%q) failed: %v", format, err)
		}
	}
	if _, err := New("csv", false); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestFromSnapshot(t *testing.T) {
	snap := session.Snapshot{
		ID:                "s-1",
		FileName:          "b.pdf",
		ProcessedFileName: "a.pdf",
		Summary:           &docservice.Summary{Summary: "S"},
		Question:          "draft",
	}

	result := FromSnapshot(snap, time.Second)
	if result.File != "a.pdf" {
		t.Errorf("expected processed file name, got %q", result.File)
	}
	if result.Question != "" {
		t.Error("question should only be carried with an answer")
	}

	snap.Answer = &docservice.Answer{Answer: "A"}
	if got := FromSnapshot(snap, 0).Question; got != "draft" {
		t.Errorf("expected question with answer, got %q", got)
	}
}
