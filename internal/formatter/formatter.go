package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/yildizm/DocSum/internal/docservice"
	"github.com/yildizm/DocSum/internal/session"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(result *Result) ([]byte, error)
}

// Result is a finished summarize or ask run ready for output
type Result struct {
	SessionID   string
	File        string
	Summary     *docservice.Summary
	Question    string
	Answer      *docservice.Answer
	Duration    time.Duration
	GeneratedAt time.Time
}

// FromSnapshot builds a result from a session after a completed request
func FromSnapshot(snap session.Snapshot, duration time.Duration) *Result {
	file := snap.ProcessedFileName
	if file == "" {
		file = snap.FileName
	}

	result := &Result{
		SessionID:   snap.ID,
		File:        file,
		Summary:     snap.Summary,
		Answer:      snap.Answer,
		Duration:    duration,
		GeneratedAt: time.Now(),
	}
	if snap.Answer != nil {
		result.Question = strings.TrimSpace(snap.Question)
	}
	return result
}

// New returns the formatter for format: text, json or markdown
func New(format string, color bool) (Formatter, error) {
	switch format {
	case "", "text":
		return NewTerminal(color), nil
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (must be one of: text, json, markdown)", format)
	}
}
