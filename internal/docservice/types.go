package docservice

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Service is the contract of the external Document Service
type Service interface {
	// Process uploads a document and returns its summary and suggested questions
	Process(ctx context.Context, doc *Document) (*Summary, error)

	// Ask sends the same document again with a question. The service keeps no
	// state between calls, so the file travels with every question.
	Ask(ctx context.Context, doc *Document, question string) (*Answer, error)
}

// Document is a file selected for summarization
type Document struct {
	Name    string
	Size    int64
	Content []byte
}

// NewDocument wraps in-memory content as a document
func NewDocument(name string, content []byte) *Document {
	return &Document{
		Name:    name,
		Size:    int64(len(content)),
		Content: content,
	}
}

// LoadDocument reads a document from disk
func LoadDocument(path string) (*Document, error) {
	// #nosec G304 - the path is chosen by the user picking a file
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return NewDocument(filepath.Base(path), content), nil
}

// IsPDF reports whether the declared name carries a .pdf extension
func (d *Document) IsPDF() bool {
	return strings.EqualFold(filepath.Ext(d.Name), ".pdf")
}

// Summary is the result of a successful /process call
type Summary struct {
	Summary   string   `json:"summary,omitempty"`
	Questions []string `json:"questions,omitempty"`

	// Informational fields some deployments include
	Filename      string `json:"filename,omitempty"`
	TextLength    int    `json:"text_length,omitempty"`
	SummaryLength int    `json:"summary_length,omitempty"`
}

// HasSummary reports whether the service returned summary text
func (s *Summary) HasSummary() bool {
	return s != nil && strings.TrimSpace(s.Summary) != ""
}

// Answer is the result of a successful /ask call
type Answer struct {
	Answer string `json:"answer"`
}

// Health is the payload of GET /health
type Health struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	HasAPIKey bool   `json:"has_api_key"`
}

// answerResponse keeps the answer optional so a missing field can be detected
type answerResponse struct {
	Answer *string `json:"answer"`
}
