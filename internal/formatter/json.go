package formatter

import (
	"encoding/json"
	"time"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

// JSONOutput is the JSON document written for a result
type JSONOutput struct {
	SessionID   string         `json:"session_id,omitempty"`
	File        string         `json:"file,omitempty"`
	Summary     *SummaryOutput `json:"summary,omitempty"`
	Answer      *AnswerOutput  `json:"answer,omitempty"`
	DurationMS  int64          `json:"duration_ms,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// SummaryOutput is the summary section
type SummaryOutput struct {
	Text      string   `json:"text"`
	Questions []string `json:"questions"`
	Words     int      `json:"words"`
}

// AnswerOutput is the question and answer section
type AnswerOutput struct {
	Question string `json:"question"`
	Text     string `json:"text"`
}

func (f *jsonFormatter) Format(result *Result) ([]byte, error) {
	output := &JSONOutput{
		SessionID:   result.SessionID,
		File:        result.File,
		DurationMS:  result.Duration.Milliseconds(),
		GeneratedAt: result.GeneratedAt,
	}

	if result.Summary != nil {
		questions := result.Summary.Questions
		if questions == nil {
			questions = []string{}
		}
		output.Summary = &SummaryOutput{
			Text:      result.Summary.Summary,
			Questions: questions,
			Words:     wordCount(result.Summary.Summary),
		}
	}

	if result.Answer != nil {
		output.Answer = &AnswerOutput{
			Question: result.Question,
			Text:     result.Answer.Answer,
		}
	}

	return json.MarshalIndent(output, "", "  ")
}
