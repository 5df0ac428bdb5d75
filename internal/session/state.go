package session

import (
	"github.com/yildizm/DocSum/internal/docservice"
)

// State is the observable stage of a document session
type State int

const (
	Empty State = iota
	FileSelected
	Summarizing
	Summarized
	Asking
	Answered
	Failed
)

// String returns the display name of the state
func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case FileSelected:
		return "file_selected"
	case Summarizing:
		return "summarizing"
	case Summarized:
		return "summarized"
	case Asking:
		return "asking"
	case Answered:
		return "answered"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Category identifies which request a ticket or failure belongs to
type Category string

const (
	CategoryUpload   Category = "upload"
	CategoryQuestion Category = "question"
)

// Failure is the single pending error message of a session
type Failure struct {
	Category Category             `json:"category"`
	Kind     docservice.ErrorKind `json:"kind"`
	Message  string               `json:"message"`
}

// Ticket identifies one started request. A completion is applied only while
// the ticket's generation is still current.
type Ticket struct {
	generation uint64
	category   Category
	document   *docservice.Document
	question   string
	fileName   string
}

// Category returns the request category
func (t Ticket) Category() Category { return t.category }

// Document returns the file to send
func (t Ticket) Document() *docservice.Document { return t.document }

// Question returns the trimmed question for question tickets
func (t Ticket) Question() string { return t.question }

// Snapshot is a point-in-time copy of a session for rendering
type Snapshot struct {
	ID                string              `json:"id"`
	State             State               `json:"-"`
	StateName         string              `json:"state"`
	FileName          string              `json:"file_name,omitempty"`
	FileSize          int64               `json:"file_size,omitempty"`
	ProcessedFileName string              `json:"processed_file_name,omitempty"`
	Summary           *docservice.Summary `json:"summary,omitempty"`
	Answer            *docservice.Answer  `json:"answer,omitempty"`
	Failure           *Failure            `json:"error,omitempty"`
	Question          string              `json:"question,omitempty"`
	UploadInFlight    bool                `json:"upload_in_flight"`
	QuestionInFlight  bool                `json:"question_in_flight"`
	CanSubmitFile     bool                `json:"can_submit_file"`
	CanSubmitQuestion bool                `json:"can_submit_question"`
}

// HasFile reports whether a file is selected
func (s Snapshot) HasFile() bool {
	return s.State != Empty
}

// Questions returns the suggested questions, if any
func (s Snapshot) Questions() []string {
	if s.Summary == nil {
		return nil
	}
	return s.Summary.Questions
}
