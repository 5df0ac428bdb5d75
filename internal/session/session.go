package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/yildizm/DocSum/internal/docservice"
	"github.com/yildizm/DocSum/internal/logger"
)

// ErrSuperseded is returned by the drivers when a response arrived after the
// session moved on (new file, removal or reset) and was dropped.
var ErrSuperseded = errors.New("request superseded by a newer session state")

// Session holds the transient state of one user's work with one document.
// It is safe for concurrent use; requests run outside the lock.
type Session struct {
	mu  sync.Mutex
	id  string
	log *logger.Logger

	generation uint64

	file             *docservice.Document
	processedName    string
	summary          *docservice.Summary
	answer           *docservice.Answer
	failure          *Failure
	question         string
	uploadInFlight   bool
	questionInFlight bool
}

// New creates an empty session with a fresh identifier
func New(log *logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	id := uuid.New().String()
	return &Session{
		id:  id,
		log: log.WithComponent("session").With(logger.F("session_id", id)),
	}
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Context tags ctx with the session identifier for outgoing requests
func (s *Session) Context(ctx context.Context) context.Context {
	return docservice.WithSessionID(ctx, s.id)
}

// SelectFile makes doc the active document. Results and errors of the previous
// document are discarded and in-flight requests are invalidated.
func (s *Session) SelectFile(doc *docservice.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidate()
	s.file = doc
	s.processedName = ""
	s.summary = nil
	s.answer = nil
	s.failure = nil

	if doc != nil {
		s.log.Info("File selected", logger.F("file", doc.Name), logger.F("size", doc.Size))
	}
}

// RemoveFile clears the selected file and everything derived from it
func (s *Session) RemoveFile() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidate()
	s.file = nil
	s.processedName = ""
	s.summary = nil
	s.answer = nil
	s.failure = nil

	s.log.Info("File removed")
}

// Reset returns the session to Empty, including the question draft
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidate()
	s.file = nil
	s.processedName = ""
	s.summary = nil
	s.answer = nil
	s.failure = nil
	s.question = ""

	s.log.Info("Session reset")
}

// SetQuestion replaces the question draft
func (s *Session) SetQuestion(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.question = text
}

// Question returns the current question draft
func (s *Session) Question() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.question
}

// PickSuggestedQuestion copies suggested question i into the draft verbatim
func (s *Session) PickSuggestedQuestion(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.summary == nil || i < 0 || i >= len(s.summary.Questions) {
		return fmt.Errorf("no suggested question at index %d", i)
	}
	s.question = s.summary.Questions[i]
	return nil
}

// CanSubmitFile reports whether a summarize request may start
func (s *Session) CanSubmitFile() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSubmitFile()
}

// CanSubmitQuestion reports whether a question request may start
func (s *Session) CanSubmitQuestion() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSubmitQuestion()
}

// BeginSummarize starts an upload of the selected file.
// On a precondition failure it returns a validation error and changes nothing.
func (s *Session) BeginSummarize() (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return Ticket{}, docservice.NewValidationError(docservice.OpProcess, docservice.MsgNoFile)
	}
	if s.uploadInFlight {
		return Ticket{}, docservice.NewValidationError(docservice.OpProcess, docservice.MsgAlreadyRunning)
	}

	// A question still running belongs to the summary being replaced
	if s.questionInFlight {
		s.generation++
		s.questionInFlight = false
	}

	s.uploadInFlight = true
	s.summary = nil
	s.answer = nil
	s.failure = nil

	s.log.Info("Summarize started", logger.F("file", s.file.Name))

	return Ticket{
		generation: s.generation,
		category:   CategoryUpload,
		document:   s.file,
		fileName:   s.file.Name,
	}, nil
}

// CompleteSummarize applies the outcome of an upload. It returns false and
// changes nothing when the ticket is stale.
func (s *Session) CompleteSummarize(t Ticket, result *docservice.Summary, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current(t, CategoryUpload) {
		s.log.Debug("Dropped stale summarize completion", logger.F("generation", t.generation))
		return false
	}

	s.uploadInFlight = false

	if err == nil && result == nil {
		err = &docservice.Error{Kind: docservice.KindMalformed, Op: docservice.OpProcess, Message: docservice.MsgUnknown}
	}

	if err != nil {
		s.failure = newFailure(CategoryUpload, err)
		s.log.Warn("Summarize failed", logger.F("kind", string(s.failure.Kind)), logger.Error(err))
		return true
	}

	s.summary = result
	s.processedName = t.fileName
	s.failure = nil

	s.log.Info("Summarize completed",
		logger.F("file", t.fileName),
		logger.F("has_summary", result.HasSummary()),
		logger.Count(len(result.Questions)))
	return true
}

// BeginAsk starts a question about the summarized file using the trimmed draft.
// On a precondition failure it returns a validation error and changes nothing.
func (s *Session) BeginAsk() (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	question := strings.TrimSpace(s.question)

	switch {
	case question == "":
		return Ticket{}, docservice.NewValidationError(docservice.OpAsk, docservice.MsgEmptyQuestion)
	case s.file == nil:
		return Ticket{}, docservice.NewValidationError(docservice.OpAsk, docservice.MsgNoFile)
	case s.summary == nil:
		return Ticket{}, docservice.NewValidationError(docservice.OpAsk, docservice.MsgNoSummary)
	case s.questionInFlight:
		return Ticket{}, docservice.NewValidationError(docservice.OpAsk, docservice.MsgAlreadyRunning)
	}

	s.questionInFlight = true
	s.answer = nil
	s.failure = nil

	s.log.Info("Question started", logger.F("question_length", len(question)))

	return Ticket{
		generation: s.generation,
		category:   CategoryQuestion,
		document:   s.file,
		question:   question,
		fileName:   s.file.Name,
	}, nil
}

// CompleteAsk applies the outcome of a question. It returns false and changes
// nothing when the ticket is stale. The question draft is kept either way.
func (s *Session) CompleteAsk(t Ticket, answer *docservice.Answer, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current(t, CategoryQuestion) {
		s.log.Debug("Dropped stale question completion", logger.F("generation", t.generation))
		return false
	}

	s.questionInFlight = false

	if err == nil && answer == nil {
		err = &docservice.Error{Kind: docservice.KindMalformed, Op: docservice.OpAsk, Message: docservice.MsgUnknown}
	}

	if err != nil {
		s.failure = newFailure(CategoryQuestion, err)
		s.log.Warn("Question failed", logger.F("kind", string(s.failure.Kind)), logger.Error(err))
		return true
	}

	s.answer = answer
	s.failure = nil

	s.log.Info("Question answered", logger.F("answer_length", len(answer.Answer)))
	return true
}

// Summarize runs a complete upload against svc
func (s *Session) Summarize(ctx context.Context, svc docservice.Service) error {
	ticket, err := s.BeginSummarize()
	if err != nil {
		return err
	}

	result, err := svc.Process(s.Context(ctx), ticket.Document())
	if !s.CompleteSummarize(ticket, result, err) {
		return ErrSuperseded
	}
	return err
}

// Ask runs a complete question request against svc
func (s *Session) Ask(ctx context.Context, svc docservice.Service) error {
	ticket, err := s.BeginAsk()
	if err != nil {
		return err
	}

	answer, err := svc.Ask(s.Context(ctx), ticket.Document(), ticket.Question())
	if !s.CompleteAsk(ticket, answer, err) {
		return ErrSuperseded
	}
	return err
}

// State derives the current state from the session fields
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

// Snapshot returns a copy of the session for rendering
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state()
	snap := Snapshot{
		ID:                s.id,
		State:             state,
		StateName:         state.String(),
		ProcessedFileName: s.processedName,
		Question:          s.question,
		UploadInFlight:    s.uploadInFlight,
		QuestionInFlight:  s.questionInFlight,
		CanSubmitFile:     s.canSubmitFile(),
		CanSubmitQuestion: s.canSubmitQuestion(),
	}

	if s.file != nil {
		snap.FileName = s.file.Name
		snap.FileSize = s.file.Size
	}
	if s.summary != nil {
		summary := *s.summary
		summary.Questions = append([]string(nil), s.summary.Questions...)
		snap.Summary = &summary
	}
	if s.answer != nil {
		answer := *s.answer
		snap.Answer = &answer
	}
	if s.failure != nil {
		failure := *s.failure
		snap.Failure = &failure
	}

	return snap
}

func (s *Session) state() State {
	switch {
	case s.file == nil:
		return Empty
	case s.uploadInFlight:
		return Summarizing
	case s.summary == nil:
		if s.failure != nil && s.failure.Category == CategoryUpload {
			return Failed
		}
		return FileSelected
	case s.questionInFlight:
		return Asking
	case s.answer != nil:
		return Answered
	case s.failure != nil && s.failure.Category == CategoryQuestion:
		return Failed
	default:
		return Summarized
	}
}

func (s *Session) canSubmitFile() bool {
	return s.file != nil && !s.uploadInFlight
}

func (s *Session) canSubmitQuestion() bool {
	return strings.TrimSpace(s.question) != "" &&
		!s.questionInFlight &&
		s.file != nil &&
		s.summary != nil
}

// invalidate makes every outstanding ticket stale
func (s *Session) invalidate() {
	s.generation++
	s.uploadInFlight = false
	s.questionInFlight = false
}

func (s *Session) current(t Ticket, category Category) bool {
	if t.category != category || t.generation != s.generation {
		return false
	}
	if category == CategoryUpload {
		return s.uploadInFlight
	}
	return s.questionInFlight
}

func newFailure(category Category, err error) *Failure {
	kind := docservice.KindOf(err)
	if kind == "" {
		kind = docservice.KindMalformed
	}
	return &Failure{
		Category: category,
		Kind:     kind,
		Message:  docservice.MessageOf(err),
	}
}
