package docservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorKind categorizes Document Service failures
type ErrorKind string

const (
	// KindNetwork means the request could not be sent or no response arrived
	KindNetwork ErrorKind = "network"

	// KindServer means a non-2xx response carried a usable detail message
	KindServer ErrorKind = "server"

	// KindMalformed means the response could not be interpreted
	KindMalformed ErrorKind = "malformed"

	// KindTimeout means the configured request deadline expired
	KindTimeout ErrorKind = "timeout"

	// KindValidation means a local precondition failed and nothing was sent
	KindValidation ErrorKind = "validation"
)

// Operation names used in errors and logs
const (
	OpProcess = "process"
	OpAsk     = "ask"
	OpHealth  = "health"
)

// User-facing messages for kinds that carry no server detail
const (
	MsgNetwork        = "Could not reach the document service. Please try again."
	MsgTimeout        = "The request timed out. Please try again."
	MsgUnknown        = "An unknown error occurred"
	MsgProcessFailed  = "Failed to process PDF"
	MsgAskFailed      = "Failed to get answer"
	MsgNoFile         = "Select a PDF file first"
	MsgEmptyQuestion  = "Type a question first"
	MsgNoSummary      = "Summarize the document before asking questions"
	MsgAlreadyRunning = "A request is already in progress"
)

// Error is returned by every Document Service call
type Error struct {
	Kind       ErrorKind
	Op         string
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *Error) Error() string {
	var parts []string

	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}

	parts = append(parts, fmt.Sprintf("kind=%s", e.Kind))

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%s", e.Cause.Error()))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error of the same kind, so errors.Is(err, ErrTimeout) works
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind && (t.Op == "" || t.Op == e.Op)
	}
	return false
}

// UserMessage is the single line shown to the user
func (e *Error) UserMessage() string {
	return e.Message
}

// Sentinels for errors.Is
var (
	ErrNetwork    = &Error{Kind: KindNetwork}
	ErrServer     = &Error{Kind: KindServer}
	ErrMalformed  = &Error{Kind: KindMalformed}
	ErrTimeout    = &Error{Kind: KindTimeout}
	ErrValidation = &Error{Kind: KindValidation}
)

// NewValidationError reports a local precondition failure
func NewValidationError(op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

// KindOf returns the kind of a Document Service error, or "" for other errors
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// MessageOf returns the user-facing message for any error
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) && de.UserMessage() != "" {
		return de.UserMessage()
	}
	return MsgUnknown
}

// transportError classifies a failed round trip
func transportError(op string, err error) *Error {
	if isTimeout(err) {
		return &Error{Kind: KindTimeout, Op: op, Message: MsgTimeout, Cause: err}
	}
	return &Error{Kind: KindNetwork, Op: op, Message: MsgNetwork, Cause: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// statusError builds the error for a non-2xx response body.
// The detail field is used verbatim when present; otherwise the fallback is used.
func statusError(op string, status int, body []byte, fallback string) *Error {
	if detail := parseDetail(body); detail != "" {
		return &Error{Kind: KindServer, Op: op, StatusCode: status, Message: detail}
	}
	return &Error{Kind: KindMalformed, Op: op, StatusCode: status, Message: fallback}
}

// parseDetail extracts the detail message from an error body. FastAPI-style
// validation errors carry a list of objects with a msg field instead of a string.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		for _, item := range items {
			if msg := strings.TrimSpace(item.Msg); msg != "" {
				return msg
			}
		}
	}

	return ""
}
