package cli

import (
	"github.com/yildizm/DocSum/internal/emoji"
	"github.com/yildizm/DocSum/internal/session"
)

// GetEmoji is a wrapper for the shared emoji package
func GetEmoji(key string) string {
	return emoji.GetEmoji(key)
}

// GetStateEmoji returns the symbol shown next to a session state
func GetStateEmoji(state session.State) string {
	switch state {
	case session.Summarizing, session.Asking:
		return GetEmoji("hourglass")
	case session.Summarized:
		return GetEmoji("summary")
	case session.Answered:
		return GetEmoji("answer")
	case session.Failed:
		return GetEmoji("error")
	case session.FileSelected:
		return GetEmoji("document")
	default:
		return GetEmoji("info")
	}
}

// GetKindEmoji picks a symbol for a failure kind
func GetKindEmoji(kind string) string {
	switch kind {
	case "timeout":
		return GetEmoji("timeout")
	case "validation":
		return GetEmoji("warning")
	default:
		return GetEmoji("error")
	}
}
