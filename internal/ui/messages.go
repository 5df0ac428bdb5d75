package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yildizm/DocSum/internal/auth"
	"github.com/yildizm/DocSum/internal/docservice"
	"github.com/yildizm/DocSum/internal/session"
)

// Message types shared by the summarizer model
type (
	tickMsg time.Time

	summarizeDoneMsg struct {
		ticket  session.Ticket
		summary *docservice.Summary
		err     error
		elapsed time.Duration
	}

	askDoneMsg struct {
		ticket  session.Ticket
		answer  *docservice.Answer
		err     error
		elapsed time.Duration
	}

	authChangedMsg struct {
		user *auth.User
	}

	healthMsg struct {
		health *docservice.Health
		err    error
	}
)

var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func tick() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// summarizeCmd runs the upload for t outside the update loop
func summarizeCmd(ctx context.Context, svc docservice.Service, t session.Ticket) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		summary, err := svc.Process(ctx, t.Document())
		return summarizeDoneMsg{ticket: t, summary: summary, err: err, elapsed: time.Since(start)}
	}
}

func askCmd(ctx context.Context, svc docservice.Service, t session.Ticket) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		answer, err := svc.Ask(ctx, t.Document(), t.Question())
		return askDoneMsg{ticket: t, answer: answer, err: err, elapsed: time.Since(start)}
	}
}

func healthCmd(ctx context.Context, checker HealthChecker) tea.Cmd {
	return func() tea.Msg {
		health, err := checker.Health(ctx)
		return healthMsg{health: health, err: err}
	}
}

// waitForAuth blocks until the next identity change
func waitForAuth(events <-chan *auth.User) tea.Cmd {
	return func() tea.Msg {
		user, ok := <-events
		if !ok {
			return nil
		}
		return authChangedMsg{user: user}
	}
}
