package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yildizm/DocSum/internal/config"
	"github.com/yildizm/DocSum/internal/docservice"
	"github.com/yildizm/DocSum/internal/formatter"
	"github.com/yildizm/DocSum/internal/logger"
	"github.com/yildizm/DocSum/internal/session"
	"github.com/yildizm/DocSum/internal/ui"
)

func newAppCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "app",
		Short: "Open the interactive summarizer",
		Long: `Open the Summarizer in the terminal: pick a PDF, read its summary and
suggested questions, and ask your own questions about it.

Signing in or out from another terminal is picked up while the app runs.`,
		Args: cobra.NoArgs,
		RunE: runApp,
	}
}

func runApp(cmd *cobra.Command, args []string) error {
	e, err := newEnv("app", nil)
	if err != nil {
		return err
	}
	defer e.close()

	store := e.store()
	if _, err := e.requireUser(cmd.Context(), store); err != nil {
		return err
	}

	client, svc, err := e.documentService()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	go func() {
		if err := store.Watch(ctx); err != nil {
			e.log.Warn("Credentials watch stopped", logger.Error(err))
		}
	}()
	go store.KeepFresh(ctx, time.Minute)

	return ui.Run(ctx, ui.Options{
		Service:     svc,
		Health:      client,
		Auth:        store,
		Logger:      e.log,
		Theme:       e.cfg.UI.Theme,
		RequireAuth: e.cfg.Auth.Required,
	})
}

func newSummarizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <file.pdf>",
		Short: "Summarize a PDF",
		Long: `Upload a PDF to the document service and print its summary and
suggested questions.`,
		Example: `  docsum summarize notes.pdf
  docsum summarize notes.pdf --output markdown > notes.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd, args[0], "")
		},
	}
}

func newAskCommand() *cobra.Command {
	var question string

	askCmd := &cobra.Command{
		Use:   "ask <file.pdf>",
		Short: "Ask a question about a PDF",
		Long: `Summarize a PDF and then ask a question about it. The output carries
both the summary and the answer.`,
		Example: `  docsum ask notes.pdf --question "Explain Topic A"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(question) == "" {
				return errors.New(docservice.MsgEmptyQuestion)
			}
			return runWorkflow(cmd, args[0], question)
		},
	}

	askCmd.Flags().StringVarP(&question, "question", "q", "", "question to ask about the document")

	return askCmd
}

// runWorkflow drives one session through summarize and, with a question, ask
func runWorkflow(cmd *cobra.Command, path, question string) error {
	e, err := newEnv("cli", cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.close()

	if _, err := e.requireUser(cmd.Context(), e.store()); err != nil {
		return err
	}

	format, err := formatter.New(e.outputFormat(), e.useColor())
	if err != nil {
		return err
	}

	doc, err := docservice.LoadDocument(config.ExpandPath(path))
	if err != nil {
		return err
	}
	if !doc.IsPDF() {
		return fmt.Errorf("%s is not a PDF file", doc.Name)
	}

	_, svc, err := e.documentService()
	if err != nil {
		return err
	}

	sess := session.New(e.log)
	sess.SelectFile(doc)

	ctx := cmd.Context()
	start := time.Now()

	if err := sess.Summarize(ctx, svc); err != nil {
		return workflowError(sess, err)
	}
	if question != "" {
		sess.SetQuestion(question)
		if err := sess.Ask(ctx, svc); err != nil {
			return workflowError(sess, err)
		}
	}

	output, err := format.Format(formatter.FromSnapshot(sess.Snapshot(), time.Since(start)))
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(output)
	return err
}

// workflowError reports the session failure the way the summarizer shows it
func workflowError(sess *session.Session, err error) error {
	snap := sess.Snapshot()
	if snap.Failure == nil {
		return err
	}
	return fmt.Errorf("%s %s", GetKindEmoji(string(snap.Failure.Kind)), snap.Failure.Message)
}

// signalContext cancels on interrupt
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
