package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yildizm/DocSum/internal/contact"
	"github.com/yildizm/DocSum/internal/logger"
	"github.com/yildizm/DocSum/internal/site"
)

func newContactCommand() *cobra.Command {
	var form contact.Form

	contactCmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a message to the DocSum team",
		Long: `Send a message through the contact form. Requires a signed-in account;
your account email and name are attached so we can reply.

Pass --message - to read the message from stdin.`,
		Example: `  docsum contact --name Ada --email ada@example.com --message "Hello"
  cat feedback.txt | docsum contact --name Ada --email ada@example.com --message -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv("contact", cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			if form.Message == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read message: %w", err)
				}
				form.Message = string(data)
			}

			mailer, err := contact.NewMailer(e.cfg.Contact, e.cfg.Auth.Timeout)
			if err != nil {
				return fmt.Errorf("contact form is not configured: %w", err)
			}

			store := e.store()
			if err := store.EnsureFresh(cmd.Context()); err != nil {
				e.log.Warn("Could not renew sign-in", logger.Error(err))
			}
			svc := contact.NewService(mailer, store, e.cfg.Contact.ToEmail, e.log)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", GetEmoji("hourglass"), contact.StatusSending.Message())

			status, err := svc.Submit(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", GetEmoji("success"), status.Message())
			return nil
		},
	}

	contactCmd.Flags().StringVar(&form.Name, "name", "", "your name")
	contactCmd.Flags().StringVar(&form.Email, "email", "", "email address to reply to")
	contactCmd.Flags().StringVarP(&form.Message, "message", "m", "", "message text, or - for stdin")

	return contactCmd
}

func newServeCommand() *cobra.Command {
	var addr string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the landing page and contact endpoint",
		Long: `Serve the DocSum landing page, the contact form endpoint (POST /contact)
and a health endpoint reporting the document service status.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv("serve", cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			if addr != "" {
				e.cfg.Server.Addr = addr
			}

			client, _, err := e.documentService()
			if err != nil {
				return err
			}

			var contactSvc *contact.Service
			if mailer, err := contact.NewMailer(e.cfg.Contact, e.cfg.Auth.Timeout); err != nil {
				e.log.Warn("Contact form disabled", logger.Error(err))
			} else {
				contactSvc = contact.NewService(mailer, e.store(), e.cfg.Contact.ToEmail, e.log)
			}

			var verify site.TokenVerifier
			if identity, err := e.identity(); err != nil {
				e.log.Warn("Contact form disabled: bearer tokens cannot be verified", logger.Error(err))
			} else {
				verify = identity.VerifyIDToken
			}

			srv, err := site.NewServer(e.cfg.Server, contactSvc, client, verify, e.log)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			fmt.Fprintf(cmd.OutOrStdout(), "%s Serving on %s\n", GetEmoji("rocket"), e.cfg.Server.Addr)
			return srv.ListenAndServe(ctx)
		},
	}

	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")

	return serveCmd
}
