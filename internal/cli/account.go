package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yildizm/DocSum/internal/auth"
	"github.com/yildizm/DocSum/internal/logger"
)

func newLoginCommand() *cobra.Command {
	var email, password string

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Long: `Sign in to your DocSum account. The session is stored in the credentials
file (auth.credentials_path) and shared with every running docsum app.

Missing values are prompted for; the password is read without echo.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv("auth", cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			client, err := e.identity()
			if err != nil {
				return err
			}

			p := newPrompter(cmd)
			if email, err = p.Line("Email", email); err != nil {
				return err
			}
			if password, err = p.Secret("Password", password); err != nil {
				return err
			}

			creds, err := client.SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := e.store().Save(creds); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Signed in as %s\n", GetEmoji("success"), displayName(creds))
			return nil
		},
	}

	loginCmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")

	return loginCmd
}

func newSignupCommand() *cobra.Command {
	var email, password, name string

	signupCmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Long: `Create a DocSum account and sign in. A verification email is sent to
the new address.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv("auth", cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			client, err := e.identity()
			if err != nil {
				return err
			}

			p := newPrompter(cmd)
			if name, err = p.Line("Name", name); err != nil {
				return err
			}
			if email, err = p.Line("Email", email); err != nil {
				return err
			}
			if password, err = p.Secret("Password", password); err != nil {
				return err
			}

			creds, err := client.SignUp(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}
			if err := e.store().Save(creds); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Account created for %s\n", GetEmoji("success"), displayName(creds))
			fmt.Fprintf(out, "%s Check %s to verify your email address\n", GetEmoji("mail"), creds.Email)
			return nil
		},
	}

	signupCmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	signupCmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	signupCmd.Flags().StringVarP(&name, "name", "n", "", "display name")

	return signupCmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv("auth", cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.store().Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Signed out\n", GetEmoji("door"))
			return nil
		},
	}
}

func newWhoamiCommand() *cobra.Command {
	var showToken bool

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv("auth", cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			store := e.store()
			if err := store.EnsureFresh(cmd.Context()); err != nil {
				e.log.Warn("Could not renew sign-in", logger.Error(err))
			}
			user, err := auth.Require(store)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if showToken {
				creds, err := store.Load()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, creds.IDToken)
				return nil
			}

			if e.outputFormat() == "json" {
				data, err := json.MarshalIndent(user, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal user: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			verified := "no"
			if user.EmailVerified {
				verified = "yes"
			}

			fmt.Fprintf(out, "%s %s\n", GetEmoji("user"), user.Name())
			fmt.Fprintf(out, "   Email: %s (verified: %s)\n", user.Email, verified)
			fmt.Fprintf(out, "   UID: %s\n", user.UID)
			if !user.ExpiresAt.IsZero() {
				fmt.Fprintf(out, "   Session expires: %s\n", user.ExpiresAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	whoamiCmd.Flags().BoolVar(&showToken, "token", false, "print the stored ID token")

	return whoamiCmd
}

func newResetPasswordCommand() *cobra.Command {
	var email string

	resetCmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Email a password reset link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv("auth", cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			client, err := e.identity()
			if err != nil {
				return err
			}

			if email, err = newPrompter(cmd).Line("Email", email); err != nil {
				return err
			}
			if err := client.SendPasswordReset(cmd.Context(), email); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Password reset email sent to %s\n", GetEmoji("mail"), email)
			return nil
		},
	}

	resetCmd.Flags().StringVarP(&email, "email", "e", "", "account email")

	return resetCmd
}

func newChangePasswordCommand() *cobra.Command {
	var current, next string

	changeCmd := &cobra.Command{
		Use:   "change-password",
		Short: "Change the password of the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv("auth", cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			store := e.store()
			user, err := auth.Require(store)
			if err != nil {
				return err
			}

			client, err := e.identity()
			if err != nil {
				return err
			}

			p := newPrompter(cmd)
			if current, err = p.Secret("Current password", current); err != nil {
				return err
			}
			if next, err = p.Secret("New password", next); err != nil {
				return err
			}
			if next == current {
				return fmt.Errorf("new password must differ from the current one")
			}

			creds, err := client.ChangePassword(cmd.Context(), user.Email, current, next)
			if err != nil {
				return err
			}
			if err := store.Save(creds); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Password updated\n", GetEmoji("lock"))
			return nil
		},
	}

	changeCmd.Flags().StringVar(&current, "current", "", "current password (prompted when omitted)")
	changeCmd.Flags().StringVar(&next, "new", "", "new password (prompted when omitted)")

	return changeCmd
}

func displayName(creds *auth.Credentials) string {
	if creds.DisplayName != "" {
		return fmt.Sprintf("%s (%s)", creds.DisplayName, creds.Email)
	}
	return creds.Email
}
