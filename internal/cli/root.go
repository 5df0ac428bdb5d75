package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/yildizm/DocSum/internal/emoji"
)

var (
	cfgFile   string
	verbose   bool
	noColor   bool
	noEmoji   bool
	outputFmt string
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docsum",
		Short: "Summarize PDF documents and ask questions about them",
		Long: `DocSum sends a PDF to the document service and shows its summary,
the suggested follow-up questions, and answers to your own questions
about the same file.

Run "docsum app" for the interactive summarizer, or "docsum summarize"
and "docsum ask" from scripts. Most commands require an account:
sign in with "docsum login".`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Auto-disable emojis on Windows if not explicitly set
			if runtime.GOOS == "windows" && !cmd.Flag("no-emoji").Changed {
				noEmoji = true
			}
			emoji.SetEmojiDisabled(noEmoji)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noEmoji, "no-emoji", false, "disable emoji output (useful for Windows terminals)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "output format (text, json, markdown); defaults to output.default_format")

	// Workflow
	rootCmd.AddCommand(newAppCommand())
	rootCmd.AddCommand(newSummarizeCommand())
	rootCmd.AddCommand(newAskCommand())

	// Account
	rootCmd.AddCommand(newLoginCommand())
	rootCmd.AddCommand(newSignupCommand())
	rootCmd.AddCommand(newLogoutCommand())
	rootCmd.AddCommand(newWhoamiCommand())
	rootCmd.AddCommand(newResetPasswordCommand())
	rootCmd.AddCommand(newChangePasswordCommand())

	// Site
	rootCmd.AddCommand(newContactCommand())
	rootCmd.AddCommand(newServeCommand())

	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version number, build commit, date, and runtime information",
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "DocSum %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// Global helpers
func isVerbose() bool {
	return verbose
}
