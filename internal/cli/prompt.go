package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
)

// prompter reads answers from the command input. Secrets are read without
// echo when the input is a terminal.
type prompter struct {
	in   *bufio.Reader
	file *os.File
	out  io.Writer
}

func newPrompter(cmd *cobra.Command) *prompter {
	in := cmd.InOrStdin()
	p := &prompter{
		in:  bufio.NewReader(in),
		out: cmd.ErrOrStderr(),
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(f.Fd()) {
		p.file = f
	}
	return p
}

// Line returns value when set, otherwise prompts for it
func (p *prompter) Line(label, value string) (string, error) {
	if value = strings.TrimSpace(value); value != "" {
		return value, nil
	}

	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}

	value = strings.TrimSpace(line)
	if value == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return value, nil
}

// Secret is Line without echo and without trimming inner spaces
func (p *prompter) Secret(label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	if p.file == nil {
		return p.Line(label, "")
	}

	fmt.Fprintf(p.out, "%s: ", label)
	secret, err := term.ReadPassword(p.file.Fd())
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	if len(secret) == 0 {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return string(secret), nil
}
