package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// prompter reads answers from the command's input. Passwords are read without
// echo when input is a terminal.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
	tty bool
}

func newPrompter(cmd *cobra.Command) *prompter {
	r := cmd.InOrStdin()
	p := &prompter{in: bufio.NewReader(r), out: cmd.ErrOrStderr()}
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd, p.tty = int(f.Fd()), true
	}
	return p
}

// Line prints label and reads one trimmed line.
func (p *prompter) Line(label string) (string, error) {
	if _, err := fmt.Fprint(p.out, label); err != nil {
		return "", fmt.Errorf("writing prompt: %w", err)
	}
	s, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(s), nil
}

// Password prints label and reads a secret.
func (p *prompter) Password(label string) (string, error) {
	if !p.tty {
		return p.Line(label)
	}
	if _, err := fmt.Fprint(p.out, label); err != nil {
		return "", fmt.Errorf("writing prompt: %w", err)
	}
	b, err := term.ReadPassword(p.fd)
	if _, werr := fmt.Fprintln(p.out); werr != nil && err == nil {
		err = werr
	}
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}

// valueOr returns v when set, otherwise prompts for it.
func (p *prompter) valueOr(v, label string) (string, error) {
	if v != "" {
		return v, nil
	}
	return p.Line(label)
}
