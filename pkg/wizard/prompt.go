// Package wizard collects a fabric definition from line-oriented prompts.
// It only produces a fabric.ConfigFile; validation and planning happen
// afterwards in the fabric and addrplan packages.
package wizard

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ErrInputClosed is returned when the input ends before a prompt is answered.
var ErrInputClosed = errors.New("input closed")

// Prompter reads answers from a line reader and writes prompts to out.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// New returns a Prompter. Pauses are only honoured when in is a terminal.
func New(in io.Reader, out io.Writer) *Prompter {
	interactive := false
	if f, ok := in.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	return &Prompter{in: bufio.NewReader(in), out: out, interactive: interactive}
}

// Interactive reports whether input comes from a terminal.
func (p *Prompter) Interactive() bool { return p.interactive }

// Printf writes to the prompt output.
func (p *Prompter) Printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}

// Println writes a line to the prompt output.
func (p *Prompter) Println(args ...interface{}) {
	fmt.Fprintln(p.out, args...)
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Ask prints "label [def]: " and returns the answer, or def when blank.
func (p *Prompter) Ask(label, def string) (string, error) {
	fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Line prints "label: " and returns the answer as typed.
func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	return p.readLine()
}

// AskInt is Ask for integers. Non-numeric answers are asked again.
func (p *Prompter) AskInt(label string, def int) (int, error) {
	for {
		answer, err := p.Ask(label, strconv.Itoa(def))
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil {
			return n, nil
		}
		fmt.Fprintf(p.out, "  %q is not a number\n", answer)
	}
}

// AskRequired repeats the prompt until a non-blank answer is given.
func (p *Prompter) AskRequired(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	for {
		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
		fmt.Fprintf(p.out, "%s (required): ", label)
	}
}

// Confirm asks a y/n question. Only "y" and "yes" count as agreement.
func (p *Prompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s (y/n): ", question)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// AskYesNo repeats a y/n question until it gets y, yes, n or no.
func (p *Prompter) AskYesNo(question string) (bool, error) {
	for {
		fmt.Fprintf(p.out, "%s (y/n): ", question)
		answer, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please enter 'y' or 'n'")
	}
}

// PressEnter waits for Enter on a terminal and returns at once otherwise.
func (p *Prompter) PressEnter() {
	if !p.interactive {
		return
	}
	fmt.Fprint(p.out, "\nPress Enter to continue...")
	p.readLine()
}
