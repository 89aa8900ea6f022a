package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

const spinnerDelay = 100 * time.Millisecond

// Spinner shows an animated status line while a step runs. It prints
// nothing when the output is not a terminal.
type Spinner struct {
	out     io.Writer
	caps    TerminalCapabilities
	symbols ProgressSymbols
	message string
	s       *spinner.Spinner
}

// NewSpinner creates a spinner writing to out.
func NewSpinner(out io.Writer, caps TerminalCapabilities) *Spinner {
	return &Spinner{
		out:     out,
		caps:    caps,
		symbols: SelectSymbols(caps),
	}
}

// Start begins animating with the given message.
func (sp *Spinner) Start(message string) {
	sp.message = message
	if !sp.caps.IsTTY {
		return
	}

	sp.s = spinner.New(spinner.CharSets[sp.symbols.SpinnerSet], spinnerDelay, spinner.WithWriter(sp.out))
	sp.s.Suffix = " " + message
	if !sp.caps.SupportsColor {
		_ = sp.s.Color("reset")
	}
	sp.s.Start()
}

// Succeed stops the spinner and prints a success line.
func (sp *Spinner) Succeed(detail string) {
	sp.finish(sp.symbols.Checkmark, detail)
}

// Fail stops the spinner and prints a failure line.
func (sp *Spinner) Fail(detail string) {
	sp.finish(sp.symbols.Failure, detail)
}

func (sp *Spinner) finish(symbol, detail string) {
	if sp.s != nil {
		sp.s.Stop()
		sp.s = nil
	}
	if !sp.caps.IsTTY {
		return
	}

	line := sp.message
	if detail != "" {
		line = fmt.Sprintf("%s (%s)", sp.message, detail)
	}
	fmt.Fprintf(sp.out, "%s %s\n", symbol, line)
}
