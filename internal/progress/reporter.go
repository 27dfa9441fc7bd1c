// Package progress renders prediction run progress on the terminal.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/aioracle/aioracle/internal/worker"
)

// Reporter receives worker progress for display.
type Reporter interface {
	Update(p worker.Progress)
	Finish()
}

// NewReporter returns a TerminalReporter when stderr is an interactive
// terminal outside CI, otherwise a LineReporter on stderr.
func NewReporter() Reporter {
	if os.Getenv("CI") == "" && isatty.IsTerminal(os.Stderr.Fd()) {
		return NewTerminalReporter(os.Stderr)
	}
	return NewLineReporter(os.Stderr)
}

// Handlers adapts r to worker callbacks.
func Handlers(r Reporter) worker.Handlers {
	return worker.Handlers{OnProgress: r.Update}
}

// TerminalReporter displays a progress bar.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

// NewTerminalReporter creates a percentage bar writing to w.
func NewTerminalReporter(w io.Writer) *TerminalReporter {
	return &TerminalReporter{
		bar: progressbar.NewOptions(100,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("Starting..."),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionClearOnFinish(),
		),
	}
}

func (r *TerminalReporter) Update(p worker.Progress) {
	r.bar.Describe(p.Message)
	_ = r.bar.Set(p.Percent)
}

func (r *TerminalReporter) Finish() {
	_ = r.bar.Finish()
}

// LineReporter prints one line per progress report, for logs and pipes.
type LineReporter struct {
	w io.Writer
}

// NewLineReporter creates a reporter writing to w.
func NewLineReporter(w io.Writer) *LineReporter {
	return &LineReporter{w: w}
}

func (r *LineReporter) Update(p worker.Progress) {
	fmt.Fprintf(r.w, "[%3d%%] %s\n", p.Percent, p.Message)
}

func (r *LineReporter) Finish() {}
