package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Tracker wraps a spinner that counts traversed files.
type Tracker struct {
	bar   *progressbar.ProgressBar
	label string
	count int
}

// NewSpinner creates a spinner on stderr for a walk of unknown size.
func NewSpinner(label string) *Tracker {
	return NewSpinnerTo(os.Stderr, label)
}

// NewSpinnerTo creates a spinner writing to w.
func NewSpinnerTo(w io.Writer, label string) *Tracker {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(describe(label, 0)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &Tracker{bar: bar, label: label}
}

func describe(label string, n int) string {
	return fmt.Sprintf("%s %d files traversed", label, n)
}

// Tick records one traversed file. Not safe for concurrent use.
func (t *Tracker) Tick() {
	t.count++
	t.bar.Describe(describe(t.label, t.count))
	t.bar.Add(1)
}

// Count returns the number of ticks so far.
func (t *Tracker) Count() int {
	return t.count
}

// Callback adapts the tracker to a per-file progress hook.
func (t *Tracker) Callback() func(current, total int, path string) {
	return func(int, int, string) {
		t.Tick()
	}
}

// FinishSuccess clears the spinner completely (no output).
func (t *Tracker) FinishSuccess() {
	t.bar.Finish()
	t.bar.Clear()
}
