package progress

import (
	"os"

	"github.com/schollz/progressbar/v3"
)

// Bar reports build progress on the terminal. A nil-backed Bar is valid and
// silently discards updates, so callers never need to branch on whether
// progress reporting is enabled.
type Bar struct {
	bar *progressbar.ProgressBar
}

func New(enabled bool, description string) *Bar {
	if !enabled {
		return &Bar{}
	}

	return &Bar{bar: progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)}
}

func (b *Bar) Add(n int) {
	if b.bar != nil {
		_ = b.bar.Add(n)
	}
}

func (b *Bar) Finish() {
	if b.bar != nil {
		_ = b.bar.Finish()
	}
}
