package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

type stopFunc func()

// startSpinner renders an indeterminate spinner on stderr whose description
// carries the elapsed time. Long transcriptions otherwise look hung.
func startSpinner(enabled bool, description string) stopFunc {
	return startSpinnerTo(os.Stderr, enabled, description)
}

func startSpinnerTo(w io.Writer, enabled bool, description string) stopFunc {
	if !enabled {
		return func() {}
	}

	bar := progressbar.NewOptions(
		-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(80*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)

	stopCh := make(chan struct{})
	doneCh := make(chan struct{})
	started := time.Now()

	go func() {
		defer close(doneCh)
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-stopCh:
				_ = bar.Finish()
				return
			case now := <-ticker.C:
				bar.Describe(spinnerLabel(description, now.Sub(started)))
				_ = bar.Add(1)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stopCh)
			<-doneCh
		})
	}
}

func spinnerLabel(description string, elapsed time.Duration) string {
	if elapsed < time.Second {
		return description
	}
	return fmt.Sprintf("%s (%s)", description, elapsed.Truncate(time.Second))
}
