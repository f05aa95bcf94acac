package main

import (
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/zorrokid/emulation-file-manager/internal/report"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

// newProgressConsumer returns a channel for pipeline progress events
// and a done function. Events drive an indeterminate progress bar when
// stdout is a terminal; otherwise they are only logged at debug level.
// Call done after the operation finishes to flush the bar.
func newProgressConsumer(description string) (chan report.Progress, func()) {
	ch := make(chan report.Progress, 16)
	finished := make(chan struct{})

	var bar *progressbar.ProgressBar
	if util.IsTerminal(os.Stdout.Fd()) && !util.IsQuiet() {
		// leave room for the description and counters next to the bar
		width := util.TerminalWidth(os.Stdout.Fd())/2 - len(description)
		if width < 10 {
			width = 10
		}
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWidth(width),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files"),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetRenderBlankState(true),
		)
	}

	go func() {
		defer close(finished)
		for p := range ch {
			switch p.Kind {
			case report.ProgressStarted:
				util.DebugLog("%s: %s started", description, p.Name)
			case report.ProgressPartUploaded:
				util.DebugLog("%s: %s part %d/%d", description, p.Name, p.Current, p.Total)
			case report.ProgressCompleted:
				util.DebugLog("%s: %s done", description, p.Name)
				if bar != nil {
					bar.Add(1)
				}
			case report.ProgressPartFailed, report.ProgressFailed:
				util.DebugLog("%s: %s failed: %v", description, p.Name, p.Err)
			}
		}
	}()

	done := func() {
		close(ch)
		<-finished
		if bar != nil {
			bar.Finish()
		}
	}
	return ch, done
}
