package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a message on stderr while graphviz lays out a flow.
// Cancelling its context stops it as Stop would.
type Spinner struct {
	w    io.Writer
	msg  string
	ctx  context.Context
	stop context.CancelFunc
	done chan struct{}
	once sync.Once
}

func newSpinnerWithContext(ctx context.Context, msg string) *Spinner {
	sctx, stop := context.WithCancel(ctx)
	return &Spinner{w: os.Stderr, msg: msg, ctx: sctx, stop: stop, done: make(chan struct{})}
}

func (s *Spinner) Start() {
	go func() {
		defer close(s.done)
		tick := time.NewTicker(80 * time.Millisecond)
		defer tick.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.msg)+4))
				return
			case <-tick.C:
				frame := spinnerFrames[i%len(spinnerFrames)]
				fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.msg))
			}
		}
	}()
}

// Stop ends the animation, clears the line and waits for the goroutine.
// Further calls do nothing.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.stop()
		<-s.done
	})
}

// Cancelled reports whether the spinner has been stopped, either by Stop
// or by its parent context.
func (s *Spinner) Cancelled() bool { return s.ctx.Err() != nil }
