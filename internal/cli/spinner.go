package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a status line while a render runs. It ends when stop is
// called or its context is done, whichever comes first.
type spinner struct {
	ctx     context.Context
	cancel  context.CancelFunc
	out     io.Writer
	message string
	done    chan struct{}
	once    sync.Once
}

// spin starts a spinner on stderr. Nothing is drawn when stderr is not a
// terminal, so piped and logged runs stay clean.
func spin(ctx context.Context, message string) *spinner {
	var out io.Writer = io.Discard
	if fd := os.Stderr.Fd(); isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		out = os.Stderr
	}
	return spinTo(ctx, out, message)
}

func spinTo(ctx context.Context, out io.Writer, message string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &spinner{
		ctx:     ctx,
		cancel:  cancel,
		out:     out,
		message: message,
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *spinner) run() {
	defer close(s.done)
	if s.out == io.Discard {
		<-s.ctx.Done()
		return
	}

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
			return
		case <-ticker.C:
			frame := spinnerFrames[i%len(spinnerFrames)]
			fmt.Fprintf(s.out, "\r%s %s", styleAccent.Render(frame), styleMuted.Render(s.message))
		}
	}
}

// stop clears the line and waits for the animation to end. Repeated calls
// are no-ops.
func (s *spinner) stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

// cancelled reports whether the spinner's context has ended.
func (s *spinner) cancelled() bool {
	return s.ctx.Err() != nil
}
