package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// Spinner writes a small progress indicator to the given writer while a
// long-running operation is in flight. Start and Stop must be paired.
type Spinner struct {
	out   io.Writer
	label string

	mu      sync.Mutex
	done    chan struct{}
	stopped sync.WaitGroup
}

// NewSpinner creates a spinner with the given label, e.g. "Fetching issues".
func NewSpinner(out io.Writer, label string) *Spinner {
	return &Spinner{out: out, label: label}
}

// Start begins animating. Calling Start on a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}
	s.done = make(chan struct{})
	s.stopped.Add(1)

	go func(done chan struct{}) {
		defer s.stopped.Done()
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-done:
				fmt.Fprintf(s.out, "\r%s... done\n", s.label)
				return
			case <-ticker.C:
				fmt.Fprintf(s.out, "\r%s... %s", s.label, spinnerFrames[i%len(spinnerFrames)])
				i++
			}
		}
	}(s.done)
}

// Stop ends the animation and prints the final line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	done := s.done
	s.done = nil
	s.mu.Unlock()
	if done == nil {
		return
	}
	close(done)
	s.stopped.Wait()
}
