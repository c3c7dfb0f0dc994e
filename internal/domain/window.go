package domain

import "fmt"

// Window is an inclusive [StartMs, EndMs] time range in epoch milliseconds,
// used to page capped list endpoints.
type Window struct {
	StartMs int64
	EndMs   int64
}

func (w Window) String() string {
	return fmt.Sprintf("[%d,%d]", w.StartMs, w.EndMs)
}

// Split bisects the window at its midpoint into two non-overlapping halves.
// ok is false when the window is already a single millisecond wide and
// cannot be split further.
func (w Window) Split() (left, right Window, ok bool) {
	if w.EndMs <= w.StartMs {
		return Window{}, Window{}, false
	}
	mid := w.StartMs + (w.EndMs-w.StartMs)/2
	return Window{StartMs: w.StartMs, EndMs: mid}, Window{StartMs: mid + 1, EndMs: w.EndMs}, true
}
