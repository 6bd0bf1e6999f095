package summary

import (
	"fmt"
	"time"
)

// Window is the half-open interval [Start, End)
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowFor returns the period of granularity g containing the calendar day of
// anchor. Boundaries are midnights in loc.
func WindowFor(g Granularity, anchor time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	spec := granularities[g]

	y, m, d := spec.truncate(anchor.Date())
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return Window{Start: start, End: spec.advance(start)}
}

// Contains reports whether t lies in [Start, End)
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Valid reports whether the window is non-empty
func (w Window) Valid() bool {
	return w.End.After(w.Start)
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}
