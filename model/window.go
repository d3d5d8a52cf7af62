package model

import "time"

// Window is the half-open interval [Start, End). A zero End is unbounded.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Unbounded() bool {
	return w.End.IsZero()
}

func (w Window) Contains(t time.Time) bool {
	if t.Before(w.Start) {
		return false
	}
	return w.Unbounded() || t.Before(w.End)
}

// Partition is the slice of a sorted series that falls in one window.
// Indexes are row positions in the sorted parent series.
type Partition struct {
	Window  Window
	Series  Series
	Indexes []int
}

func (p *Partition) Len() int {
	return len(p.Indexes)
}
