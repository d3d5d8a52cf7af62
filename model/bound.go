package model

import (
	"time"
)

// Bound is the symmetric tolerance band added to a forecast.
type Bound struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

func NewSymmetricBound(upper float64) Bound {
	return Bound{Lower: -upper, Upper: upper}
}

type Bucket struct {
	// Key is the interval start: the truncated time in calendar mode, or
	// anchor + k*unit in elapsed mode.
	Key             time.Time
	Start           time.Time // earliest row
	End             time.Time // latest row
	MedianObserved  float64
	MedianPredicted float64
	Count           int
}
