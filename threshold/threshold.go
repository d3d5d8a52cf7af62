// Package threshold turns bucket forecast medians plus a residual bound into
// fever / hypothermia thresholds and classifies buckets against them.
package threshold

import (
	"github.com/oasci/vaxstats/model"
)

type Class int

const (
	Normal Class = iota
	Fever
	Hypothermia
)

func (c Class) String() string {
	switch c {
	case Fever:
		return "fever"
	case Hypothermia:
		return "hypothermia"
	}
	return "normal"
}

// Threshold is a bucket with its thresholds. Both are measured from the
// forecast median, not the observed one.
type Threshold struct {
	model.Bucket
	Fever float64
	Hypo  float64
}

func (t *Threshold) IsFever() bool {
	return t.MedianObserved > t.Fever
}

func (t *Threshold) IsHypothermia() bool {
	return t.MedianObserved < t.Hypo
}

// Class never reports both: with Lower <= Upper a median above the fever
// threshold cannot also be below the hypothermia one.
func (t *Threshold) Class() Class {
	switch {
	case t.IsFever():
		return Fever
	case t.IsHypothermia():
		return Hypothermia
	}
	return Normal
}

// Apply computes thresholds for every bucket. A bucket with no forecast
// median gets NaN thresholds and always classifies as Normal.
func Apply(buckets []model.Bucket, bound model.Bound) []Threshold {
	res := make([]Threshold, len(buckets))
	for i, b := range buckets {
		res[i] = Threshold{
			Bucket: b,
			Fever:  b.MedianPredicted + bound.Upper,
			Hypo:   b.MedianPredicted + bound.Lower,
		}
	}
	return res
}

// Count returns the number of fever and hypothermia buckets, one unit per
// bucket regardless of its span.
func Count(thresholds []Threshold) (fever, hypo int) {
	for i := range thresholds {
		switch thresholds[i].Class() {
		case Fever:
			fever++
		case Hypothermia:
			hypo++
		}
	}
	return fever, hypo
}
