package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func at(minutes int, v float64) Observation {
	return NewObservation(t0.Add(time.Duration(minutes)*time.Minute), v)
}

func TestNewObservation(t *testing.T) {
	o := at(0, 36.6)
	assert.True(t, math.IsNaN(o.Predicted))
	assert.False(t, o.HasPrediction())
	o.Predicted = 36.5
	assert.True(t, o.HasPrediction())
}

func TestSeries_Sorted(t *testing.T) {
	s := &Series{
		Labels:       map[string]string{"subject": "m9324"},
		Observations: []Observation{at(20, 3), at(0, 1), at(20, 4), at(10, 2)},
	}
	assert.False(t, s.IsSorted())

	sorted := s.Sorted()
	assert.True(t, sorted.IsSorted())
	assert.Equal(t, []float64{1, 2, 3, 4}, sorted.Values())
	// input untouched
	assert.Equal(t, []float64{3, 1, 4, 2}, s.Values())

	sorted.Labels["subject"] = "other"
	assert.Equal(t, "m9324", s.Labels["subject"])
}

func TestSeries_TimeRange(t *testing.T) {
	_, _, ok := (&Series{}).TimeRange()
	assert.False(t, ok)

	var nilSeries *Series
	assert.True(t, nilSeries.IsEmpty())
	assert.Equal(t, 0, nilSeries.Len())

	s := &Series{Observations: []Observation{at(30, 1), at(5, 2), at(90, 3)}}
	first, last, ok := s.TimeRange()
	require.True(t, ok)
	assert.Equal(t, t0.Add(5*time.Minute), first)
	assert.Equal(t, t0.Add(90*time.Minute), last)
}

func TestResiduals(t *testing.T) {
	r := Residuals{0.5, math.NaN(), -0.25, 1}
	assert.Equal(t, []float64{0.5, -0.25, 1}, r.Valid())
	assert.Equal(t, Residuals{1, 0.5}, r.Pick([]int{3, 0}))
	assert.Empty(t, r.Pick(nil))
}

func TestWindow_Contains(t *testing.T) {
	w := Window{Start: t0, End: t0.Add(time.Hour)}
	assert.True(t, w.Contains(t0))
	assert.True(t, w.Contains(t0.Add(59*time.Minute)))
	assert.False(t, w.Contains(t0.Add(time.Hour)))
	assert.False(t, w.Contains(t0.Add(-time.Second)))

	open := Window{Start: t0}
	assert.True(t, open.Unbounded())
	assert.True(t, open.Contains(t0.Add(1000*time.Hour)))
}

func TestBound(t *testing.T) {
	b := NewSymmetricBound(0.3)
	assert.Equal(t, -0.3, b.Lower)
	assert.Equal(t, 0.3, b.Upper)
}
