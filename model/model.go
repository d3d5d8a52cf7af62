package model

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Observation is one row of the series. Predicted is NaN until a forecast
// has been attached.
type Observation struct {
	Time      time.Time
	Value     float64
	Predicted float64
}

func NewObservation(t time.Time, value float64) Observation {
	return Observation{Time: t, Value: value, Predicted: math.NaN()}
}

func (o *Observation) HasPrediction() bool {
	return !math.IsNaN(o.Predicted)
}

func (o *Observation) Before(other Observation) bool {
	return o.Time.Before(other.Time)
}

type Series struct {
	// Labels contains label key -> label value, like "subject": "m9324"
	Labels       map[string]string
	Observations []Observation
	// HasForecast is set once the predicted column has been attached.
	HasForecast bool
}

func (s *Series) DebugString() string {
	res := fmt.Sprintf("labels: %+v, valueCount: %+v, forecast: %v", s.Labels, len(s.Observations), s.HasForecast)
	return res
}

func (s *Series) IsEmpty() bool {
	if s == nil {
		return true
	}
	return len(s.Observations) == 0
}

func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Observations)
}

// Sorted returns a copy ordered ascending by time. Rows sharing a timestamp
// keep their input order.
func (s *Series) Sorted() Series {
	res := s.withObservations(make([]Observation, len(s.Observations)))
	copy(res.Observations, s.Observations)
	sort.SliceStable(res.Observations, func(i, j int) bool {
		return res.Observations[i].Before(res.Observations[j])
	})
	return res
}

// IsSorted reports whether the observations are already in ascending order.
func (s *Series) IsSorted() bool {
	return sort.SliceIsSorted(s.Observations, func(i, j int) bool {
		return s.Observations[i].Before(s.Observations[j])
	})
}

// WithObservations returns a series sharing labels and forecast state but
// holding the given rows.
func (s *Series) WithObservations(obs []Observation) Series {
	return s.withObservations(obs)
}

func (s *Series) withObservations(obs []Observation) Series {
	labels := make(map[string]string, len(s.Labels))
	for k, v := range s.Labels {
		labels[k] = v
	}
	return Series{Labels: labels, Observations: obs, HasForecast: s.HasForecast}
}

func (s *Series) Values() []float64 {
	res := make([]float64, len(s.Observations))
	for i := range s.Observations {
		res[i] = s.Observations[i].Value
	}
	return res
}

func (s *Series) Predictions() []float64 {
	res := make([]float64, len(s.Observations))
	for i := range s.Observations {
		res[i] = s.Observations[i].Predicted
	}
	return res
}

// TimeRange returns the earliest and latest timestamps. ok is false for an
// empty series.
func (s *Series) TimeRange() (first, last time.Time, ok bool) {
	if s.IsEmpty() {
		return time.Time{}, time.Time{}, false
	}
	first, last = s.Observations[0].Time, s.Observations[0].Time
	for _, o := range s.Observations[1:] {
		if o.Time.Before(first) {
			first = o.Time
		}
		if o.Time.After(last) {
			last = o.Time
		}
	}
	return first, last, true
}

// Residuals is aligned 1:1 with a series by row order. NaN marks a row
// without a prediction.
type Residuals []float64

// Valid returns the residuals with NaN entries removed.
func (r Residuals) Valid() []float64 {
	res := make([]float64, 0, len(r))
	for _, v := range r {
		if !math.IsNaN(v) {
			res = append(res, v)
		}
	}
	return res
}

// Pick returns the residuals at the given row indexes.
func (r Residuals) Pick(indexes []int) Residuals {
	res := make(Residuals, len(indexes))
	for i, idx := range indexes {
		res[i] = r[idx]
	}
	return res
}
