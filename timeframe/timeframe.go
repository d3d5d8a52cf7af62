// Package timeframe buckets a series into hour or day intervals and
// summarises each populated interval.
package timeframe

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/oasci/vaxstats/common"
	"github.com/oasci/vaxstats/model"
	"github.com/oasci/vaxstats/utils"
	"go.uber.org/zap"
)

type Unit string

const (
	Hour Unit = "hour"
	Day  Unit = "day"
)

func (u Unit) Duration() (time.Duration, error) {
	switch u {
	case Hour:
		return time.Hour, nil
	case Day:
		return 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("timeframe unit %q: %w", string(u), common.ErrorInvalidValue)
}

func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	if _, err := u.Duration(); err != nil {
		return "", err
	}
	return u, nil
}

// Mode selects how bucket boundaries are placed.
type Mode string

const (
	// Calendar truncates each timestamp to its UTC hour or day.
	Calendar Mode = "calendar"
	// Elapsed anchors the first bucket at the earliest timestamp and steps
	// by whole units from there.
	Elapsed Mode = "elapsed"
)

func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case Calendar, Elapsed:
		return m, nil
	}
	return "", fmt.Errorf("bucketing mode %q: %w", s, common.ErrorInvalidValue)
}

type Options struct {
	Unit Unit
	Mode Mode
}

// Aggregate groups rows into buckets and returns one summary per populated
// bucket, ascending by key. Rows with no prediction still count and still
// contribute to the observed median.
func Aggregate(ctx context.Context, series *model.Series, opts Options) ([]model.Bucket, error) {
	logger := utils.GetLogger(ctx)

	unit, err := opts.Unit.Duration()
	if err != nil {
		return nil, err
	}
	keyOf, err := keyFunc(series, opts.Mode, unit)
	if err != nil {
		return nil, err
	}

	groups := map[time.Time]*group{}
	for i := range series.Observations {
		o := &series.Observations[i]
		key := keyOf(o.Time)
		g, ok := groups[key]
		if !ok {
			g = &group{start: o.Time, end: o.Time}
			groups[key] = g
		}
		g.add(o)
	}

	keys := make([]time.Time, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	buckets := make([]model.Bucket, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		buckets = append(buckets, model.Bucket{
			Key:             k,
			Start:           g.start,
			End:             g.end,
			MedianObserved:  Median(g.observed),
			MedianPredicted: Median(g.predicted),
			Count:           len(g.observed),
		})
	}

	logger.Debug("aggregated series", zap.String("unit", string(opts.Unit)), zap.String("mode", string(opts.Mode)),
		zap.Int("rows", series.Len()), zap.Int("buckets", len(buckets)))
	return buckets, nil
}

func keyFunc(series *model.Series, mode Mode, unit time.Duration) (func(time.Time) time.Time, error) {
	switch mode {
	case Calendar:
		return func(t time.Time) time.Time {
			// Truncate counts from the zero time, which lies on a UTC midnight
			return t.UTC().Truncate(unit)
		}, nil
	case Elapsed:
		anchor, _, _ := series.TimeRange()
		return func(t time.Time) time.Time {
			k := t.Sub(anchor) / unit
			return anchor.Add(k * unit)
		}, nil
	}
	return nil, fmt.Errorf("bucketing mode %q: %w", string(mode), common.ErrorInvalidValue)
}

type group struct {
	start, end time.Time
	observed   []float64
	predicted  []float64
}

func (g *group) add(o *model.Observation) {
	if o.Time.Before(g.start) {
		g.start = o.Time
	}
	if o.Time.After(g.end) {
		g.end = o.Time
	}
	g.observed = append(g.observed, o.Value)
	if o.HasPrediction() {
		g.predicted = append(g.predicted, o.Predicted)
	}
}

// Median averages the two middle values for an even count. It returns NaN
// for empty input and does not modify data.
func Median(data []float64) float64 {
	n := len(data)
	if n == 0 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, data)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
