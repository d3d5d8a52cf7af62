// Package split partitions a time-sorted series into contiguous windows
// anchored at its earliest timestamp.
package split

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/oasci/vaxstats/common"
	"github.com/oasci/vaxstats/model"
	"github.com/oasci/vaxstats/utils"
	"go.uber.org/zap"
)

// Split returns len(durations)+1 partitions. Partition i covers
// [anchor + sum(durations[:i]), anchor + sum(durations[:i+1])) and the last
// one is unbounded. Durations are in hours. Once the running offset passes
// the largest time.Duration, that window and every later one are unbounded.
func Split(ctx context.Context, series *model.Series, durations []float64) ([]model.Partition, error) {
	logger := utils.GetLogger(ctx)

	for i, d := range durations {
		if !(d > 0) || math.IsInf(d, 0) {
			return nil, fmt.Errorf("duration %d is %v hours: %w", i, d, common.ErrInvalidWindow)
		}
	}

	sorted := series.Sorted()
	partitions := make([]model.Partition, len(durations)+1)

	anchor, _, ok := sorted.TimeRange()
	if !ok {
		for i := range partitions {
			partitions[i] = model.Partition{Series: sorted.WithObservations(nil)}
		}
		return partitions, nil
	}

	windows := make([]model.Window, len(partitions))
	start := anchor
	var offset time.Duration
	saturated := false
	for i, d := range durations {
		step, ok := utils.HoursToDuration(d)
		if saturated || !ok || step > utils.MaxDuration-offset {
			saturated = true
			windows[i] = model.Window{Start: start}
			continue
		}
		offset += step
		end := anchor.Add(offset)
		windows[i] = model.Window{Start: start, End: end}
		start = end
	}
	windows[len(windows)-1] = model.Window{Start: start}
	if saturated {
		logger.Warn("split offset exceeds the duration range, later windows are unbounded",
			zap.Float64s("durations", durations))
	}

	// rows are sorted, so each window takes a contiguous run
	row := 0
	for i, w := range windows {
		begin := row
		for row < len(sorted.Observations) && w.Contains(sorted.Observations[row].Time) {
			row++
		}
		obs := make([]model.Observation, row-begin)
		copy(obs, sorted.Observations[begin:row])
		indexes := make([]int, row-begin)
		for j := range indexes {
			indexes[j] = begin + j
		}
		partitions[i] = model.Partition{Window: w, Series: sorted.WithObservations(obs), Indexes: indexes}
	}

	logger.Debug("split series", zap.Int("rows", sorted.Len()), zap.Int("partitions", len(partitions)),
		zap.Time("anchor", anchor))
	return partitions, nil
}

// Baseline is the two-way split: the first hours of the series and the rest.
func Baseline(ctx context.Context, series *model.Series, hours float64) (baseline, rest model.Partition, err error) {
	partitions, err := Split(ctx, series, []float64{hours})
	if err != nil {
		return model.Partition{}, model.Partition{}, err
	}
	return partitions[0], partitions[1], nil
}
