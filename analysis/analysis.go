// Package analysis composes the splitter, residual bound, timeframe
// aggregation and threshold detection into a single summary record.
package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/oasci/vaxstats/common"
	"github.com/oasci/vaxstats/model"
	"github.com/oasci/vaxstats/residual"
	"github.com/oasci/vaxstats/split"
	"github.com/oasci/vaxstats/threshold"
	"github.com/oasci/vaxstats/timeframe"
	"github.com/oasci/vaxstats/utils"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultBaselineHours is three days of calibration.
const DefaultBaselineHours = 72.0

type Options struct {
	// BaselineHours is the length of the calibration window.
	BaselineHours float64
	Timeframe     timeframe.Options
}

func (o Options) Validate() error {
	if !(o.BaselineHours > 0) || math.IsInf(o.BaselineHours, 0) {
		return fmt.Errorf("baseline hours %v: %w", o.BaselineHours, common.ErrInvalidWindow)
	}
	if _, err := o.Timeframe.Unit.Duration(); err != nil {
		return err
	}
	if _, err := timeframe.ParseMode(string(o.Timeframe.Mode)); err != nil {
		return err
	}
	return nil
}

// Detection holds the intermediate products of one run.
type Detection struct {
	Series     model.Series
	Residuals  model.Residuals
	Baseline   model.Partition
	Bound      model.Bound
	Thresholds []threshold.Threshold
}

// Detect calibrates the residual bound on the baseline window and applies it
// to every bucket of the full series.
func Detect(ctx context.Context, series *model.Series, opts Options) (*Detection, error) {
	logger := utils.GetLogger(ctx)

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("detecting thresholds", zap.String("series", series.DebugString()))
	sorted := series.Sorted()
	residuals, err := residual.Calculate(ctx, &sorted)
	if err != nil {
		return nil, err
	}

	baseline, _, err := split.Baseline(ctx, &sorted, opts.BaselineHours)
	if err != nil {
		return nil, err
	}
	bound, err := residual.EstimateBound(ctx, residuals.Pick(baseline.Indexes))
	if err != nil {
		return nil, err
	}

	buckets, err := timeframe.Aggregate(ctx, &sorted, opts.Timeframe)
	if err != nil {
		return nil, err
	}
	thresholds := threshold.Apply(buckets, bound)

	logger.Info("detected thresholds", zap.Int("rows", sorted.Len()), zap.Int("baselineRows", baseline.Len()),
		zap.Int("buckets", len(thresholds)))
	return &Detection{
		Series:     sorted,
		Residuals:  residuals,
		Baseline:   baseline,
		Bound:      bound,
		Thresholds: thresholds,
	}, nil
}

// Run produces the summary record for a series with predictions attached.
func Run(ctx context.Context, series *model.Series, opts Options) (*model.AnalysisResult, error) {
	detection, err := Detect(ctx, series, opts)
	if err != nil {
		return nil, err
	}
	return Report(ctx, detection)
}

// Report summarises a Detection.
func Report(ctx context.Context, d *Detection) (*model.AnalysisResult, error) {
	logger := utils.GetLogger(ctx)

	baselineStats, err := baselineStats(d)
	if err != nil {
		return nil, err
	}

	fever, hypo := threshold.Count(d.Thresholds)
	res := &model.AnalysisResult{
		Duration: durationStats(&d.Series),
		Baseline: baselineStats,
		Residual: model.ResidualStats{
			MaxResidual: maxOf(d.Residuals.Valid()),
			LowerBound:  d.Bound.Lower,
			UpperBound:  d.Bound.Upper,
		},
		Fever:       model.EpisodeStats{Duration: fever},
		Hypothermia: model.EpisodeStats{Duration: hypo},
	}

	logger.Info("analysis finished", zap.Float64("totalHours", utils.FormatFloat(res.Duration.TotalHours, 2)),
		zap.Int("feverBuckets", fever), zap.Int("hypothermiaBuckets", hypo))
	return res, nil
}

func durationStats(series *model.Series) model.DurationStats {
	first, last, ok := series.TimeRange()
	if !ok {
		return model.DurationStats{}
	}
	values := series.Values()
	return model.DurationStats{
		TotalHours:  utils.HoursBetween(first, last),
		MaxObserved: floats.Max(values),
		MinObserved: floats.Min(values),
	}
}

func baselineStats(d *Detection) (model.BaselineStats, error) {
	values := d.Baseline.Series.Values()
	if len(values) == 0 {
		return model.BaselineStats{}, fmt.Errorf("baseline window has no rows: %w", common.ErrEmptyBaseline)
	}
	rss, err := residual.SumSquares(d.Residuals.Pick(d.Baseline.Indexes))
	if err != nil {
		return model.BaselineStats{}, err
	}

	std := 0.0
	if len(values) > 1 {
		std = stat.StdDev(values, nil)
	}
	return model.BaselineStats{
		DegreesOfFreedom:   len(values),
		AverageObserved:    stat.Mean(values, nil),
		StdObserved:        std,
		MaxObserved:        floats.Max(values),
		MinObserved:        floats.Min(values),
		ResidualSumSquares: rss,
	}, nil
}

// maxOf returns 0 for empty input so the record stays JSON-encodable.
func maxOf(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return floats.Max(data)
}
