// Package residual derives observed-minus-predicted residuals and the
// symmetric tolerance band calibrated on a baseline window.
package residual

import (
	"context"
	"fmt"
	"math"

	"github.com/oasci/vaxstats/common"
	"github.com/oasci/vaxstats/model"
	"github.com/oasci/vaxstats/utils"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// BoundSigma scales the baseline residual RMS into the tolerance band.
const BoundSigma = 3.0

// Calculate returns observed - predicted for every row in input order. Rows
// without a prediction get NaN.
func Calculate(ctx context.Context, series *model.Series) (model.Residuals, error) {
	logger := utils.GetLogger(ctx)

	if !series.HasForecast {
		return nil, fmt.Errorf("predicted values not attached: %w", common.ErrMissingColumn)
	}

	res := make(model.Residuals, len(series.Observations))
	missing := 0
	for i := range series.Observations {
		o := &series.Observations[i]
		if !o.HasPrediction() {
			res[i] = math.NaN()
			missing++
			continue
		}
		res[i] = o.Value - o.Predicted
	}

	logger.Debug("computed residuals", zap.Int("rows", len(res)), zap.Int("missing", missing))
	return res, nil
}

// SumSquares returns the residual sum of squares. Every residual must be
// defined.
func SumSquares(residuals model.Residuals) (float64, error) {
	if floats.HasNaN(residuals) {
		return 0, fmt.Errorf("residual at row %d has no prediction: %w", firstNaN(residuals), common.ErrIncompleteRow)
	}
	return floats.Dot(residuals, residuals), nil
}

// EstimateBound computes (-k*sqrt(rss/n), k*sqrt(rss/n)) over the baseline
// residuals, with k = BoundSigma.
func EstimateBound(ctx context.Context, residuals model.Residuals) (model.Bound, error) {
	logger := utils.GetLogger(ctx)

	n := len(residuals)
	if n == 0 {
		return model.Bound{}, fmt.Errorf("no rows to calibrate residual bound: %w", common.ErrEmptyBaseline)
	}

	rss, err := SumSquares(residuals)
	if err != nil {
		return model.Bound{}, err
	}

	normed := rss / float64(n)
	bound := model.NewSymmetricBound(BoundSigma * math.Sqrt(normed))

	logger.Info("estimated residual bound", zap.Int("rows", n), zap.Float64("rss", rss),
		zap.Float64("upper", utils.FormatFloat(bound.Upper, 4)))
	return bound, nil
}

func firstNaN(data []float64) int {
	for i, v := range data {
		if math.IsNaN(v) {
			return i
		}
	}
	return -1
}
