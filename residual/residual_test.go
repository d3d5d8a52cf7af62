package residual

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/oasci/vaxstats/common"
	"github.com/oasci/vaxstats/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func predictedSeries(values, predicted []float64) *model.Series {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]model.Observation, len(values))
	for i := range values {
		obs[i] = model.NewObservation(t0.Add(time.Duration(i)*time.Hour), values[i])
		obs[i].Predicted = predicted[i]
	}
	return &model.Series{Observations: obs, HasForecast: true}
}

func TestCalculate(t *testing.T) {
	series := predictedSeries([]float64{37, 36.5, 38}, []float64{36.5, math.NaN(), 37})
	residuals, err := Calculate(context.Background(), series)
	require.NoError(t, err)
	require.Len(t, residuals, 3)
	assert.Equal(t, 0.5, residuals[0])
	assert.True(t, math.IsNaN(residuals[1]))
	assert.Equal(t, 1.0, residuals[2])
}

func TestCalculate_NoForecast(t *testing.T) {
	series := predictedSeries([]float64{37}, []float64{37})
	series.HasForecast = false
	_, err := Calculate(context.Background(), series)
	assert.ErrorIs(t, err, common.ErrMissingColumn)
}

func TestSumSquares(t *testing.T) {
	rss, err := SumSquares(model.Residuals{1, -2, 0.5})
	require.NoError(t, err)
	assert.Equal(t, 5.25, rss)

	_, err = SumSquares(model.Residuals{1, math.NaN()})
	require.ErrorIs(t, err, common.ErrIncompleteRow)
	assert.Contains(t, err.Error(), "row 1")
}

func TestEstimateBound(t *testing.T) {
	// rss = 4+4+4+4 = 16, n = 4, 3*sqrt(16/4) = 6
	bound, err := EstimateBound(context.Background(), model.Residuals{2, -2, 2, -2})
	require.NoError(t, err)
	assert.Equal(t, 6.0, bound.Upper)
	assert.Equal(t, -bound.Upper, bound.Lower)
}

func TestEstimateBound_ZeroResiduals(t *testing.T) {
	bound, err := EstimateBound(context.Background(), model.Residuals{0, 0, 0})
	require.NoError(t, err)
	assert.Zero(t, bound.Upper)
	assert.Zero(t, bound.Lower)
}

func TestEstimateBound_Errors(t *testing.T) {
	_, err := EstimateBound(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrEmptyBaseline)

	_, err = EstimateBound(context.Background(), model.Residuals{0.1, math.NaN()})
	assert.ErrorIs(t, err, common.ErrIncompleteRow)
}
