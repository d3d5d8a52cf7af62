// Package forecast defines the forecasting capability the analysis depends
// on and a few concrete models that satisfy it.
package forecast

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/oasci/vaxstats/common"
	"github.com/oasci/vaxstats/model"
	"github.com/oasci/vaxstats/split"
	"github.com/oasci/vaxstats/utils"
	"go.uber.org/zap"
)

// Forecaster fits on training values and returns len(training)+horizon
// values: the in-sample fit followed by the forecast.
type Forecaster interface {
	FitPredict(ctx context.Context, training []float64, horizon int) ([]float64, error)
}

// ForecasterFunc adapts a plain function to Forecaster.
type ForecasterFunc func(ctx context.Context, training []float64, horizon int) ([]float64, error)

func (f ForecasterFunc) FitPredict(ctx context.Context, training []float64, horizon int) ([]float64, error) {
	return f(ctx, training, horizon)
}

// Params configures models built through New. Fields a model does not use
// are ignored.
type Params struct {
	// Period is the season length in samples.
	Period int
	// Harmonics is the number of sine/cosine pairs of the harmonic model.
	Harmonics int
}

type constructor func(Params) (Forecaster, error)

var registry = map[string]constructor{
	"mean": func(Params) (Forecaster, error) { return Mean{}, nil },
	"seasonal": func(p Params) (Forecaster, error) {
		return NewSeasonalMean(p.Period)
	},
	"harmonic": func(p Params) (Forecaster, error) {
		return NewHarmonic(p.Period, p.Harmonics)
	},
}

// Names lists the models New accepts.
func Names() []string {
	res := make([]string, 0, len(registry))
	for name := range registry {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

func New(name string, params Params) (Forecaster, error) {
	ctor, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("forecast model %q (known: %s): %w", name, strings.Join(Names(), ", "),
			common.ErrorInvalidValue)
	}
	return ctor(params)
}

// Attach fits f on the first baselineHours of the series and predicts the
// remainder. It returns a new, time-sorted series with every row predicted.
func Attach(ctx context.Context, series *model.Series, baselineHours float64, f Forecaster) (model.Series, error) {
	logger := utils.GetLogger(ctx)

	train, test, err := split.Baseline(ctx, series, baselineHours)
	if err != nil {
		return model.Series{}, err
	}
	if train.Len() == 0 {
		return model.Series{}, fmt.Errorf("no rows in the first %v hours to train on: %w", baselineHours,
			common.ErrEmptyBaseline)
	}

	logger.Info("fitting forecast model", zap.Int("train", train.Len()), zap.Int("horizon", test.Len()))
	predictions, err := f.FitPredict(ctx, train.Series.Values(), test.Len())
	if err != nil {
		return model.Series{}, fmt.Errorf("forecast failed: %w", err)
	}

	total := train.Len() + test.Len()
	if len(predictions) != total {
		return model.Series{}, fmt.Errorf("got %d predictions for %d rows: %w", len(predictions), total,
			common.ErrForecastLength)
	}

	obs := make([]model.Observation, 0, total)
	obs = append(obs, train.Series.Observations...)
	obs = append(obs, test.Series.Observations...)
	for i := range obs {
		obs[i].Predicted = predictions[i]
	}

	res := train.Series.WithObservations(obs)
	res.HasForecast = true
	return res, nil
}
