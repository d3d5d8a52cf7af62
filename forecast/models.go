package forecast

import (
	"context"
	"fmt"
	"math"

	"github.com/oasci/vaxstats/common"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Mean predicts the training mean everywhere.
type Mean struct{}

func (Mean) FitPredict(_ context.Context, training []float64, horizon int) ([]float64, error) {
	if err := checkInput(training, horizon); err != nil {
		return nil, err
	}
	mean := stat.Mean(training, nil)
	res := make([]float64, len(training)+horizon)
	for i := range res {
		res[i] = mean
	}
	return res, nil
}

// SeasonalMean predicts, for every sample, the mean of the training samples
// at the same phase of the period.
type SeasonalMean struct {
	Period int
}

func NewSeasonalMean(period int) (*SeasonalMean, error) {
	if period < 1 {
		return nil, fmt.Errorf("seasonal period %d: %w", period, common.ErrorInvalidValue)
	}
	return &SeasonalMean{Period: period}, nil
}

func (m *SeasonalMean) FitPredict(_ context.Context, training []float64, horizon int) ([]float64, error) {
	if err := checkInput(training, horizon); err != nil {
		return nil, err
	}
	if len(training) < m.Period {
		return nil, fmt.Errorf("need at least one full period (%d) of training values, got %d: %w",
			m.Period, len(training), common.ErrorInvalidValue)
	}

	sums := make([]float64, m.Period)
	counts := make([]float64, m.Period)
	for i, v := range training {
		sums[i%m.Period] += v
		counts[i%m.Period]++
	}

	res := make([]float64, len(training)+horizon)
	for i := range res {
		phase := i % m.Period
		res[i] = sums[phase] / counts[phase]
	}
	return res, nil
}

// Harmonic fits y = b0 + sum_k (a_k sin(2*pi*k*i/P) + c_k cos(2*pi*k*i/P))
// by least squares, i being the sample index.
type Harmonic struct {
	Period    int
	Harmonics int
}

func NewHarmonic(period, harmonics int) (*Harmonic, error) {
	if period < 2 {
		return nil, fmt.Errorf("harmonic period %d: %w", period, common.ErrorInvalidValue)
	}
	if harmonics < 1 {
		harmonics = 1
	}
	// beyond the Nyquist limit the sine columns alias to zero
	if 2*harmonics >= period {
		return nil, fmt.Errorf("%d harmonics need a period above %d samples: %w", harmonics, 2*harmonics,
			common.ErrorInvalidValue)
	}
	return &Harmonic{Period: period, Harmonics: harmonics}, nil
}

func (m *Harmonic) features(i int) []float64 {
	row := make([]float64, 1+2*m.Harmonics)
	row[0] = 1
	for k := 1; k <= m.Harmonics; k++ {
		angle := 2 * math.Pi * float64(k) * float64(i) / float64(m.Period)
		row[2*k-1] = math.Sin(angle)
		row[2*k] = math.Cos(angle)
	}
	return row
}

func (m *Harmonic) FitPredict(ctx context.Context, training []float64, horizon int) ([]float64, error) {
	if err := checkInput(training, horizon); err != nil {
		return nil, err
	}
	cols := 1 + 2*m.Harmonics
	if len(training) < cols {
		return nil, fmt.Errorf("need at least %d training values for %d harmonics, got %d: %w",
			cols, m.Harmonics, len(training), common.ErrorInvalidValue)
	}

	design := mat.NewDense(len(training), cols, nil)
	for i := range training {
		design.SetRow(i, m.features(i))
	}
	y := mat.NewVecDense(len(training), training)

	var coef mat.VecDense
	if err := coef.SolveVec(design, y); err != nil {
		return nil, fmt.Errorf("harmonic least squares: %w", err)
	}

	res := make([]float64, len(training)+horizon)
	for i := range res {
		if i%4096 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		res[i] = mat.Dot(mat.NewVecDense(cols, m.features(i)), &coef)
	}
	return res, nil
}

func checkInput(training []float64, horizon int) error {
	if len(training) == 0 {
		return fmt.Errorf("no training values: %w", common.ErrEmptyBaseline)
	}
	if horizon < 0 {
		return fmt.Errorf("horizon %d: %w", horizon, common.ErrorInvalidValue)
	}
	for i, v := range training {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("training value %d is %v: %w", i, v, common.ErrorInvalidValue)
		}
	}
	return nil
}
