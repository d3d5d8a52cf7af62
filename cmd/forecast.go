package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/oasci/vaxstats/forecast"
	"github.com/oasci/vaxstats/internal/dataio"
	"github.com/oasci/vaxstats/internal/outwriter"
	"github.com/oasci/vaxstats/model"
	"github.com/oasci/vaxstats/residual"
	"github.com/oasci/vaxstats/utils"
	"github.com/spf13/cobra"
)

// forecastCmd fits a model on the baseline and predicts the whole recording.
var forecastCmd = &cobra.Command{
	Use:   "forecast <file> <model>",
	Short: "Fit a forecast on the baseline window and write predictions and residuals.",
	Long: fmt.Sprintf(`Fit a forecasting model on the first baseline_hours of a prepared file,
predict the remainder and write a CSV with the date, data, prediction and
residual columns.

Models: %s

Examples:
  # Cosinor fit with a 24 hour period on 10 minute samples
  vaxstats forecast M17-prepped.csv harmonic --period 144 --harmonics 2 -o M17-forecast.csv`,
		strings.Join(forecast.Names(), ", ")),
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, args []string) error {
		f, err := forecast.New(args[1], cfg.Forecast)
		if err != nil {
			return err
		}
		series, err := loadSeries(args[0])
		if err != nil {
			return err
		}

		predicted, err := utils.RunWithProgress(rootCtx, "forecast "+args[1],
			func(ctx context.Context) (model.Series, error) {
				return forecast.Attach(ctx, series, cfg.Analysis.BaselineHours, f)
			})
		if err != nil {
			return err
		}
		residuals, err := residual.Calculate(rootCtx, &predicted)
		if err != nil {
			return err
		}

		return outwriter.WriteWithFile(cfg.OutputPath, func(w io.Writer) error {
			return dataio.WriteSeries(w, &predicted, residuals, cfg.Columns, cfg.DateFormat)
		})
	},
}

func loadSeries(path string) (*model.Series, error) {
	table, err := dataio.Load(path, "")
	if err != nil {
		return nil, err
	}
	series, err := dataio.ToSeries(rootCtx, table, cfg.Columns, cfg.DateFormat)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	series.Labels["source"] = path
	for k, v := range cfg.Labels {
		series.Labels[k] = v
	}
	return series, nil
}
