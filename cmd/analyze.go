package cmd

import (
	"io"
	"time"

	"github.com/oasci/vaxstats/analysis"
	"github.com/oasci/vaxstats/internal/config"
	"github.com/oasci/vaxstats/internal/outwriter"
	"github.com/oasci/vaxstats/internal/store"
	"github.com/oasci/vaxstats/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// analyzeCmd runs threshold detection on a file that already has predictions.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Flag fever and hypothermia buckets and summarise the recording.",
	Long: `Calibrate a 3-sigma residual bound on the baseline window, bucket the
recording by hour or day and count the buckets whose observed median is above
the fever threshold or below the hypothermia threshold.

Examples:
  # Human-readable summary and bucket table
  vaxstats analyze M17-forecast.csv

  # JSON summary, daily buckets aligned to the first reading
  vaxstats analyze M17-forecast.csv --output json --timeframe_unit day --bucketing_mode elapsed

  # Keep the run and its labels in a local SQLite store
  vaxstats analyze M17-forecast.csv --store_backend sqlite --label animal=M17 --label cohort=B`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, args []string) error {
		started := time.Now()

		series, err := loadSeries(args[0])
		if err != nil {
			return err
		}
		detection, err := analysis.Detect(rootCtx, series, cfg.Analysis)
		if err != nil {
			return err
		}
		result, err := analysis.Report(rootCtx, detection)
		if err != nil {
			return err
		}

		err = outwriter.WriteWithFile(cfg.OutputPath, func(w io.Writer) error {
			if cfg.Output == config.JSONOut {
				return outwriter.WriteJSON(w, result)
			}
			opts := outwriter.DefaultReportOptions()
			opts.UseColors = cfg.UseColors
			opts.DateFormat = cfg.DateFormat
			opts.Buckets = cfg.Buckets
			return outwriter.WriteReport(w, result, detection.Thresholds, opts)
		})
		if err != nil {
			return err
		}

		if cfg.BucketsParquet != "" {
			if err := outwriter.WriteBucketsParquet(cfg.BucketsParquet, detection.Thresholds); err != nil {
				return err
			}
			logger.Info("wrote bucket parquet", zap.String("path", cfg.BucketsParquet),
				zap.Int("buckets", len(detection.Thresholds)))
		}

		return saveRun(args[0], started, result)
	},
}

func saveRun(source string, started time.Time, result *model.AnalysisResult) error {
	if cfg.StoreBackend == store.NoneBackend {
		return nil
	}
	runs, err := store.Open(rootCtx, cfg.StoreBackend, cfg.StoreDSN)
	if err != nil {
		return err
	}
	defer func() { _ = runs.Close() }()

	_, err = runs.SaveRun(rootCtx, &store.Run{
		Source:      source,
		StartedAt:   started,
		FinishedAt:  time.Now(),
		Labels:      cfg.Labels,
		Options:     cfg.Params(),
		Result:      *result,
		Fever:       result.Fever.Duration,
		Hypothermia: result.Hypothermia.Duration,
	})
	return err
}
