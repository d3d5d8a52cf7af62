// Package cmd defines the command-line interface for vaxstats.
package cmd

import (
	"fmt"
	"os"

	"github.com/oasci/vaxstats/internal/config"
	"github.com/oasci/vaxstats/internal/dataio"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func mustBind(name string, cmd *cobra.Command, persistent bool) {
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	if err := viper.BindPFlags(flags); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Fatal error binding %s flags: %v\n", name, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(prepCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(versionCmd)

	// Logging flags are read straight from cobra, not viper.
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	rootCmd.PersistentFlags().String("logfile", "", "Also write logs to this file")

	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().Float64("baseline_hours", config.DefaultBaselineHours, "Hours from the first reading used as the baseline")
	rootCmd.PersistentFlags().String("data_column", config.DefaultDataColumn, "Column holding observed values")
	rootCmd.PersistentFlags().String("pred_column", config.DefaultPredColumn, "Column holding predicted values")
	rootCmd.PersistentFlags().String("residual_column", config.DefaultResidualColumn, "Column written with residuals")
	rootCmd.PersistentFlags().String("date_column", config.DefaultDateColumn, "Column holding timestamps")
	rootCmd.PersistentFlags().String("date_format", config.DefaultDateFormat, "strftime pattern of the timestamp column")
	rootCmd.PersistentFlags().String("output", config.DefaultOutput, "Output format: text or json")
	rootCmd.PersistentFlags().StringP("output_path", "o", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("store_backend", config.DefaultStoreBackend, "Run store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store_dsn", "", "Run store connection string (sqlite file path or server DSN)")
	rootCmd.PersistentFlags().String("color", config.DefaultColor, "Colored labels in text output (auto/yes/no)")
	mustBind("root", rootCmd, true)

	prep := dataio.DefaultPrepOptions()
	prepCmd.Flags().Int("date_idx", prep.DateIdx, "Index of the date column")
	prepCmd.Flags().Int("time_idx", prep.TimeIdx, "Index of the time column (equal to date_idx when combined)")
	prepCmd.Flags().Int("y_idx", prep.YIdx, "Index of the value column")
	prepCmd.Flags().String("input_date_fmt", prep.DateFormat, "strftime pattern of the date column")
	prepCmd.Flags().String("input_time_fmt", prep.TimeFormat, "strftime pattern of the time column")
	prepCmd.Flags().String("output_fmt", prep.OutputFormat, "strftime pattern of the written ds column")
	mustBind("prep", prepCmd, false)

	forecastCmd.Flags().Int("period", config.DefaultPeriod, "Season length in samples (seasonal and harmonic models)")
	forecastCmd.Flags().Int("harmonics", config.DefaultHarmonics, "Sine/cosine pairs of the harmonic model")
	mustBind("forecast", forecastCmd, false)

	analyzeCmd.Flags().String("timeframe_unit", config.DefaultTimeframeUnit, "Bucket size: hour or day")
	analyzeCmd.Flags().String("bucketing_mode", config.DefaultBucketingMode, "Bucket alignment: calendar or elapsed")
	analyzeCmd.Flags().Bool("buckets", config.DefaultBuckets, "Print the per-bucket table in text output")
	analyzeCmd.Flags().String("buckets_parquet", "", "Write classified buckets to this parquet file")
	analyzeCmd.Flags().StringSlice("label", nil, "Label stored with the run, as key=value (repeatable)")
	mustBind("analyze", analyzeCmd, false)

	runsCmd.Flags().Int("limit", 20, "Number of runs to list (0 lists all)")
	mustBind("runs", runsCmd, false)
}
