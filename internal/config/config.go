// Package config turns raw viper input into validated options for the
// analysis, forecasting and I/O layers.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/oasci/vaxstats/analysis"
	"github.com/oasci/vaxstats/common"
	"github.com/oasci/vaxstats/forecast"
	"github.com/oasci/vaxstats/internal/dataio"
	"github.com/oasci/vaxstats/internal/store"
	"github.com/oasci/vaxstats/timeframe"
	"golang.org/x/term"
)

// Default values for configuration.
const (
	DefaultBaselineHours  = analysis.DefaultBaselineHours
	DefaultDataColumn     = dataio.ValueColumn
	DefaultPredColumn     = dataio.PredColumn
	DefaultResidualColumn = dataio.ResidualColumn
	DefaultDateColumn     = dataio.DateColumn
	DefaultDateFormat     = dataio.DefaultDateFormat
	DefaultTimeframeUnit  = string(timeframe.Hour)
	DefaultBucketingMode  = string(timeframe.Calendar)
	DefaultOutput         = string(TextOut)
	DefaultStoreBackend   = string(store.NoneBackend)
	DefaultColor          = "auto"
	DefaultBuckets        = true
	DefaultPeriod         = 24
	DefaultHarmonics      = 1
)

// OutputMode selects the report format.
type OutputMode string

const (
	TextOut OutputMode = "text"
	JSONOut OutputMode = "json"
)

// RawInput holds the unvalidated merge of defaults, config file, env and
// flags. Viper unmarshals into it.
type RawInput struct {
	BaselineHours  float64  `mapstructure:"baseline_hours"`
	DataColumn     string   `mapstructure:"data_column"`
	PredColumn     string   `mapstructure:"pred_column"`
	ResidualColumn string   `mapstructure:"residual_column"`
	DateColumn     string   `mapstructure:"date_column"`
	DateFormat     string   `mapstructure:"date_format"`
	TimeframeUnit  string   `mapstructure:"timeframe_unit"`
	BucketingMode  string   `mapstructure:"bucketing_mode"`
	Output         string   `mapstructure:"output"`
	OutputPath     string   `mapstructure:"output_path"`
	Buckets        bool     `mapstructure:"buckets"`
	BucketsParquet string   `mapstructure:"buckets_parquet"`
	StoreBackend   string   `mapstructure:"store_backend"`
	StoreDSN       string   `mapstructure:"store_dsn"` // prefer VAXSTATS_STORE_DSN, it is plaintext
	Labels         []string `mapstructure:"label"`
	Color          string   `mapstructure:"color"`

	Period    int `mapstructure:"period"`
	Harmonics int `mapstructure:"harmonics"`

	DateIdx      int    `mapstructure:"date_idx"`
	TimeIdx      int    `mapstructure:"time_idx"`
	YIdx         int    `mapstructure:"y_idx"`
	InputDateFmt string `mapstructure:"input_date_fmt"`
	InputTimeFmt string `mapstructure:"input_time_fmt"`
	OutputFmt    string `mapstructure:"output_fmt"`
}

// Config is the validated configuration.
type Config struct {
	Analysis   analysis.Options
	Columns    dataio.Columns
	DateFormat string

	Output         OutputMode
	OutputPath     string
	Buckets        bool
	BucketsParquet string
	UseColors      bool
	Labels         map[string]string

	StoreBackend store.Backend
	StoreDSN     string

	Forecast forecast.Params
	Prep     dataio.PrepOptions
}

// ProcessAndValidate checks input and populates cfg.
func ProcessAndValidate(cfg *Config, input *RawInput) error {
	if err := processAnalysis(cfg, input); err != nil {
		return err
	}
	if err := processColumns(cfg, input); err != nil {
		return err
	}
	if err := processOutput(cfg, input); err != nil {
		return err
	}
	labels, err := ParseLabels(input.Labels)
	if err != nil {
		return err
	}
	cfg.Labels = labels

	backend, err := store.ParseBackend(input.StoreBackend)
	if err != nil {
		return err
	}
	cfg.StoreBackend = backend
	cfg.StoreDSN = input.StoreDSN

	cfg.Forecast = forecast.Params{Period: input.Period, Harmonics: input.Harmonics}
	prep := dataio.DefaultPrepOptions()
	cfg.Prep = dataio.PrepOptions{
		DateIdx:      input.DateIdx,
		TimeIdx:      input.TimeIdx,
		YIdx:         input.YIdx,
		DateFormat:   orDefault(input.InputDateFmt, prep.DateFormat),
		TimeFormat:   orDefault(input.InputTimeFmt, prep.TimeFormat),
		OutputFormat: orDefault(input.OutputFmt, prep.OutputFormat),
	}
	return nil
}

func processAnalysis(cfg *Config, input *RawInput) error {
	unit, err := timeframe.ParseUnit(input.TimeframeUnit)
	if err != nil {
		return fmt.Errorf("invalid timeframe_unit: %w", err)
	}
	mode, err := timeframe.ParseMode(input.BucketingMode)
	if err != nil {
		return fmt.Errorf("invalid bucketing_mode: %w", err)
	}
	cfg.Analysis = analysis.Options{
		BaselineHours: input.BaselineHours,
		Timeframe:     timeframe.Options{Unit: unit, Mode: mode},
	}
	return cfg.Analysis.Validate()
}

func processColumns(cfg *Config, input *RawInput) error {
	cfg.Columns = dataio.Columns{
		Date:     strings.TrimSpace(input.DateColumn),
		Data:     strings.TrimSpace(input.DataColumn),
		Pred:     strings.TrimSpace(input.PredColumn),
		Residual: strings.TrimSpace(input.ResidualColumn),
	}
	names := map[string]string{
		"date_column":     cfg.Columns.Date,
		"data_column":     cfg.Columns.Data,
		"pred_column":     cfg.Columns.Pred,
		"residual_column": cfg.Columns.Residual,
	}
	for key, name := range names {
		if name == "" {
			return fmt.Errorf("%s must not be empty: %w", key, common.ErrorInvalidValue)
		}
	}
	cfg.DateFormat = orDefault(input.DateFormat, DefaultDateFormat)
	return nil
}

func processOutput(cfg *Config, input *RawInput) error {
	cfg.Output = OutputMode(strings.ToLower(orDefault(input.Output, DefaultOutput)))
	switch cfg.Output {
	case TextOut, JSONOut:
	default:
		return fmt.Errorf("invalid output format %q, must be text or json: %w", input.Output,
			common.ErrorInvalidValue)
	}
	cfg.OutputPath = input.OutputPath
	cfg.Buckets = input.Buckets
	cfg.BucketsParquet = input.BucketsParquet

	colors, err := ParseColor(input.Color, cfg.OutputPath == "" && term.IsTerminal(int(os.Stdout.Fd())))
	if err != nil {
		return err
	}
	cfg.UseColors = colors
	return nil
}

// ParseColor accepts yes/no/true/false/1/0. "auto" and "" resolve to
// isTerminal.
func ParseColor(s string, isTerminal bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return isTerminal, nil
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid color value %q (expected auto/yes/no): %w", s, common.ErrorInvalidValue)
}

// ParseLabels parses key=value pairs. Later keys win.
func ParseLabels(pairs []string) (map[string]string, error) {
	res := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("label %q is not key=value: %w", pair, common.ErrorInvalidValue)
		}
		res[key] = strings.TrimSpace(value)
	}
	return res, nil
}

// Params flattens the analysis options for storage alongside a run.
func (c *Config) Params() map[string]any {
	return map[string]any{
		"baseline_hours":  c.Analysis.BaselineHours,
		"timeframe_unit":  string(c.Analysis.Timeframe.Unit),
		"bucketing_mode":  string(c.Analysis.Timeframe.Mode),
		"data_column":     c.Columns.Data,
		"pred_column":     c.Columns.Pred,
		"residual_column": c.Columns.Residual,
		"date_column":     c.Columns.Date,
		"date_format":     c.DateFormat,
	}
}

// SortedLabels returns the label keys in order.
func (c *Config) SortedLabels() []string {
	keys := make([]string, 0, len(c.Labels))
	for k := range c.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
