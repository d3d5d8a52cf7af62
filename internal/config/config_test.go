package config

import (
	"testing"

	"github.com/oasci/vaxstats/common"
	"github.com/oasci/vaxstats/internal/store"
	"github.com/oasci/vaxstats/timeframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultInput() *RawInput {
	return &RawInput{
		BaselineHours:  DefaultBaselineHours,
		DataColumn:     DefaultDataColumn,
		PredColumn:     DefaultPredColumn,
		ResidualColumn: DefaultResidualColumn,
		DateColumn:     DefaultDateColumn,
		DateFormat:     DefaultDateFormat,
		TimeframeUnit:  DefaultTimeframeUnit,
		BucketingMode:  DefaultBucketingMode,
		Output:         DefaultOutput,
		StoreBackend:   DefaultStoreBackend,
		Color:          "no",
		Buckets:        DefaultBuckets,
		Period:         DefaultPeriod,
		Harmonics:      DefaultHarmonics,
		DateIdx:        0,
		TimeIdx:        1,
		YIdx:           2,
	}
}

func TestProcessAndValidate_Defaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, defaultInput()))

	assert.Equal(t, 72.0, cfg.Analysis.BaselineHours)
	assert.Equal(t, timeframe.Hour, cfg.Analysis.Timeframe.Unit)
	assert.Equal(t, timeframe.Calendar, cfg.Analysis.Timeframe.Mode)
	assert.Equal(t, "y", cfg.Columns.Data)
	assert.Equal(t, "y_hat", cfg.Columns.Pred)
	assert.Equal(t, "residual", cfg.Columns.Residual)
	assert.Equal(t, "ds", cfg.Columns.Date)
	assert.Equal(t, "%Y-%m-%d %H:%M:%S", cfg.DateFormat)
	assert.Equal(t, TextOut, cfg.Output)
	assert.Equal(t, store.NoneBackend, cfg.StoreBackend)
	assert.False(t, cfg.UseColors)
	assert.True(t, cfg.Buckets)
	assert.Empty(t, cfg.Labels)
	assert.Equal(t, 24, cfg.Forecast.Period)
	assert.Equal(t, "%m-%d-%y", cfg.Prep.DateFormat)
	assert.Equal(t, "%I:%M:%S %p", cfg.Prep.TimeFormat)
}

func TestProcessAndValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RawInput)
		target error
	}{
		{"zero baseline", func(in *RawInput) { in.BaselineHours = 0 }, common.ErrInvalidWindow},
		{"negative baseline", func(in *RawInput) { in.BaselineHours = -3 }, common.ErrInvalidWindow},
		{"bad unit", func(in *RawInput) { in.TimeframeUnit = "week" }, common.ErrorInvalidValue},
		{"bad mode", func(in *RawInput) { in.BucketingMode = "rolling" }, common.ErrorInvalidValue},
		{"bad output", func(in *RawInput) { in.Output = "xml" }, common.ErrorInvalidValue},
		{"empty column", func(in *RawInput) { in.PredColumn = " " }, common.ErrorInvalidValue},
		{"bad backend", func(in *RawInput) { in.StoreBackend = "oracle" }, common.ErrorInvalidValue},
		{"bad label", func(in *RawInput) { in.Labels = []string{"animal"} }, common.ErrorInvalidValue},
		{"bad color", func(in *RawInput) { in.Color = "sometimes" }, common.ErrorInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := defaultInput()
			tt.mutate(input)
			err := ProcessAndValidate(&Config{}, input)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestProcessAndValidate_Overrides(t *testing.T) {
	input := defaultInput()
	input.BaselineHours = 48
	input.TimeframeUnit = "DAY"
	input.BucketingMode = "elapsed"
	input.Output = "JSON"
	input.StoreBackend = "sqlite"
	input.Labels = []string{"animal=m-17", "cohort = b"}
	input.Color = "yes"
	input.Buckets = false

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, 48.0, cfg.Analysis.BaselineHours)
	assert.Equal(t, timeframe.Day, cfg.Analysis.Timeframe.Unit)
	assert.Equal(t, timeframe.Elapsed, cfg.Analysis.Timeframe.Mode)
	assert.Equal(t, JSONOut, cfg.Output)
	assert.Equal(t, store.SQLiteBackend, cfg.StoreBackend)
	assert.Equal(t, map[string]string{"animal": "m-17", "cohort": "b"}, cfg.Labels)
	assert.Equal(t, []string{"animal", "cohort"}, cfg.SortedLabels())
	assert.True(t, cfg.UseColors)
	assert.False(t, cfg.Buckets)
	assert.Equal(t, 48.0, cfg.Params()["baseline_hours"])
}

func TestParseColor(t *testing.T) {
	got, err := ParseColor("auto", true)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = ParseColor("", false)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = ParseColor("0", true)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestParseLabels(t *testing.T) {
	labels, err := ParseLabels([]string{"a=1", "b=x=y", "a=2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "2", "b": "x=y"}, labels)

	_, err = ParseLabels([]string{"=v"})
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
}
