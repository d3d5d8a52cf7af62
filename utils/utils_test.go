package utils

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHoursBetween(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 1.5, HoursBetween(from, from.Add(90*time.Minute)))
	assert.Equal(t, -2.0, HoursBetween(from, from.Add(-2*time.Hour)))
	d, ok := HoursToDuration(1.5)
	assert.True(t, ok)
	assert.Equal(t, 90*time.Minute, d)

	d, ok = HoursToDuration(3e6)
	assert.False(t, ok)
	assert.Equal(t, MaxDuration, d)
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, 1.23, FormatFloat(1.23456, 2))
	assert.Equal(t, 2.0, FormatFloat(1.5, 0))
	assert.True(t, math.IsNaN(FormatFloat(math.NaN(), 3)))
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := WithLogger(context.Background(), zap.New(core))
	GetLogger(ctx).Info("hello")
	assert.Equal(t, 1, logs.FilterMessage("hello").Len())
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vaxstats.log")
	logger, err := NewLogger(VerbosityDebug, path)
	require.NoError(t, err)

	logger.Debug("debug entry", zap.Int("rows", 3))
	_ = logger.Sync()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "DEBUG")
	assert.Contains(t, string(content), "debug entry")
}

func TestNewLogger_InfoDropsDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vaxstats.log")
	logger, err := NewLogger(VerbosityInfo, path)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("shown")
	_ = logger.Sync()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "hidden")
	assert.Contains(t, string(content), "shown")
}

func TestNextProgressInterval(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    time.Duration
	}{
		{0, 5 * time.Second},
		{14 * time.Second, 5 * time.Second},
		{15 * time.Second, 15 * time.Second},
		{59 * time.Second, 15 * time.Second},
		{60 * time.Second, 30 * time.Second},
		{179 * time.Second, 30 * time.Second},
		{180 * time.Second, 60 * time.Second},
		{2 * time.Hour, 60 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nextProgressInterval(tt.elapsed), "elapsed %s", tt.elapsed)
	}
}

func TestRunWithProgress(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := WithLogger(context.Background(), zap.New(core))

	got, err := RunWithProgress(ctx, "fit", func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	finished := logs.FilterMessage("finished").All()
	require.Len(t, finished, 1)
	assert.Equal(t, "fit", finished[0].ContextMap()["task"])
}

func TestRunWithProgress_Error(t *testing.T) {
	boom := errors.New("boom")
	_, err := RunWithProgress(context.Background(), "fit", func(context.Context) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)
}
