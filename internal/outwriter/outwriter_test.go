package outwriter

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/oasci/vaxstats/internal/store"
	"github.com/oasci/vaxstats/model"
	"github.com/oasci/vaxstats/threshold"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func sampleResult() *model.AnalysisResult {
	return &model.AnalysisResult{
		Duration: model.DurationStats{TotalHours: 96, MaxObserved: 39.1, MinObserved: 35.2},
		Baseline: model.BaselineStats{
			DegreesOfFreedom:   72,
			AverageObserved:    36.8,
			StdObserved:        0.25,
			MaxObserved:        37.4,
			MinObserved:        36.1,
			ResidualSumSquares: 1.44,
		},
		Residual:    model.ResidualStats{MaxResidual: 2.1, LowerBound: -0.6, UpperBound: 0.6},
		Fever:       model.EpisodeStats{Duration: 3},
		Hypothermia: model.EpisodeStats{Duration: 1},
	}
}

func sampleThresholds() []threshold.Threshold {
	buckets := []model.Bucket{
		{Key: t0, Start: t0, End: t0.Add(50 * time.Minute), MedianObserved: 36.9, MedianPredicted: 36.8, Count: 6},
		{Key: t0.Add(time.Hour), Start: t0.Add(time.Hour), End: t0.Add(time.Hour), MedianObserved: 38.0,
			MedianPredicted: 36.8, Count: 1},
		{Key: t0.Add(2 * time.Hour), Start: t0.Add(2 * time.Hour), End: t0.Add(2 * time.Hour),
			MedianObserved: 36.5, MedianPredicted: math.NaN(), Count: 1},
	}
	return threshold.Apply(buckets, model.NewSymmetricBound(0.6))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult()))

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded, 5)
	for _, key := range []string{"duration", "baseline", "residual", "fever", "hypothermia"} {
		assert.Contains(t, decoded, key)
	}
	assert.Equal(t, 0.6, decoded["residual"]["upper_bound"])
	assert.Equal(t, 3.0, decoded["fever"]["duration"])
	assert.Contains(t, buf.String(), "\n  \"duration\": {")
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultReportOptions()
	require.NoError(t, WriteReport(&buf, sampleResult(), sampleThresholds(), opts))

	out := buf.String()
	assert.Contains(t, out, "residual_sum_squares")
	assert.Contains(t, out, "1.440")
	assert.Contains(t, out, "upper_bound")
	assert.Contains(t, out, "2024-03-01 01:00:00")
	assert.Contains(t, out, "fever")
	assert.Contains(t, out, "normal")
	// the bucket without a prediction has no thresholds
	assert.Contains(t, out, "-")
	assert.NotContains(t, out, "\x1b[")
}

func TestWriteReport_ForcedColors(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultReportOptions()
	opts.UseColors = true
	require.NoError(t, WriteReport(&buf, sampleResult(), sampleThresholds(), opts))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestWriteReport_SummaryOnly(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultReportOptions()
	opts.Buckets = false
	require.NoError(t, WriteReport(&buf, sampleResult(), sampleThresholds(), opts))
	assert.NotContains(t, buf.String(), "2024-03-01 01:00:00")
}

func TestWriteRunsTable(t *testing.T) {
	runs := []store.Run{{
		ID:         4,
		Source:     "m17.csv",
		StartedAt:  t0,
		FinishedAt: t0.Add(2 * time.Second),
		Labels:     map[string]string{"cohort": "b", "animal": "m-17"},
		Result:     *sampleResult(),
		Fever:      3,
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteRunsTable(&buf, runs, 2))

	out := buf.String()
	assert.Contains(t, out, "m17.csv")
	assert.Contains(t, out, "animal=m-17,cohort=b")
	assert.Contains(t, out, "2s")
	assert.Contains(t, out, "0.60")
}

func TestWriteWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	err := WriteWithFile(path, func(w io.Writer) error {
		return WriteJSON(w, map[string]int{"a": 1})
	})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, string(content))
}

func TestWriteBucketsParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buckets.parquet")
	require.NoError(t, WriteBucketsParquet(path, sampleThresholds()))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[BucketRecord](file)
	defer func() { _ = reader.Close() }()

	rows := make([]BucketRecord, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, 3, n)

	assert.Equal(t, "normal", rows[0].Class)
	assert.Equal(t, int32(6), rows[0].Rows)
	assert.True(t, rows[0].Key.Equal(t0))
	require.NotNil(t, rows[0].FeverThreshold)
	assert.InDelta(t, 37.4, *rows[0].FeverThreshold, 1e-9)

	assert.Equal(t, "fever", rows[1].Class)

	assert.Equal(t, "normal", rows[2].Class)
	assert.Nil(t, rows[2].MedianPredicted)
	assert.Nil(t, rows[2].FeverThreshold)
	assert.Nil(t, rows[2].HypoThreshold)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteBucketsParquet_Errors(t *testing.T) {
	err := WriteBucketsParquet(filepath.Join(t.TempDir(), "missing", "b.parquet"), sampleThresholds())
	assert.ErrorContains(t, err, "failed to create output file")

	err = writeBuckets(failingWriter{}, sampleThresholds())
	assert.Error(t, err)
}
