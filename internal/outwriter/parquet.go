package outwriter

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/oasci/vaxstats/threshold"
	"github.com/parquet-go/parquet-go"
)

// BucketRecord is one classified bucket. Thresholds are null when the bucket
// had no prediction.
type BucketRecord struct {
	Key             time.Time `parquet:"bucket,snappy"`
	FirstSeen       time.Time `parquet:"first_seen,snappy"`
	LastSeen        time.Time `parquet:"last_seen,snappy"`
	Rows            int32     `parquet:"rows,snappy"`
	MedianObserved  float64   `parquet:"median_observed,snappy"`
	MedianPredicted *float64  `parquet:"median_predicted,optional,snappy"`
	HypoThreshold   *float64  `parquet:"hypo_threshold,optional,snappy"`
	FeverThreshold  *float64  `parquet:"fever_threshold,optional,snappy"`
	Class           string    `parquet:"class,snappy"`
}

func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func NewBucketRecords(thresholds []threshold.Threshold) []BucketRecord {
	res := make([]BucketRecord, len(thresholds))
	for i := range thresholds {
		th := &thresholds[i]
		res[i] = BucketRecord{
			Key:             th.Key,
			FirstSeen:       th.Start,
			LastSeen:        th.End,
			Rows:            int32(th.Count),
			MedianObserved:  th.MedianObserved,
			MedianPredicted: optional(th.MedianPredicted),
			HypoThreshold:   optional(th.Hypo),
			FeverThreshold:  optional(th.Fever),
			Class:           th.Class().String(),
		}
	}
	return res
}

// WriteBucketsParquet writes thresholds to a parquet file at path.
func WriteBucketsParquet(path string, thresholds []threshold.Threshold) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writeBuckets(file, thresholds); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close parquet file: %w", err)
	}
	return nil
}

func writeBuckets(w io.Writer, thresholds []threshold.Threshold) error {
	writer := parquet.NewGenericWriter[BucketRecord](w)
	if _, err := writer.Write(NewBucketRecords(thresholds)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}
