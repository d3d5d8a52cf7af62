package threshold

import (
	"math"
	"testing"
	"time"

	"github.com/oasci/vaxstats/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bucket(hour int, observed, predicted float64) model.Bucket {
	key := time.Date(2024, 3, 1, hour, 0, 0, 0, time.UTC)
	return model.Bucket{Key: key, Start: key, End: key, MedianObserved: observed, MedianPredicted: predicted, Count: 1}
}

func TestApply(t *testing.T) {
	buckets := []model.Bucket{
		bucket(0, 37.0, 37.0),
		bucket(1, 37.75, 37.0),
		bucket(2, 36.25, 37.0),
		bucket(3, 37.5, 37.0),
		bucket(4, 38.0, math.NaN()),
	}
	thresholds := Apply(buckets, model.NewSymmetricBound(0.5))
	require.Len(t, thresholds, len(buckets))

	assert.Equal(t, 37.5, thresholds[0].Fever)
	assert.Equal(t, 36.5, thresholds[0].Hypo)

	classes := make([]Class, len(thresholds))
	for i := range thresholds {
		classes[i] = thresholds[i].Class()
	}
	// equal to the fever threshold is not above it
	assert.Equal(t, []Class{Normal, Fever, Hypothermia, Normal, Normal}, classes)
	assert.True(t, math.IsNaN(thresholds[4].Fever))

	fever, hypo := Count(thresholds)
	assert.Equal(t, 1, fever)
	assert.Equal(t, 1, hypo)
}

func TestApply_ZeroBound(t *testing.T) {
	thresholds := Apply([]model.Bucket{bucket(0, 37.0, 37.0), bucket(1, 37.01, 37.0)}, model.Bound{})
	assert.Equal(t, Normal, thresholds[0].Class())
	assert.Equal(t, Fever, thresholds[1].Class())
}

func TestClass_String(t *testing.T) {
	assert.Equal(t, "normal", Normal.String())
	assert.Equal(t, "fever", Fever.String())
	assert.Equal(t, "hypothermia", Hypothermia.String())
}

func TestCount_Empty(t *testing.T) {
	fever, hypo := Count(nil)
	assert.Zero(t, fever)
	assert.Zero(t, hypo)
}
