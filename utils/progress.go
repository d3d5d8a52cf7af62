package utils

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

// progressStep logs every Every until the elapsed time reaches Until.
type progressStep struct {
	Until time.Duration
	Every time.Duration
}

var progressSteps = []progressStep{
	{Until: 15 * time.Second, Every: 5 * time.Second},
	{Until: 60 * time.Second, Every: 15 * time.Second},
	{Until: 180 * time.Second, Every: 30 * time.Second},
	{Until: time.Duration(math.MaxInt64), Every: 60 * time.Second},
}

// nextProgressInterval returns the wait before the next elapsed-time entry.
func nextProgressInterval(elapsed time.Duration) time.Duration {
	for _, step := range progressSteps {
		if elapsed < step.Until {
			return step.Every
		}
	}
	return progressSteps[len(progressSteps)-1].Every
}

// RunWithProgress runs fn while periodically logging how long it has been
// running. fn's result is returned unchanged.
func RunWithProgress[T any](ctx context.Context, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	logger := GetLogger(ctx)

	start := time.Now()
	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		timer := time.NewTimer(nextProgressInterval(0))
		defer timer.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-timer.C:
				elapsed := time.Since(start)
				logger.Info("still running", zap.String("task", name),
					zap.Int64("elapsedSeconds", int64(elapsed.Seconds())))
				timer.Reset(nextProgressInterval(elapsed))
			}
		}
	}()

	res, err := fn(ctx)
	close(done)
	<-stopped

	logger.Info("finished", zap.String("task", name), zap.Duration("took", time.Since(start)), zap.Error(err))
	return res, err
}
