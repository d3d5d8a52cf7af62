package dataio

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/itchyny/timefmt-go"
	"github.com/oasci/vaxstats/common"
	"github.com/oasci/vaxstats/utils"
	"go.uber.org/zap"
)

// Column names written by Prep.
const (
	UniqueIDColumn = "unique_id"
	DateColumn     = "ds"
	ValueColumn    = "y"
)

// Columns added by the forecast command.
const (
	PredColumn     = "y_hat"
	ResidualColumn = "residual"
)

const (
	DefaultInputDateFormat = "%m-%d-%y"
	DefaultInputTimeFormat = "%I:%M:%S %p"
	DefaultDateFormat      = "%Y-%m-%d %H:%M:%S"
)

// PrepOptions selects the raw columns by index. When DateIdx == TimeIdx the
// column already holds both parts and is parsed with
// DateFormat + " " + TimeFormat.
type PrepOptions struct {
	DateIdx      int
	TimeIdx      int
	YIdx         int
	DateFormat   string
	TimeFormat   string
	OutputFormat string
}

func DefaultPrepOptions() PrepOptions {
	return PrepOptions{
		DateIdx:      0,
		TimeIdx:      1,
		YIdx:         2,
		DateFormat:   DefaultInputDateFormat,
		TimeFormat:   DefaultInputTimeFormat,
		OutputFormat: DefaultDateFormat,
	}
}

// Prep reshapes a raw export into the unique_id, ds, y layout. Rows whose
// timestamp does not parse or whose value is blank or non-numeric are
// dropped.
func Prep(ctx context.Context, t *Table, opts PrepOptions) (*Table, error) {
	logger := utils.GetLogger(ctx)

	width := len(t.Header)
	for _, idx := range []int{opts.DateIdx, opts.TimeIdx, opts.YIdx} {
		if idx < 0 || idx >= width {
			return nil, fmt.Errorf("column index %d out of range [0, %d): %w", idx, width, common.ErrorInvalidValue)
		}
	}

	layout := opts.DateFormat + " " + opts.TimeFormat
	res := &Table{Header: []string{UniqueIDColumn, DateColumn, ValueColumn}}
	dropped := 0
	for _, row := range t.Rows {
		stamp := strings.TrimSpace(row[opts.DateIdx])
		if opts.TimeIdx != opts.DateIdx {
			stamp = stamp + " " + strings.TrimSpace(row[opts.TimeIdx])
		}
		ts, err := timefmt.Parse(stamp, layout)
		if err != nil {
			dropped++
			continue
		}
		raw := strings.TrimSpace(row[opts.YIdx])
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			dropped++
			continue
		}
		res.Rows = append(res.Rows, []string{"0", timefmt.Format(ts, opts.OutputFormat), raw})
	}

	logger.Debug("prepared table", zap.Int("rows", len(res.Rows)), zap.Int("dropped", dropped))
	return res, nil
}
