package dataio

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/itchyny/timefmt-go"
	"github.com/oasci/vaxstats/common"
	"github.com/oasci/vaxstats/model"
	"github.com/oasci/vaxstats/utils"
	"go.uber.org/zap"
)

// Columns names the logical columns of a prepared table.
type Columns struct {
	Date     string
	Data     string
	Pred     string
	Residual string
}

// ToSeries converts a table to a series. The date and data columns are
// required. A missing pred column leaves the series without a forecast and
// a blank pred cell becomes NaN. Rows with a blank data cell are skipped.
func ToSeries(ctx context.Context, t *Table, cols Columns, dateFormat string) (*model.Series, error) {
	logger := utils.GetLogger(ctx)

	dateIdx, dataIdx, predIdx := t.ColumnIndex(cols.Date), t.ColumnIndex(cols.Data), t.ColumnIndex(cols.Pred)
	if dateIdx < 0 {
		return nil, fmt.Errorf("date column %q: %w", cols.Date, common.ErrMissingColumn)
	}
	if dataIdx < 0 {
		return nil, fmt.Errorf("data column %q: %w", cols.Data, common.ErrMissingColumn)
	}

	series := &model.Series{
		Labels:       map[string]string{},
		Observations: make([]model.Observation, 0, len(t.Rows)),
		HasForecast:  predIdx >= 0,
	}
	skipped := 0
	for i, row := range t.Rows {
		line := i + 2 // 1-based, after the header
		raw := strings.TrimSpace(row[dataIdx])
		if raw == "" {
			skipped++
			continue
		}

		ts, err := timefmt.Parse(strings.TrimSpace(row[dateIdx]), dateFormat)
		if err != nil {
			return nil, fmt.Errorf("line %d: %q does not match %q: %w", line, row[dateIdx], dateFormat,
				common.ErrUnparseableTimestamp)
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %s %q: %w", line, cols.Data, raw, common.ErrorInvalidValue)
		}

		obs := model.NewObservation(ts, value)
		if predIdx >= 0 {
			if cell := strings.TrimSpace(row[predIdx]); cell != "" {
				if obs.Predicted, err = strconv.ParseFloat(cell, 64); err != nil {
					return nil, fmt.Errorf("line %d: %s %q: %w", line, cols.Pred, cell, common.ErrorInvalidValue)
				}
			}
		}
		series.Observations = append(series.Observations, obs)
	}

	logger.Info("loaded series", zap.Int("rows", series.Len()), zap.Int("skipped", skipped),
		zap.Bool("forecast", series.HasForecast), zap.Bool("sorted", series.IsSorted()))
	return series, nil
}

// WriteSeries writes date, data, pred and residual columns. Undefined
// predictions and residuals are written as blank cells.
func WriteSeries(w io.Writer, series *model.Series, residuals model.Residuals, cols Columns, dateFormat string) error {
	if residuals != nil && len(residuals) != series.Len() {
		return fmt.Errorf("%d residuals for %d rows: %w", len(residuals), series.Len(), common.ErrorInvalidValue)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{cols.Date, cols.Data, cols.Pred, cols.Residual}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i, o := range series.Observations {
		res := math.NaN()
		if residuals != nil {
			res = residuals[i]
		}
		row := []string{
			timefmt.Format(o.Time, dateFormat),
			formatCell(o.Value),
			formatCell(o.Predicted),
			formatCell(res),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
