package outwriter

import (
	"fmt"
	"io"
	"math"

	"github.com/itchyny/timefmt-go"
	"github.com/oasci/vaxstats/model"
	"github.com/oasci/vaxstats/threshold"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// ReportOptions controls the text report.
type ReportOptions struct {
	UseColors  bool
	Precision  int
	DateFormat string
	// Buckets adds the per-bucket table below the summary.
	Buckets bool
}

func DefaultReportOptions() ReportOptions {
	return ReportOptions{Precision: 3, DateFormat: "%Y-%m-%d %H:%M:%S", Buckets: true}
}

// WriteSummaryTable writes the five result sections as a two-column table.
func WriteSummaryTable(w io.Writer, res *model.AnalysisResult, opts ReportOptions) error {
	f := formatFloat(opts.Precision)
	red := sprinter(feverColor, opts.UseColors)
	cyan := sprinter(hypoColor, opts.UseColors)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Section", "Metric", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.PerColumn = []tw.Align{tw.AlignLeft, tw.AlignLeft, tw.AlignRight}
	})

	data := [][]string{
		{"duration", "total_hours", f(res.Duration.TotalHours)},
		{"duration", "max_observed", f(res.Duration.MaxObserved)},
		{"duration", "min_observed", f(res.Duration.MinObserved)},
		{"baseline", "degrees_of_freedom", fmt.Sprint(res.Baseline.DegreesOfFreedom)},
		{"baseline", "average_observed", f(res.Baseline.AverageObserved)},
		{"baseline", "std_observed", f(res.Baseline.StdObserved)},
		{"baseline", "max_observed", f(res.Baseline.MaxObserved)},
		{"baseline", "min_observed", f(res.Baseline.MinObserved)},
		{"baseline", "residual_sum_squares", f(res.Baseline.ResidualSumSquares)},
		{"residual", "max_residual", f(res.Residual.MaxResidual)},
		{"residual", "lower_bound", f(res.Residual.LowerBound)},
		{"residual", "upper_bound", f(res.Residual.UpperBound)},
		{red("fever"), "duration", fmt.Sprint(res.Fever.Duration)},
		{cyan("hypothermia"), "duration", fmt.Sprint(res.Hypothermia.Duration)},
	}
	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("failed to add summary rows: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render summary table: %w", err)
	}
	return nil
}

// WriteBucketTable writes one row per bucket with its thresholds and class.
func WriteBucketTable(w io.Writer, thresholds []threshold.Threshold, opts ReportOptions) error {
	f := formatFloat(opts.Precision)
	red := sprinter(feverColor, opts.UseColors)
	cyan := sprinter(hypoColor, opts.UseColors)
	blank := func(v float64) string {
		if math.IsNaN(v) {
			return "-"
		}
		return f(v)
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Bucket", "Rows", "Observed", "Predicted", "Hypo", "Fever", "Class"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(thresholds))
	for i := range thresholds {
		th := &thresholds[i]
		class := th.Class()
		label := class.String()
		switch class {
		case threshold.Fever:
			label = red(label)
		case threshold.Hypothermia:
			label = cyan(label)
		}
		data = append(data, []string{
			timefmt.Format(th.Key, opts.DateFormat),
			fmt.Sprint(th.Count),
			f(th.MedianObserved),
			blank(th.MedianPredicted),
			blank(th.Hypo),
			blank(th.Fever),
			label,
		})
	}
	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("failed to add bucket rows: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render bucket table: %w", err)
	}
	return nil
}

// WriteReport writes the summary and, if asked, the bucket table.
func WriteReport(w io.Writer, res *model.AnalysisResult, thresholds []threshold.Threshold, opts ReportOptions) error {
	if err := WriteSummaryTable(w, res, opts); err != nil {
		return err
	}
	if !opts.Buckets || len(thresholds) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return WriteBucketTable(w, thresholds, opts)
}
