package outwriter

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/oasci/vaxstats/internal/store"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteRunsTable lists stored runs, newest first as given.
func WriteRunsTable(w io.Writer, runs []store.Run, precision int) error {
	f := formatFloat(precision)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Source", "Started", "Took", "Labels", "Upper", "Fever", "Hypo"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(runs))
	for _, run := range runs {
		data = append(data, []string{
			fmt.Sprint(run.ID),
			run.Source,
			run.StartedAt.UTC().Format(time.RFC3339),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String(),
			formatLabels(run.Labels),
			f(run.Result.Residual.UpperBound),
			fmt.Sprint(run.Fever),
			fmt.Sprint(run.Hypothermia),
		})
	}
	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("failed to add run rows: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render runs table: %w", err)
	}
	return nil
}

// formatLabels renders labels as sorted k=v pairs.
func formatLabels(labels map[string]string) string {
	pairs := make([]string, 0, len(labels))
	for k, v := range labels {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}
