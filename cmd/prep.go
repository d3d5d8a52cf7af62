package cmd

import (
	"io"

	"github.com/oasci/vaxstats/internal/dataio"
	"github.com/oasci/vaxstats/internal/outwriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// prepCmd reshapes a raw logger export into the ds/y layout.
var prepCmd = &cobra.Command{
	Use:   "prep <input>",
	Short: "Convert a raw CSV or Excel export into a ds,y table.",
	Long: `Combine the date and time columns of a raw export, parse them and write
a CSV with the columns unique_id, ds and y. Rows with an unparseable
timestamp or a missing value are dropped.

Examples:
  # Export with date in column 0, time in column 1, Celsius in column 2
  vaxstats prep M17.csv -o M17-prepped.csv

  # A single combined timestamp column
  vaxstats prep export.xlsx --date_idx 0 --time_idx 0 --y_idx 3 \
    --input_date_fmt "%Y/%m/%d" --input_time_fmt "%H:%M"`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, args []string) error {
		table, err := dataio.Load(args[0], "")
		if err != nil {
			return err
		}
		cleaned, err := dataio.Clean(table, cfg.Prep.YIdx)
		if err != nil {
			return err
		}
		prepped, err := dataio.Prep(rootCtx, cleaned, cfg.Prep)
		if err != nil {
			return err
		}
		logger.Info("prepared export", zap.String("input", args[0]),
			zap.Int("rows", len(prepped.Rows)), zap.Int("rawRows", len(table.Rows)))
		return outwriter.WriteWithFile(cfg.OutputPath, func(w io.Writer) error {
			return dataio.WriteCSV(w, prepped)
		})
	},
}
