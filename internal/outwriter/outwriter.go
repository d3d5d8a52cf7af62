// Package outwriter renders analysis results as JSON, terminal tables and
// parquet files.
package outwriter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
)

var (
	feverColor = color.New(color.FgRed, color.Bold)
	hypoColor  = color.New(color.FgCyan, color.Bold)
)

// SelectOutputFile returns stdout for an empty path.
func SelectOutputFile(path string) (*os.File, error) {
	if path == "" {
		return os.Stdout, nil
	}
	return os.Create(path)
}

// WriteWithFile opens path (stdout when empty), runs write against it and
// closes it.
func WriteWithFile(path string, write func(io.Writer) error) error {
	file, err := SelectOutputFile(path)
	if err != nil {
		return fmt.Errorf("failed to open output %q: %w", path, err)
	}
	if file == os.Stdout {
		return write(file)
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteJSON encodes data with two-space indentation.
func WriteJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func formatFloat(precision int) func(float64) string {
	return func(f float64) string {
		return strconv.FormatFloat(f, 'f', precision, 64)
	}
}

func sprinter(c *color.Color, useColors bool) func(...any) string {
	if !useColors {
		return fmt.Sprint
	}
	// color.NoColor is set for piped stdout; an explicit request overrides it
	c.EnableColor()
	return c.SprintFunc()
}
