package common

import "errors"

// Validation failures surfaced by the analysis pipeline. Callers discriminate
// with errors.Is; every returned error wraps exactly one of these.
var (
	ErrorInvalidValue = errors.New("invalid value")

	ErrMissingColumn        = errors.New("missing column")
	ErrUnparseableTimestamp = errors.New("unparseable timestamp")
	ErrInvalidWindow        = errors.New("invalid window")
	ErrEmptyBaseline        = errors.New("empty baseline")
	ErrIncompleteRow        = errors.New("incomplete row")
	ErrForecastLength       = errors.New("forecast length mismatch")
)
