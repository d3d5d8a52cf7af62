package model

type DurationStats struct {
	TotalHours  float64 `json:"total_hours"`
	MaxObserved float64 `json:"max_observed"`
	MinObserved float64 `json:"min_observed"`
}

type BaselineStats struct {
	DegreesOfFreedom   int     `json:"degrees_of_freedom"`
	AverageObserved    float64 `json:"average_observed"`
	StdObserved        float64 `json:"std_observed"`
	MaxObserved        float64 `json:"max_observed"`
	MinObserved        float64 `json:"min_observed"`
	ResidualSumSquares float64 `json:"residual_sum_squares"`
}

type ResidualStats struct {
	MaxResidual float64 `json:"max_residual"`
	LowerBound  float64 `json:"lower_bound"`
	UpperBound  float64 `json:"upper_bound"`
}

type EpisodeStats struct {
	// Duration counts flagged buckets, one unit per bucket.
	Duration int `json:"duration"`
}

type AnalysisResult struct {
	Duration    DurationStats `json:"duration"`
	Baseline    BaselineStats `json:"baseline"`
	Residual    ResidualStats `json:"residual"`
	Fever       EpisodeStats  `json:"fever"`
	Hypothermia EpisodeStats  `json:"hypothermia"`
}
