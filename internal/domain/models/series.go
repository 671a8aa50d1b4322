package models

// Series identifies which bar series an event belongs to. Primary drives
// the decision path; Trend and Daily only update their own indicator state.
type Series string

const (
	SeriesPrimary Series = "primary"
	SeriesTrend   Series = "trend"
	SeriesDaily   Series = "daily"
)

// IsValidSeries returns true if s is a recognized bar series.
func IsValidSeries(s Series) bool {
	switch s {
	case SeriesPrimary, SeriesTrend, SeriesDaily:
		return true
	default:
		return false
	}
}

// NormalizeSeries converts a raw string to a valid series (or Primary).
func NormalizeSeries(s string) Series {
	if s == "" {
		return SeriesPrimary
	}
	sr := Series(s)
	if IsValidSeries(sr) {
		return sr
	}
	return SeriesPrimary
}
