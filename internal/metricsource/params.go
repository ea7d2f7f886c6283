package metricsource

import "time"

// Granularity is the time-bucket grouping unit for a range token.
type Granularity string

const (
	GranularityHour Granularity = "hour"
	GranularityDay  Granularity = "day"
)

// Params maps a range token to a lookback window and the substring offsets
// used to extract bucket labels from stored timestamp strings.
type Params struct {
	LookbackDays int
	Granularity  Granularity
	LabelOffset  int
	LabelLength  int
}

// ResolveParams maps a range token to its bucket parameters. An unrecognized
// token falls back to the day behavior; this is documented, not an error.
func ResolveParams(rangeToken string) Params {
	switch rangeToken {
	case "week":
		return Params{LookbackDays: 6, Granularity: GranularityDay, LabelOffset: 0, LabelLength: 10}
	case "month":
		return Params{LookbackDays: 29, Granularity: GranularityDay, LabelOffset: 0, LabelLength: 10}
	default:
		return Params{LookbackDays: 0, Granularity: GranularityHour, LabelOffset: 11, LabelLength: 2}
	}
}

// ResolveWindow returns the half-open lookback window
// [date − lookbackDays @ midnight, date + 1 day @ midnight).
func ResolveWindow(date time.Time, lookbackDays int) (time.Time, time.Time) {
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	start := midnight.AddDate(0, 0, -lookbackDays)
	end := midnight.AddDate(0, 0, 1)
	return start, end
}

// BucketLabel extracts the fixed-width bucket label from a stored timestamp
// string, e.g. the two-character hour or the ten-character date prefix.
func (p Params) BucketLabel(timestamp string) string {
	if p.LabelOffset >= len(timestamp) {
		return timestamp
	}
	end := p.LabelOffset + p.LabelLength
	if end > len(timestamp) {
		end = len(timestamp)
	}
	return timestamp[p.LabelOffset:end]
}
