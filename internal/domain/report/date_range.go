package report

import "time"

// RemoteTimeLayout is the UTC layout the gateway expects for report windows
const RemoteTimeLayout = "2006-01-02T15:04:05Z"

const defaultWindow = 30 * 24 * time.Hour

// DateRange is the optional window of a report request; zero values are unset
type DateRange struct {
	Start time.Time
	End   time.Time
}

// IsSet reports whether any bound was given
func (r DateRange) IsSet() bool {
	return !r.Start.IsZero() || !r.End.IsZero()
}

// Validate rejects a start after the end
func (r DateRange) Validate() error {
	if !r.Start.IsZero() && !r.End.IsZero() && r.Start.After(r.End) {
		return &ConfigurationError{Field: "date_range", Message: "The start date must precede its end date"}
	}
	return nil
}

// Resolve fills missing bounds: start defaults to thirty days before now,
// end to now
func (r DateRange) Resolve(now time.Time) (DateRange, error) {
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	out := r
	if out.End.IsZero() {
		out.End = now
	}
	if out.Start.IsZero() {
		out.Start = now.Add(-defaultWindow)
	}
	if out.Start.After(out.End) {
		return DateRange{}, &ConfigurationError{Field: "date_range", Message: "The start date must precede its end date"}
	}
	return out, nil
}

// Remote formats both bounds for the gateway
func (r DateRange) Remote() (string, string) {
	return r.Start.UTC().Format(RemoteTimeLayout), r.End.UTC().Format(RemoteTimeLayout)
}

// YesterdayRange returns the full previous calendar day in now's location
func YesterdayRange(now time.Time) DateRange {
	y := now.AddDate(0, 0, -1)
	start := time.Date(y.Year(), y.Month(), y.Day(), 0, 0, 0, 0, now.Location())
	end := time.Date(y.Year(), y.Month(), y.Day(), 23, 59, 59, 0, now.Location())
	return DateRange{Start: start, End: end}
}
