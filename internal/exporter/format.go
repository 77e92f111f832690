package exporter

import (
	"strconv"
	"time"

	"sessioncli/internal/config"
)

// TimestampLayout is the output format of event timestamps
const TimestampLayout = "2006-01-02 15:04:05"

// formatFloat formats a float64 in the shortest form that round-trips
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatOptionalFloat formats nil as an empty cell
func formatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

func formatDate(t time.Time) string {
	return t.Format(config.DateLayout)
}

func formatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
