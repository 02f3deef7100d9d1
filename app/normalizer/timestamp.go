package normalizer

import (
	"log/slog"
	"time"

	"github.com/araddon/dateparse"
)

// Strict layouts tried before falling back to permissive parsing.
// Both carry an explicit offset or UTC marker.
var strictLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700", // offset without colon, used by World News API
}

// Layouts with no timezone information. Accepted with a warning,
// assuming UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp turns a source-provided date string into a UTC
// instant. It tries strict offset-aware layouts first, then known
// naive layouts, then a permissive generic parser. A zero return
// signals the caller to substitute the ingestion time; parsing never
// fails the record.
func ParseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}

	for _, layout := range strictLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}

	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			slog.Warn("Timestamp has no timezone info, assuming UTC", "value", value)
			return t
		}
	}

	if t, err := dateparse.ParseAny(value); err == nil {
		return t.UTC()
	}

	slog.Warn("Could not parse timestamp, falling back to ingestion time", "value", value)
	return time.Time{}
}
