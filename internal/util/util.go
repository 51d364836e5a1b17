package util

import (
	"time"
)

// ISOLayout renders UTC times the way the review sheet shows them,
// with millisecond precision and a Z suffix.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}
