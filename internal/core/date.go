package core

import (
	"strings"
	"time"
)

// dateLayouts are tried in order. The persisted format is normally the
// HTML date-input shape (2006-01-02), but older blobs may carry full
// timestamps or locale-ish variants.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseWhen parses a stored date string. The second return is false when
// no layout matches; an unparseable date is "uncomparable", never an
// error — such records are kept and sorted after dated ones.
func ParseWhen(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
