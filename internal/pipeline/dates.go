package pipeline

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts is the ordered, first-match-wins set of accepted date
// formats. Slash-separated dates are read month-first, matching how the
// rest of the system has always interpreted them.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02 January 2006",
	"2006-01",
}

// ParseDate parses a transaction date string against the accepted layouts.
// Rows whose dates fail to parse are dropped individually by the caller;
// a parse failure never aborts a batch.
func ParseDate(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, fmt.Errorf("ParseDate: empty date")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("ParseDate: unrecognized date %q", s)
}
