package shared

import (
	"regexp"
	"time"
)

// DatetimeLayout is the default wire format for datetimes.
const DatetimeLayout = "2006-01-02 15:04:05"

// DateLayout is the wire format for date-only fields such as statement periods.
const DateLayout = "2006-01-02"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// ValidateEmail reports whether s matches a standard local@domain pattern.
func ValidateEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// FormatDatetime renders t using layout, defaulting to DatetimeLayout.
// The zero time renders as the empty string.
func FormatDatetime(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	if layout == "" {
		layout = DatetimeLayout
	}
	return t.Format(layout)
}

// ParseDatetime parses s using layout, defaulting to DatetimeLayout.
// Parse failures report ok=false instead of an error.
func ParseDatetime(s, layout string) (time.Time, bool) {
	if layout == "" {
		layout = DatetimeLayout
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
