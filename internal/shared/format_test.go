package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	_ "github.com/quillbooks/quillbooks/testing"
)

func TestValidateEmail(t *testing.T) {
	for _, s := range []string{"a@b.co", "first.last+tag@example.com", "x_y-z@sub.example.org"} {
		assert.True(t, ValidateEmail(s), "expected %q valid", s)
	}
	for _, s := range []string{"", "plain", "@example.com", "a@b", "a b@example.com"} {
		assert.False(t, ValidateEmail(s), "expected %q invalid", s)
	}
}

func TestFormatDatetime(t *testing.T) {
	at := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-15 10:30:00", FormatDatetime(at, ""))
	assert.Equal(t, "2026-03-15", FormatDatetime(at, DateLayout))
	assert.Equal(t, "", FormatDatetime(time.Time{}, ""))
}

func TestParseDatetime(t *testing.T) {
	got, ok := ParseDatetime("2026-03-15", DateLayout)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), got)

	_, ok = ParseDatetime("15/03/2026", DateLayout)
	assert.False(t, ok)

	got, ok = ParseDatetime("2026-03-15 10:30:00", "")
	assert.True(t, ok)
	assert.Equal(t, 10, got.Hour())
}
