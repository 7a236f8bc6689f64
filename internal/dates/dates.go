// Package dates converts between the canonical YYYY-MM-DD key and the
// localized 2006年01月02日 display form.
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	CanonicalLayout = "2006-01-02"
	DisplayLayout   = "2006年01月02日"

	// accepts 1- or 2-digit month and day
	lenientLayout = "2006-1-2"
)

var ErrInvalidDateFormat = errors.New("invalid date format")

// Clock hides wall-clock time so "today" can be pinned in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Today returns the canonical date of clock's current instant.
func Today(clock Clock) string {
	return clock.Now().Format(CanonicalLayout)
}

// IsLocalized reports whether s uses the year/month/day unit markers.
func IsLocalized(s string) bool {
	return strings.Contains(s, "年")
}

// ReplaceMarkers rewrites 年 and 月 to '-' and drops 日, without padding.
func ReplaceMarkers(s string) string {
	s = strings.ReplaceAll(s, "年", "-")
	s = strings.ReplaceAll(s, "月", "-")
	return strings.ReplaceAll(s, "日", "")
}

// Normalize turns a localized or ISO date into its canonical form.
// Normalize(Normalize(x)) == Normalize(x) for every accepted x.
func Normalize(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", fmt.Errorf("%w: empty date", ErrInvalidDateFormat)
	}

	if IsLocalized(s) {
		parts := strings.Split(ReplaceMarkers(s), "-")
		if len(parts) != 3 {
			return "", fmt.Errorf("%w: %q", ErrInvalidDateFormat, input)
		}
		s = parts[0] + "-" + zeroPad(parts[1]) + "-" + zeroPad(parts[2])
	}

	t, err := time.Parse(lenientLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidDateFormat, input, err)
	}
	return t.Format(CanonicalLayout), nil
}

// Parse reads a localized or ISO date as midnight UTC.
func Parse(s string) (time.Time, error) {
	d, err := Normalize(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(CanonicalLayout, d)
}

// Display renders a canonical date for UI labels. Input that is not a
// valid date is returned unchanged.
func Display(canonical string) string {
	t, err := Parse(canonical)
	if err != nil {
		return canonical
	}
	return t.Format(DisplayLayout)
}

// DaysBetween is the signed whole-day distance b - a.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

func zeroPad(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
