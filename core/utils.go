package core

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// CleanStrings applies CleanString to every element of `ss` and drops the blank ones.
func CleanStrings(ss []string) []string {
	cleaned := make([]string, 0, len(ss))
	for _, s := range ss {
		if s = CleanString(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}

// StringSet is a lookup set of identifiers.
type StringSet map[string]struct{}

func NewStringSet(items ...string) StringSet {
	set := make(StringSet, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func (s StringSet) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Values returns the set items in no particular order.
func (s StringSet) Values() []string {
	values := make([]string, 0, len(s))
	for item := range s {
		values = append(values, item)
	}
	return values
}

var errInvalidDate = errors.New("date must be formatted as YYYY-MM-DD or RFC 3339")

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp
// and returns the UTC midnight of that day.
// A timestamp keeps the calendar day of its own offset: 2024-03-01T23:30:00-05:00 is March 1st.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return NormalizeDate(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, errInvalidDate
}

// NormalizeDate truncates t to the UTC midnight of its day.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
