package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// PeriodUnit is the unit letter of a period string.
type PeriodUnit byte

const (
	Day   PeriodUnit = 'D'
	Month PeriodUnit = 'M'
	Year  PeriodUnit = 'Y'
)

var periodPattern = regexp.MustCompile(`^(\d+)([DMYdmy])$`)

// Period is a parsed duration such as 7D, 3M or 1Y.
type Period struct {
	Count int
	Unit  PeriodUnit
}

// ValidatePeriod reports whether s is digits followed by one of D, M or Y,
// case-insensitive. "D7", "7" and "7 D" are rejected.
func ValidatePeriod(s string) bool {
	return periodPattern.MatchString(s)
}

// ParsePeriod parses s into a Period with an upper-case unit.
func ParsePeriod(s string) (Period, error) {
	m := periodPattern.FindStringSubmatch(s)
	if m == nil {
		return Period{}, fmt.Errorf("invalid period %q", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: %w", s, err)
	}
	return Period{Count: n, Unit: PeriodUnit(strings.ToUpper(m[2])[0])}, nil
}

func (p Period) String() string {
	return strconv.Itoa(p.Count) + string(rune(p.Unit))
}

// After returns t advanced by the period using calendar arithmetic.
func (p Period) After(t time.Time) time.Time {
	switch p.Unit {
	case Day:
		return t.AddDate(0, 0, p.Count)
	case Month:
		return t.AddDate(0, p.Count, 0)
	case Year:
		return t.AddDate(p.Count, 0, 0)
	}
	return t
}
