package models

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ghuser/ratapay/pkg/validator"
	"github.com/ghuser/ratapay/services/payment/domain"
)

var tagPattern = regexp.MustCompile(`<[^>]*>?`)

// SanitizeString renders v as text, removes markup tags and control
// characters and trims surrounding whitespace. ok is false when v is not a
// scalar or nothing is left.
func SanitizeString(v any) (string, bool) {
	s, ok := scalarString(v)
	if !ok {
		return "", false
	}
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	return s, s != ""
}

// SanitizeEmail keeps only the characters allowed in an email address.
func SanitizeEmail(v any) string {
	s, ok := scalarString(v)
	if !ok {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case strings.ContainsRune("!#$%&'*+-=?^_`{|}~@.[]", r):
			return r
		}
		return -1
	}, s)
}

// ParseInt accepts Go integers, integral floats, json.Number and decimal
// strings without leading zeros, optionally signed and space padded.
func ParseInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return int64(t), uint64(t) <= math.MaxInt64
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		return int64(t), t <= math.MaxInt64
	case float32:
		return integralFloat(float64(t))
	case float64:
		return integralFloat(t)
	case json.Number:
		return parseIntString(t.String())
	case string:
		return parseIntString(t)
	}
	return 0, false
}

func integralFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func parseIntString(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	digits := strings.TrimLeft(s, "+-")
	if len(s)-len(digits) > 1 || digits == "" {
		return 0, false
	}
	if len(digits) > 1 && digits[0] == '0' {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseBool accepts booleans, 1/0 and the strings
// true/false, yes/no, on/off, 1/0 and "" in any case.
// Anything else is invalid rather than defaulting to false.
func ParseBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "on", "yes":
			return true, true
		case "0", "false", "off", "no", "":
			return false, true
		}
		return false, false
	}
	if n, ok := ParseInt(v); ok && (n == 0 || n == 1) {
		return n == 1, true
	}
	return false, false
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(t), true
	case float32, float64:
		return fmt.Sprint(t), true
	}
	return "", false
}

// fieldChecker collects violations for one construction attempt.
// A repeated field keeps its first position and takes the latest reason.
type fieldChecker struct {
	entity     string
	violations []domain.Violation
}

func (c *fieldChecker) fail(field, reason string) {
	for i := range c.violations {
		if c.violations[i].Field == field {
			c.violations[i].Reason = reason
			return
		}
	}
	c.violations = append(c.violations, domain.Violation{Field: field, Reason: reason})
}

func (c *fieldChecker) err() error {
	if len(c.violations) == 0 {
		return nil
	}
	return &domain.ValidationError{Entity: c.entity, Violations: c.violations}
}

// text sanitizes a string field. maxLen of 0 means unbounded.
func (c *fieldChecker) text(v any, field, label string, maxLen int) string {
	s, ok := SanitizeString(v)
	switch {
	case !ok:
		c.fail(field, fmt.Sprintf("Invalid %s %s Value", c.entity, label))
	case maxLen > 0 && len(s) > maxLen:
		c.fail(field, fmt.Sprintf("Invalid %s %s Value, Too Long, Max %d", c.entity, label, maxLen))
	}
	return s
}

func (c *fieldChecker) email(v any, field, label string) string {
	s := SanitizeEmail(v)
	if !validator.IsEmail(s) {
		c.fail(field, fmt.Sprintf("Invalid %s %s Value", c.entity, label))
	}
	return s
}

func (c *fieldChecker) url(v any, field, label string) string {
	s, ok := scalarString(v)
	s = strings.TrimSpace(s)
	if !ok || !validator.IsURL(s) {
		c.fail(field, fmt.Sprintf("Invalid %s %s Value", c.entity, label))
	}
	return s
}

// Lower bounds accepted by fieldChecker.integer.
const (
	anyInt      int64 = math.MinInt64
	nonNegative int64 = 0
	positive    int64 = 1
)

// integer parses an int and rejects values below floor.
func (c *fieldChecker) integer(v any, field, label string, floor int64) int64 {
	n, ok := ParseInt(v)
	if !ok || n < floor {
		c.fail(field, fmt.Sprintf("Invalid %s %s Value", c.entity, label))
	}
	return n
}

func (c *fieldChecker) boolean(v any, field, label string) bool {
	b, ok := ParseBool(v)
	if !ok {
		c.fail(field, fmt.Sprintf("Invalid %s %s Value", c.entity, label))
	}
	return b
}

func (c *fieldChecker) period(v any, field, label string) string {
	s, ok := v.(string)
	if !ok || !ValidatePeriod(s) {
		c.fail(field, fmt.Sprintf("Invalid %s %s Value", c.entity, label))
	}
	return s
}
