package signature

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/ghuser/ratapay/pkg/payload"
)

// numericPattern matches the strings the remote service treats as numbers
// once surrounding whitespace is trimmed.
var numericPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

const hexDigits = "0123456789abcdef"

// Canonicalize returns the canonical text of p that is hashed for signing:
//
//  1. top-level keys sorted ascending (nested objects keep their order)
//  2. JSON with forward slashes unescaped, non-ASCII escaped as \uXXXX
//  3. numeric strings written as number literals
//  4. every whitespace byte removed
//
// A nil or empty object canonicalizes to the empty string.
func Canonicalize(p *payload.Object) ([]byte, error) {
	if p.Len() == 0 {
		return []byte{}, nil
	}
	var buf bytes.Buffer
	if err := writeValue(&buf, p.SortedKeys()); err != nil {
		return nil, err
	}
	return stripWhitespace(buf.Bytes()), nil
}

func writeValue(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case *payload.Object:
		return writeObject(buf, t)
	case []*payload.Object:
		buf.WriteByte('[')
		for i, o := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeObject(buf, o); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case []any:
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, e); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case []string:
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, e); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		// Plain maps carry no order of their own; sort for determinism.
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		o := payload.NewObject()
		for _, k := range keys {
			o.Set(k, t[k])
		}
		return writeObject(buf, o)
	case string:
		return writeString(buf, t)
	case json.Number:
		return writeString(buf, t.String())
	case bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case int:
		buf.WriteString(strconv.Itoa(t))
	case int32:
		buf.WriteString(strconv.FormatInt(int64(t), 10))
	case int64:
		buf.WriteString(strconv.FormatInt(t, 10))
	case uint64:
		buf.WriteString(strconv.FormatUint(t, 10))
	case float64:
		s, err := formatFloat(t)
		if err != nil {
			return err
		}
		buf.WriteString(s)
	default:
		return fmt.Errorf("signature: unsupported payload value %T", v)
	}
	return nil
}

func writeObject(buf *bytes.Buffer, o *payload.Object) error {
	if o.Len() == 0 {
		// An empty associative array encodes as a list on the remote side.
		buf.WriteString("[]")
		return nil
	}
	buf.WriteByte('{')
	for i, k := range o.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeQuoted(buf, k); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		buf.WriteByte(':')
		v, _ := o.Get(k)
		if err := writeValue(buf, v); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// writeString emits numeric strings as numbers and everything else quoted.
func writeString(buf *bytes.Buffer, s string) error {
	if lit, ok := numericLiteral(s); ok {
		buf.WriteString(lit)
		return nil
	}
	return writeQuoted(buf, s)
}

func numericLiteral(s string) (string, bool) {
	trimmed := strings.Trim(s, " \t\n\r\v\f")
	if !numericPattern.MatchString(trimmed) {
		return "", false
	}
	if !strings.ContainsAny(trimmed, ".eE") {
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return strconv.FormatInt(n, 10), true
		}
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return "", false
	}
	lit, err := formatFloat(f)
	if err != nil {
		return "", false
	}
	return lit, true
}

// formatFloat writes the shortest round-trip form, keeping a ".0" on integral
// values and a short exponent ("1.0e+25") outside the fixed-notation range.
func formatFloat(f float64) (string, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "", fmt.Errorf("signature: non-finite number %v", f)
	}
	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-4 && abs < 1e15) {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s, nil
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits, nil
}

// writeQuoted escapes like the remote service's encoder: slashes stay literal,
// control characters and every non-ASCII rune use \u escapes.
func writeQuoted(buf *bytes.Buffer, s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("signature: invalid UTF-8 in %q", s)
	}
	buf.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"':
			buf.WriteString(`\"`)
		case r == '\\':
			buf.WriteString(`\\`)
		case r == '\b':
			buf.WriteString(`\b`)
		case r == '\f':
			buf.WriteString(`\f`)
		case r == '\n':
			buf.WriteString(`\n`)
		case r == '\r':
			buf.WriteString(`\r`)
		case r == '\t':
			buf.WriteString(`\t`)
		case r < 0x20:
			writeUnicodeEscape(buf, r)
		case r < utf8.RuneSelf:
			buf.WriteRune(r)
		case r > 0xFFFF:
			hi, lo := utf16.EncodeRune(r)
			writeUnicodeEscape(buf, hi)
			writeUnicodeEscape(buf, lo)
		default:
			writeUnicodeEscape(buf, r)
		}
	}
	buf.WriteByte('"')
	return nil
}

func writeUnicodeEscape(buf *bytes.Buffer, r rune) {
	buf.WriteString(`\u`)
	buf.WriteByte(hexDigits[(r>>12)&0xF])
	buf.WriteByte(hexDigits[(r>>8)&0xF])
	buf.WriteByte(hexDigits[(r>>4)&0xF])
	buf.WriteByte(hexDigits[r&0xF])
}

func stripWhitespace(b []byte) []byte {
	out := b[:0]
	for _, c := range b {
		switch c {
		case ' ', '\t', '\n', '\v', '\f', '\r':
			continue
		}
		out = append(out, c)
	}
	return out
}
