package order

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// Timestamp layouts accepted for the order date.
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

var (
	ErrInvalidPrice   = errors.New("price is not an integer")
	ErrNegativePrice  = errors.New("price is negative")
	ErrInvalidOrderAt = errors.New("order date has an unrecognised format")
)

// CoercePrice converts a raw price into the smallest currency unit.
//
// Floats and decimal strings are truncated toward zero. Strings are trimmed
// before parsing. A negative or unconvertible value yields 0 together with an error
// describing the correction; callers treat that error as a warning.
func CoercePrice(v any) (int64, error) {
	var n int64
	switch p := v.(type) {
	case nil:
		return 0, ErrInvalidPrice
	case int:
		n = int64(p)
	case int8:
		n = int64(p)
	case int16:
		n = int64(p)
	case int32:
		n = int64(p)
	case int64:
		n = p
	case uint:
		if uint64(p) > math.MaxInt64 {
			return 0, ErrInvalidPrice
		}
		n = int64(p)
	case uint8:
		n = int64(p)
	case uint16:
		n = int64(p)
	case uint32:
		n = int64(p)
	case uint64:
		if p > math.MaxInt64 {
			return 0, ErrInvalidPrice
		}
		n = int64(p)
	case float32:
		return coerceFloat(float64(p))
	case float64:
		return coerceFloat(p)
	case json.Number:
		return coerceString(string(p))
	case string:
		return coerceString(p)
	default:
		return 0, errors.Wrapf(ErrInvalidPrice, "unsupported type %T", v)
	}
	if n < 0 {
		return 0, ErrNegativePrice
	}
	return n, nil
}

func coerceFloat(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0, ErrInvalidPrice
	}
	n := int64(f)
	if n < 0 {
		return 0, ErrNegativePrice
	}
	return n, nil
}

func coerceString(s string) (int64, error) {
	t := strings.TrimSpace(s)
	n, err := strconv.ParseInt(t, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(t, 64)
		if ferr != nil {
			return 0, errors.Wrapf(ErrInvalidPrice, "parse %q", s)
		}
		return coerceFloat(f)
	}
	if n < 0 {
		return 0, ErrNegativePrice
	}
	return n, nil
}

// parseOrderedAt resolves the order date. A date-only string takes its time
// of day from now. Unrecognised input falls back to now with an error.
func parseOrderedAt(v any, now time.Time) (time.Time, error) {
	switch t := v.(type) {
	case nil:
		return now, nil
	case time.Time:
		if t.IsZero() {
			return now, nil
		}
		return t, nil
	case *time.Time:
		if t == nil || t.IsZero() {
			return now, nil
		}
		return *t, nil
	case string:
		return ParseTimestamp(t, now)
	default:
		return now, errors.Wrapf(ErrInvalidOrderAt, "unsupported type %T", v)
	}
}

// ParseTimestamp parses s as "2006-01-02 15:04:05" or "2006-01-02" in the
// local time zone. A date-only value takes its time of day from now. On
// failure it returns now and an error wrapping ErrInvalidOrderAt.
func ParseTimestamp(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(TimestampLayout, s, time.Local); err == nil {
		return t, nil
	}
	if d, err := time.ParseInLocation(DateLayout, s, time.Local); err == nil {
		return time.Date(d.Year(), d.Month(), d.Day(),
			now.Hour(), now.Minute(), now.Second(), 0, time.Local), nil
	}
	return now, errors.Wrapf(ErrInvalidOrderAt, "parse %q", s)
}
