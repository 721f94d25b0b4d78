// Package timestamp normalizes user-supplied scheduling instants into
// ISO-8601 strings before they reach the remote store. Anything that
// cannot be normalized fails loudly so callers surface a validation
// error instead of silently persisting a corrupt date.
package timestamp

import (
	"fmt"
	"strconv"
	"time"

	fderrors "github.com/tomadori/focusdeck/internal/errors"
)

// Epoch-millisecond sanity bounds: [2020-01-01, 2030-12-31]. Values
// outside this window are almost always a seconds/milliseconds unit
// mixup rather than a real date.
const (
	minEpochMillis = 1577836800000
	maxEpochMillis = 1924905600000
)

// Layouts accepted for string input, tried in order.
var stringLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize converts a time.Time, an epoch-millisecond number or a
// parsable string into an RFC 3339 UTC instant. A nil input returns
// the empty string with no error. Numeric strings are rejected rather
// than guessed at, and numeric values outside the sanity bounds fail.
func Normalize(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil

	case time.Time:
		if t.IsZero() {
			return "", fmt.Errorf("zero time: %w", fderrors.ErrInvalidTimestamp)
		}
		return t.UTC().Format(time.RFC3339), nil

	case *time.Time:
		if t == nil {
			return "", nil
		}
		return Normalize(*t)

	case int:
		return fromMillis(int64(t))
	case int64:
		return fromMillis(t)
	case float64:
		return fromMillis(int64(t))

	case string:
		if t == "" {
			return "", nil
		}
		if _, err := strconv.ParseFloat(t, 64); err == nil {
			return "", fmt.Errorf("numeric string %q is ambiguous: %w", t, fderrors.ErrInvalidTimestamp)
		}
		for _, layout := range stringLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.UTC().Format(time.RFC3339), nil
			}
		}
		return "", fmt.Errorf("unparsable timestamp %q: %w", t, fderrors.ErrInvalidTimestamp)

	default:
		return "", fmt.Errorf("unsupported timestamp type %T: %w", v, fderrors.ErrInvalidTimestamp)
	}
}

func fromMillis(ms int64) (string, error) {
	if ms < minEpochMillis || ms > maxEpochMillis {
		return "", fmt.Errorf("epoch value %d outside sanity bounds: %w", ms, fderrors.ErrInvalidTimestamp)
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339), nil
}

// Parse converts a normalized instant back into a time.Time.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse instant %q: %w", s, fderrors.ErrInvalidTimestamp)
	}
	return t, nil
}
