package worktime

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/worktime-backend/internal/domain/worktime"
	"github.com/shopspring/decimal"
)

// maxDurationMinutes bounds any single duration so period totals cannot overflow.
const maxDurationMinutes = math.MaxInt32

var (
	minutesPerHour   = decimal.NewFromInt(60)
	secondsPerMinute = decimal.NewFromInt(60)
	maxMinutes       = decimal.NewFromInt(maxDurationMinutes)
)

// NormalizeDuration converts a raw duration into whole minutes.
//
// Accepted inputs:
//   - "HH:MM" or "HH:MM:SS" strings (seconds round to the nearest minute)
//   - decimal hours as numbers, numeric strings, json.Number or decimal.Decimal
//   - nil, empty strings and unparseable text, which yield nil (unknown)
//
// A clock-like string with bad segments returns *worktime.MalformedDurationError.
func NormalizeDuration(raw any) (*int, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return normalizeString(v)
	case *string:
		if v == nil {
			return nil, nil
		}
		return normalizeString(*v)
	case []byte:
		return normalizeString(string(v))
	case json.Number:
		return normalizeString(v.String())
	case decimal.Decimal:
		return hoursToMinutes(v, v.String())
	case *decimal.Decimal:
		if v == nil {
			return nil, nil
		}
		return hoursToMinutes(*v, v.String())
	case decimal.NullDecimal:
		if !v.Valid {
			return nil, nil
		}
		return hoursToMinutes(v.Decimal, v.Decimal.String())
	case int:
		return hoursToMinutes(decimal.NewFromInt(int64(v)), strconv.Itoa(v))
	case int32:
		return hoursToMinutes(decimal.NewFromInt32(v), strconv.Itoa(int(v)))
	case int64:
		return hoursToMinutes(decimal.NewFromInt(v), strconv.FormatInt(v, 10))
	case float32:
		return normalizeFloat(float64(v))
	case float64:
		return normalizeFloat(v)
	case *float64:
		if v == nil {
			return nil, nil
		}
		return normalizeFloat(*v)
	default:
		return nil, nil
	}
}

// NormalizeOrUnknown is NormalizeDuration with malformed input folded into unknown.
func NormalizeOrUnknown(raw any) *int {
	minutes, err := NormalizeDuration(raw)
	if err != nil {
		return nil
	}
	return minutes
}

func normalizeFloat(f float64) (*int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, nil
	}
	return hoursToMinutes(decimal.NewFromFloat(f), strconv.FormatFloat(f, 'f', -1, 64))
}

func normalizeString(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if strings.Contains(s, ":") {
		return parseClockDuration(s)
	}

	// Spanish exports write decimal hours with a comma ("7,5").
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	hours, err := decimal.NewFromString(s)
	if err != nil {
		return nil, nil
	}
	return hoursToMinutes(hours, s)
}

func hoursToMinutes(hours decimal.Decimal, raw string) (*int, error) {
	if hours.IsNegative() {
		return nil, &worktime.MalformedDurationError{Raw: raw, Reason: "negative duration"}
	}
	rounded := hours.Mul(minutesPerHour).Round(0)
	if rounded.GreaterThan(maxMinutes) {
		return nil, &worktime.MalformedDurationError{Raw: raw, Reason: "duration out of range"}
	}
	minutes := int(rounded.IntPart())
	return &minutes, nil
}

func parseClockDuration(s string) (*int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return nil, &worktime.MalformedDurationError{Raw: s, Reason: "expected HH:MM or HH:MM:SS"}
	}

	hours, ok := parseSegment(parts[0])
	if !ok {
		return nil, &worktime.MalformedDurationError{Raw: s, Reason: "hours must be a non-negative integer"}
	}
	mins, ok := parseSegment(parts[1])
	if !ok {
		return nil, &worktime.MalformedDurationError{Raw: s, Reason: "minutes must be a non-negative integer"}
	}
	if mins >= 60 {
		return nil, &worktime.MalformedDurationError{Raw: s, Reason: "minutes must be below 60"}
	}
	if hours > maxDurationMinutes/60 {
		return nil, &worktime.MalformedDurationError{Raw: s, Reason: "duration out of range"}
	}

	total := hours*60 + mins

	if len(parts) == 3 {
		secs, err := decimal.NewFromString(parts[2])
		if err != nil || secs.IsNegative() || strings.ContainsAny(parts[2], "+-eE") {
			return nil, &worktime.MalformedDurationError{Raw: s, Reason: "seconds must be a non-negative number"}
		}
		if secs.GreaterThanOrEqual(secondsPerMinute) {
			return nil, &worktime.MalformedDurationError{Raw: s, Reason: "seconds must be below 60"}
		}
		if secs.GreaterThanOrEqual(decimal.NewFromInt(30)) {
			total++
		}
	}
	if total > maxDurationMinutes {
		return nil, &worktime.MalformedDurationError{Raw: s, Reason: "duration out of range"}
	}

	return &total, nil
}

func parseSegment(seg string) (int, bool) {
	if seg == "" {
		return 0, false
	}
	for _, r := range seg {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}
	return n, true
}
