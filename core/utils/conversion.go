package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ToInt64 converts various types to int64 using explicit type switching.
// It handles standard integer types, floats, strings, and byte slices.
// The second return value reports whether a usable number was found.
func ToInt64(val any) (int64, bool) {
	switch v := val.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int16:
		return int64(v), true
	case int8:
		return int64(v), true
	case uint:
		return int64(v), true
	case uint64:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint8:
		return int64(v), true
	case float64:
		return int64(v), true
	case float32:
		return int64(v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f), true
		}
		return 0, false
	case []byte:
		return ToInt64(string(v))
	case nil:
		return 0, false
	default:
		return ToInt64(fmt.Sprintf("%v", v))
	}
}

// ToFloat64 converts various types to float64.
func ToFloat64(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int, int64, int32, int16, int8, uint, uint64, uint32, uint16, uint8:
		i, _ := ToInt64(v)
		return float64(i), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	case []byte:
		return ToFloat64(string(v))
	case nil:
		return 0, false
	default:
		return ToFloat64(fmt.Sprintf("%v", v))
	}
}

// ToString converts various types to string. Floats render without
// trailing zeros so "10" and "10.0" collapse to the same text.
func ToString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", v)
	}
}
