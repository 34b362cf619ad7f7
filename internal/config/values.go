package config

import (
	"math"
	"time"

	"github.com/dshills/keydrive/internal/config/loader"
)

// The getters leave dst untouched when path is absent.

func getString(m map[string]any, path string, dst *string) error {
	v, ok := loader.GetByPath(m, path)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return &TypeError{Path: path, Expected: "string", Value: v}
	}
	*dst = s
	return nil
}

func getBool(m map[string]any, path string, dst *bool) error {
	v, ok := loader.GetByPath(m, path)
	if !ok {
		return nil
	}
	switch b := v.(type) {
	case bool:
		*dst = b
	case int64:
		if b != 0 && b != 1 {
			return &TypeError{Path: path, Expected: "bool", Value: v}
		}
		*dst = b == 1
	default:
		return &TypeError{Path: path, Expected: "bool", Value: v}
	}
	return nil
}

func getInt(m map[string]any, path string, dst *int) error {
	v, ok := loader.GetByPath(m, path)
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case int:
		*dst = n
	case int64:
		*dst = int(n)
	case float64:
		if n != math.Trunc(n) {
			return &TypeError{Path: path, Expected: "integer", Value: v}
		}
		*dst = int(n)
	default:
		return &TypeError{Path: path, Expected: "integer", Value: v}
	}
	return nil
}

func getFloat(m map[string]any, path string, dst *float64) error {
	v, ok := loader.GetByPath(m, path)
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case float64:
		*dst = n
	case int:
		*dst = float64(n)
	case int64:
		*dst = float64(n)
	default:
		return &TypeError{Path: path, Expected: "number", Value: v}
	}
	return nil
}

// getDuration accepts "250ms" style strings, or integers as milliseconds.
func getDuration(m map[string]any, path string, dst *time.Duration) error {
	v, ok := loader.GetByPath(m, path)
	if !ok {
		return nil
	}
	switch d := v.(type) {
	case time.Duration:
		*dst = d
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return &TypeError{Path: path, Expected: "duration", Value: v}
		}
		*dst = parsed
	case int:
		*dst = time.Duration(d) * time.Millisecond
	case int64:
		*dst = time.Duration(d) * time.Millisecond
	default:
		return &TypeError{Path: path, Expected: "duration", Value: v}
	}
	return nil
}
