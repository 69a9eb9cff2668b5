package tools

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrUnknownTool     = errors.New("unknown tool")
	ErrMissingArgument = errors.New("missing required argument")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Args is the argument bag of a tool call as decoded from JSON.
type Args map[string]any

// String returns the named string argument. ok is false when it is absent or empty.
func (a Args) String(key string) (string, bool, error) {
	v, present := a[key]
	if !present || v == nil {
		return "", false, nil
	}
	s, isString := v.(string)
	if !isString {
		return "", false, fmt.Errorf("%w: %s must be a string", ErrInvalidArgument, key)
	}
	s = strings.TrimSpace(s)
	return s, s != "", nil
}

// Number returns the named numeric argument. Numeric strings are accepted.
func (a Args) Number(key string) (float64, bool, error) {
	v, present := a[key]
	if !present || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case float64:
		return n, true, nil
	case float32:
		return float64(n), true, nil
	case int:
		return float64(n), true, nil
	case int64:
		return float64(n), true, nil
	case int32:
		return float64(n), true, nil
	case string:
		if strings.TrimSpace(n) == "" {
			return 0, false, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false, fmt.Errorf("%w: %s must be a number", ErrInvalidArgument, key)
		}
		return f, true, nil
	default:
		return 0, false, fmt.Errorf("%w: %s must be a number", ErrInvalidArgument, key)
	}
}

// Int returns the named argument as a whole number.
func (a Args) Int(key string) (int, bool, error) {
	f, ok, err := a.Number(key)
	if err != nil || !ok {
		return 0, ok, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false, fmt.Errorf("%w: %s must be a whole number", ErrInvalidArgument, key)
	}
	return int(f), true, nil
}
