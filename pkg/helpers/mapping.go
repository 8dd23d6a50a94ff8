package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// DecodeFields copies fields onto dst, a pointer to a struct with json tags.
// Keys absent from fields leave dst untouched.
func DecodeFields(fields map[string]any, dst any) error {
	if len(fields) == 0 {
		return nil
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}
	return nil
}

var ErrInvalidID = errors.New("invalid id")

// ParseID parses a positive decimal id, typically from a path parameter.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// ToInt64 converts the numeric shapes produced by JSON and GraphQL decoding.
func ToInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return int64(x), true
	case json.Number:
		i, err := x.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(x, 10, 64)
		return i, err == nil
	}
	return 0, false
}
