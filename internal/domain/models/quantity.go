package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxQuantity is the largest quantity a record may hold: the largest integer a
// JSON number carries exactly.
const MaxQuantity = 1<<53 - 1

// ParseQuantity converts loosely typed input (JSON numbers, numeric strings) into a
// non-negative integer. Anything else, including negatives, yields fallback.
// Fractional values truncate toward zero. Values above MaxQuantity saturate at
// MaxQuantity+1 so range checks reject them instead of seeing a wrapped value.
func ParseQuantity(value any, fallback int) int {
	switch v := value.(type) {
	case nil:
		return fallback
	case int:
		return nonNegative(v, fallback)
	case int32:
		return nonNegative(int(v), fallback)
	case int64:
		if v > MaxQuantity {
			return MaxQuantity + 1
		}
		return nonNegative(int(v), fallback)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fallback
		}
		if v > MaxQuantity {
			return MaxQuantity + 1
		}
		return nonNegative(int(v), fallback)
	case string:
		return parseQuantityString(v, fallback)
	case fmt.Stringer:
		return parseQuantityString(v.String(), fallback)
	default:
		return fallback
	}
}

func parseQuantityString(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	// leading integer prefix, so "12 boxes" reads as 12
	end := 0
	for end < len(raw) && (raw[end] >= '0' && raw[end] <= '9' || end == 0 && (raw[end] == '-' || raw[end] == '+')) {
		end++
	}
	n, err := strconv.Atoi(raw[:end])
	if errors.Is(err, strconv.ErrRange) && raw[0] != '-' {
		return MaxQuantity + 1
	}
	if err != nil {
		return fallback
	}
	return nonNegative(n, fallback)
}

func nonNegative(n, fallback int) int {
	if n < 0 {
		return fallback
	}
	if n > MaxQuantity {
		return MaxQuantity + 1
	}
	return n
}
