package core

import (
	"math"
	"strconv"
	"strings"

	"rentledger/pkg/domain"
)

// ParseAmount reads a user-entered amount. Blank, unparsable and non-finite
// input reads as 0.
func ParseAmount(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

func requireNonNegative(field string, v float64) error {
	if !isFinite(v) || v < 0 {
		return domain.ValidationError{Field: field, Message: "must be a non-negative number"}
	}
	return nil
}

// parseDay accepts an empty day or an integer in [1,31]. Days past the end of
// the month are not rejected.
func parseDay(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	day, err := strconv.Atoi(raw)
	if err != nil || day < 1 || day > 31 {
		return "", domain.ValidationError{Field: "day", Message: "must be an integer between 1 and 31"}
	}
	return strconv.Itoa(day), nil
}

// sanitizePrice drops negative and non-finite prices.
func sanitizePrice(p *float64) *float64 {
	if p == nil || !isFinite(*p) || *p < 0 {
		return nil
	}
	v := *p
	return &v
}
