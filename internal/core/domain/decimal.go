package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// decimalPattern accepts scanned accounting amounts: optional sign, digit
// groups with optional space/dot thousands separators, optional comma or dot
// decimal part.
var decimalPattern = regexp.MustCompile(`^[+-]?(?:\d{1,3}(?:[ .]\d{3})+|\d+)(?:[.,]\d+)?$`)

// ValidDecimal reports whether s looks like a decimal amount after trimming.
func ValidDecimal(s string) bool {
	return decimalPattern.MatchString(strings.TrimSpace(s))
}

// ParseDecimal converts a scanned amount to a float. Spaces are stripped and
// the French decimal comma becomes a dot, mirroring the importer's historical
// behavior for REG010 amounts.
func ParseDecimal(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	if !decimalPattern.MatchString(cleaned) {
		return 0, fmt.Errorf("not a decimal amount: %q", s)
	}
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if strings.Contains(cleaned, ",") {
		// Dots left of a decimal comma are thousands separators.
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return n, nil
}

var dateLayouts = []string{
	"02/01/2006",
	"02-01-2006",
	"2006-01-02",
	"02.01.2006",
	"02 01 2006",
}

// ParseDate tries the date layouts seen in supplier documents, day-first.
func ParseDate(s string) (time.Time, error) {
	cleaned := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}
