package services

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var ErrNotANumber = errors.New("not a number")

const maxCommentLen = 1000

// ParseBonus parses bonus text the way users actually type it: either "12.5"
// or "12,5". Negative amounts are rejected together with anything that does
// not parse to a finite number.
func ParseBonus(text string) (float64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, ErrNotANumber
	}
	if value < 0 {
		return 0, ErrNotANumber
	}
	return value, nil
}

// ValidCoordinates reports whether lat/lon fall in the WGS84 degree ranges.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ResolveComment maps the skip command to an empty comment and passes
// anything else through verbatim, capped at a sane length.
func ResolveComment(text string) string {
	if text == CommandSkip {
		return ""
	}
	if runes := []rune(text); len(runes) > maxCommentLen {
		return string(runes[:maxCommentLen])
	}
	return text
}
