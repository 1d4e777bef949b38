// Package coerce turns loosely typed raw values into canonical Go types.
// Every function is pure: it returns either a typed value, a nil pointer
// for null-like input, or a *coerce.Error describing why the value could
// not be typed. Nothing in this package panics on bad input.
package coerce

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Reason classifies a coercion failure.
type Reason string

const (
	NoNumericToken      Reason = "no_numeric_token"
	UnrecognizedBoolean Reason = "unrecognized_boolean"
	BadDate             Reason = "bad_date"
)

// Error is a typed coercion failure carrying the offending raw value.
type Error struct {
	Reason Reason
	Raw    any
}

func (e *Error) Error() string {
	return fmt.Sprintf("coerce: %s (raw: %v)", e.Reason, e.Raw)
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// nullTokens are raw string values treated as null everywhere.
var nullTokens = map[string]bool{
	"":        true,
	"na":      true,
	"n/a":     true,
	"null":    true,
	"none":    true,
	"unknown": true,
}

var numberWords = map[string]float64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
	"ten": 10, "eleven": 11, "twelve": 12,
}

var booleanTrue = map[string]bool{"y": true, "yes": true, "true": true, "1": true}
var booleanFalse = map[string]bool{"n": true, "no": true, "false": true, "0": true}

// IsNull reports whether a raw value counts as null-like input.
func IsNull(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return nullTokens[strings.ToLower(strings.TrimSpace(v))]
	case float64:
		return math.IsNaN(v)
	}
	return false
}

// String trims and collapses internal whitespace. Null-like tokens become
// nil. Non-string scalars are stringified; this coercer never fails.
func String(raw any) *string {
	if IsNull(raw) {
		return nil
	}
	var text string
	switch v := raw.(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		text = fmt.Sprintf("%v", v)
	}
	text = whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	if nullTokens[strings.ToLower(text)] {
		return nil
	}
	return &text
}

// Bool maps the closed truthy/falsy vocabulary (yes/no, y/n, true/false,
// 1/0, any case) to a boolean. Any other non-null token fails with
// UnrecognizedBoolean.
func Bool(raw any) (*bool, error) {
	if IsNull(raw) {
		return nil, nil
	}
	switch v := raw.(type) {
	case bool:
		b := v
		return &b, nil
	case int:
		return boolFromNumber(float64(v), raw)
	case int64:
		return boolFromNumber(float64(v), raw)
	case float64:
		return boolFromNumber(v, raw)
	}
	text := String(raw)
	if text == nil {
		return nil, nil
	}
	lowered := strings.ToLower(*text)
	if booleanTrue[lowered] {
		b := true
		return &b, nil
	}
	if booleanFalse[lowered] {
		b := false
		return &b, nil
	}
	return nil, &Error{Reason: UnrecognizedBoolean, Raw: raw}
}

func boolFromNumber(v float64, raw any) (*bool, error) {
	if v == 0 || v == 1 {
		b := v == 1
		return &b, nil
	}
	return nil, &Error{Reason: UnrecognizedBoolean, Raw: raw}
}

// Decimal extracts the first numeric token from a messy value ("9191
// sqfts", "$1,250.00", "8.5%") and rounds it half-up to places decimal
// places. Spelled-out small numbers ("three") are recognized when the
// value carries no digits. Fails with NoNumericToken when nothing numeric
// can be extracted.
func Decimal(raw any, places int) (*float64, error) {
	if IsNull(raw) {
		return nil, nil
	}
	switch v := raw.(type) {
	case int:
		return roundPtr(float64(v), places), nil
	case int64:
		return roundPtr(float64(v), places), nil
	case float64:
		return roundPtr(v, places), nil
	case bool:
		if v {
			return roundPtr(1, places), nil
		}
		return roundPtr(0, places), nil
	}
	text := String(raw)
	if text == nil {
		return nil, nil
	}
	lowered := strings.ToLower(*text)
	candidate := extractNumber(lowered)
	if candidate == "" {
		// No digits at all: fall back to spelled-out small numbers,
		// so "three bed" still yields 3.
		for _, token := range strings.Fields(lowered) {
			if word, ok := numberWords[token]; ok {
				return roundPtr(word, places), nil
			}
		}
		return nil, &Error{Reason: NoNumericToken, Raw: raw}
	}
	parsed, err := strconv.ParseFloat(candidate, 64)
	if err != nil {
		return nil, &Error{Reason: NoNumericToken, Raw: raw}
	}
	return roundPtr(parsed, places), nil
}

// Int is the integer convenience wrapper around Decimal, rounding half-up.
func Int(raw any) (*int, error) {
	dec, err := Decimal(raw, 0)
	if err != nil || dec == nil {
		return nil, err
	}
	n := int(*dec)
	return &n, nil
}

// dateLayouts are tried in order by Date.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// Date parses the accepted date layouts. The current field vocabulary has
// no date-typed column; this exists for mapping configs that declare one.
func Date(raw any) (*time.Time, error) {
	if IsNull(raw) {
		return nil, nil
	}
	if t, ok := raw.(time.Time); ok {
		return &t, nil
	}
	text := String(raw)
	if text == nil {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, *text); err == nil {
			return &t, nil
		}
	}
	return nil, &Error{Reason: BadDate, Raw: raw}
}

// extractNumber strips everything except digits, the first leading sign
// and the first decimal point, so "1,250.75 per mo" becomes "1250.75".
func extractNumber(text string) string {
	var b strings.Builder
	seenDigit := false
	seenDot := false
	seenSign := false
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			b.WriteRune(r)
		case r == '.' && !seenDot:
			seenDot = true
			b.WriteRune(r)
		case r == '-' && !seenSign && !seenDigit:
			seenSign = true
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if !seenDigit {
		return ""
	}
	return cleaned
}

// Round rounds half-up (away from zero) to the given decimal places.
func Round(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}

func roundPtr(v float64, places int) *float64 {
	rounded := Round(v, places)
	return &rounded
}
