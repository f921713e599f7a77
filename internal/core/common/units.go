// Package common holds the numeric and unit parsing shared by the pipeline
// stages. eLCA reports use German number formatting (decimal comma) and mix
// mm/cm/m quantities, so all parsing goes through here.
package common

import (
	"strconv"
	"strings"
)

// DefaultThickness is used when a quantity text cannot be parsed at all.
// Intentionally 1 cm rather than zero so that layers built from broken
// source text stay visible in downstream renders.
const DefaultThickness = 0.01

// metersPerUnit maps a recognized length unit to its conversion factor.
// Unrecognized units fall back to millimeters.
var metersPerUnit = map[string]float64{
	"mm": 0.001,
	"cm": 0.01,
	"m":  1.0,
}

// ParseFloat parses a number that may use a decimal comma ("200,00").
func ParseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
}

// ParseThickness converts a quantity text like "200,00 mm" or "5 cm" into
// meters. A missing unit defaults to millimeters, as does an unrecognized
// one. When the numeric part does not parse the documented fallback of
// DefaultThickness is returned along with false.
func ParseThickness(quantity string) (meters float64, ok bool) {
	fields := strings.Fields(quantity)
	if len(fields) == 0 {
		return DefaultThickness, false
	}

	value, err := ParseFloat(fields[0])
	if err != nil {
		return DefaultThickness, false
	}

	unit := "mm"
	if len(fields) > 1 {
		unit = strings.ToLower(fields[1])
	}
	factor, known := metersPerUnit[unit]
	if !known {
		factor = metersPerUnit["mm"]
	}
	return value * factor, true
}

// MillimetersToMeters converts an already-parsed source value (eLCA stores
// layer sizes in millimeters) into meters.
func MillimetersToMeters(mm float64) float64 {
	return mm / 1000.0
}
