package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseThickness(t *testing.T) {
	v, ok := ParseThickness("200,00 mm")
	assert.True(t, ok)
	assert.InDelta(t, 0.2, v, 1e-9)

	v, ok = ParseThickness("5 cm")
	assert.True(t, ok)
	assert.InDelta(t, 0.05, v, 1e-9)

	v, ok = ParseThickness("1,5 m")
	assert.True(t, ok)
	assert.InDelta(t, 1.5, v, 1e-9)
}

func TestParseThicknessDefaultsToMillimeters(t *testing.T) {
	// No unit at all.
	v, ok := ParseThickness("360,00")
	assert.True(t, ok)
	assert.InDelta(t, 0.36, v, 1e-9)

	// Unknown unit is treated as mm.
	v, ok = ParseThickness("5 xyz")
	assert.True(t, ok)
	assert.InDelta(t, 0.005, v, 1e-9)
}

func TestParseThicknessFallback(t *testing.T) {
	v, ok := ParseThickness("abc")
	assert.False(t, ok)
	assert.Equal(t, DefaultThickness, v)

	v, ok = ParseThickness("")
	assert.False(t, ok)
	assert.Equal(t, DefaultThickness, v)
}

func TestParseFloat(t *testing.T) {
	v, err := ParseFloat("12,75")
	assert.NoError(t, err)
	assert.InDelta(t, 12.75, v, 1e-9)

	v, err = ParseFloat(" 180 ")
	assert.NoError(t, err)
	assert.InDelta(t, 180.0, v, 1e-9)

	_, err = ParseFloat("N/A")
	assert.Error(t, err)
}
