package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBillions(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{
			name:     "typical debt value",
			input:    102.149e9,
			expected: "102.1B",
		},
		{
			name:     "round billions",
			input:    2.5e9,
			expected: "2.5B",
		},
		{
			name:     "below one billion",
			input:    5e8,
			expected: "0.5B",
		},
		{
			name:     "zero",
			input:    0,
			expected: "0.0B",
		},
		{
			name:     "negative net position",
			input:    -1.5e9,
			expected: "-1.5B",
		},
		{
			name:     "exact half rounds to even",
			input:    1.25e9,
			expected: "1.2B", // %.1f rounds half to even
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatBillions(tt.input)
			assert.Equal(t, tt.expected, result, "FormatBillions(%f) = %s, want %s", tt.input, result, tt.expected)
		})
	}
}

func TestFormatDebt(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{
			name:     "whole billions stay integral",
			input:    2.5e9,
			expected: "2500000000",
		},
		{
			name:     "fractional value keeps only real digits",
			input:    13.4,
			expected: "13.4",
		},
		{
			name:     "negative value",
			input:    -1250000000,
			expected: "-1250000000",
		},
		{
			name:     "zero",
			input:    0,
			expected: "0",
		},
		{
			name:     "sub-unit precision survives",
			input:    1234.5678,
			expected: "1234.5678",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatDebt(tt.input)
			assert.Equal(t, tt.expected, result, "formatDebt(%f) = %s, want %s", tt.input, result, tt.expected)
		})
	}
}

func TestFormatYear(t *testing.T) {
	assert.Equal(t, "1993", formatYear(1993))
	assert.Equal(t, "2026", formatYear(2026))
}

func TestFormatOptional(t *testing.T) {
	assert.Equal(t, "", formatOptional(nil))

	v := 2.5e9
	assert.Equal(t, "2500000000", formatOptional(&v))
}
