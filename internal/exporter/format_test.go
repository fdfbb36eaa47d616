package exporter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCellValue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected interface{}
	}{
		{"empty", "", nil},
		{"integer", "32", 32.0},
		{"negative decimal", "-1.5", -1.5},
		{"exponent", "1e-3", 0.001},
		{"text", "UF", "UF"},
		{"nan stays text", "NaN", "NaN"},
		{"infinity stays text", "Inf", "Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cellValue(tt.input))
		})
	}
}

func TestRowValuesKeepsDateAndTimeAsText(t *testing.T) {
	got := rowValues([]string{"20200420", "120000", "-1.5", ""})
	assert.Equal(t, []interface{}{"20200420", "120000", -1.5, nil}, got)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{"nil", nil, ""},
		{"string", "seawater", "seawater"},
		{"float", 1.96, "1.96"},
		{"whole float", 2.0, "2"},
		{"int", 8, "8"},
		{"bool", true, "true"},
		{"time", time.Date(2020, 4, 20, 12, 0, 0, 0, time.UTC), "2020-04-20 12:00:00"},
		{"unsupported", struct{}{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatValue(tt.input))
		})
	}
}
