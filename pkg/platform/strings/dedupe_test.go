package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty slice",
			input:    []string{},
			expected: []string{},
		},
		{
			name:     "trims whitespace",
			input:    []string{"  6P X1  ", "H  ", "  M"},
			expected: []string{"6P X1", "H", "M"},
		},
		{
			name:     "removes duplicates preserving order",
			input:    []string{"H", "M", "H", "0 X1", "M"},
			expected: []string{"H", "M", "0 X1"},
		},
		{
			name:     "removes empty strings",
			input:    []string{"H", "", "  ", "M"},
			expected: []string{"H", "M"},
		},
		{
			name:     "preserves case",
			input:    []string{"h", "H"},
			expected: []string{"h", "H"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DedupeAndTrim(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}
