package pipeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCurrency(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"", 0.0},
		{"$1,234.56", 1234.56},
		{"abc", 0.0},
		{"100", 100},
		{"-42.50", -42.5},
		{"(£3,000)", 3000},
		{"1,000,000", 1000000},
		{"1.2.3", 0.0},
		{"-", 0.0},
		{"NaN", 0.0},
		{"  $99  ", 99},
		{"USD 250.00", 250},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCurrency(tt.input))
		})
	}
}

func TestNormalizeCurrency_IdempotentOnCleanFloats(t *testing.T) {
	for _, v := range []float64{0, 1, -1, 1234.56, -0.01, 999999.99} {
		s := fmt.Sprintf("%v", v)
		once := NormalizeCurrency(s)
		twice := NormalizeCurrency(fmt.Sprintf("%v", once))
		assert.Equal(t, once, twice, "normalize should be idempotent for %v", v)
		assert.Equal(t, v, once)
	}
}
