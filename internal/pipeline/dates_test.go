package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-01-05", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"2024-01-05T14:30:00", time.Date(2024, 1, 5, 14, 30, 0, 0, time.UTC)},
		{"2024/01/05", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"01/05/2024", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"1/5/2024", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"05 Jan 2024", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"Jan 5, 2024", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"  2024-01-05  ", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "not a date", "32/13/2024", "soon"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseDate(input)
			assert.Error(t, err)
		})
	}
}
