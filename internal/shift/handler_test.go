package shift

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShiftWindowDayShift(t *testing.T) {
	start, end, err := parseShiftWindow("2025-12-09", "08:00", "20:00")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 12, 9, 8, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 12, 9, 20, 0, 0, 0, time.UTC), end)
}

func TestParseShiftWindowNightShiftCrossesMidnight(t *testing.T) {
	// Gece vardiyası: bitiş saat olarak başlangıçtan küçükse ertesi güne taşar
	start, end, err := parseShiftWindow("2025-12-09", "20:00", "08:00")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 12, 9, 20, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 12, 10, 8, 0, 0, 0, time.UTC), end)
	assert.True(t, end.After(start))
}

func TestParseShiftWindowInvalidInputs(t *testing.T) {
	cases := []struct {
		date, start, end string
	}{
		{"09-12-2025", "08:00", "20:00"},
		{"2025-12-09", "8", "20:00"},
		{"2025-12-09", "08:00", "sekiz"},
	}
	for _, tc := range cases {
		_, _, err := parseShiftWindow(tc.date, tc.start, tc.end)
		assert.Error(t, err, "parseShiftWindow(%q, %q, %q)", tc.date, tc.start, tc.end)
	}
}
