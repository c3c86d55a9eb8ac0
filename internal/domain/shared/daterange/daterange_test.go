package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewTruncatesToDay(t *testing.T) {
	from := time.Date(2024, 6, 1, 15, 30, 12, 0, time.UTC)
	to := time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC)

	dr, err := New(from, to)
	require.NoError(t, err)
	require.Equal(t, date(2024, 6, 1), dr.From)
	require.Equal(t, date(2024, 6, 5), dr.To)
	require.Equal(t, 4, dr.Nights())
}

func TestNewRejectsInvalidRanges(t *testing.T) {
	_, err := New(date(2024, 6, 5), date(2024, 6, 1))
	require.ErrorIs(t, err, ErrInvalidRange)

	// zero-length stays have no nights
	_, err = New(date(2024, 6, 1), date(2024, 6, 1))
	require.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(time.Time{}, date(2024, 6, 1))
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestOverlapsHalfOpen(t *testing.T) {
	booked, err := New(date(2024, 6, 1), date(2024, 6, 5))
	require.NoError(t, err)

	cases := []struct {
		name     string
		from, to time.Time
		want     bool
	}{
		{"identical", date(2024, 6, 1), date(2024, 6, 5), true},
		{"contained", date(2024, 6, 2), date(2024, 6, 3), true},
		{"overlaps start", date(2024, 5, 30), date(2024, 6, 2), true},
		{"overlaps end", date(2024, 6, 4), date(2024, 6, 8), true},
		{"surrounds", date(2024, 5, 30), date(2024, 6, 8), true},
		{"back-to-back after", date(2024, 6, 5), date(2024, 6, 8), false},
		{"back-to-back before", date(2024, 5, 28), date(2024, 6, 1), false},
		{"disjoint after", date(2024, 6, 10), date(2024, 6, 12), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other, err := New(tc.from, tc.to)
			require.NoError(t, err)
			require.Equal(t, tc.want, booked.Overlaps(other))
			require.Equal(t, tc.want, other.Overlaps(booked))
		})
	}
}

func TestContainsDayExcludesCheckout(t *testing.T) {
	dr, err := New(date(2024, 6, 1), date(2024, 6, 5))
	require.NoError(t, err)

	require.True(t, dr.ContainsDay(date(2024, 6, 1)))
	require.True(t, dr.ContainsDay(date(2024, 6, 4)))
	require.False(t, dr.ContainsDay(date(2024, 6, 5)))
	require.False(t, dr.ContainsDay(date(2024, 5, 31)))
}

func TestDaysExpansion(t *testing.T) {
	dr, err := New(date(2024, 6, 1), date(2024, 6, 4))
	require.NoError(t, err)

	days := dr.Days()
	require.Equal(t, []time.Time{
		date(2024, 6, 1),
		date(2024, 6, 2),
		date(2024, 6, 3),
	}, days)
}
