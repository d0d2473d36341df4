package filter

import (
	"testing"
	"time"

	"github.com/parkops/backoffice/internal/domain/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 18, 15, 30, 0, 0, time.Local)

func TestResolve(t *testing.T) {
	testCases := []struct {
		name          string
		period        Period
		expectedStart time.Time
		expectedEnd   time.Time
	}{
		{"Today", PeriodToday, time.Date(2025, 6, 18, 0, 0, 0, 0, time.Local), now},
		{"WeekTrailingSevenDays", PeriodWeek, now.AddDate(0, 0, -7), now},
		{"MonthFromFirst", PeriodMonth, time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local), now},
		{"YearFromJanuary", PeriodYear, time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local), now},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := Resolve(tc.period, now, time.Time{}, time.Time{})
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStart, r.Start)
			assert.Equal(t, tc.expectedEnd, r.End)
		})
	}

	t.Run("CustomWithBothBounds", func(t *testing.T) {
		start := now.AddDate(0, -2, 0)
		end := now.AddDate(0, -1, 0)
		r, err := Resolve(PeriodCustom, now, start, end)
		require.NoError(t, err)
		assert.Equal(t, start, r.Start)
		assert.Equal(t, end, r.End)
	})

	t.Run("CustomMissingBound", func(t *testing.T) {
		_, err := Resolve(PeriodCustom, now, now.AddDate(0, -1, 0), time.Time{})
		assert.ErrorIs(t, err, ErrInvalidRange)

		_, err = Resolve(PeriodCustom, now, time.Time{}, now)
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("CustomInvertedBounds", func(t *testing.T) {
		_, err := Resolve(PeriodCustom, now, now, now.AddDate(0, 0, -1))
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("UnknownPeriod", func(t *testing.T) {
		_, err := Resolve(Period("quarter"), now, time.Time{}, time.Time{})
		assert.ErrorIs(t, err, ErrInvalidRange)
	})
}

func TestRange_Contains(t *testing.T) {
	r := Range{
		Start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC),
	}

	assert.True(t, r.Contains(r.Start), "start bound is inclusive")
	assert.True(t, r.Contains(r.End), "end bound is inclusive")
	assert.True(t, r.Contains(r.Start.AddDate(0, 0, 15)))
	assert.False(t, r.Contains(r.Start.Add(-time.Second)))
	assert.False(t, r.Contains(r.End.Add(time.Second)))
}

func TestPriorWindow(t *testing.T) {
	r := Range{
		Start: time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC),
	}

	prior := PriorWindow(r)
	assert.Equal(t, time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC), prior.Start)
	assert.Equal(t, r.Start, prior.End)
}

func TestByRange(t *testing.T) {
	records := []transaction.Record{
		{ID: "in-checkout", CreatedAt: now.AddDate(0, -3, 0), CheckoutAt: now.Add(-time.Hour)},
		{ID: "in-created", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "out-old", CreatedAt: now.AddDate(0, 0, -2)},
	}

	r, err := Resolve(PeriodToday, now, time.Time{}, time.Time{})
	require.NoError(t, err)

	filtered := ByRange(records, r)
	require.Len(t, filtered, 2)
	assert.Equal(t, "in-checkout", filtered[0].ID, "checkout time is the reference date when set")
	assert.Equal(t, "in-created", filtered[1].ID)
}
