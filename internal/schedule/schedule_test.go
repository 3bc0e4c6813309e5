package schedule

import (
	"testing"
	"time"

	"alcyxob/gym-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeEndDate(t *testing.T) {
	start := date(2024, time.January, 1)
	tests := []struct {
		duration domain.DurationType
		want     time.Time
	}{
		{domain.DurationWeek, date(2024, time.January, 7)},
		{domain.DurationMonth, date(2024, time.January, 28)},
		{domain.DurationTrimester, date(2024, time.March, 24)},
	}
	for _, tt := range tests {
		t.Run(string(tt.duration), func(t *testing.T) {
			got := ComputeEndDate(start, tt.duration)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, WeeksFor(tt.duration)*7-1, int(got.Sub(start).Hours()/24))
		})
	}
}

func TestComputeEndDate_IgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2024, time.February, 26, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, date(2024, time.March, 24), ComputeEndDate(start, domain.DurationMonth))
}

func TestWeeksFor_PanicsOnUnknownDuration(t *testing.T) {
	assert.Panics(t, func() { WeeksFor("fortnight") })
}

func TestResolveTodayCoordinate(t *testing.T) {
	start := date(2024, time.January, 1) // Monday
	end := ComputeEndDate(start, domain.DurationMonth)

	_, ok := ResolveTodayCoordinate(start, end, date(2023, time.December, 31))
	assert.False(t, ok, "before start")

	_, ok = ResolveTodayCoordinate(start, end, date(2024, time.January, 29))
	assert.False(t, ok, "after end")

	c, ok := ResolveTodayCoordinate(start, end, start)
	require.True(t, ok)
	assert.Equal(t, domain.Coordinate{Week: 1, Day: 1}, c)

	c, ok = ResolveTodayCoordinate(start, end, date(2024, time.January, 7))
	require.True(t, ok)
	assert.Equal(t, domain.Coordinate{Week: 1, Day: 7}, c, "Sunday maps to 7")

	c, ok = ResolveTodayCoordinate(start, end, date(2024, time.January, 10))
	require.True(t, ok)
	assert.Equal(t, domain.Coordinate{Week: 2, Day: 3}, c)

	c, ok = ResolveTodayCoordinate(start, end, end)
	require.True(t, ok)
	assert.Equal(t, domain.Coordinate{Week: 4, Day: 7}, c)
}

func TestResolveTodayCoordinate_DayIsWeekdayNotOffset(t *testing.T) {
	start := date(2024, time.January, 3) // Wednesday
	end := ComputeEndDate(start, domain.DurationWeek)

	c, ok := ResolveTodayCoordinate(start, end, start)
	require.True(t, ok)
	assert.Equal(t, domain.Coordinate{Week: 1, Day: 3}, c)

	c, ok = ResolveTodayCoordinate(start, end, date(2024, time.January, 8)) // Monday
	require.True(t, ok)
	assert.Equal(t, domain.Coordinate{Week: 1, Day: 1}, c)
}

func TestResolveTodayCoordinate_AllDaysInRange(t *testing.T) {
	start := date(2024, time.March, 4)
	end := ComputeEndDate(start, domain.DurationTrimester)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		c, ok := ResolveTodayCoordinate(start, end, d)
		require.True(t, ok, d)
		assert.True(t, ValidCoordinate(c, domain.DurationTrimester), "%s -> %+v", d, c)
	}
}

func TestDateIn(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)
	// 01:00 UTC on Jan 2nd is still Jan 1st in Buenos Aires.
	now := time.Date(2024, time.January, 2, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, date(2024, time.January, 1), DateIn(now, loc))
	assert.Equal(t, date(2024, time.January, 2), DateIn(now, nil))
}

func TestISOWeekday(t *testing.T) {
	assert.Equal(t, 1, ISOWeekday(date(2024, time.January, 1)))
	assert.Equal(t, 6, ISOWeekday(date(2024, time.January, 6)))
	assert.Equal(t, 7, ISOWeekday(date(2024, time.January, 7)))
}
