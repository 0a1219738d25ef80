package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var planNow = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

func TestPlanSizeAndOrder(t *testing.T) {
	target := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)

	points := Plan(target, planNow, DefaultWindow)
	require.Len(t, points, 25)
	assert.Equal(t, 25, DefaultWindow.Size())

	assert.Equal(t, SampleKey{Year: 2020, DayOffset: -2}, points[0].Key)
	assert.Equal(t, time.Date(2020, 7, 12, 0, 0, 0, 0, time.UTC), points[0].Date)
	assert.Equal(t, SampleKey{Year: 2024, DayOffset: 2}, points[24].Key)
	assert.Equal(t, time.Date(2024, 7, 16, 0, 0, 0, 0, time.UTC), points[24].Date)

	seen := make(map[SampleKey]bool)
	for _, p := range points {
		assert.False(t, seen[p.Key], "duplicate key %+v", p.Key)
		seen[p.Key] = true
		assert.Less(t, p.Key.Year, planNow.Year())
	}
}

func TestPlanVariousWindows(t *testing.T) {
	target := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	for _, w := range []Window{{1, 0}, {3, 1}, {10, 3}} {
		assert.Len(t, Plan(target, planNow, w), w.YearsBack*(2*w.DayRadius+1))
	}
	assert.Empty(t, Plan(target, planNow, Window{YearsBack: 0, DayRadius: 2}))
	assert.Empty(t, Plan(target, planNow, Window{YearsBack: 2, DayRadius: -1}))
}

func TestPlanYearRollover(t *testing.T) {
	target := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	points := Plan(target, planNow, Window{YearsBack: 1, DayRadius: 2})
	require.Len(t, points, 5)

	want := []time.Time{
		time.Date(2024, 12, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	for i, p := range points {
		assert.Equal(t, want[i], p.Date)
		assert.Equal(t, 2024, p.Key.Year)
	}
}

func TestPlanLeapDayFallsBackToFeb28(t *testing.T) {
	target := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)

	points := Plan(target, planNow, Window{YearsBack: 4, DayRadius: 0})
	require.Len(t, points, 4)
	assert.Equal(t, time.Date(2021, 2, 28, 0, 0, 0, 0, time.UTC), points[0].Date)
	assert.Equal(t, time.Date(2022, 2, 28, 0, 0, 0, 0, time.UTC), points[1].Date)
	assert.Equal(t, time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC), points[2].Date)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), points[3].Date)

	points = Plan(target, planNow, Window{YearsBack: 2, DayRadius: 1})
	require.Len(t, points, 6)
	assert.Equal(t, time.Date(2023, 2, 27, 0, 0, 0, 0, time.UTC), points[0].Date)
	assert.Equal(t, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), points[2].Date)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), points[5].Date)
}

func TestIsLeap(t *testing.T) {
	assert.True(t, isLeap(2024))
	assert.True(t, isLeap(2000))
	assert.False(t, isLeap(1900))
	assert.False(t, isLeap(2023))
}
