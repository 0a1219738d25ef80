package weather

import "time"

// Window configures how much history is sampled around the target date.
type Window struct {
	YearsBack int // years before the current year, >= 1
	DayRadius int // days on each side of the target date, >= 0
}

// DefaultWindow matches the service defaults (5 years, +/- 2 days).
var DefaultWindow = Window{YearsBack: 5, DayRadius: 2}

// Size returns the number of sample points the window plans.
func (w Window) Size() int {
	if w.YearsBack <= 0 || w.DayRadius < 0 {
		return 0
	}
	return w.YearsBack * (2*w.DayRadius + 1)
}

// Plan produces the sample points for the calendar date of target, ordered by
// year then day offset. Years run from now.Year()-YearsBack to now.Year()-1.
//
// When target is Feb 29 and a sampled year is not a leap year, Feb 28 of that
// year is used as the base date before the offset is applied.
func Plan(target, now time.Time, w Window) []SamplePoint {
	points := make([]SamplePoint, 0, w.Size())
	if w.Size() == 0 {
		return points
	}

	month, day := target.Month(), target.Day()
	current := now.Year()

	for year := current - w.YearsBack; year < current; year++ {
		baseDay := day
		if month == time.February && day == 29 && !isLeap(year) {
			baseDay = 28
		}
		base := time.Date(year, month, baseDay, 0, 0, 0, 0, time.UTC)

		for offset := -w.DayRadius; offset <= w.DayRadius; offset++ {
			points = append(points, SamplePoint{
				Key:  SampleKey{Year: year, DayOffset: offset},
				Date: base.AddDate(0, 0, offset),
			})
		}
	}

	return points
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
