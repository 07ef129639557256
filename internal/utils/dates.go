package utils

import "time"

// Midnight truncates t to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysUntil counts whole calendar days from now to expiration, both
// truncated to midnight so every contract in a run sees the same day count.
// Never negative.
func DaysUntil(expiration, now time.Time) int {
	days := int(Midnight(expiration).Sub(Midnight(now)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// YearsUntil is the time to expiration as a year fraction, floored at zero.
func YearsUntil(expiration, now time.Time) float64 {
	years := expiration.Sub(now).Hours() / (24 * 365)
	if years < 0 {
		return 0
	}
	return years
}

// WithinDays reports whether expiration falls on or after today and before
// now+n days.
func WithinDays(expiration, now time.Time, n int) bool {
	if expiration.Before(Midnight(now)) {
		return false
	}
	return expiration.Before(now.AddDate(0, 0, n))
}

// NextThirdFriday returns the next standard monthly options expiration
// (third Friday) on or after today, in YYYY-MM-DD format.
func NextThirdFriday(now time.Time) string {
	year, month := now.Year(), now.Month()

	thirdFriday := thirdFridayOf(year, month, now.Location())
	if Midnight(now).After(thirdFriday) {
		month++
		if month > 12 {
			month = 1
			year++
		}
		thirdFriday = thirdFridayOf(year, month, now.Location())
	}
	return thirdFriday.Format("2006-01-02")
}

func thirdFridayOf(year int, month time.Month, loc *time.Location) time.Time {
	firstDay := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	firstFriday := firstDay.AddDate(0, 0, (int(time.Friday)-int(firstDay.Weekday())+7)%7)
	return firstFriday.AddDate(0, 0, 14)
}
