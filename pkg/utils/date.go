package utils

import (
	"log"
	"time"
)

// GetJSTLocation returns the Asia/Tokyo location the market operates in.
func GetJSTLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		log.Fatal("Failed to load location", err)
	}
	return loc
}

// TimeNowJST returns the current time in Asia/Tokyo.
func TimeNowJST() time.Time {
	return time.Now().In(GetJSTLocation())
}

// TruncateToDate drops the time-of-day portion, keeping the location.
func TruncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// PrettyDate formats a time as a short human readable date, e.g. "02 Jan 2006".
func PrettyDate(t time.Time) string {
	return t.Format("02 Jan 2006")
}

// DaysBetween returns the number of whole days from a to b, ignoring
// time-of-day. Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	a = TruncateToDate(a)
	b = TruncateToDate(b)
	return int(b.Sub(a).Hours() / 24)
}

// EstimateFiscalQuarter maps an announcement date to the fiscal quarter it
// most likely reports, assuming the standard Japanese March fiscal year end.
// Full-year results land in April-June, Q1 in July-September, the interim Q2
// in October-December, and Q3 in January-March. The returned fiscal year is
// the calendar year its March close falls in.
func EstimateFiscalQuarter(announcement time.Time) (string, int) {
	year := announcement.Year()
	switch announcement.Month() {
	case time.April, time.May, time.June:
		return "Q4", year
	case time.July, time.August, time.September:
		return "Q1", year + 1
	case time.October, time.November, time.December:
		return "Q2", year + 1
	default:
		return "Q3", year
	}
}
