package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEstimateFiscalQuarter(t *testing.T) {
	cases := []struct {
		name        string
		date        time.Time
		wantQuarter string
		wantYear    int
	}{
		{"april is full year", time.Date(2024, time.April, 25, 0, 0, 0, 0, time.UTC), "Q4", 2024},
		{"may is full year", time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC), "Q4", 2024},
		{"june boundary", time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC), "Q4", 2024},
		{"july starts next fiscal year", time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), "Q1", 2025},
		{"august q1", time.Date(2024, time.August, 8, 0, 0, 0, 0, time.UTC), "Q1", 2025},
		{"november interim", time.Date(2024, time.November, 12, 0, 0, 0, 0, time.UTC), "Q2", 2025},
		{"january q3", time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC), "Q3", 2025},
		{"february q3", time.Date(2025, time.February, 14, 0, 0, 0, 0, time.UTC), "Q3", 2025},
		{"march closes the year", time.Date(2025, time.March, 28, 0, 0, 0, 0, time.UTC), "Q3", 2025},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quarter, year := EstimateFiscalQuarter(tc.date)
			assert.Equal(t, tc.wantQuarter, quarter)
			assert.Equal(t, tc.wantYear, year)
		})
	}
}

func TestDaysBetween(t *testing.T) {
	jst := GetJSTLocation()
	a := time.Date(2024, time.June, 10, 15, 30, 0, 0, jst)
	b := time.Date(2024, time.June, 12, 9, 0, 0, 0, jst)

	assert.Equal(t, 2, DaysBetween(a, b))
	assert.Equal(t, -2, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}

func TestTruncateToDate(t *testing.T) {
	jst := GetJSTLocation()
	ts := time.Date(2024, time.June, 10, 14, 45, 12, 999, jst)

	got := TruncateToDate(ts)

	assert.Equal(t, time.Date(2024, time.June, 10, 0, 0, 0, 0, jst), got)
	assert.Equal(t, jst, got.Location())
}
