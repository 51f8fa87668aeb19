package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := date(year, month, day)
	return &d
}

func floatPtr(v float64) *float64 {
	return &v
}

// 2024-06-18 is a Tuesday four days after the June SQ day, so the settlement
// rule stays quiet in these cases.
var quietDay = date(2024, time.June, 18)

func TestEarningsExclusionWindow(t *testing.T) {
	gate := NewEventGate(DefaultEventConfig())

	tests := []struct {
		name       string
		earnings   *time.Time
		wantEntry  bool
		wantRisk   EventRiskLevel
		wantReason string
	}{
		{
			name:       "on the earnings day",
			earnings:   datePtr(2024, time.June, 18),
			wantEntry:  false,
			wantRisk:   EventRiskCritical,
			wantReason: "Earnings in 0 day(s), inside exclusion window",
		},
		{
			name:       "two days before",
			earnings:   datePtr(2024, time.June, 20),
			wantEntry:  false,
			wantRisk:   EventRiskCritical,
			wantReason: "Earnings in 2 day(s), inside exclusion window",
		},
		{
			name:       "three days before is outside the window",
			earnings:   datePtr(2024, time.June, 21),
			wantEntry:  true,
			wantRisk:   EventRiskHigh,
			wantReason: "Earnings approaching in 3 day(s)",
		},
		{
			name:       "five days before still flags approach",
			earnings:   datePtr(2024, time.June, 23),
			wantEntry:  true,
			wantRisk:   EventRiskHigh,
			wantReason: "Earnings approaching in 5 day(s)",
		},
		{
			name:       "six days before is clear",
			earnings:   datePtr(2024, time.June, 24),
			wantEntry:  true,
			wantRisk:   EventRiskNone,
			wantReason: "No upcoming events",
		},
		{
			name:       "one day after",
			earnings:   datePtr(2024, time.June, 17),
			wantEntry:  false,
			wantRisk:   EventRiskCritical,
			wantReason: "1 day(s) after earnings, inside exclusion window",
		},
		{
			name:       "two days after is clear",
			earnings:   datePtr(2024, time.June, 16),
			wantEntry:  true,
			wantRisk:   EventRiskNone,
			wantReason: "No upcoming events",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := gate.Evaluate(EventInput{Symbol: "7203", Date: quietDay, EarningsDate: tc.earnings})
			assert.Equal(t, tc.wantEntry, result.EntryAllowed)
			assert.False(t, result.ExitRequired)
			assert.Equal(t, tc.wantRisk, result.RiskLevel)
			assert.Equal(t, tc.wantReason, result.Reason)
		})
	}
}

func TestEarningsWithOpenPosition(t *testing.T) {
	gate := NewEventGate(DefaultEventConfig())
	earnings := datePtr(2024, time.June, 20)

	t.Run("gain at the threshold permits holding", func(t *testing.T) {
		result := gate.Evaluate(EventInput{
			Symbol: "7203", Date: quietDay, EarningsDate: earnings, PositionPnL: floatPtr(8.0),
		})
		assert.False(t, result.EntryAllowed)
		assert.False(t, result.ExitRequired)
		assert.Equal(t, EventRiskCritical, result.RiskLevel)
		assert.Equal(t, "Earnings in 2 day(s), unrealized gain 8.0% permits holding through", result.Reason)
	})

	t.Run("gain below the threshold forces exit", func(t *testing.T) {
		result := gate.Evaluate(EventInput{
			Symbol: "7203", Date: quietDay, EarningsDate: earnings, PositionPnL: floatPtr(7.9),
		})
		assert.False(t, result.EntryAllowed)
		assert.True(t, result.ExitRequired)
		assert.Equal(t, EventRiskCritical, result.RiskLevel)
		assert.Equal(t, "Earnings in 2 day(s), unrealized gain 7.9% below 8.0%, exit recommended", result.Reason)
	})

	t.Run("loss forces exit", func(t *testing.T) {
		result := gate.Evaluate(EventInput{
			Symbol: "7203", Date: quietDay, EarningsDate: earnings, PositionPnL: floatPtr(-3.0),
		})
		assert.True(t, result.ExitRequired)
		assert.Equal(t, "Earnings in 2 day(s), unrealized gain -3.0% below 8.0%, exit recommended", result.Reason)
	})

	t.Run("position on the earnings day itself never exits", func(t *testing.T) {
		result := gate.Evaluate(EventInput{
			Symbol: "7203", Date: quietDay, EarningsDate: datePtr(2024, time.June, 18), PositionPnL: floatPtr(12.5),
		})
		assert.False(t, result.EntryAllowed)
		assert.False(t, result.ExitRequired)
		assert.Equal(t, "Earnings in 0 day(s), inside exclusion window", result.Reason)
	})
}

func TestDividendExclusion(t *testing.T) {
	gate := NewEventGate(DefaultEventConfig())

	t.Run("eve of the ex-date blocks entry", func(t *testing.T) {
		result := gate.Evaluate(EventInput{
			Symbol: "8306", Date: quietDay, ExDividendDate: datePtr(2024, time.June, 19),
		})
		assert.False(t, result.EntryAllowed)
		assert.False(t, result.ExitRequired)
		assert.Equal(t, EventRiskMedium, result.RiskLevel)
		assert.Equal(t, "Ex-dividend in 1 day(s), last day with dividend rights", result.Reason)
	})

	t.Run("the ex-date itself is clear", func(t *testing.T) {
		result := gate.Evaluate(EventInput{
			Symbol: "8306", Date: quietDay, ExDividendDate: datePtr(2024, time.June, 18),
		})
		assert.True(t, result.EntryAllowed)
		assert.Equal(t, EventRiskNone, result.RiskLevel)
		require.NotNil(t, result.NearestEvent)
		assert.Equal(t, EventDividend, result.NearestEvent.Type)
		assert.Equal(t, 0, result.NearestEvent.DaysUntil)
	})

	t.Run("two days out is clear", func(t *testing.T) {
		result := gate.Evaluate(EventInput{
			Symbol: "8306", Date: quietDay, ExDividendDate: datePtr(2024, time.June, 20),
		})
		assert.True(t, result.EntryAllowed)
		assert.Equal(t, EventRiskNone, result.RiskLevel)
	})
}

func TestNextSettlementDate(t *testing.T) {
	gate := NewEventGate(DefaultEventConfig())

	tests := []struct {
		from time.Time
		want time.Time
	}{
		{date(2024, time.January, 1), date(2024, time.January, 12)},
		{date(2024, time.January, 12), date(2024, time.January, 12)},
		{date(2024, time.March, 1), date(2024, time.March, 8)},
		{date(2024, time.March, 9), date(2024, time.April, 12)},
		{date(2024, time.December, 20), date(2025, time.January, 10)},
	}
	for _, tc := range tests {
		got := gate.NextSettlementDate(tc.from)
		assert.True(t, got.Equal(tc.want), "from %s: got %s want %s",
			tc.from.Format("2006-01-02"), got.Format("2006-01-02"), tc.want.Format("2006-01-02"))
	}
}

func TestSettlementDay(t *testing.T) {
	gate := NewEventGate(DefaultEventConfig())

	result := gate.Evaluate(EventInput{Symbol: "^N225", Date: date(2024, time.June, 14)})

	assert.True(t, result.EntryAllowed)
	assert.False(t, result.ExitRequired)
	assert.Equal(t, EventRiskLow, result.RiskLevel)
	assert.Equal(t, "SQ settlement day, caution around the open", result.Reason)
	require.NotNil(t, result.NearestEvent)
	assert.Equal(t, EventSettlement, result.NearestEvent.Type)
	assert.Equal(t, 0, result.NearestEvent.DaysUntil)
}

func TestEvaluateCombinesRules(t *testing.T) {
	gate := NewEventGate(DefaultEventConfig())

	// day before the June SQ: earnings, ex-dividend and settlement all land
	// on 2024-06-14
	checkDate := date(2024, time.June, 13)
	result := gate.Evaluate(EventInput{
		Symbol:         "6758",
		Date:           checkDate,
		EarningsDate:   datePtr(2024, time.June, 14),
		ExDividendDate: datePtr(2024, time.June, 14),
	})

	assert.False(t, result.EntryAllowed)
	assert.False(t, result.ExitRequired)
	assert.Equal(t, EventRiskCritical, result.RiskLevel)
	assert.Equal(t, "Earnings in 1 day(s), inside exclusion window", result.Reason)

	// equal distance keeps evaluation order: earnings first
	require.NotNil(t, result.NearestEvent)
	assert.Equal(t, EventEarnings, result.NearestEvent.Type)
	assert.Equal(t, 1, result.NearestEvent.DaysUntil)
}

func TestEvaluateHighestRiskSuppliesReason(t *testing.T) {
	gate := NewEventGate(DefaultEventConfig())

	// earnings three days out outranks the dividend eve, but the dividend is
	// the nearer event
	result := gate.Evaluate(EventInput{
		Symbol:         "9984",
		Date:           quietDay,
		EarningsDate:   datePtr(2024, time.June, 21),
		ExDividendDate: datePtr(2024, time.June, 19),
	})

	assert.False(t, result.EntryAllowed)
	assert.Equal(t, EventRiskHigh, result.RiskLevel)
	assert.Equal(t, "Earnings approaching in 3 day(s)", result.Reason)
	require.NotNil(t, result.NearestEvent)
	assert.Equal(t, EventDividend, result.NearestEvent.Type)
	assert.Equal(t, 1, result.NearestEvent.DaysUntil)
}

func TestEvaluateExitPropagates(t *testing.T) {
	gate := NewEventGate(DefaultEventConfig())

	result := gate.Evaluate(EventInput{
		Symbol:       "6861",
		Date:         quietDay,
		EarningsDate: datePtr(2024, time.June, 19),
		PositionPnL:  floatPtr(2.0),
	})

	assert.False(t, result.EntryAllowed)
	assert.True(t, result.ExitRequired)
	assert.Equal(t, EventRiskCritical, result.RiskLevel)
}

func TestEvaluateNoEvents(t *testing.T) {
	gate := NewEventGate(DefaultEventConfig())

	result := gate.Evaluate(EventInput{Symbol: "7203", Date: quietDay})

	assert.True(t, result.EntryAllowed)
	assert.False(t, result.ExitRequired)
	assert.Equal(t, EventRiskNone, result.RiskLevel)
	assert.Equal(t, "No upcoming events", result.Reason)

	// the monthly settlement is always on the calendar
	require.NotNil(t, result.NearestEvent)
	assert.Equal(t, EventSettlement, result.NearestEvent.Type)
	assert.True(t, result.NearestEvent.Date.Equal(date(2024, time.July, 12)))
}

func TestEvaluateNormalizesTimeOfDay(t *testing.T) {
	gate := NewEventGate(DefaultEventConfig())
	jst := time.FixedZone("JST", 9*60*60)

	result := gate.Evaluate(EventInput{
		Symbol:       "7203",
		Date:         time.Date(2024, time.June, 18, 14, 30, 0, 0, jst),
		EarningsDate: datePtr(2024, time.June, 20),
	})

	assert.False(t, result.EntryAllowed)
	assert.Equal(t, "Earnings in 2 day(s), inside exclusion window", result.Reason)
}
