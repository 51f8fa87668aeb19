package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"golang-swing-market/internal/analyzer/config"
	"golang-swing-market/internal/entity"
	"golang-swing-market/internal/market"
)

type eventGateFixture struct {
	tickers   *fakeTickerRepo
	earnings  *fakeEarningsRepo
	dividends *fakeDividendRepo
	svc       EventGateService
}

func newEventGateFixture(t *testing.T) *eventGateFixture {
	t.Helper()
	cfg := &config.Config{EventCalendar: market.DefaultEventConfig()}
	tickers := newFakeTickerRepo()
	earnings := &fakeEarningsRepo{}
	dividends := &fakeDividendRepo{}
	svc := NewEventGateService(cfg, testLogger(t), market.NewEventGate(cfg.EventCalendar), tickers, earnings, dividends)
	return &eventGateFixture{tickers: tickers, earnings: earnings, dividends: dividends, svc: svc}
}

func (f *eventGateFixture) seedTicker(symbol string, id uint) {
	f.tickers.tickers[symbol] = &entity.Ticker{ID: id, Symbol: symbol, IsActive: true}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestCheckSymbolCleanDateAllowsEntry(t *testing.T) {
	f := newEventGateFixture(t)
	f.seedTicker("7203.T", 7)

	res, err := f.svc.CheckSymbol(context.Background(), "7203.T", day(2025, time.August, 12), nil)
	require.NoError(t, err)

	assert.Equal(t, "7203.T", res.Symbol)
	assert.Equal(t, day(2025, time.August, 12), res.CheckDate)
	assert.True(t, res.EntryAllowed)
	assert.False(t, res.ExitRequired)
	assert.Equal(t, market.EventRiskNone, res.RiskLevel)
	assert.Equal(t, "No upcoming events", res.Reason)

	// Only the monthly settlement remains on the calendar: 2025-09-12.
	require.NotNil(t, res.NearestEvent)
	assert.Equal(t, market.EventSettlement, res.NearestEvent.Type)
	assert.Equal(t, day(2025, time.September, 12), res.NearestEvent.Date)
	assert.Equal(t, 31, res.NearestEvent.DaysUntil)
}

func TestCheckSymbolBlocksEntryInsideEarningsWindow(t *testing.T) {
	f := newEventGateFixture(t)
	f.seedTicker("7203.T", 7)
	f.earnings.next = &entity.EarningsSchedule{TickerID: 7, AnnouncementDate: day(2025, time.July, 30)}

	res, err := f.svc.CheckSymbol(context.Background(), "7203.T", day(2025, time.July, 28), nil)
	require.NoError(t, err)

	assert.False(t, res.EntryAllowed)
	assert.False(t, res.ExitRequired)
	assert.Equal(t, market.EventRiskCritical, res.RiskLevel)
	assert.Equal(t, "Earnings in 2 day(s), inside exclusion window", res.Reason)

	require.NotNil(t, res.NearestEvent)
	assert.Equal(t, market.EventEarnings, res.NearestEvent.Type)
	assert.Equal(t, 2, res.NearestEvent.DaysUntil)
}

func TestCheckSymbolLooksBackOverJustPassedEarnings(t *testing.T) {
	f := newEventGateFixture(t)
	f.seedTicker("7203.T", 7)
	f.earnings.next = &entity.EarningsSchedule{TickerID: 7, AnnouncementDate: day(2025, time.July, 30)}

	res, err := f.svc.CheckSymbol(context.Background(), "7203.T", day(2025, time.July, 31), nil)
	require.NoError(t, err)

	// The announcement lookup reaches one day back so yesterday's earnings
	// still block the entry.
	assert.Equal(t, uint(7), f.earnings.gotTickerID)
	assert.Equal(t, day(2025, time.July, 30), f.earnings.gotFrom)
	assert.False(t, res.EntryAllowed)
	assert.Equal(t, market.EventRiskCritical, res.RiskLevel)
	assert.Equal(t, "1 day(s) after earnings, inside exclusion window", res.Reason)

	// A passed announcement is no longer upcoming; the next SQ day is.
	require.NotNil(t, res.NearestEvent)
	assert.Equal(t, market.EventSettlement, res.NearestEvent.Type)
	assert.Equal(t, day(2025, time.August, 8), res.NearestEvent.Date)
}

func TestCheckSymbolEarningsApproachingKeepsEntryOpen(t *testing.T) {
	f := newEventGateFixture(t)
	f.seedTicker("7203.T", 7)
	f.earnings.next = &entity.EarningsSchedule{TickerID: 7, AnnouncementDate: day(2025, time.July, 30)}

	res, err := f.svc.CheckSymbol(context.Background(), "7203.T", day(2025, time.July, 25), nil)
	require.NoError(t, err)

	assert.True(t, res.EntryAllowed)
	assert.False(t, res.ExitRequired)
	assert.Equal(t, market.EventRiskHigh, res.RiskLevel)
	assert.Equal(t, "Earnings approaching in 5 day(s)", res.Reason)
}

func TestCheckSymbolExitRecommendedBelowCrossThreshold(t *testing.T) {
	f := newEventGateFixture(t)
	f.seedTicker("7203.T", 7)
	f.earnings.next = &entity.EarningsSchedule{TickerID: 7, AnnouncementDate: day(2025, time.July, 30)}
	pnl := 3.0

	res, err := f.svc.CheckSymbol(context.Background(), "7203.T", day(2025, time.July, 28), &pnl)
	require.NoError(t, err)

	assert.False(t, res.EntryAllowed)
	assert.True(t, res.ExitRequired)
	assert.Equal(t, market.EventRiskCritical, res.RiskLevel)
	assert.Equal(t, "Earnings in 2 day(s), unrealized gain 3.0% below 8.0%, exit recommended", res.Reason)
}

func TestCheckSymbolHoldsThroughEarningsOnLargeGain(t *testing.T) {
	f := newEventGateFixture(t)
	f.seedTicker("7203.T", 7)
	f.earnings.next = &entity.EarningsSchedule{TickerID: 7, AnnouncementDate: day(2025, time.July, 30)}
	pnl := 12.5

	res, err := f.svc.CheckSymbol(context.Background(), "7203.T", day(2025, time.July, 28), &pnl)
	require.NoError(t, err)

	assert.False(t, res.EntryAllowed)
	assert.False(t, res.ExitRequired)
	assert.Equal(t, "Earnings in 2 day(s), unrealized gain 12.5% permits holding through", res.Reason)
}

func TestCheckSymbolBlocksEntryOnDividendEve(t *testing.T) {
	f := newEventGateFixture(t)
	f.seedTicker("8306.T", 3)
	f.dividends.next = &entity.DividendSchedule{TickerID: 3, ExDividendDate: day(2025, time.September, 26)}

	res, err := f.svc.CheckSymbol(context.Background(), "8306.T", day(2025, time.September, 25), nil)
	require.NoError(t, err)

	assert.False(t, res.EntryAllowed)
	assert.False(t, res.ExitRequired)
	assert.Equal(t, market.EventRiskMedium, res.RiskLevel)
	assert.Equal(t, "Ex-dividend in 1 day(s), last day with dividend rights", res.Reason)

	require.NotNil(t, res.NearestEvent)
	assert.Equal(t, market.EventDividend, res.NearestEvent.Type)
	assert.Equal(t, 1, res.NearestEvent.DaysUntil)
}

func TestCheckSymbolFlagsSettlementDay(t *testing.T) {
	f := newEventGateFixture(t)
	f.seedTicker("7203.T", 7)

	// 2025-08-08 is the second Friday of August.
	res, err := f.svc.CheckSymbol(context.Background(), "7203.T", day(2025, time.August, 8), nil)
	require.NoError(t, err)

	assert.True(t, res.EntryAllowed)
	assert.Equal(t, market.EventRiskLow, res.RiskLevel)
	assert.Equal(t, "SQ settlement day, caution around the open", res.Reason)

	require.NotNil(t, res.NearestEvent)
	assert.Equal(t, market.EventSettlement, res.NearestEvent.Type)
	assert.Equal(t, 0, res.NearestEvent.DaysUntil)
}

func TestCheckSymbolUnknownSymbolFails(t *testing.T) {
	f := newEventGateFixture(t)

	res, err := f.svc.CheckSymbol(context.Background(), "9999.T", day(2025, time.August, 12), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Nil(t, res)
}
