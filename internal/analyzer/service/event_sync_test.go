package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-swing-market/internal/analyzer/config"
	"golang-swing-market/internal/analyzer/dto"
	"golang-swing-market/internal/entity"
)

type fakeEarningsRepo struct {
	mu          sync.Mutex
	upserts     []entity.EarningsSchedule
	upsertErr   error
	next        *entity.EarningsSchedule
	nextErr     error
	gotTickerID uint
	gotFrom     time.Time
}

func (f *fakeEarningsRepo) Upsert(_ context.Context, schedule *entity.EarningsSchedule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, *schedule)
	return nil
}

func (f *fakeEarningsRepo) NextAnnouncement(_ context.Context, tickerID uint, onOrAfter time.Time) (*entity.EarningsSchedule, error) {
	f.mu.Lock()
	f.gotTickerID = tickerID
	f.gotFrom = onOrAfter
	f.mu.Unlock()
	if f.nextErr != nil {
		return nil, f.nextErr
	}
	return f.next, nil
}

func (f *fakeEarningsRepo) FindByTicker(context.Context, uint, int) ([]entity.EarningsSchedule, error) {
	return nil, nil
}

type fakeDividendRepo struct {
	mu      sync.Mutex
	upserts []entity.DividendSchedule
	next    *entity.DividendSchedule
	nextErr error
}

func (f *fakeDividendRepo) Upsert(_ context.Context, schedule *entity.DividendSchedule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, *schedule)
	return nil
}

func (f *fakeDividendRepo) NextExDate(context.Context, uint, time.Time) (*entity.DividendSchedule, error) {
	if f.nextErr != nil {
		return nil, f.nextErr
	}
	return f.next, nil
}

type fakeCalendarRepo struct {
	dates map[string][]time.Time
	errs  map[string]error
}

func (f *fakeCalendarRepo) GetAnnouncementDates(_ context.Context, symbol string) ([]time.Time, error) {
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	return f.dates[symbol], nil
}

type eventSyncFixture struct {
	svc       EventSyncService
	tickers   *fakeTickerRepo
	yahoo     *fakeYahooRepo
	calendar  *fakeCalendarRepo
	earnings  *fakeEarningsRepo
	dividends *fakeDividendRepo
}

func newEventSyncFixture(t *testing.T, universe *fakeUniverseRepo) *eventSyncFixture {
	t.Helper()
	cfg := &config.Config{}
	cfg.Market.UniverseName = "default"
	f := &eventSyncFixture{
		tickers:   newFakeTickerRepo(),
		yahoo:     newFakeYahooRepo(),
		calendar:  &fakeCalendarRepo{dates: make(map[string][]time.Time), errs: make(map[string]error)},
		earnings:  &fakeEarningsRepo{},
		dividends: &fakeDividendRepo{},
	}
	f.svc = NewEventSyncService(cfg, testLogger(t), f.yahoo, f.calendar, f.tickers,
		f.earnings, f.dividends, universe)
	return f
}

func TestSyncSymbolsUpsertsYahooEstimates(t *testing.T) {
	f := newEventSyncFixture(t, &fakeUniverseRepo{})
	earningsDate := time.Date(2025, 5, 10, 15, 0, 0, 0, time.UTC)
	exDate := time.Date(2025, 3, 28, 0, 0, 0, 0, time.UTC)
	f.yahoo.events["7203.T"] = &dto.CalendarEvents{
		NextEarningsDate: &earningsDate,
		ExDividendDate:   &exDate,
	}

	result, err := f.svc.SyncSymbols(context.Background(), []string{"7203.T"})
	require.NoError(t, err)

	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.EarningsUpserted["7203.T"])
	assert.Equal(t, 1, result.DividendUpserted["7203.T"])

	require.Len(t, f.earnings.upserts, 1)
	saved := f.earnings.upserts[0]
	assert.False(t, saved.IsConfirmed, "Yahoo dates are estimates")
	assert.Equal(t, "Q4", saved.FiscalQuarter)
	assert.Equal(t, 2025, saved.FiscalYear)
	assert.Equal(t, time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC), saved.AnnouncementDate,
		"announcement date should be truncated to midnight")

	require.Len(t, f.dividends.upserts, 1)
	assert.Equal(t, exDate, f.dividends.upserts[0].ExDividendDate)
}

func TestSyncSymbolsScrapedDatesAreConfirmed(t *testing.T) {
	f := newEventSyncFixture(t, &fakeUniverseRepo{})
	f.calendar.dates["7203.T"] = []time.Time{
		time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC),
	}

	result, err := f.svc.SyncSymbols(context.Background(), []string{"7203.T"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.EarningsUpserted["7203.T"])
	require.Len(t, f.earnings.upserts, 2)
	for _, saved := range f.earnings.upserts {
		assert.True(t, saved.IsConfirmed, "scraped dates count as confirmed")
	}
	assert.Equal(t, "Q1", f.earnings.upserts[0].FiscalQuarter)
	assert.Equal(t, 2026, f.earnings.upserts[0].FiscalYear)
	assert.Equal(t, "Q2", f.earnings.upserts[1].FiscalQuarter)
}

func TestSyncSymbolsFailsWhenBothSourcesFail(t *testing.T) {
	f := newEventSyncFixture(t, &fakeUniverseRepo{})
	f.yahoo.eventsErr["7203.T"] = errors.New("quote summary 404")
	f.calendar.errs["7203.T"] = errors.New("scrape blocked")

	result, err := f.svc.SyncSymbols(context.Background(), []string{"7203.T"})
	require.NoError(t, err)

	assert.Contains(t, result.Errors["7203.T"], "both calendar sources failed")
	assert.Empty(t, f.earnings.upserts)
}

func TestSyncSymbolsFailsWhenYahooFailsAndNothingScraped(t *testing.T) {
	f := newEventSyncFixture(t, &fakeUniverseRepo{})
	f.yahoo.eventsErr["7203.T"] = errors.New("quote summary 404")

	result, err := f.svc.SyncSymbols(context.Background(), []string{"7203.T"})
	require.NoError(t, err)

	assert.Contains(t, result.Errors["7203.T"], "calendar lookup failed")
}

func TestSyncSymbolsScrapeBacksUpYahooFailure(t *testing.T) {
	f := newEventSyncFixture(t, &fakeUniverseRepo{})
	f.yahoo.eventsErr["7203.T"] = errors.New("quote summary 404")
	f.calendar.dates["7203.T"] = []time.Time{time.Date(2025, 2, 7, 0, 0, 0, 0, time.UTC)}

	result, err := f.svc.SyncSymbols(context.Background(), []string{"7203.T"})
	require.NoError(t, err)

	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.EarningsUpserted["7203.T"])
	require.Len(t, f.earnings.upserts, 1)
	assert.True(t, f.earnings.upserts[0].IsConfirmed)
	assert.Equal(t, "Q3", f.earnings.upserts[0].FiscalQuarter)
	assert.Equal(t, 2025, f.earnings.upserts[0].FiscalYear)
}

func TestSyncSymbolsPerSymbolFailureDoesNotAbortRun(t *testing.T) {
	f := newEventSyncFixture(t, &fakeUniverseRepo{})
	f.yahoo.eventsErr["9984.T"] = errors.New("quote summary 404")
	f.calendar.errs["9984.T"] = errors.New("scrape blocked")
	date := time.Date(2025, 7, 30, 0, 0, 0, 0, time.UTC)
	f.yahoo.events["7203.T"] = &dto.CalendarEvents{NextEarningsDate: &date}

	result, err := f.svc.SyncSymbols(context.Background(), []string{"9984.T", "7203.T"})
	require.NoError(t, err)

	assert.Contains(t, result.Errors, "9984.T")
	assert.Equal(t, 1, result.EarningsUpserted["7203.T"])
}

func TestSyncUniverseSyncsEveryMember(t *testing.T) {
	universe := &fakeUniverseRepo{
		members: []entity.Ticker{
			{ID: 1, Symbol: "7203.T"},
			{ID: 2, Symbol: "6758.T"},
		},
	}
	f := newEventSyncFixture(t, universe)
	date := time.Date(2025, 10, 30, 0, 0, 0, 0, time.UTC)
	f.yahoo.events["7203.T"] = &dto.CalendarEvents{NextEarningsDate: &date}
	f.yahoo.events["6758.T"] = &dto.CalendarEvents{NextEarningsDate: &date}

	result, err := f.svc.SyncUniverse(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.EarningsUpserted, 2)
	assert.Empty(t, result.Errors)
}
