package service

import (
	"context"
	"fmt"
	"time"

	"golang-swing-market/internal/analyzer/config"
	"golang-swing-market/internal/analyzer/dto"
	"golang-swing-market/internal/analyzer/repository"
	"golang-swing-market/internal/entity"
	"golang-swing-market/pkg/logger"
	"golang-swing-market/pkg/utils"
)

// EventSyncService refreshes earnings and dividend schedules from the Yahoo
// Finance calendar, with the IR calendar page as a second source. Scraped
// announcement dates count as confirmed; Yahoo dates stay estimates.
type EventSyncService interface {
	SyncSymbols(ctx context.Context, symbols []string) (*dto.SyncResult, error)
	SyncUniverse(ctx context.Context) (*dto.SyncResult, error)
}

// NewEventSyncService creates a new EventSyncService.
func NewEventSyncService(
	cfg *config.Config,
	log *logger.Logger,
	yahooFinance repository.YahooFinanceRepository,
	calendarRepo repository.EarningsCalendarRepository,
	tickerRepo repository.TickerRepository,
	earningsRepo repository.EarningsScheduleRepository,
	dividendRepo repository.DividendScheduleRepository,
	universeRepo repository.UniverseRepository,
) EventSyncService {
	return &eventSyncService{
		cfg:          cfg,
		log:          log,
		yahooFinance: yahooFinance,
		calendarRepo: calendarRepo,
		tickerRepo:   tickerRepo,
		earningsRepo: earningsRepo,
		dividendRepo: dividendRepo,
		universeRepo: universeRepo,
	}
}

type eventSyncService struct {
	cfg          *config.Config
	log          *logger.Logger
	yahooFinance repository.YahooFinanceRepository
	calendarRepo repository.EarningsCalendarRepository
	tickerRepo   repository.TickerRepository
	earningsRepo repository.EarningsScheduleRepository
	dividendRepo repository.DividendScheduleRepository
	universeRepo repository.UniverseRepository
}

func (s *eventSyncService) SyncSymbols(ctx context.Context, symbols []string) (*dto.SyncResult, error) {
	result := &dto.SyncResult{
		EarningsUpserted: make(map[string]int),
		DividendUpserted: make(map[string]int),
		Errors:           make(map[string]string),
	}

	for _, symbol := range symbols {
		if !utils.ShouldContinue(ctx, s.log) {
			break
		}
		earnings, dividends, err := s.syncOne(ctx, symbol)
		if err != nil {
			result.Errors[symbol] = err.Error()
			continue
		}
		result.EarningsUpserted[symbol] = earnings
		result.DividendUpserted[symbol] = dividends
	}

	s.log.Info("Event schedule sync finished",
		logger.IntField("symbols", len(symbols)),
		logger.IntField("failed", len(result.Errors)),
	)
	return result, nil
}

func (s *eventSyncService) SyncUniverse(ctx context.Context) (*dto.SyncResult, error) {
	tickers, err := s.universeRepo.GetMemberTickers(ctx, s.cfg.Market.UniverseName)
	if err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(tickers))
	for _, t := range tickers {
		symbols = append(symbols, t.Symbol)
	}
	return s.SyncSymbols(ctx, symbols)
}

func (s *eventSyncService) syncOne(ctx context.Context, symbol string) (int, int, error) {
	ticker, err := s.tickerRepo.GetOrCreate(ctx, symbol, "", "", false)
	if err != nil {
		s.log.Error("Failed to resolve ticker", logger.ErrorField(err), logger.StringField("symbol", symbol))
		return 0, 0, err
	}

	retrievedAt := utils.TimeNowJST()
	earningsCount := 0
	dividendCount := 0

	events, yahooErr := s.yahooFinance.GetCalendarEvents(ctx, symbol)
	if yahooErr != nil {
		s.log.Warn("Yahoo Finance calendar lookup failed",
			logger.ErrorField(yahooErr), logger.StringField("symbol", symbol))
	} else {
		if events.NextEarningsDate != nil {
			if err := s.upsertEarnings(ctx, ticker.ID, *events.NextEarningsDate, false, retrievedAt); err != nil {
				return 0, 0, err
			}
			earningsCount++
		}
		if events.ExDividendDate != nil {
			schedule := &entity.DividendSchedule{
				TickerID:       ticker.ID,
				ExDividendDate: *events.ExDividendDate,
				RetrievedAt:    retrievedAt,
			}
			if err := s.dividendRepo.Upsert(ctx, schedule); err != nil {
				return 0, 0, err
			}
			dividendCount++
		}
	}

	scraped, scrapeErr := s.calendarRepo.GetAnnouncementDates(ctx, symbol)
	if scrapeErr != nil {
		s.log.Warn("IR calendar scrape failed",
			logger.ErrorField(scrapeErr), logger.StringField("symbol", symbol))
	} else {
		for _, date := range scraped {
			if err := s.upsertEarnings(ctx, ticker.ID, date, true, retrievedAt); err != nil {
				return 0, 0, err
			}
			earningsCount++
		}
	}

	if yahooErr != nil && earningsCount == 0 && dividendCount == 0 {
		if scrapeErr != nil {
			return 0, 0, fmt.Errorf("both calendar sources failed: %v; %v", yahooErr, scrapeErr)
		}
		return 0, 0, fmt.Errorf("calendar lookup failed: %w", yahooErr)
	}

	s.log.Debug("Synced event schedules",
		logger.StringField("symbol", symbol),
		logger.IntField("earnings", earningsCount),
		logger.IntField("dividends", dividendCount),
	)
	return earningsCount, dividendCount, nil
}

func (s *eventSyncService) upsertEarnings(ctx context.Context, tickerID uint, date time.Time, confirmed bool, retrievedAt time.Time) error {
	quarter, fiscalYear := utils.EstimateFiscalQuarter(date)
	schedule := &entity.EarningsSchedule{
		TickerID:         tickerID,
		AnnouncementDate: utils.TruncateToDate(date),
		FiscalQuarter:    quarter,
		FiscalYear:       fiscalYear,
		IsConfirmed:      confirmed,
		RetrievedAt:      retrievedAt,
	}
	return s.earningsRepo.Upsert(ctx, schedule)
}
