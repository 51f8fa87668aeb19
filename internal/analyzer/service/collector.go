package service

import (
	"context"
	"sync"

	"golang-swing-market/internal/analyzer/config"
	"golang-swing-market/internal/analyzer/dto"
	"golang-swing-market/internal/analyzer/repository"
	"golang-swing-market/internal/market"
	"golang-swing-market/pkg/logger"
	"golang-swing-market/pkg/utils"
)

const defaultCollectionWindowDays = 30

// CollectorService fetches daily bars for a set of symbols, recomputes
// indicators over the fetched window with trailing history stitched in, and
// upserts the result.
type CollectorService interface {
	CollectSymbols(ctx context.Context, symbols []string, windowDays int) (*dto.CollectionResult, error)
	CollectUniverse(ctx context.Context, windowDays int) (*dto.CollectionResult, error)
}

// NewCollectorService creates a new CollectorService.
func NewCollectorService(
	cfg *config.Config,
	log *logger.Logger,
	yahooFinance repository.YahooFinanceRepository,
	tickerRepo repository.TickerRepository,
	dailyPriceRepo repository.DailyPriceRepository,
	universeRepo repository.UniverseRepository,
	stitcher market.HistoricalStitcher,
) CollectorService {
	return &collectorService{
		cfg:            cfg,
		log:            log,
		yahooFinance:   yahooFinance,
		tickerRepo:     tickerRepo,
		dailyPriceRepo: dailyPriceRepo,
		universeRepo:   universeRepo,
		stitcher:       stitcher,
	}
}

type collectorService struct {
	cfg            *config.Config
	log            *logger.Logger
	yahooFinance   repository.YahooFinanceRepository
	tickerRepo     repository.TickerRepository
	dailyPriceRepo repository.DailyPriceRepository
	universeRepo   repository.UniverseRepository
	stitcher       market.HistoricalStitcher
}

// CollectSymbols collects the given symbols concurrently. Per-symbol failures
// land in the result's error map and never abort the run.
func (s *collectorService) CollectSymbols(ctx context.Context, symbols []string, windowDays int) (*dto.CollectionResult, error) {
	if windowDays <= 0 {
		windowDays = s.cfg.Collector.WindowDays
	}
	if windowDays <= 0 {
		windowDays = defaultCollectionWindowDays
	}
	maxConcurrency := s.cfg.Collector.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}

	result := &dto.CollectionResult{
		SavedRows: make(map[string]int),
		Errors:    make(map[string]string),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	semaphore := make(chan struct{}, maxConcurrency)

	for _, symbol := range symbols {
		if !utils.ShouldContinue(ctx, s.log) {
			break
		}
		symbol := symbol
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			saved, err := s.collectOne(ctx, symbol, windowDays)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors[symbol] = err.Error()
				return
			}
			result.SavedRows[symbol] = saved
		})
	}
	wg.Wait()

	s.log.Info("Collection run finished",
		logger.IntField("symbols", len(symbols)),
		logger.IntField("window_days", windowDays),
		logger.IntField("failed", len(result.Errors)),
	)

	return result, nil
}

// CollectUniverse collects every active member of the configured universe plus
// both index symbols.
func (s *collectorService) CollectUniverse(ctx context.Context, windowDays int) (*dto.CollectionResult, error) {
	tickers, err := s.universeRepo.GetMemberTickers(ctx, s.cfg.Market.UniverseName)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(tickers)+2)
	for _, t := range tickers {
		symbols = append(symbols, t.Symbol)
	}
	if s.cfg.Market.PrimaryIndexSymbol != "" && !utils.ContainsString(symbols, s.cfg.Market.PrimaryIndexSymbol) {
		symbols = append(symbols, s.cfg.Market.PrimaryIndexSymbol)
	}
	if s.cfg.Market.SecondaryIndexSymbol != "" && !utils.ContainsString(symbols, s.cfg.Market.SecondaryIndexSymbol) {
		symbols = append(symbols, s.cfg.Market.SecondaryIndexSymbol)
	}

	return s.CollectSymbols(ctx, symbols, windowDays)
}

func (s *collectorService) collectOne(ctx context.Context, symbol string, windowDays int) (int, error) {
	isIndex := symbol == s.cfg.Market.PrimaryIndexSymbol || symbol == s.cfg.Market.SecondaryIndexSymbol
	ticker, err := s.tickerRepo.GetOrCreate(ctx, symbol, "", "", isIndex)
	if err != nil {
		s.log.Error("Failed to resolve ticker", logger.ErrorField(err), logger.StringField("symbol", symbol))
		return 0, err
	}

	window, err := s.yahooFinance.GetDailyBars(ctx, symbol, windowDays)
	if err != nil {
		s.log.Error("Failed to fetch daily bars", logger.ErrorField(err), logger.StringField("symbol", symbol))
		return 0, err
	}

	computed, err := s.stitcher.Stitch(ctx, window, ticker.ID, s.dailyPriceRepo)
	if err != nil {
		s.log.Error("Failed to stitch window", logger.ErrorField(err), logger.StringField("symbol", symbol))
		return 0, err
	}

	saved, err := s.dailyPriceRepo.SaveTable(ctx, ticker.ID, computed)
	if err != nil {
		s.log.Error("Failed to save daily prices", logger.ErrorField(err), logger.StringField("symbol", symbol))
		return 0, err
	}

	s.log.Debug("Collected symbol",
		logger.StringField("symbol", symbol),
		logger.IntField("rows", saved),
	)
	return saved, nil
}
