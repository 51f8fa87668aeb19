package service

import (
	"context"
	"encoding/json"
	"time"

	"golang-swing-market/internal/analyzer/config"
	"golang-swing-market/internal/analyzer/repository"
	"golang-swing-market/internal/entity"
	"golang-swing-market/internal/market"
	"golang-swing-market/pkg/logger"
	"golang-swing-market/pkg/telegram"
	"golang-swing-market/pkg/utils"

	"gorm.io/datatypes"
)

const (
	defaultIndexHistoryDays  = 60
	defaultUniverseCloseDays = 26
)

// MarketRegimeService runs the regime classification over stored index bars
// and universe closes, persists the snapshot, and notifies on changes.
type MarketRegimeService interface {
	RunAnalysis(ctx context.Context, asOf time.Time, notify bool) (*market.MarketRegime, error)
	GetLatest(ctx context.Context) (*entity.MarketRegimeSnapshot, error)
}

// NewMarketRegimeService creates a new MarketRegimeService.
func NewMarketRegimeService(
	cfg *config.Config,
	log *logger.Logger,
	classifier market.RegimeClassifier,
	tickerRepo repository.TickerRepository,
	priceRepo repository.DailyPriceRepository,
	universeRepo repository.UniverseRepository,
	regimeRepo repository.MarketRegimeRepository,
	telegramBot telegram.Notifier,
) MarketRegimeService {
	return &marketRegimeService{
		cfg:          cfg,
		log:          log,
		classifier:   classifier,
		tickerRepo:   tickerRepo,
		priceRepo:    priceRepo,
		universeRepo: universeRepo,
		regimeRepo:   regimeRepo,
		telegramBot:  telegramBot,
	}
}

type marketRegimeService struct {
	cfg          *config.Config
	log          *logger.Logger
	classifier   market.RegimeClassifier
	tickerRepo   repository.TickerRepository
	priceRepo    repository.DailyPriceRepository
	universeRepo repository.UniverseRepository
	regimeRepo   repository.MarketRegimeRepository
	telegramBot  telegram.Notifier
}

func (s *marketRegimeService) RunAnalysis(ctx context.Context, asOf time.Time, notify bool) (*market.MarketRegime, error) {
	if asOf.IsZero() {
		asOf = utils.TimeNowJST()
	}

	historyDays := s.cfg.Market.IndexHistoryDays
	if historyDays <= 0 {
		historyDays = defaultIndexHistoryDays
	}
	closeDays := s.cfg.Market.UniverseCloseDays
	if closeDays <= 0 {
		closeDays = defaultUniverseCloseDays
	}

	primaryBars, err := s.loadIndexBars(ctx, s.cfg.Market.PrimaryIndexSymbol, historyDays)
	if err != nil {
		return nil, err
	}
	secondaryBars, err := s.loadIndexBars(ctx, s.cfg.Market.SecondaryIndexSymbol, historyDays)
	if err != nil {
		return nil, err
	}

	universeCloses, err := s.universeRepo.GetUniverseCloses(ctx, s.cfg.Market.UniverseName, closeDays)
	if err != nil {
		return nil, err
	}

	regime := s.classifier.Analyze(primaryBars, secondaryBars, universeCloses, asOf)

	previous, err := s.regimeRepo.GetLatest(ctx)
	if err != nil {
		s.log.Warn("Failed to load previous regime snapshot", logger.ErrorField(err))
		previous = nil
	}

	snapshot, err := toRegimeSnapshot(regime)
	if err != nil {
		return nil, err
	}
	if err := s.regimeRepo.Save(ctx, snapshot); err != nil {
		return nil, err
	}

	s.log.Info("Market regime classified",
		logger.StringField("environment", string(regime.Environment)),
		logger.IntField("risk_score", regime.Risk.Score),
		logger.Field("tradeable", regime.IsTradeable()),
	)

	if notify {
		s.notifyOnChange(previous, regime)
	}

	return &regime, nil
}

func (s *marketRegimeService) GetLatest(ctx context.Context) (*entity.MarketRegimeSnapshot, error) {
	return s.regimeRepo.GetLatest(ctx)
}

func (s *marketRegimeService) loadIndexBars(ctx context.Context, symbol string, days int) (*market.PriceTable, error) {
	ticker, err := s.tickerRepo.FindBySymbol(ctx, symbol)
	if err != nil {
		s.log.Error("Index ticker not found", logger.ErrorField(err), logger.StringField("symbol", symbol))
		return nil, err
	}
	return s.priceRepo.GetLatest(ctx, ticker.ID, days)
}

// notifyOnChange sends a Telegram update when the environment code or the
// tradeable flag differs from the previous snapshot. The first snapshot ever
// is always announced.
func (s *marketRegimeService) notifyOnChange(previous *entity.MarketRegimeSnapshot, regime market.MarketRegime) {
	if s.telegramBot == nil {
		return
	}

	previousEnvironment := ""
	if previous != nil {
		previousEnvironment = previous.EnvironmentCode
		sameEnvironment := previous.EnvironmentCode == string(regime.Environment)
		sameTradeable := previous.IsTradeable == regime.IsTradeable()
		if sameEnvironment && sameTradeable {
			return
		}
	}

	message := telegram.FormatRegimeChangeMessage(previousEnvironment, regime)
	if err := s.telegramBot.SendMessage(message); err != nil {
		s.log.Error("Failed to send regime change notification", logger.ErrorField(err))
	}
}

func toRegimeSnapshot(regime market.MarketRegime) (*entity.MarketRegimeSnapshot, error) {
	breadthJSON, err := json.Marshal(regime.Breadth)
	if err != nil {
		return nil, err
	}
	return &entity.MarketRegimeSnapshot{
		AnalysisDate:     utils.TruncateToDate(regime.Date),
		TrendType:        string(regime.Trend.Type),
		TrendDirection:   string(regime.Trend.Direction),
		ADXValue:         regime.Trend.ADXValue,
		VolatilityLevel:  string(regime.Volatility.Level),
		ATRPercent:       regime.Volatility.ATRPercent,
		BandWidthPercent: regime.Volatility.BandWidthPercent,
		Sentiment:        string(regime.Sentiment.Sentiment),
		EnvironmentCode:  string(regime.Environment),
		RiskScore:        regime.Risk.Score,
		RiskLevel:        string(regime.Risk.Level),
		IsTradeable:      regime.IsTradeable(),
		Breadth:          datatypes.JSON(breadthJSON),
	}, nil
}
