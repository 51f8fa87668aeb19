package service

import (
	"context"
	"time"

	"golang-swing-market/internal/analyzer/config"
	"golang-swing-market/internal/analyzer/dto"
	"golang-swing-market/internal/analyzer/repository"
	"golang-swing-market/internal/market"
	"golang-swing-market/pkg/logger"
	"golang-swing-market/pkg/utils"
)

// EventGateService answers entry/exit checks against the stored earnings and
// dividend schedules.
type EventGateService interface {
	CheckSymbol(ctx context.Context, symbol string, checkDate time.Time, positionPnL *float64) (*dto.EventCheckResponse, error)
}

// NewEventGateService creates a new EventGateService.
func NewEventGateService(
	cfg *config.Config,
	log *logger.Logger,
	gate market.EventGate,
	tickerRepo repository.TickerRepository,
	earningsRepo repository.EarningsScheduleRepository,
	dividendRepo repository.DividendScheduleRepository,
) EventGateService {
	return &eventGateService{
		cfg:          cfg,
		log:          log,
		gate:         gate,
		tickerRepo:   tickerRepo,
		earningsRepo: earningsRepo,
		dividendRepo: dividendRepo,
	}
}

type eventGateService struct {
	cfg          *config.Config
	log          *logger.Logger
	gate         market.EventGate
	tickerRepo   repository.TickerRepository
	earningsRepo repository.EarningsScheduleRepository
	dividendRepo repository.DividendScheduleRepository
}

func (s *eventGateService) CheckSymbol(ctx context.Context, symbol string, checkDate time.Time, positionPnL *float64) (*dto.EventCheckResponse, error) {
	if checkDate.IsZero() {
		checkDate = utils.TimeNowJST()
	}

	ticker, err := s.tickerRepo.FindBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}

	input := market.EventInput{
		Symbol:      symbol,
		Date:        checkDate,
		PositionPnL: positionPnL,
	}

	// A just-passed announcement still blocks entries, so the lookup reaches
	// back over the after-window.
	earningsFrom := utils.TruncateToDate(checkDate).AddDate(0, 0, -s.cfg.EventCalendar.EarningsExcludeAfter)
	earnings, err := s.earningsRepo.NextAnnouncement(ctx, ticker.ID, earningsFrom)
	if err != nil {
		return nil, err
	}
	if earnings != nil {
		input.EarningsDate = &earnings.AnnouncementDate
	}

	dividend, err := s.dividendRepo.NextExDate(ctx, ticker.ID, utils.TruncateToDate(checkDate))
	if err != nil {
		return nil, err
	}
	if dividend != nil {
		input.ExDividendDate = &dividend.ExDividendDate
	}

	result := s.gate.Evaluate(input)

	s.log.Debug("Event gate evaluated",
		logger.StringField("symbol", symbol),
		logger.Field("entry_allowed", result.EntryAllowed),
		logger.Field("exit_required", result.ExitRequired),
		logger.StringField("risk_level", string(result.RiskLevel)),
	)

	return &dto.EventCheckResponse{
		Symbol:       result.Symbol,
		CheckDate:    utils.TruncateToDate(checkDate),
		EntryAllowed: result.EntryAllowed,
		ExitRequired: result.ExitRequired,
		RiskLevel:    result.RiskLevel,
		NearestEvent: result.NearestEvent,
		Reason:       result.Reason,
	}, nil
}
