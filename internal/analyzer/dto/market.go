package dto

import (
	"time"

	"golang-swing-market/internal/market"
)

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MarketRegimeResponse is the API shape of one regime classification.
type MarketRegimeResponse struct {
	AnalysisDate time.Time                 `json:"analysis_date"`
	Trend        market.TrendAnalysis      `json:"trend_analysis"`
	Volatility   market.VolatilityAnalysis `json:"volatility_analysis"`
	Sentiment    market.SentimentAnalysis  `json:"sentiment_analysis"`
	Environment  market.EnvironmentCode    `json:"environment_code"`
	Risk         market.RiskAssessment     `json:"risk_assessment"`
	Breadth      market.BreadthSnapshot    `json:"market_breadth"`
	IsTradeable  bool                      `json:"is_tradeable"`
}

// NewMarketRegimeResponse maps a classification to its API shape.
func NewMarketRegimeResponse(r market.MarketRegime) MarketRegimeResponse {
	return MarketRegimeResponse{
		AnalysisDate: r.Date,
		Trend:        r.Trend,
		Volatility:   r.Volatility,
		Sentiment:    r.Sentiment,
		Environment:  r.Environment,
		Risk:         r.Risk,
		Breadth:      r.Breadth,
		IsTradeable:  r.IsTradeable(),
	}
}

// EventCheckResponse is the API shape of one event gate decision.
type EventCheckResponse struct {
	Symbol       string                `json:"symbol"`
	CheckDate    time.Time             `json:"check_date"`
	EntryAllowed bool                  `json:"entry_allowed"`
	ExitRequired bool                  `json:"exit_required"`
	RiskLevel    market.EventRiskLevel `json:"risk_level"`
	NearestEvent *market.UpcomingEvent `json:"nearest_event,omitempty"`
	Reason       string                `json:"reason"`
}

// AnalyzeRegimeRequest triggers a synchronous regime classification.
// AnalysisDate is "2006-01-02"; empty means today.
type AnalyzeRegimeRequest struct {
	AnalysisDate string `json:"analysis_date"`
	Notify       bool   `json:"notify"`
}

// CollectionRequest triggers a price collection run via the task stream.
type CollectionRequest struct {
	Symbols    []string `json:"symbols"`
	WindowDays int      `json:"window_days"`
}

// EventSyncRequest triggers an event schedule sync via the task stream.
type EventSyncRequest struct {
	Symbols []string `json:"symbols"`
}

// CollectionQueuedResponse acknowledges an enqueued collection task.
type CollectionQueuedResponse struct {
	Stream   string    `json:"stream"`
	QueuedAt time.Time `json:"queued_at"`
}

// CollectionResult is the per-symbol outcome of one collection run.
type CollectionResult struct {
	SavedRows map[string]int    `json:"saved_rows"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// SyncResult is the per-symbol outcome of one event schedule sync run.
type SyncResult struct {
	EarningsUpserted map[string]int    `json:"earnings_upserted"`
	DividendUpserted map[string]int    `json:"dividend_upserted"`
	Errors           map[string]string `json:"errors,omitempty"`
}
