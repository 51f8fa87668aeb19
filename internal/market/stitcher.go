package market

import (
	"context"
	"sort"
	"time"

	"golang-swing-market/pkg/logger"
)

// PriceHistoryProvider supplies trailing history for indicator warm-up.
// Implementations return bars ascending by date, strictly before beforeDate,
// at most lookbackDays rows.
type PriceHistoryProvider interface {
	GetTrailingWindow(ctx context.Context, tickerID uint, beforeDate time.Time, lookbackDays int) (*PriceTable, error)
}

// HistoricalStitcher prepends trailing history to a freshly fetched window so
// indicator values at the start of the window are correct, then returns only
// the window's own rows.
type HistoricalStitcher interface {
	Stitch(ctx context.Context, newWindow *PriceTable, tickerID uint, provider PriceHistoryProvider) (*PriceTable, error)
}

type historicalStitcher struct {
	engine IndicatorEngine
	log    *logger.Logger
}

// NewHistoricalStitcher creates a HistoricalStitcher backed by the given
// engine.
func NewHistoricalStitcher(engine IndicatorEngine, log *logger.Logger) HistoricalStitcher {
	return &historicalStitcher{engine: engine, log: log}
}

func (s *historicalStitcher) Stitch(ctx context.Context, newWindow *PriceTable, tickerID uint, provider PriceHistoryProvider) (*PriceTable, error) {
	if newWindow.Len() == 0 {
		return newWindow, nil
	}

	windowStart := dateKey(newWindow.Dates[0])
	windowEnd := dateKey(newWindow.Dates[newWindow.Len()-1])

	lookback := s.engine.RequiredLookback()
	history, err := provider.GetTrailingWindow(ctx, tickerID, windowStart, lookback)
	if err != nil {
		return nil, err
	}

	combined := mergeWindows(history, newWindow)
	calc := s.engine.Calculate(combined)
	for group, groupErr := range calc.Failed {
		s.log.Warn("Indicator group failed during stitch",
			logger.Field("ticker_id", tickerID),
			logger.StringField("group", group),
			logger.ErrorField(groupErr),
		)
	}

	return sliceDateRange(calc.Table, windowStart, windowEnd), nil
}

// mergeWindows concatenates history and the new window sorted ascending by
// date; on a duplicate date the new window's bar wins.
func mergeWindows(history, newWindow *PriceTable) *PriceTable {
	if history.Len() == 0 {
		return newWindow
	}

	byDate := make(map[time.Time]PriceBar, history.Len()+newWindow.Len())
	for _, bar := range history.Bars() {
		byDate[dateKey(bar.Date)] = bar
	}
	for _, bar := range newWindow.Bars() {
		byDate[dateKey(bar.Date)] = bar
	}

	bars := make([]PriceBar, 0, len(byDate))
	for _, bar := range byDate {
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return NewPriceTable(bars)
}

// sliceDateRange returns the rows of t whose dates fall within [start, end].
func sliceDateRange(t *PriceTable, start, end time.Time) *PriceTable {
	from := t.Len()
	to := 0
	for i := 0; i < t.Len(); i++ {
		d := dateKey(t.Dates[i])
		if d.Before(start) || d.After(end) {
			continue
		}
		if i < from {
			from = i
		}
		to = i + 1
	}
	if from >= to {
		return t.SliceRows(0, 0)
	}
	return t.SliceRows(from, to)
}
