package market

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-swing-market/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

type fakeHistoryProvider struct {
	table       *PriceTable
	err         error
	calls       int
	gotTickerID uint
	gotBefore   time.Time
	gotLookback int
}

func (f *fakeHistoryProvider) GetTrailingWindow(_ context.Context, tickerID uint, beforeDate time.Time, lookbackDays int) (*PriceTable, error) {
	f.calls++
	f.gotTickerID = tickerID
	f.gotBefore = beforeDate
	f.gotLookback = lookbackDays
	if f.err != nil {
		return nil, f.err
	}
	return f.table, nil
}

func stitcherUnderTest(t *testing.T) HistoricalStitcher {
	t.Helper()
	log := testLogger(t)
	return NewHistoricalStitcher(NewIndicatorEngine(), log)
}

func barsRange(start time.Time, closes []float64) *PriceTable {
	bars := make([]PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = PriceBar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 100,
		}
	}
	return NewPriceTable(bars)
}

func TestStitchReturnsOnlyNewWindowRows(t *testing.T) {
	stitcher := stitcherUnderTest(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	history := barsRange(start, sequence(1, 10))
	newWindow := barsRange(start.AddDate(0, 0, 10), sequence(11, 5))
	provider := &fakeHistoryProvider{table: history}

	result, err := stitcher.Stitch(context.Background(), newWindow, 7, provider)
	require.NoError(t, err)

	require.Equal(t, 5, result.Len())
	assert.True(t, result.Dates[0].Equal(newWindow.Dates[0]))
	assert.True(t, result.Dates[4].Equal(newWindow.Dates[4]))

	// warmed up by history: sma_5 is defined from the first returned row
	sma, ok := result.Column("sma_5")
	require.True(t, ok)
	assert.InDelta(t, 9.0, sma[0], 1e-9)

	assert.Equal(t, uint(7), provider.gotTickerID)
	assert.True(t, provider.gotBefore.Equal(newWindow.Dates[0]))
	assert.Equal(t, 75, provider.gotLookback)
}

func TestStitchEmptyHistoryDegrades(t *testing.T) {
	stitcher := stitcherUnderTest(t)
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	newWindow := barsRange(start, sequence(1, 8))
	provider := &fakeHistoryProvider{table: NewPriceTable(nil)}

	result, err := stitcher.Stitch(context.Background(), newWindow, 1, provider)
	require.NoError(t, err)

	require.Equal(t, 8, result.Len())
	sma, _ := result.Column("sma_5")
	assert.True(t, math.IsNaN(sma[0]))
	assert.False(t, math.IsNaN(sma[4]))
}

func TestStitchNewWindowWinsOnOverlap(t *testing.T) {
	stitcher := stitcherUnderTest(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	overlapDate := start.AddDate(0, 0, 10)

	history := barsRange(start, sequence(1, 10))
	// stale bar on the overlap date
	history.Dates = append(history.Dates, overlapDate)
	history.Open = append(history.Open, 999)
	history.High = append(history.High, 1000)
	history.Low = append(history.Low, 998)
	history.Close = append(history.Close, 999)
	history.AdjClose = append(history.AdjClose, 999)
	history.Volume = append(history.Volume, 100)

	newWindow := barsRange(overlapDate, sequence(11, 5))
	provider := &fakeHistoryProvider{table: history}

	result, err := stitcher.Stitch(context.Background(), newWindow, 1, provider)
	require.NoError(t, err)

	require.Equal(t, 5, result.Len())
	assert.InDelta(t, 11.0, result.Close[0], 1e-9)
}

func TestStitchEmptyNewWindow(t *testing.T) {
	stitcher := stitcherUnderTest(t)
	provider := &fakeHistoryProvider{table: NewPriceTable(nil)}

	result, err := stitcher.Stitch(context.Background(), NewPriceTable(nil), 1, provider)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Len())
	assert.Equal(t, 0, provider.calls)
}

func TestStitchProviderError(t *testing.T) {
	stitcher := stitcherUnderTest(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newWindow := barsRange(start, sequence(1, 5))
	providerErr := errors.New("connection refused")
	provider := &fakeHistoryProvider{err: providerErr}

	_, err := stitcher.Stitch(context.Background(), newWindow, 1, provider)

	assert.ErrorIs(t, err, providerErr)
}
