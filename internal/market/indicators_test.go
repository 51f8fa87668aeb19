package market

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableFromCloses(closes []float64) *PriceTable {
	bars := make([]PriceBar, len(closes))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = PriceBar{
			Date:     start.AddDate(0, 0, i),
			Open:     c,
			High:     c + 2,
			Low:      c - 2,
			Close:    c,
			AdjClose: c,
			Volume:   1000,
		}
	}
	return NewPriceTable(bars)
}

func sequence(from float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + float64(i)
	}
	return out
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestCalculateEmptyTable(t *testing.T) {
	engine := NewIndicatorEngine()

	result := engine.Calculate(NewPriceTable(nil))

	assert.Equal(t, 0, result.Table.Len())
	assert.Empty(t, result.Calculated)
	assert.Empty(t, result.Failed)
}

func TestCalculateSMA(t *testing.T) {
	engine := NewIndicatorEngine()
	table := tableFromCloses(sequence(1, 10))

	result := engine.Calculate(table, "sma_5")
	require.Empty(t, result.Failed)

	sma, ok := result.Table.Column("sma_5")
	require.True(t, ok)
	for i := 0; i < 4; i++ {
		assert.True(t, math.IsNaN(sma[i]), "row %d should be undefined", i)
	}
	assert.InDelta(t, 3.0, sma[4], 1e-9)
	assert.InDelta(t, 8.0, sma[9], 1e-9)

	// the source table is untouched
	assert.False(t, table.HasColumn("sma_5"))
}

func TestCalculateRSIExtremes(t *testing.T) {
	engine := NewIndicatorEngine()

	up := engine.Calculate(tableFromCloses(sequence(100, 20)), "rsi_14")
	rsi, ok := up.Table.Column("rsi_14")
	require.True(t, ok)
	assert.True(t, math.IsNaN(rsi[13]))
	assert.InDelta(t, 100.0, rsi[14], 1e-9)
	assert.InDelta(t, 100.0, rsi[19], 1e-9)

	downCloses := make([]float64, 20)
	for i := range downCloses {
		downCloses[i] = 100 - float64(i)
	}
	down := engine.Calculate(tableFromCloses(downCloses), "rsi_14")
	rsi, _ = down.Table.Column("rsi_14")
	assert.InDelta(t, 0.0, rsi[14], 1e-9)
}

func TestCalculateMACDRelation(t *testing.T) {
	engine := NewIndicatorEngine()
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/5)
	}

	result := engine.Calculate(tableFromCloses(closes), "macd")
	require.Empty(t, result.Failed)

	macd, _ := result.Table.Column("macd")
	signal, _ := result.Table.Column("macd_signal")
	histogram, _ := result.Table.Column("macd_histogram")
	ema12 := exponentialMA(closes, 12)
	ema26 := exponentialMA(closes, 26)

	for i := 40; i < 60; i++ {
		require.False(t, math.IsNaN(macd[i]))
		assert.InDelta(t, ema12[i]-ema26[i], macd[i], 1e-9)
		assert.InDelta(t, macd[i]-signal[i], histogram[i], 1e-9)
	}
	// signal needs 9 defined macd values, first macd at index 25
	assert.True(t, math.IsNaN(signal[32]))
	assert.False(t, math.IsNaN(signal[33]))
}

func TestCalculateBollingerFlatSeries(t *testing.T) {
	engine := NewIndicatorEngine()

	result := engine.Calculate(tableFromCloses(repeat(100, 25)), "bb_width")
	require.Empty(t, result.Failed)

	upper, _ := result.Table.Column("bb_upper")
	middle, _ := result.Table.Column("bb_middle")
	lower, _ := result.Table.Column("bb_lower")
	width, _ := result.Table.Column("bb_width")

	assert.True(t, math.IsNaN(width[18]))
	for i := 19; i < 25; i++ {
		assert.InDelta(t, 100.0, middle[i], 1e-9)
		assert.InDelta(t, 100.0, upper[i], 1e-9)
		assert.InDelta(t, 100.0, lower[i], 1e-9)
		assert.InDelta(t, 0.0, width[i], 1e-9)
	}
}

func TestCalculateATRConstantRange(t *testing.T) {
	engine := NewIndicatorEngine()

	// constant close with a fixed 4-point daily range keeps TR at 4
	result := engine.Calculate(tableFromCloses(repeat(100, 20)), "atr_14")
	require.Empty(t, result.Failed)

	atr, _ := result.Table.Column("atr_14")
	assert.True(t, math.IsNaN(atr[13]))
	for i := 14; i < 20; i++ {
		assert.InDelta(t, 4.0, atr[i], 1e-9)
	}
}

func TestCalculateRealizedVolatilityFlat(t *testing.T) {
	engine := NewIndicatorEngine()

	result := engine.Calculate(tableFromCloses(repeat(100, 25)), "realized_volatility")
	require.Empty(t, result.Failed)

	rv, _ := result.Table.Column("realized_volatility")
	assert.True(t, math.IsNaN(rv[19]))
	for i := 20; i < 25; i++ {
		assert.InDelta(t, 0.0, rv[i], 1e-9)
	}
}

func TestCalculateOBV(t *testing.T) {
	engine := NewIndicatorEngine()

	result := engine.Calculate(tableFromCloses([]float64{10, 11, 11, 9, 12}), "obv")
	require.Empty(t, result.Failed)

	obv, _ := result.Table.Column("obv")
	assert.InDelta(t, 1000.0, obv[0], 1e-9)
	assert.InDelta(t, 2000.0, obv[1], 1e-9)
	assert.InDelta(t, 2000.0, obv[2], 1e-9)
	assert.InDelta(t, 1000.0, obv[3], 1e-9)
	assert.InDelta(t, 2000.0, obv[4], 1e-9)
}

func TestCalculateStochasticBounds(t *testing.T) {
	engine := NewIndicatorEngine()
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + 5*math.Sin(float64(i)/3)
	}

	result := engine.Calculate(tableFromCloses(closes), "stoch_k", "stoch_d")
	require.Empty(t, result.Failed)

	k, _ := result.Table.Column("stoch_k")
	d, _ := result.Table.Column("stoch_d")
	for i := 20; i < 40; i++ {
		require.False(t, math.IsNaN(k[i]))
		require.False(t, math.IsNaN(d[i]))
		assert.GreaterOrEqual(t, k[i], 0.0)
		assert.LessOrEqual(t, k[i], 100.0)
	}
}

func TestCalculateIdempotent(t *testing.T) {
	engine := NewIndicatorEngine()

	first := engine.Calculate(tableFromCloses(sequence(1, 80)))
	require.Empty(t, first.Failed)
	assert.Len(t, first.Calculated, len(lookbackPeriods))

	second := engine.Calculate(first.Table)
	assert.Empty(t, second.Calculated)
	assert.Empty(t, second.Failed)
}

func TestCalculatePreservesExistingColumn(t *testing.T) {
	engine := NewIndicatorEngine()
	table := tableFromCloses(sequence(1, 30))
	custom := repeat(42, 30)
	table.SetIndicator("sma_5", custom)

	result := engine.Calculate(table, "sma_5", "sma_25")

	got, _ := result.Table.Column("sma_5")
	assert.Equal(t, custom, got)
	assert.NotContains(t, result.Calculated, "sma_5")
	assert.Contains(t, result.Calculated, "sma_25")
}

func TestCalculateSubsetOnlyRunsOwningGroups(t *testing.T) {
	engine := NewIndicatorEngine()

	result := engine.Calculate(tableFromCloses(sequence(1, 30)), "sma_5")

	assert.True(t, result.Table.HasColumn("sma_25"))
	assert.False(t, result.Table.HasColumn("rsi_14"))
	assert.False(t, result.Table.HasColumn("obv"))
}

func TestCalculateMismatchedColumnsFailsGroups(t *testing.T) {
	engine := NewIndicatorEngine()
	table := tableFromCloses(sequence(1, 10))
	table.Volume = table.Volume[:5]

	result := engine.Calculate(table)

	assert.Empty(t, result.Calculated)
	assert.Len(t, result.Failed, 7)
	for _, err := range result.Failed {
		assert.ErrorIs(t, err, errMismatchedColumns)
	}
}

func TestRequiredLookback(t *testing.T) {
	engine := NewIndicatorEngine()

	assert.Equal(t, 75, engine.RequiredLookback())
	assert.Equal(t, 15, engine.RequiredLookback("sma_5", "rsi_14"))
	assert.Equal(t, 35, engine.RequiredLookback("macd_signal"))
	assert.Equal(t, 0, engine.RequiredLookback("unknown"))
}

func TestShortHistoryLeavesColumnsUndefined(t *testing.T) {
	engine := NewIndicatorEngine()

	result := engine.Calculate(tableFromCloses(sequence(1, 10)), "sma_75")
	require.Empty(t, result.Failed)

	sma, ok := result.Table.Column("sma_75")
	require.True(t, ok)
	for _, v := range sma {
		assert.True(t, math.IsNaN(v))
	}
}
