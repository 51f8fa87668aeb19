package market

import (
	"math"
	"time"
)

// Column names for the base OHLCV series of a PriceTable.
const (
	ColumnOpen     = "open"
	ColumnHigh     = "high"
	ColumnLow      = "low"
	ColumnClose    = "close"
	ColumnAdjClose = "adj_close"
	ColumnVolume   = "volume"
)

// PriceBar is one calendar day of OHLCV data for one instrument. AdjClose is
// NaN when the source does not provide an adjusted close.
type PriceBar struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
}

// PriceTable is a date-ascending series of daily bars for one instrument plus
// any named indicator columns computed over it. Undefined indicator rows hold
// NaN, never a zero fill.
type PriceTable struct {
	Dates      []time.Time
	Open       []float64
	High       []float64
	Low        []float64
	Close      []float64
	AdjClose   []float64
	Volume     []float64
	Indicators map[string][]float64
}

// NewPriceTable builds a table from bars, preserving their order.
func NewPriceTable(bars []PriceBar) *PriceTable {
	t := &PriceTable{
		Dates:      make([]time.Time, len(bars)),
		Open:       make([]float64, len(bars)),
		High:       make([]float64, len(bars)),
		Low:        make([]float64, len(bars)),
		Close:      make([]float64, len(bars)),
		AdjClose:   make([]float64, len(bars)),
		Volume:     make([]float64, len(bars)),
		Indicators: map[string][]float64{},
	}
	for i, b := range bars {
		t.Dates[i] = b.Date
		t.Open[i] = b.Open
		t.High[i] = b.High
		t.Low[i] = b.Low
		t.Close[i] = b.Close
		t.AdjClose[i] = b.AdjClose
		t.Volume[i] = b.Volume
	}
	return t
}

// Len returns the number of rows.
func (t *PriceTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Dates)
}

// Bar returns row i as a PriceBar.
func (t *PriceTable) Bar(i int) PriceBar {
	b := PriceBar{
		Date:   t.Dates[i],
		Open:   t.Open[i],
		High:   t.High[i],
		Low:    t.Low[i],
		Close:  t.Close[i],
		Volume: t.Volume[i],
	}
	if i < len(t.AdjClose) {
		b.AdjClose = t.AdjClose[i]
	} else {
		b.AdjClose = math.NaN()
	}
	return b
}

// Bars returns all rows as PriceBars.
func (t *PriceTable) Bars() []PriceBar {
	bars := make([]PriceBar, t.Len())
	for i := range bars {
		bars[i] = t.Bar(i)
	}
	return bars
}

// Column resolves a named column: the base OHLCV columns by their fixed
// names, anything else from the indicator columns.
func (t *PriceTable) Column(name string) ([]float64, bool) {
	switch name {
	case ColumnOpen:
		return t.Open, t.Open != nil
	case ColumnHigh:
		return t.High, t.High != nil
	case ColumnLow:
		return t.Low, t.Low != nil
	case ColumnClose:
		return t.Close, t.Close != nil
	case ColumnAdjClose:
		return t.AdjClose, t.AdjClose != nil
	case ColumnVolume:
		return t.Volume, t.Volume != nil
	}
	col, ok := t.Indicators[name]
	return col, ok
}

// HasColumn reports whether the named column exists.
func (t *PriceTable) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// SetIndicator stores an indicator column under the given name.
func (t *PriceTable) SetIndicator(name string, values []float64) {
	if t.Indicators == nil {
		t.Indicators = map[string][]float64{}
	}
	t.Indicators[name] = values
}

// LatestValue returns the most recent defined value of a column, or fallback
// when the column is missing or holds no defined value.
func (t *PriceTable) LatestValue(name string, fallback float64) float64 {
	col, ok := t.Column(name)
	if !ok {
		return fallback
	}
	for i := len(col) - 1; i >= 0; i-- {
		if !math.IsNaN(col[i]) {
			return col[i]
		}
	}
	return fallback
}

// Clone returns a copy sharing the base column slices but with an independent
// indicator map, so adding columns never mutates the source table.
func (t *PriceTable) Clone() *PriceTable {
	clone := *t
	clone.Indicators = make(map[string][]float64, len(t.Indicators))
	for name, col := range t.Indicators {
		clone.Indicators[name] = col
	}
	return &clone
}

// SliceRows returns rows [from, to) of every column as a new table.
func (t *PriceTable) SliceRows(from, to int) *PriceTable {
	sliced := &PriceTable{
		Dates:      append([]time.Time{}, t.Dates[from:to]...),
		Open:       append([]float64{}, t.Open[from:to]...),
		High:       append([]float64{}, t.High[from:to]...),
		Low:        append([]float64{}, t.Low[from:to]...),
		Close:      append([]float64{}, t.Close[from:to]...),
		Volume:     append([]float64{}, t.Volume[from:to]...),
		Indicators: make(map[string][]float64, len(t.Indicators)),
	}
	if t.AdjClose != nil {
		sliced.AdjClose = append([]float64{}, t.AdjClose[from:to]...)
	}
	for name, col := range t.Indicators {
		sliced.Indicators[name] = append([]float64{}, col[from:to]...)
	}
	return sliced
}

// ClosePoint is one close observation for one symbol, used by breadth
// aggregation across a universe.
type ClosePoint struct {
	Date  time.Time
	Close float64
}

// DivergenceSignal labels the relation between short-term and medium-term
// breadth.
type DivergenceSignal string

const (
	DivergenceBullish DivergenceSignal = "bullish"
	DivergenceBearish DivergenceSignal = "bearish"
	DivergenceNeutral DivergenceSignal = "neutral"
)
