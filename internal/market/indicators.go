package market

import (
	"errors"
	"fmt"
	"math"
)

// Indicator group names. Each group is computed in isolation so a failure in
// one group never aborts the others.
const (
	GroupMovingAverages = "moving_averages"
	GroupMomentum       = "momentum"
	GroupMACD           = "macd"
	GroupBollinger      = "bollinger"
	GroupVolatility     = "volatility"
	GroupTrend          = "trend"
	GroupVolume         = "volume"
)

// lookbackPeriods maps each indicator to the minimum rows of history it needs
// before its first defined value.
var lookbackPeriods = map[string]int{
	"sma_5":               5,
	"sma_25":              25,
	"sma_75":              75,
	"ema_12":              12,
	"ema_26":              26,
	"rsi_14":              15,
	"stoch_k":             14,
	"stoch_d":             17,
	"macd":                35,
	"macd_signal":         35,
	"macd_histogram":      35,
	"bb_upper":            20,
	"bb_middle":           20,
	"bb_lower":            20,
	"bb_width":            20,
	"atr_14":              15,
	"realized_volatility": 20,
	"adx_14":              28,
	"sar":                 5,
	"obv":                 1,
	"volume_ma_20":        20,
	"volume_ratio":        20,
}

var indicatorGroups = map[string][]string{
	GroupMovingAverages: {"sma_5", "sma_25", "sma_75", "ema_12", "ema_26"},
	GroupMomentum:       {"rsi_14", "stoch_k", "stoch_d"},
	GroupMACD:           {"macd", "macd_signal", "macd_histogram"},
	GroupBollinger:      {"bb_lower", "bb_middle", "bb_upper", "bb_width"},
	GroupVolatility:     {"atr_14", "realized_volatility"},
	GroupTrend:          {"adx_14", "sar"},
	GroupVolume:         {"obv", "volume_ma_20", "volume_ratio"},
}

var groupOrder = []string{
	GroupMovingAverages,
	GroupMomentum,
	GroupMACD,
	GroupBollinger,
	GroupVolatility,
	GroupTrend,
	GroupVolume,
}

var errMismatchedColumns = errors.New("price table columns have mismatched lengths")

// CalculationResult carries the augmented table, the names of the columns
// added by this run, and any per-group computation errors. Partial success is
// the normal case for short histories.
type CalculationResult struct {
	Table      *PriceTable
	Calculated []string
	Failed     map[string]error
}

// IndicatorEngine computes the indicator catalogue over an OHLCV table.
type IndicatorEngine interface {
	// Calculate returns a copy of the table augmented with the requested
	// indicator columns (all of them when none are named). Columns already
	// present are left untouched and not re-reported.
	Calculate(table *PriceTable, indicators ...string) CalculationResult

	// RequiredLookback returns the trailing rows of history needed before the
	// named indicators produce defined values; with no names, the maximum
	// over the whole catalogue.
	RequiredLookback(indicators ...string) int
}

type indicatorEngine struct{}

// NewIndicatorEngine creates a stateless IndicatorEngine.
func NewIndicatorEngine() IndicatorEngine {
	return &indicatorEngine{}
}

func (e *indicatorEngine) Calculate(table *PriceTable, indicators ...string) CalculationResult {
	result := CalculationResult{
		Table:  table,
		Failed: map[string]error{},
	}
	if table.Len() == 0 {
		return result
	}

	selected := selectGroups(indicators)
	out := table.Clone()
	result.Table = out

	if err := validateTable(table); err != nil {
		for _, group := range groupOrder {
			if selected[group] {
				result.Failed[group] = err
			}
		}
		return result
	}

	for _, group := range groupOrder {
		if !selected[group] {
			continue
		}
		added, err := computeGroup(group, out)
		if err != nil {
			result.Failed[group] = err
			continue
		}
		result.Calculated = append(result.Calculated, added...)
	}
	return result
}

func (e *indicatorEngine) RequiredLookback(indicators ...string) int {
	maxLookback := 0
	if len(indicators) == 0 {
		for _, lb := range lookbackPeriods {
			if lb > maxLookback {
				maxLookback = lb
			}
		}
		return maxLookback
	}
	for _, name := range indicators {
		if lb := lookbackPeriods[name]; lb > maxLookback {
			maxLookback = lb
		}
	}
	return maxLookback
}

// selectGroups maps a requested indicator subset to the groups that own them.
// An empty request selects every group; unknown names select nothing.
func selectGroups(indicators []string) map[string]bool {
	selected := map[string]bool{}
	if len(indicators) == 0 {
		for _, group := range groupOrder {
			selected[group] = true
		}
		return selected
	}
	for _, name := range indicators {
		for group, members := range indicatorGroups {
			for _, member := range members {
				if member == name {
					selected[group] = true
				}
			}
		}
	}
	return selected
}

func validateTable(t *PriceTable) error {
	n := len(t.Dates)
	if len(t.Open) != n || len(t.High) != n || len(t.Low) != n || len(t.Close) != n || len(t.Volume) != n {
		return errMismatchedColumns
	}
	if t.AdjClose != nil && len(t.AdjClose) != n {
		return errMismatchedColumns
	}
	return nil
}

func computeGroup(group string, t *PriceTable) (added []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			added = nil
			err = fmt.Errorf("computing %s: %v", group, r)
		}
	}()

	switch group {
	case GroupMovingAverages:
		added = calcMovingAverages(t)
	case GroupMomentum:
		added = calcMomentum(t)
	case GroupMACD:
		added = calcMACD(t)
	case GroupBollinger:
		added = calcBollinger(t)
	case GroupVolatility:
		added = calcVolatility(t)
	case GroupTrend:
		added = calcTrend(t)
	case GroupVolume:
		added = calcVolume(t)
	default:
		return nil, fmt.Errorf("unknown indicator group %q", group)
	}
	return added, nil
}

func setIfMissing(t *PriceTable, name string, compute func() []float64, added *[]string) {
	if t.HasColumn(name) {
		return
	}
	t.SetIndicator(name, compute())
	*added = append(*added, name)
}

func calcMovingAverages(t *PriceTable) []string {
	var added []string
	setIfMissing(t, "sma_5", func() []float64 { return rollingMean(t.Close, 5) }, &added)
	setIfMissing(t, "sma_25", func() []float64 { return rollingMean(t.Close, 25) }, &added)
	setIfMissing(t, "sma_75", func() []float64 { return rollingMean(t.Close, 75) }, &added)
	setIfMissing(t, "ema_12", func() []float64 { return exponentialMA(t.Close, 12) }, &added)
	setIfMissing(t, "ema_26", func() []float64 { return exponentialMA(t.Close, 26) }, &added)
	return added
}

func calcMomentum(t *PriceTable) []string {
	var added []string
	setIfMissing(t, "rsi_14", func() []float64 { return relativeStrengthIndex(t.Close, 14) }, &added)

	if !t.HasColumn("stoch_k") || !t.HasColumn("stoch_d") {
		k, d := stochasticOscillator(t.High, t.Low, t.Close, 14, 3, 3)
		setIfMissing(t, "stoch_k", func() []float64 { return k }, &added)
		setIfMissing(t, "stoch_d", func() []float64 { return d }, &added)
	}
	return added
}

func calcMACD(t *PriceTable) []string {
	var added []string
	if t.HasColumn("macd") && t.HasColumn("macd_signal") && t.HasColumn("macd_histogram") {
		return added
	}

	fast := exponentialMA(t.Close, 12)
	slow := exponentialMA(t.Close, 26)
	macd := subtract(fast, slow)
	signal := exponentialMA(macd, 9)
	histogram := subtract(macd, signal)

	setIfMissing(t, "macd", func() []float64 { return macd }, &added)
	setIfMissing(t, "macd_signal", func() []float64 { return signal }, &added)
	setIfMissing(t, "macd_histogram", func() []float64 { return histogram }, &added)
	return added
}

func calcBollinger(t *PriceTable) []string {
	var added []string
	if t.HasColumn("bb_lower") && t.HasColumn("bb_middle") && t.HasColumn("bb_upper") && t.HasColumn("bb_width") {
		return added
	}

	middle := rollingMean(t.Close, 20)
	sd := rollingStd(t.Close, 20, 0)
	upper := make([]float64, len(middle))
	lower := make([]float64, len(middle))
	width := make([]float64, len(middle))
	for i := range middle {
		upper[i] = middle[i] + 2*sd[i]
		lower[i] = middle[i] - 2*sd[i]
		if middle[i] == 0 {
			width[i] = math.NaN()
		} else {
			width[i] = (upper[i] - lower[i]) / middle[i]
		}
	}

	setIfMissing(t, "bb_lower", func() []float64 { return lower }, &added)
	setIfMissing(t, "bb_middle", func() []float64 { return middle }, &added)
	setIfMissing(t, "bb_upper", func() []float64 { return upper }, &added)
	setIfMissing(t, "bb_width", func() []float64 { return width }, &added)
	return added
}

func calcVolatility(t *PriceTable) []string {
	var added []string
	setIfMissing(t, "atr_14", func() []float64 {
		return wilderSmooth(trueRanges(t.High, t.Low, t.Close), 14)
	}, &added)
	setIfMissing(t, "realized_volatility", func() []float64 {
		returns := percentChanges(t.Close)
		rv := rollingStd(returns, 20, 1)
		for i := range rv {
			rv[i] *= math.Sqrt(252)
		}
		return rv
	}, &added)
	return added
}

func calcTrend(t *PriceTable) []string {
	var added []string
	setIfMissing(t, "adx_14", func() []float64 {
		return averageDirectionalIndex(t.High, t.Low, t.Close, 14)
	}, &added)
	setIfMissing(t, "sar", func() []float64 {
		return parabolicSAR(t.High, t.Low, t.Close, 0.02, 0.02, 0.2)
	}, &added)
	return added
}

func calcVolume(t *PriceTable) []string {
	var added []string
	setIfMissing(t, "obv", func() []float64 { return onBalanceVolume(t.Close, t.Volume) }, &added)

	volumeMA := rollingMean(t.Volume, 20)
	setIfMissing(t, "volume_ma_20", func() []float64 { return volumeMA }, &added)
	setIfMissing(t, "volume_ratio", func() []float64 {
		ratio := make([]float64, len(volumeMA))
		for i := range ratio {
			if volumeMA[i] == 0 || math.IsNaN(volumeMA[i]) {
				ratio[i] = math.NaN()
			} else {
				ratio[i] = t.Volume[i] / volumeMA[i]
			}
		}
		return ratio
	}, &added)
	return added
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

func firstDefined(values []float64) int {
	for i, v := range values {
		if !math.IsNaN(v) {
			return i
		}
	}
	return -1
}

// rollingMean is the trailing arithmetic mean over a fixed window. A window
// containing any undefined value yields NaN.
func rollingMean(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		defined := true
		for j := i - window + 1; j <= i; j++ {
			if math.IsNaN(values[j]) {
				defined = false
				break
			}
			sum += values[j]
		}
		if defined {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// rollingStd is the trailing standard deviation with the given delta degrees
// of freedom (0 for population, 1 for sample).
func rollingStd(values []float64, window, ddof int) []float64 {
	out := nanSlice(len(values))
	if window <= ddof {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		defined := true
		for j := i - window + 1; j <= i; j++ {
			if math.IsNaN(values[j]) {
				defined = false
				break
			}
			sum += values[j]
		}
		if !defined {
			continue
		}
		mean := sum / float64(window)
		variance := 0.0
		for j := i - window + 1; j <= i; j++ {
			diff := values[j] - mean
			variance += diff * diff
		}
		out[i] = math.Sqrt(variance / float64(window-ddof))
	}
	return out
}

// exponentialMA seeds with the arithmetic mean of the first period defined
// values, then applies alpha = 2/(period+1). NaN prefixes (e.g. a MACD series)
// shift the seed forward.
func exponentialMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 {
		return out
	}
	first := firstDefined(values)
	if first < 0 || first+period > len(values) {
		return out
	}
	seed := 0.0
	for i := first; i < first+period; i++ {
		seed += values[i]
	}
	out[first+period-1] = seed / float64(period)
	alpha := 2.0 / float64(period+1)
	for i := first + period; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

func subtract(a, b []float64) []float64 {
	out := nanSlice(len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

func percentChanges(values []float64) []float64 {
	out := nanSlice(len(values))
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		out[i] = values[i]/values[i-1] - 1
	}
	return out
}

func relativeStrengthIndex(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if len(closes) < period+1 {
		return out
	}
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// stochasticOscillator returns %K and %D of a (kPeriod, smooth, dPeriod)
// stochastic. A flat high-low window leaves the raw value undefined.
func stochasticOscillator(high, low, closes []float64, kPeriod, smooth, dPeriod int) (k, d []float64) {
	raw := nanSlice(len(closes))
	for i := kPeriod - 1; i < len(closes); i++ {
		highest := math.Inf(-1)
		lowest := math.Inf(1)
		for j := i - kPeriod + 1; j <= i; j++ {
			highest = math.Max(highest, high[j])
			lowest = math.Min(lowest, low[j])
		}
		if highest > lowest {
			raw[i] = (closes[i] - lowest) / (highest - lowest) * 100
		}
	}
	k = rollingMean(raw, smooth)
	d = rollingMean(k, dPeriod)
	return k, d
}

// trueRanges leaves the first row undefined since it has no previous close.
func trueRanges(high, low, closes []float64) []float64 {
	out := nanSlice(len(closes))
	for i := 1; i < len(closes); i++ {
		highLow := high[i] - low[i]
		highClose := math.Abs(high[i] - closes[i-1])
		lowClose := math.Abs(low[i] - closes[i-1])
		out[i] = math.Max(highLow, math.Max(highClose, lowClose))
	}
	return out
}

// wilderSmooth applies Wilder's smoothing: the first output is the arithmetic
// mean of the first period defined values, then
// out[i] = (out[i-1]*(period-1) + v[i]) / period.
func wilderSmooth(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	first := firstDefined(values)
	if first < 0 || first+period > len(values) {
		return out
	}
	sum := 0.0
	for i := first; i < first+period; i++ {
		sum += values[i]
	}
	out[first+period-1] = sum / float64(period)
	for i := first + period; i < len(values); i++ {
		out[i] = (out[i-1]*float64(period-1) + values[i]) / float64(period)
	}
	return out
}

func averageDirectionalIndex(high, low, closes []float64, period int) []float64 {
	n := len(closes)
	if n < 2 {
		return nanSlice(n)
	}
	tr := trueRanges(high, low, closes)
	plusDM := nanSlice(n)
	minusDM := nanSlice(n)
	for i := 1; i < n; i++ {
		up := high[i] - high[i-1]
		down := low[i-1] - low[i]
		plusDM[i] = 0
		minusDM[i] = 0
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	smoothTR := wilderSmooth(tr, period)
	smoothPlus := wilderSmooth(plusDM, period)
	smoothMinus := wilderSmooth(minusDM, period)

	dx := nanSlice(n)
	for i := period; i < n; i++ {
		if math.IsNaN(smoothTR[i]) || smoothTR[i] == 0 {
			continue
		}
		plusDI := 100 * smoothPlus[i] / smoothTR[i]
		minusDI := 100 * smoothMinus[i] / smoothTR[i]
		sum := plusDI + minusDI
		if sum == 0 {
			dx[i] = 0
			continue
		}
		dx[i] = 100 * math.Abs(plusDI-minusDI) / sum
	}
	return wilderSmooth(dx, period)
}

// parabolicSAR implements the standard stop-and-reverse rules, seeding the
// initial direction from the first two closes.
func parabolicSAR(high, low, closes []float64, step, increment, maxFactor float64) []float64 {
	n := len(closes)
	out := nanSlice(n)
	if n < 2 {
		return out
	}

	uptrend := closes[1] >= closes[0]
	factor := step
	var sar, extreme float64
	if uptrend {
		sar = low[0]
		extreme = high[1]
	} else {
		sar = high[0]
		extreme = low[1]
	}
	out[1] = sar

	for i := 2; i < n; i++ {
		sar += factor * (extreme - sar)
		if uptrend {
			// SAR must stay below the prior two bars' lows
			sar = math.Min(sar, math.Min(low[i-1], low[i-2]))
			if low[i] < sar {
				uptrend = false
				sar = extreme
				extreme = low[i]
				factor = step
			} else if high[i] > extreme {
				extreme = high[i]
				factor = math.Min(factor+increment, maxFactor)
			}
		} else {
			sar = math.Max(sar, math.Max(high[i-1], high[i-2]))
			if high[i] > sar {
				uptrend = true
				sar = extreme
				extreme = high[i]
				factor = step
			} else if low[i] < extreme {
				extreme = low[i]
				factor = math.Min(factor+increment, maxFactor)
			}
		}
		out[i] = sar
	}
	return out
}

// onBalanceVolume treats the first bar as an up day.
func onBalanceVolume(closes, volume []float64) []float64 {
	out := nanSlice(len(closes))
	if len(closes) == 0 {
		return out
	}
	out[0] = volume[0]
	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + volume[i]
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - volume[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out
}
