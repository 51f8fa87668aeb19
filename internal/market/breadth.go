package market

import (
	"math"
	"sort"
	"time"
)

// BreadthSnapshot is the advancing/declining picture of a universe: trailing
// short-term and medium-term ratios, the divergence between them, and the
// per-day counts they were summed from.
type BreadthSnapshot struct {
	ShortTermADR   float64          `json:"short_term_adr"`
	MediumTermADR  float64          `json:"medium_term_adr"`
	Divergence     DivergenceSignal `json:"divergence"`
	DailyAdvancing []int            `json:"daily_advancing,omitempty"`
	DailyDeclining []int            `json:"daily_declining,omitempty"`
}

// BreadthCalculator aggregates cross-sectional breadth over a universe of
// close series.
type BreadthCalculator interface {
	Calculate(universeCloses map[string][]ClosePoint, shortPeriod, mediumPeriod int, divergenceThreshold float64) BreadthSnapshot
}

type breadthCalculator struct{}

// NewBreadthCalculator creates a stateless BreadthCalculator.
func NewBreadthCalculator() BreadthCalculator {
	return &breadthCalculator{}
}

// Calculate aligns all series on the union of their dates, counts advancing
// and declining symbols per day, and sums the counts over the trailing
// windows. An empty or unusable universe yields the neutral default
// (100/100/neutral) rather than an error.
func (c *breadthCalculator) Calculate(universeCloses map[string][]ClosePoint, shortPeriod, mediumPeriod int, divergenceThreshold float64) BreadthSnapshot {
	neutral := BreadthSnapshot{
		ShortTermADR:  100.0,
		MediumTermADR: 100.0,
		Divergence:    DivergenceNeutral,
	}
	if len(universeCloses) == 0 {
		return neutral
	}

	dates, perSymbol := alignCloses(universeCloses)
	if len(dates) == 0 {
		return neutral
	}

	advancing := make([]int, len(dates))
	declining := make([]int, len(dates))
	for _, closes := range perSymbol {
		prev := math.NaN()
		for i, v := range closes {
			if math.IsNaN(v) {
				continue
			}
			if !math.IsNaN(prev) {
				switch {
				case v > prev:
					advancing[i]++
				case v < prev:
					declining[i]++
				}
			}
			prev = v
		}
	}

	shortADR := AdvanceDeclineRatio(tailSum(advancing, shortPeriod), tailSum(declining, shortPeriod))
	mediumADR := AdvanceDeclineRatio(tailSum(advancing, mediumPeriod), tailSum(declining, mediumPeriod))

	return BreadthSnapshot{
		ShortTermADR:   shortADR,
		MediumTermADR:  mediumADR,
		Divergence:     divergenceSignal(shortADR, mediumADR, divergenceThreshold),
		DailyAdvancing: advancing,
		DailyDeclining: declining,
	}
}

// AdvanceDeclineRatio is (advancing/declining)*100 with the degenerate cases
// pinned: no decliners means 200 when anything advanced, else 100.
func AdvanceDeclineRatio(advancing, declining int) float64 {
	if declining == 0 {
		if advancing > 0 {
			return 200.0
		}
		return 100.0
	}
	return float64(advancing) / float64(declining) * 100
}

func divergenceSignal(shortTerm, mediumTerm, threshold float64) DivergenceSignal {
	diff := shortTerm - mediumTerm
	switch {
	case diff > threshold:
		return DivergenceBullish
	case diff < -threshold:
		return DivergenceBearish
	default:
		return DivergenceNeutral
	}
}

// alignCloses builds one row per distinct date (ascending) and one aligned
// column per symbol, NaN where a symbol has no observation that day.
func alignCloses(universeCloses map[string][]ClosePoint) ([]time.Time, map[string][]float64) {
	dateSet := map[time.Time]struct{}{}
	for _, points := range universeCloses {
		for _, p := range points {
			dateSet[dateKey(p.Date)] = struct{}{}
		}
	}
	if len(dateSet) == 0 {
		return nil, nil
	}

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	index := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		index[d] = i
	}

	perSymbol := make(map[string][]float64, len(universeCloses))
	for symbol, points := range universeCloses {
		if len(points) == 0 {
			continue
		}
		column := nanSlice(len(dates))
		for _, p := range points {
			column[index[dateKey(p.Date)]] = p.Close
		}
		perSymbol[symbol] = column
	}
	return dates, perSymbol
}

func dateKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func tailSum(values []int, n int) int {
	start := len(values) - n
	if start < 0 {
		start = 0
	}
	sum := 0
	for _, v := range values[start:] {
		sum += v
	}
	return sum
}
