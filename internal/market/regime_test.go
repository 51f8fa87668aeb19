package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskAssessmentBoundaries(t *testing.T) {
	tests := []struct {
		score     int
		wantScore int
		wantLevel RiskLevel
	}{
		{-5, 0, RiskLow},
		{0, 0, RiskLow},
		{25, 25, RiskLow},
		{26, 26, RiskMedium},
		{50, 50, RiskMedium},
		{51, 51, RiskHigh},
		{75, 75, RiskHigh},
		{76, 76, RiskExtreme},
		{100, 100, RiskExtreme},
		{150, 100, RiskExtreme},
	}
	for _, tc := range tests {
		got := RiskAssessmentFromScore(tc.score)
		assert.Equal(t, tc.wantScore, got.Score, "score %d", tc.score)
		assert.Equal(t, tc.wantLevel, got.Level, "score %d", tc.score)
	}
}

func TestClassifyEnvironmentPriority(t *testing.T) {
	c := &regimeClassifier{cfg: DefaultRegimeConfig()}

	tests := []struct {
		name      string
		trendType TrendType
		direction TrendDirection
		vol       VolatilityLevel
		shortADR  float64
		want      EnvironmentCode
	}{
		{"panic beats strong downtrend", TrendTypeTrending, TrendDown, VolatilityHigh, 50, EnvPanicSell},
		{"panic on elevated volatility", TrendTypeNeutral, TrendDown, VolatilityElevated, 59, EnvPanicSell},
		{"strong downtrend needs trending type", TrendTypeTrending, TrendDown, VolatilityLow, 100, EnvStrongDowntrend},
		{"low volatility panic is not panic sell", TrendTypeTrending, TrendDown, VolatilityLow, 50, EnvStrongDowntrend},
		{"overbought beats volatile uptrend", TrendTypeNeutral, TrendUp, VolatilityHigh, 140, EnvOverheatedUptrend},
		{"volatile uptrend on high", TrendTypeNeutral, TrendUp, VolatilityHigh, 100, EnvVolatileUptrend},
		{"volatile uptrend on elevated", TrendTypeTrending, TrendUp, VolatilityElevated, 100, EnvVolatileUptrend},
		{"stable uptrend", TrendTypeTrending, TrendUp, VolatilityNormal, 100, EnvStableUptrend},
		{"stable uptrend on low volatility", TrendTypeNeutral, TrendUp, VolatilityLow, 100, EnvStableUptrend},
		{"quiet range", TrendTypeNeutral, TrendSideways, VolatilityLow, 100, EnvQuietRange},
		{"volatile range", TrendTypeNeutral, TrendSideways, VolatilityHigh, 100, EnvVolatileRange},
		{"sideways normal volatility is quiet", TrendTypeNeutral, TrendSideways, VolatilityNormal, 100, EnvQuietRange},
		{"ranging type wins over correction", TrendTypeRanging, TrendDown, VolatilityNormal, 100, EnvQuietRange},
		{"correction", TrendTypeNeutral, TrendDown, VolatilityNormal, 100, EnvCorrection},
		{"high volatility down without panic breadth", TrendTypeNeutral, TrendDown, VolatilityHigh, 65, EnvCorrection},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			trend := TrendAnalysis{Type: tc.trendType, Direction: tc.direction}
			vol := VolatilityAnalysis{Level: tc.vol}
			breadth := BreadthSnapshot{ShortTermADR: tc.shortADR, MediumTermADR: tc.shortADR, Divergence: DivergenceNeutral}
			assert.Equal(t, tc.want, c.classifyEnvironment(trend, vol, breadth))
		})
	}
}

func TestClassifyEnvironmentTotal(t *testing.T) {
	c := &regimeClassifier{cfg: DefaultRegimeConfig()}

	directions := []TrendDirection{TrendUp, TrendDown, TrendSideways}
	types := []TrendType{TrendTypeTrending, TrendTypeNeutral, TrendTypeRanging}
	levels := []VolatilityLevel{VolatilityLow, VolatilityNormal, VolatilityElevated, VolatilityHigh}
	adrs := []float64{50, 100, 140}

	for _, direction := range directions {
		for _, trendType := range types {
			for _, level := range levels {
				for _, adr := range adrs {
					got := c.classifyEnvironment(
						TrendAnalysis{Type: trendType, Direction: direction},
						VolatilityAnalysis{Level: level},
						BreadthSnapshot{ShortTermADR: adr, Divergence: DivergenceNeutral},
					)
					assert.Contains(t, EnvironmentCodes, got,
						"direction=%s type=%s level=%s adr=%.0f", direction, trendType, level, adr)
				}
			}
		}
	}
}

func TestRiskScoreComposition(t *testing.T) {
	c := &regimeClassifier{cfg: DefaultRegimeConfig()}

	tests := []struct {
		name      string
		direction TrendDirection
		vol       VolatilityLevel
		shortADR  float64
		div       DivergenceSignal
		want      int
	}{
		{"worst case exceeds the scale", TrendDown, VolatilityHigh, 50, DivergenceBearish, 105},
		{"sideways normal oversold bullish", TrendSideways, VolatilityNormal, 65, DivergenceBullish, 40},
		{"calm uptrend", TrendUp, VolatilityLow, 100, DivergenceNeutral, 0},
		{"down elevated oversold", TrendDown, VolatilityElevated, 65, DivergenceNeutral, 75},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := c.riskScore(
				TrendAnalysis{Direction: tc.direction},
				VolatilityAnalysis{Level: tc.vol},
				BreadthSnapshot{ShortTermADR: tc.shortADR, Divergence: tc.div},
			)
			assert.Equal(t, tc.want, got)
		})
	}

	clamped := RiskAssessmentFromScore(105)
	assert.Equal(t, 100, clamped.Score)
	assert.Equal(t, RiskExtreme, clamped.Level)
}

func TestTrendDirectionCloseFallback(t *testing.T) {
	c := &regimeClassifier{cfg: DefaultRegimeConfig()}
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	rising := barsRange(start, []float64{100, 101, 102, 103, 104})
	assert.Equal(t, TrendUp, c.trendDirection(rising))

	falling := barsRange(start, []float64{104, 103, 102, 101, 100})
	assert.Equal(t, TrendDown, c.trendDirection(falling))

	flat := barsRange(start, []float64{100, 100, 100, 100, 100})
	assert.Equal(t, TrendSideways, c.trendDirection(flat))

	short := barsRange(start, []float64{100, 101, 102, 103})
	assert.Equal(t, TrendSideways, c.trendDirection(short))
}

func TestAnalyzeRisingMarket(t *testing.T) {
	classifier := NewRegimeClassifier(NewIndicatorEngine(), NewBreadthCalculator(), DefaultRegimeConfig())
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	primary := barsRange(start, sequence(100, 80))
	secondary := barsRange(start, sequence(200, 80))
	universe := map[string][]ClosePoint{
		"1001": closeSeries(start, sequence(500, 30)...),
		"1002": closeSeries(start, sequence(800, 30)...),
	}

	regime := classifier.Analyze(primary, secondary, universe, time.Time{})

	assert.True(t, regime.Date.Equal(primary.Dates[primary.Len()-1]))

	assert.Equal(t, TrendTypeTrending, regime.Trend.Type)
	assert.Equal(t, TrendUp, regime.Trend.Direction)
	assert.Equal(t, "Strong Trend", regime.Trend.Interpretation)
	assert.GreaterOrEqual(t, regime.Trend.ADXValue, 25.0)

	assert.Equal(t, VolatilityNormal, regime.Volatility.Level)
	assert.InDelta(t, 2.0/179.0*100, regime.Volatility.ATRPercent, 1e-6)
	assert.False(t, regime.Volatility.Consensus)

	assert.Equal(t, SentimentPositive, regime.Sentiment.Sentiment)
	assert.Equal(t, TrendUp, regime.Sentiment.PrimaryTrend)
	assert.Equal(t, TrendUp, regime.Sentiment.SecondaryTrend)

	assert.InDelta(t, 200.0, regime.Breadth.ShortTermADR, 1e-9)
	assert.Equal(t, DivergenceNeutral, regime.Breadth.Divergence)

	assert.Equal(t, EnvOverheatedUptrend, regime.Environment)
	assert.Equal(t, RiskLow, regime.Risk.Level)
	assert.True(t, regime.IsTradeable())

	// input tables stay clean
	assert.Empty(t, primary.Indicators)
	assert.Empty(t, secondary.Indicators)
}

func TestAnalyzeShortHistory(t *testing.T) {
	classifier := NewRegimeClassifier(NewIndicatorEngine(), NewBreadthCalculator(), DefaultRegimeConfig())
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	primary := barsRange(start, sequence(100, 10))
	secondary := barsRange(start, sequence(100, 10))

	regime := classifier.Analyze(primary, secondary, nil, time.Time{})

	// too little history to define sma_25 or adx_14
	assert.Equal(t, TrendSideways, regime.Trend.Direction)
	assert.Equal(t, TrendTypeNeutral, regime.Trend.Type)
	assert.InDelta(t, 20.0, regime.Trend.ADXValue, 1e-9)

	assert.Equal(t, VolatilityLow, regime.Volatility.Level)
	assert.InDelta(t, 0.0, regime.Volatility.ATRPercent, 1e-9)

	assert.InDelta(t, 100.0, regime.Breadth.ShortTermADR, 1e-9)
	assert.Equal(t, EnvQuietRange, regime.Environment)
	require.Equal(t, 20, regime.Risk.Score)
	assert.Equal(t, RiskLow, regime.Risk.Level)
	assert.True(t, regime.IsTradeable())
}

func TestIsTradeable(t *testing.T) {
	tests := []struct {
		env  EnvironmentCode
		risk RiskLevel
		want bool
	}{
		{EnvStableUptrend, RiskLow, true},
		{EnvQuietRange, RiskHigh, true},
		{EnvCorrection, RiskHigh, true},
		{EnvStrongDowntrend, RiskLow, false},
		{EnvPanicSell, RiskHigh, false},
		{EnvVolatileRange, RiskExtreme, false},
	}
	for _, tc := range tests {
		regime := MarketRegime{Environment: tc.env, Risk: RiskAssessment{Level: tc.risk}}
		assert.Equal(t, tc.want, regime.IsTradeable(), "env=%s risk=%s", tc.env, tc.risk)
	}
}
