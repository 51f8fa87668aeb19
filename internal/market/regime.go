package market

import (
	"fmt"
	"math"
	"time"
)

// TrendType labels how strongly the market is trending, regardless of
// direction.
type TrendType string

const (
	TrendTypeTrending TrendType = "trending"
	TrendTypeRanging  TrendType = "ranging"
	TrendTypeNeutral  TrendType = "neutral"
)

// TrendDirection labels the direction of the prevailing move.
type TrendDirection string

const (
	TrendUp       TrendDirection = "uptrend"
	TrendDown     TrendDirection = "downtrend"
	TrendSideways TrendDirection = "sideways"
)

// VolatilityLevel is the four-tier volatility classification.
type VolatilityLevel string

const (
	VolatilityLow      VolatilityLevel = "low"
	VolatilityNormal   VolatilityLevel = "normal"
	VolatilityElevated VolatilityLevel = "elevated"
	VolatilityHigh     VolatilityLevel = "high"
)

// Sentiment is the three-way market sentiment.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// RiskLevel is the four-tier band a 0-100 risk score falls into.
type RiskLevel string

const (
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
	RiskExtreme RiskLevel = "extreme"
)

// EnvironmentCode is one of the eight mutually exclusive market environments.
type EnvironmentCode string

const (
	EnvStableUptrend     EnvironmentCode = "stable_uptrend"
	EnvOverheatedUptrend EnvironmentCode = "overheated_uptrend"
	EnvVolatileUptrend   EnvironmentCode = "volatile_uptrend"
	EnvQuietRange        EnvironmentCode = "quiet_range"
	EnvVolatileRange     EnvironmentCode = "volatile_range"
	EnvCorrection        EnvironmentCode = "correction"
	EnvStrongDowntrend   EnvironmentCode = "strong_downtrend"
	EnvPanicSell         EnvironmentCode = "panic_sell"
)

// EnvironmentCodes lists all eight environments.
var EnvironmentCodes = []EnvironmentCode{
	EnvStableUptrend,
	EnvOverheatedUptrend,
	EnvVolatileUptrend,
	EnvQuietRange,
	EnvVolatileRange,
	EnvCorrection,
	EnvStrongDowntrend,
	EnvPanicSell,
}

// TrendAnalysis is the trend picture of one index.
type TrendAnalysis struct {
	Type           TrendType      `json:"trend_type"`
	Direction      TrendDirection `json:"trend_direction"`
	ADXValue       float64        `json:"adx_value"`
	Interpretation string         `json:"adx_interpretation"`
}

// VolatilityAnalysis combines the ATR-relative and band-width views of
// volatility. Consensus is true when both views agree on "high".
type VolatilityAnalysis struct {
	Level            VolatilityLevel `json:"volatility_level"`
	ATRPercent       float64         `json:"atr_percent"`
	BandWidthPercent float64         `json:"bollinger_band_width"`
	Consensus        bool            `json:"volatility_consensus"`
}

// SentimentAnalysis derives sentiment purely from the two index trend
// directions.
type SentimentAnalysis struct {
	Sentiment      Sentiment      `json:"sentiment"`
	PrimaryTrend   TrendDirection `json:"primary_trend"`
	SecondaryTrend TrendDirection `json:"secondary_trend"`
}

// RiskAssessment is a clamped 0-100 score plus its band.
type RiskAssessment struct {
	Score int       `json:"risk_score"`
	Level RiskLevel `json:"risk_level"`
}

// RiskAssessmentFromScore clamps the score to 0-100 and maps it to a band.
func RiskAssessmentFromScore(score int) RiskAssessment {
	clamped := score
	if clamped < 0 {
		clamped = 0
	}
	if clamped > 100 {
		clamped = 100
	}
	var level RiskLevel
	switch {
	case clamped <= 25:
		level = RiskLow
	case clamped <= 50:
		level = RiskMedium
	case clamped <= 75:
		level = RiskHigh
	default:
		level = RiskExtreme
	}
	return RiskAssessment{Score: clamped, Level: level}
}

// MarketRegime is the complete classification for one analysis date.
type MarketRegime struct {
	Date        time.Time          `json:"analysis_date"`
	Trend       TrendAnalysis      `json:"trend_analysis"`
	Volatility  VolatilityAnalysis `json:"volatility_analysis"`
	Sentiment   SentimentAnalysis  `json:"sentiment_analysis"`
	Environment EnvironmentCode    `json:"environment_code"`
	Risk        RiskAssessment     `json:"risk_assessment"`
	Breadth     BreadthSnapshot    `json:"market_breadth"`
}

// IsTradeable reports whether new entries are sensible in this regime.
func (r MarketRegime) IsTradeable() bool {
	if r.Environment == EnvStrongDowntrend || r.Environment == EnvPanicSell {
		return false
	}
	return r.Risk.Level != RiskExtreme
}

// RegimeConfig holds every threshold and weight of the classifier.
type RegimeConfig struct {
	ADXTrendingThreshold float64 `mapstructure:"adx_trending_threshold"`
	ADXRangingThreshold  float64 `mapstructure:"adx_ranging_threshold"`
	SMAPeriod            int     `mapstructure:"sma_period"`
	SlopeUptrend         float64 `mapstructure:"sma_slope_uptrend"`
	SlopeDowntrend       float64 `mapstructure:"sma_slope_downtrend"`

	ATRLowThreshold        float64 `mapstructure:"atr_low_threshold"`
	ATRNormalThreshold     float64 `mapstructure:"atr_normal_threshold"`
	ATRElevatedThreshold   float64 `mapstructure:"atr_elevated_threshold"`
	BandWidthHighThreshold float64 `mapstructure:"bb_width_high_threshold"`

	BreadthShortPeriod  int     `mapstructure:"breadth_short_period"`
	BreadthMediumPeriod int     `mapstructure:"breadth_medium_period"`
	BreadthPanic        float64 `mapstructure:"breadth_panic"`
	BreadthOversold     float64 `mapstructure:"breadth_oversold"`
	BreadthOverbought   float64 `mapstructure:"breadth_overbought"`
	DivergenceThreshold float64 `mapstructure:"breadth_divergence_threshold"`

	RiskTrendWeight          int `mapstructure:"risk_trend_weight"`
	RiskVolatilityWeight     int `mapstructure:"risk_volatility_weight"`
	RiskBreadthWeight        int `mapstructure:"risk_breadth_weight"`
	RiskDivergenceAdjustment int `mapstructure:"risk_divergence_adjustment"`
}

// DefaultRegimeConfig returns the stock thresholds the classifier ships with.
func DefaultRegimeConfig() RegimeConfig {
	return RegimeConfig{
		ADXTrendingThreshold: 25.0,
		ADXRangingThreshold:  20.0,
		SMAPeriod:            25,
		SlopeUptrend:         0.06,
		SlopeDowntrend:       -0.06,

		ATRLowThreshold:        0.8,
		ATRNormalThreshold:     2.0,
		ATRElevatedThreshold:   3.0,
		BandWidthHighThreshold: 10.0,

		BreadthShortPeriod:  5,
		BreadthMediumPeriod: 25,
		BreadthPanic:        60.0,
		BreadthOversold:     70.0,
		BreadthOverbought:   130.0,
		DivergenceThreshold: 10.0,

		RiskTrendWeight:          40,
		RiskVolatilityWeight:     30,
		RiskBreadthWeight:        30,
		RiskDivergenceAdjustment: 5,
	}
}

// RegimeClassifier turns index indicator tables plus universe breadth into a
// MarketRegime snapshot.
type RegimeClassifier interface {
	Analyze(primary, secondary *PriceTable, universeCloses map[string][]ClosePoint, asOf time.Time) MarketRegime
}

type regimeClassifier struct {
	engine  IndicatorEngine
	breadth BreadthCalculator
	cfg     RegimeConfig
}

// NewRegimeClassifier creates a classifier with the given configuration.
func NewRegimeClassifier(engine IndicatorEngine, breadth BreadthCalculator, cfg RegimeConfig) RegimeClassifier {
	return &regimeClassifier{engine: engine, breadth: breadth, cfg: cfg}
}

// Analyze classifies the market as of asOf. The primary index drives trend
// and volatility; the secondary index only contributes its trend direction to
// sentiment. A zero asOf falls back to the primary table's latest date.
func (c *regimeClassifier) Analyze(primary, secondary *PriceTable, universeCloses map[string][]ClosePoint, asOf time.Time) MarketRegime {
	analysisDate := asOf
	if analysisDate.IsZero() && primary.Len() > 0 {
		analysisDate = primary.Dates[primary.Len()-1]
	}

	primaryCalc := c.engine.Calculate(primary)
	secondaryCalc := c.engine.Calculate(secondary)

	trend := c.analyzeTrend(primaryCalc.Table)
	secondaryDirection := c.trendDirection(secondaryCalc.Table)
	volatility := c.analyzeVolatility(primaryCalc.Table)
	sentiment := c.analyzeSentiment(trend.Direction, secondaryDirection)

	breadth := c.breadth.Calculate(
		universeCloses,
		c.cfg.BreadthShortPeriod,
		c.cfg.BreadthMediumPeriod,
		c.cfg.DivergenceThreshold,
	)

	environment := c.classifyEnvironment(trend, volatility, breadth)
	risk := RiskAssessmentFromScore(c.riskScore(trend, volatility, breadth))

	return MarketRegime{
		Date:        analysisDate,
		Trend:       trend,
		Volatility:  volatility,
		Sentiment:   sentiment,
		Environment: environment,
		Risk:        risk,
		Breadth:     breadth,
	}
}

func (c *regimeClassifier) analyzeTrend(t *PriceTable) TrendAnalysis {
	adx := t.LatestValue("adx_14", 20.0)

	var trendType TrendType
	var interpretation string
	switch {
	case adx >= c.cfg.ADXTrendingThreshold:
		trendType = TrendTypeTrending
		interpretation = "Strong Trend"
	case adx >= c.cfg.ADXRangingThreshold:
		trendType = TrendTypeNeutral
		interpretation = "Weak Trend"
	default:
		trendType = TrendTypeRanging
		interpretation = "No Trend"
	}

	return TrendAnalysis{
		Type:           trendType,
		Direction:      c.trendDirection(t),
		ADXValue:       adx,
		Interpretation: interpretation,
	}
}

// trendDirection classifies the 5-point percentage slope per day of the
// configured SMA, falling back to the raw close when the SMA column is
// absent. Fewer than five defined points is sideways.
func (c *regimeClassifier) trendDirection(t *PriceTable) TrendDirection {
	smaColumn := fmt.Sprintf("sma_%d", c.cfg.SMAPeriod)

	var slope float64
	if col, ok := t.Column(smaColumn); ok {
		defined := dropUndefined(col)
		if len(defined) < 5 {
			return TrendSideways
		}
		last := defined[len(defined)-1]
		base := defined[len(defined)-5]
		slope = (last - base) / base * 100 / 5
	} else {
		if t.Len() < 5 {
			return TrendSideways
		}
		last := t.Close[t.Len()-1]
		base := t.Close[t.Len()-5]
		slope = (last - base) / base * 100 / 5
	}

	switch {
	case slope > c.cfg.SlopeUptrend:
		return TrendUp
	case slope < c.cfg.SlopeDowntrend:
		return TrendDown
	default:
		return TrendSideways
	}
}

func (c *regimeClassifier) analyzeVolatility(t *PriceTable) VolatilityAnalysis {
	atr := t.LatestValue("atr_14", 0.0)
	closePrice := t.LatestValue(ColumnClose, 1.0)
	atrPercent := 0.0
	if closePrice > 0 {
		atrPercent = atr / closePrice * 100
	}

	bandWidthPercent := t.LatestValue("bb_width", 0.0) * 100

	var level VolatilityLevel
	switch {
	case atrPercent < c.cfg.ATRLowThreshold:
		level = VolatilityLow
	case atrPercent < c.cfg.ATRNormalThreshold:
		level = VolatilityNormal
	case atrPercent < c.cfg.ATRElevatedThreshold:
		level = VolatilityElevated
	default:
		level = VolatilityHigh
	}

	bandWidthHigh := bandWidthPercent > c.cfg.BandWidthHighThreshold
	atrHigh := atrPercent >= c.cfg.ATRElevatedThreshold

	return VolatilityAnalysis{
		Level:            level,
		ATRPercent:       atrPercent,
		BandWidthPercent: bandWidthPercent,
		Consensus:        bandWidthHigh == atrHigh,
	}
}

func (c *regimeClassifier) analyzeSentiment(primary, secondary TrendDirection) SentimentAnalysis {
	sentiment := SentimentNeutral
	if primary == TrendUp && secondary == TrendUp {
		sentiment = SentimentPositive
	} else if primary == TrendDown && secondary == TrendDown {
		sentiment = SentimentNegative
	}
	return SentimentAnalysis{
		Sentiment:      sentiment,
		PrimaryTrend:   primary,
		SecondaryTrend: secondary,
	}
}

// classifyEnvironment walks the eight-way rule table in priority order; the
// first match wins.
func (c *regimeClassifier) classifyEnvironment(trend TrendAnalysis, volatility VolatilityAnalysis, breadth BreadthSnapshot) EnvironmentCode {
	isUptrend := trend.Direction == TrendUp
	isDowntrend := trend.Direction == TrendDown
	isSideways := trend.Direction == TrendSideways

	isHighVol := volatility.Level == VolatilityHigh || volatility.Level == VolatilityElevated
	isLowVol := volatility.Level == VolatilityLow

	isOverbought := breadth.ShortTermADR > c.cfg.BreadthOverbought
	isPanic := breadth.ShortTermADR < c.cfg.BreadthPanic

	isStrongTrend := trend.Type == TrendTypeTrending

	switch {
	case isDowntrend && isHighVol && isPanic:
		return EnvPanicSell
	case isStrongTrend && isDowntrend:
		return EnvStrongDowntrend
	case isUptrend && isOverbought:
		return EnvOverheatedUptrend
	case isUptrend && isHighVol:
		return EnvVolatileUptrend
	case isUptrend:
		return EnvStableUptrend
	case (isSideways || trend.Type == TrendTypeRanging) && isLowVol:
		return EnvQuietRange
	case (isSideways || trend.Type == TrendTypeRanging) && isHighVol:
		return EnvVolatileRange
	case isSideways || trend.Type == TrendTypeRanging:
		return EnvQuietRange
	case isDowntrend:
		return EnvCorrection
	default:
		return EnvQuietRange
	}
}

func (c *regimeClassifier) riskScore(trend TrendAnalysis, volatility VolatilityAnalysis, breadth BreadthSnapshot) int {
	score := 0

	switch trend.Direction {
	case TrendDown:
		score += c.cfg.RiskTrendWeight
	case TrendSideways:
		score += c.cfg.RiskTrendWeight / 2
	}

	switch volatility.Level {
	case VolatilityHigh:
		score += c.cfg.RiskVolatilityWeight
	case VolatilityElevated:
		score += c.cfg.RiskVolatilityWeight * 2 / 3
	case VolatilityNormal:
		score += c.cfg.RiskVolatilityWeight / 3
	}

	if breadth.ShortTermADR < c.cfg.BreadthPanic {
		score += c.cfg.RiskBreadthWeight
	} else if breadth.ShortTermADR < c.cfg.BreadthOversold {
		score += c.cfg.RiskBreadthWeight / 2
	}

	switch breadth.Divergence {
	case DivergenceBullish:
		score -= c.cfg.RiskDivergenceAdjustment
	case DivergenceBearish:
		score += c.cfg.RiskDivergenceAdjustment
	}
	return score
}

func dropUndefined(values []float64) []float64 {
	defined := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			defined = append(defined, v)
		}
	}
	return defined
}
