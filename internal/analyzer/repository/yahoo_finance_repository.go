package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"golang-swing-market/internal/analyzer/config"
	"golang-swing-market/internal/analyzer/dto"
	"golang-swing-market/internal/market"
	"golang-swing-market/pkg/logger"
	"golang-swing-market/pkg/ratelimit"
	"golang-swing-market/pkg/utils"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// YahooFinanceRepository fetches daily OHLCV history and corporate calendar
// events from the Yahoo Finance API.
type YahooFinanceRepository interface {
	GetDailyBars(ctx context.Context, symbol string, rangeDays int) (*market.PriceTable, error)
	GetCalendarEvents(ctx context.Context, symbol string) (*dto.CalendarEvents, error)
}

type yahooFinanceRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *ratelimit.Limiter
	chartCache     *gocache.Cache
}

// NewYahooFinanceRepository creates a rate-limited Yahoo Finance client.
func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) YahooFinanceRepository {
	return &yahooFinanceRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		requestLimiter: ratelimit.NewPerMinute(cfg.YahooFinance.MaxRequestPerMinute),
		chartCache:     gocache.New(15*time.Minute, 30*time.Minute),
	}
}

func (r *yahooFinanceRepository) GetDailyBars(ctx context.Context, symbol string, rangeDays int) (*market.PriceTable, error) {
	cacheKey := fmt.Sprintf("yahoo_chart:%s:%d", symbol, rangeDays)
	if cached, found := r.chartCache.Get(cacheKey); found {
		return cached.(*market.PriceTable).Clone(), nil
	}

	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%dd",
		r.cfg.YahooFinance.BaseURL, url.PathEscape(symbol), rangeDays)
	body, err := r.sendRequest(ctx, http.MethodGet, reqURL)
	if err != nil {
		return nil, err
	}

	var response dto.YahooChartResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, err
	}
	if response.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo finance chart %s: %s", response.Chart.Error.Code, response.Chart.Error.Description)
	}
	if len(response.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo finance chart: no result for symbol %s", symbol)
	}

	table, err := r.buildPriceTable(symbol, &response.Chart.Result[0])
	if err != nil {
		return nil, err
	}

	r.log.DebugContext(ctx, "Yahoo Finance daily bars fetched",
		zap.String("symbol", symbol),
		zap.Int("range_days", rangeDays),
		zap.Int("rows", table.Len()),
	)

	r.chartCache.Set(cacheKey, table, gocache.DefaultExpiration)
	return table.Clone(), nil
}

func (r *yahooFinanceRepository) buildPriceTable(symbol string, result *dto.YahooChartResult) (*market.PriceTable, error) {
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo finance chart: no quote data for symbol %s", symbol)
	}
	quote := result.Indicators.Quote[0]

	var adjClose []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjClose = result.Indicators.AdjClose[0].AdjClose
	}

	jst := utils.GetJSTLocation()
	bars := make([]market.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		if i >= len(quote.Open) || quote.Open[i] == nil ||
			i >= len(quote.High) || quote.High[i] == nil ||
			i >= len(quote.Low) || quote.Low[i] == nil {
			continue
		}

		bar := market.PriceBar{
			Date:     utils.TruncateToDate(time.Unix(ts, 0).In(jst)),
			Open:     *quote.Open[i],
			High:     *quote.High[i],
			Low:      *quote.Low[i],
			Close:    *quote.Close[i],
			AdjClose: math.NaN(),
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
		}
		if i < len(adjClose) && adjClose[i] != nil {
			bar.AdjClose = *adjClose[i]
		}
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("yahoo finance chart: no usable bars for symbol %s", symbol)
	}
	return market.NewPriceTable(bars), nil
}

func (r *yahooFinanceRepository) GetCalendarEvents(ctx context.Context, symbol string) (*dto.CalendarEvents, error) {
	reqURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=calendarEvents",
		r.cfg.YahooFinance.BaseURL, url.PathEscape(symbol))
	body, err := r.sendRequest(ctx, http.MethodGet, reqURL)
	if err != nil {
		return nil, err
	}

	var response dto.YahooQuoteSummaryResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, err
	}
	if response.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo finance quoteSummary %s: %s",
			response.QuoteSummary.Error.Code, response.QuoteSummary.Error.Description)
	}

	events := &dto.CalendarEvents{}
	if len(response.QuoteSummary.Result) == 0 {
		return events, nil
	}

	jst := utils.GetJSTLocation()
	calendar := response.QuoteSummary.Result[0].CalendarEvents
	for _, earningsDate := range calendar.Earnings.EarningsDate {
		if earningsDate.Raw == 0 {
			continue
		}
		d := utils.TruncateToDate(time.Unix(earningsDate.Raw, 0).In(jst))
		events.NextEarningsDate = &d
		break
	}
	if calendar.ExDividendDate != nil && calendar.ExDividendDate.Raw != 0 {
		d := utils.TruncateToDate(time.Unix(calendar.ExDividendDate.Raw, 0).In(jst))
		events.ExDividendDate = &d
	}

	return events, nil
}

func (r *yahooFinanceRepository) sendRequest(ctx context.Context, method string, reqURL string) ([]byte, error) {
	fields := []zap.Field{
		zap.String("url", reqURL),
		zap.Int("max_request_per_minute", r.cfg.YahooFinance.MaxRequestPerMinute),
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to wait for request limit", fields...)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to create new http request", fields...)
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to send request to Yahoo Finance API", fields...)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to read response body from Yahoo Finance API", fields...)
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		fields = append(fields, zap.Int("status_code", resp.StatusCode))
		r.log.ErrorContext(ctx, "Received non-OK response from Yahoo Finance API", fields...)
		return nil, fmt.Errorf("yahoo finance: unexpected status %d for %s", resp.StatusCode, reqURL)
	}

	return body, nil
}
