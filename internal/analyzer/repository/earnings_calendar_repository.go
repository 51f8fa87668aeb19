package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang-swing-market/internal/analyzer/config"
	"golang-swing-market/pkg/logger"
	"golang-swing-market/pkg/ratelimit"
	"golang-swing-market/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Date layouts seen on IR calendar pages, tried in order.
var calendarDateLayouts = []string{
	"2006/01/02",
	"2006-01-02",
	"2006年1月2日",
}

// EarningsCalendarRepository scrapes announcement dates from the IR calendar
// page. It backs up the Yahoo Finance calendar, which often lags for
// small-cap Japanese names.
type EarningsCalendarRepository interface {
	GetAnnouncementDates(ctx context.Context, symbol string) ([]time.Time, error)
}

type earningsCalendarRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *ratelimit.Limiter
	pageCache      *gocache.Cache
}

// NewEarningsCalendarRepository creates a rate-limited IR calendar scraper.
func NewEarningsCalendarRepository(cfg *config.Config, log *logger.Logger) EarningsCalendarRepository {
	return &earningsCalendarRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		requestLimiter: ratelimit.NewPerMinute(cfg.Calendar.MaxRequestPerMinute),
		pageCache:      gocache.New(1*time.Hour, 2*time.Hour),
	}
}

// GetAnnouncementDates scrapes announcement dates for symbol. An empty base
// URL disables the scraper and returns no dates.
func (r *earningsCalendarRepository) GetAnnouncementDates(ctx context.Context, symbol string) ([]time.Time, error) {
	if r.cfg.Calendar.BaseURL == "" {
		return nil, nil
	}

	code := localCode(symbol)
	cacheKey := "calendar_page:" + code
	if cached, found := r.pageCache.Get(cacheKey); found {
		return cached.([]time.Time), nil
	}

	reqURL := fmt.Sprintf("%s/company/%s", r.cfg.Calendar.BaseURL, code)
	body, err := r.fetchPage(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to parse calendar page", zap.String("url", reqURL), zap.Error(err))
		return nil, fmt.Errorf("failed to parse calendar page: %w", err)
	}

	jst := utils.GetJSTLocation()
	seen := make(map[time.Time]bool)
	var dates []time.Time
	doc.Find("table tr td").Each(func(_ int, cell *goquery.Selection) {
		text := strings.TrimSpace(cell.Text())
		if text == "" {
			return
		}
		for _, layout := range calendarDateLayouts {
			parsed, err := time.ParseInLocation(layout, text, jst)
			if err != nil {
				continue
			}
			day := utils.TruncateToDate(parsed)
			if !seen[day] {
				seen[day] = true
				dates = append(dates, day)
			}
			return
		}
	})

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	r.log.DebugContext(ctx, "IR calendar dates scraped",
		zap.String("symbol", symbol),
		zap.Int("count", len(dates)),
	)

	r.pageCache.Set(cacheKey, dates, gocache.DefaultExpiration)
	return dates, nil
}

func (r *earningsCalendarRepository) fetchPage(ctx context.Context, reqURL string) ([]byte, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		r.log.ErrorContext(ctx, "Failed to wait for request limit", zap.String("url", reqURL), zap.Error(err))
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to create new http request", zap.String("url", reqURL), zap.Error(err))
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja,en-US;q=0.7,en;q=0.3")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to fetch calendar page", zap.String("url", reqURL), zap.Error(err))
		return nil, fmt.Errorf("failed to fetch calendar page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.log.ErrorContext(ctx, "Failed to fetch calendar page with non-200 status",
			zap.String("url", reqURL), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("failed to fetch calendar page, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to read calendar page body", zap.String("url", reqURL), zap.Error(err))
		return nil, err
	}
	return body, nil
}

// localCode strips the Yahoo Finance exchange suffix, e.g. "7203.T" -> "7203".
func localCode(symbol string) string {
	if i := strings.IndexByte(symbol, '.'); i > 0 {
		return symbol[:i]
	}
	return symbol
}
