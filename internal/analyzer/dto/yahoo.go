package dto

import "time"

// YahooChartResponse mirrors the v8 chart endpoint body. Quote arrays use
// pointers because the API nulls out entries for halted sessions.
type YahooChartResponse struct {
	Chart struct {
		Result []YahooChartResult `json:"result"`
		Error  *YahooAPIError     `json:"error"`
	} `json:"chart"`
}

type YahooAPIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type YahooChartResult struct {
	Meta struct {
		Symbol               string  `json:"symbol"`
		Currency             string  `json:"currency"`
		ExchangeTimezoneName string  `json:"exchangeTimezoneName"`
		RegularMarketPrice   float64 `json:"regularMarketPrice"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// YahooQuoteSummaryResponse mirrors the v10 quoteSummary body for the
// calendarEvents module.
type YahooQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			CalendarEvents struct {
				Earnings struct {
					EarningsDate []YahooTimestamp `json:"earningsDate"`
				} `json:"earnings"`
				ExDividendDate *YahooTimestamp `json:"exDividendDate"`
				DividendDate   *YahooTimestamp `json:"dividendDate"`
			} `json:"calendarEvents"`
		} `json:"result"`
		Error *YahooAPIError `json:"error"`
	} `json:"quoteSummary"`
}

type YahooTimestamp struct {
	Raw int64  `json:"raw"`
	Fmt string `json:"fmt"`
}

// CalendarEvents is the normalized schedule data for one symbol.
type CalendarEvents struct {
	NextEarningsDate *time.Time
	ExDividendDate   *time.Time
}
