package collector

import (
	"context"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"KiteBacktest/internal/errors"
	"KiteBacktest/internal/model"
)

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	client *resty.Client
}

// NewYahooFetcher creates a fetcher against baseURL
// (normally https://query1.finance.yahoo.com/v8/finance/chart).
func NewYahooFetcher(baseURL, proxyURL string, timeout time.Duration) *YahooFetcher {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeaders(map[string]string{
			"Accept":     "application/json",
			"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		})
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}

	return &YahooFetcher{client: client}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// FetchDaily issues one chart request with a daily interval. Rows where any
// price is null (holidays, suspended sessions) are skipped.
func (f *YahooFetcher) FetchDaily(ctx context.Context, ticker string, start, end time.Time) ([]model.Candle, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetPathParam("ticker", ticker).
		SetQueryParams(map[string]string{
			"period1":  strconv.FormatInt(start.Unix(), 10),
			"period2":  strconv.FormatInt(end.Unix(), 10),
			"interval": "1d",
			"events":   "history",
		}).
		Get("/{ticker}")
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "yahoo fetch %s", ticker)
	}

	body := resp.Body()
	if desc := gjson.GetBytes(body, "chart.error.description"); desc.Exists() && desc.String() != "" {
		return nil, errors.Newf(errors.ErrCodeMarketDataFetchFailed, "yahoo api error for %s: %s", ticker, desc.String())
	}
	if !resp.IsSuccess() {
		return nil, errors.Newf(errors.ErrCodeMarketDataFetchFailed, "yahoo %s: status %d", ticker, resp.StatusCode())
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.Newf(errors.ErrCodeMarketDataParseFailed, "yahoo %s: invalid JSON body", ticker)
	}

	candles := parseChart(gjson.GetBytes(body, "chart.result.0"))
	if len(candles) == 0 {
		return nil, errors.Newf(errors.ErrCodeNoDataFound, "yahoo: no data returned for %s", ticker)
	}
	return candles, nil
}

// parseChart converts a chart result into candles dated by the exchange's
// local calendar day, sorted and with one candle per date (the last wins).
func parseChart(result gjson.Result) []model.Candle {
	timestamps := result.Get("timestamp").Array()
	if len(timestamps) == 0 {
		return nil
	}

	loc := time.FixedZone(result.Get("meta.exchangeTimezoneName").String(), int(result.Get("meta.gmtoffset").Int()))
	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	candles := make([]model.Candle, 0, len(timestamps))
	for i, ts := range timestamps {
		o, okO := price(opens, i)
		h, okH := price(highs, i)
		l, okL := price(lows, i)
		c, okC := price(closes, i)
		if !okO || !okH || !okL || !okC {
			continue
		}

		var vol int64
		if i < len(volumes) && volumes[i].Type == gjson.Number && volumes[i].Int() > 0 {
			vol = volumes[i].Int()
		}

		local := time.Unix(ts.Int(), 0).In(loc)
		candles = append(candles, model.Candle{
			Date:   time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: vol,
		})
	}

	sort.SliceStable(candles, func(i, j int) bool { return candles[i].Date.Before(candles[j].Date) })

	deduped := candles[:0]
	for _, c := range candles {
		if n := len(deduped); n > 0 && deduped[n-1].Date.Equal(c.Date) {
			deduped[n-1] = c
			continue
		}
		deduped = append(deduped, c)
	}
	return deduped
}

func price(values []gjson.Result, i int) (float64, bool) {
	if i >= len(values) || values[i].Type != gjson.Number {
		return 0, false
	}
	v := values[i].Float()
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}
