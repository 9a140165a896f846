package collector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"KiteBacktest/internal/config"
	"KiteBacktest/internal/errors"
	"KiteBacktest/internal/model"
	"KiteBacktest/internal/storage"
)

// MockFetcher returns fixed data for development and testing.
type MockFetcher struct {
	Candles map[string][]model.Candle // keyed by ticker
	Errs    map[string]error          // keyed by ticker
	Calls   []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDaily(_ context.Context, ticker string, start, end time.Time) ([]model.Candle, error) {
	m.Calls = append(m.Calls, ticker)
	if err, ok := m.Errs[ticker]; ok {
		return nil, err
	}
	if data, ok := m.Candles[ticker]; ok {
		return data, nil
	}
	return generateMockCandles(start, end), nil
}

func generateMockCandles(start, end time.Time) []model.Candle {
	var candles []model.Candle
	p := 1000.0
	for d := start.Truncate(24 * time.Hour); !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		candles = append(candles, model.Candle{
			Date:   d,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		})
		p *= 1.001
	}
	return candles
}

// Collector downloads a symbol's history and writes it to its CSV file.
// Consecutive successful downloads are spaced by at least the configured delay.
type Collector struct {
	Fetcher Fetcher

	cfg         *config.Config
	store       *storage.Manager
	delay       time.Duration
	lastRequest time.Time
	now         func() time.Time
	log         *zap.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, cfg *config.Config, store *storage.Manager, log *zap.Logger) *Collector {
	return &Collector{
		Fetcher: fetcher,
		cfg:     cfg,
		store:   store,
		delay:   cfg.Market.RateLimitDelay,
		now:     time.Now,
		log:     log,
	}
}

// FetchHistoricalData downloads the last `days` days of daily candles for
// symbol. Provider failures come back as coded errors; empty results are
// ErrCodeNoDataFound.
func (c *Collector) FetchHistoricalData(ctx context.Context, symbol string, days int) ([]model.Candle, error) {
	if days <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "days must be positive, got %d", days)
	}
	ticker := c.cfg.ResolveTicker(symbol)

	if err := c.pace(ctx); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "interrupted while pacing", err)
	}

	to := c.now()
	from := to.AddDate(0, 0, -days)
	c.log.Info("fetching",
		zap.String("symbol", symbol),
		zap.String("ticker", ticker),
		zap.String("source", c.Fetcher.Name()),
		zap.String("from", from.Format(storage.DateLayout)),
		zap.String("to", to.Format(storage.DateLayout)))

	candles, err := c.Fetcher.FetchDaily(ctx, ticker, from, to)
	if err != nil {
		if errors.GetCode(err) == errors.ErrCodeUnknown {
			err = errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "fetch %s", ticker)
		}
		c.log.Error("fetch failed", zap.String("symbol", symbol), zap.Error(err))
		return nil, err
	}
	if len(candles) == 0 {
		err := errors.Newf(errors.ErrCodeNoDataFound, "no data found for %s", ticker)
		c.log.Warn("no data found", zap.String("symbol", symbol))
		return nil, err
	}

	c.lastRequest = c.now()
	c.log.Info("fetched", zap.String("symbol", symbol), zap.Int("candles", len(candles)))
	return candles, nil
}

// pace blocks until the configured delay has passed since the last
// successful download. The first request never waits.
func (c *Collector) pace(ctx context.Context) error {
	if c.delay <= 0 || c.lastRequest.IsZero() {
		return nil
	}
	wait := c.delay - c.now().Sub(c.lastRequest)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SaveDataToCSV writes candles to the symbol's CSV file, replacing any
// previous file. Nothing is written when candles is empty; a failed write
// leaves no partial file behind.
func (c *Collector) SaveDataToCSV(symbol string, candles []model.Candle) error {
	if len(candles) == 0 {
		c.log.Warn("no data to save", zap.String("symbol", symbol))
		return errors.Newf(errors.ErrCodeNoDataFound, "no data to save for %s", symbol)
	}

	path := c.store.Path(symbol)
	if err := writeFileAtomic(path, candles); err != nil {
		c.log.Error("error saving", zap.String("symbol", symbol), zap.Error(err))
		return errors.Wrapf(errors.ErrCodeCSVWrite, err, "save %s", path)
	}

	c.log.Info("saved", zap.String("file", filepath.Base(path)), zap.Int("rows", len(candles)))
	return nil
}

func writeFileAtomic(path string, candles []model.Candle) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := storage.WriteCandles(tmp, candles); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
