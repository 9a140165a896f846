package collector

import (
	"context"
	"time"

	"KiteBacktest/internal/model"
)

// Fetcher downloads daily candles for a market data ticker.
type Fetcher interface {
	// FetchDaily returns daily candles in [start, end], ascending by date.
	FetchDaily(ctx context.Context, ticker string, start, end time.Time) ([]model.Candle, error)
	Name() string
}
