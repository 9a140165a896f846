package calculator

import (
	"math"

	"KiteBacktest/internal/errors"
	"KiteBacktest/internal/model"
)

// CloseRange returns the highest and lowest close in candles.
func CloseRange(candles []model.Candle) (high, low float64, err error) {
	if len(candles) == 0 {
		return 0, 0, errors.New(errors.ErrCodeNoDataFound, "no candles provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, c := range candles {
		if c.Close > high {
			high = c.Close
		}
		if c.Close < low {
			low = c.Close
		}
	}
	return high, low, nil
}

// RangePosition returns where current sits within [low, high] (0.0~1.0).
func RangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New(errors.ErrCodeInvalidParameter, "high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}

// Analyze summarises a loaded series. Candles are expected in date order;
// the last one supplies the current close.
func Analyze(symbol string, candles []model.Candle) (model.SymbolAnalysis, error) {
	high, low, err := CloseRange(candles)
	if err != nil {
		return model.SymbolAnalysis{}, err
	}
	last := candles[len(candles)-1]
	pos, err := RangePosition(last.Close, high, low)
	if err != nil {
		return model.SymbolAnalysis{}, err
	}

	return model.SymbolAnalysis{
		Symbol:    symbol,
		Records:   len(candles),
		MinClose:  low,
		MaxClose:  high,
		LastClose: last.Close,
		Position:  pos,
		First:     candles[0].Date,
		Last:      last.Date,
	}, nil
}
