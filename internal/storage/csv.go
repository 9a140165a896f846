package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"KiteBacktest/internal/model"
)

// DateLayout is the date format used in the date column.
const DateLayout = "2006-01-02"

// Header is the fixed column order of every candle file.
var Header = []string{"date", "open", "high", "low", "close", "volume"}

// WriteCandles writes the header and one row per candle.
func WriteCandles(w io.Writer, candles []model.Candle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, c := range candles {
		row := []string{
			c.Date.Format(DateLayout),
			formatPrice(c.Open),
			formatPrice(c.High),
			formatPrice(c.Low),
			formatPrice(c.Close),
			strconv.FormatInt(c.Volume, 10),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", row[0], err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCandles parses a candle file. Columns are located by header name. Any
// malformed row fails the whole read and nothing is returned.
func ReadCandles(r io.Reader) ([]model.Candle, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, name := range Header {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	var candles []model.Candle
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		c, err := parseRow(record, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		candles = append(candles, c)
	}

	return candles, nil
}

func parseRow(record []string, idx map[string]int) (model.Candle, error) {
	var c model.Candle

	date, err := time.Parse(DateLayout, record[idx["date"]])
	if err != nil {
		return c, fmt.Errorf("date: %w", err)
	}
	c.Date = date

	prices := []struct {
		col string
		dst *float64
	}{
		{"open", &c.Open},
		{"high", &c.High},
		{"low", &c.Low},
		{"close", &c.Close},
	}
	for _, p := range prices {
		v, err := parsePrice(record[idx[p.col]])
		if err != nil {
			return c, fmt.Errorf("%s: %w", p.col, err)
		}
		*p.dst = v
	}

	c.Volume, err = strconv.ParseInt(record[idx["volume"]], 10, 64)
	if err != nil {
		return c, fmt.Errorf("volume: %w", err)
	}

	return c, nil
}

// formatPrice renders the shortest decimal text that reads back to the same float.
func formatPrice(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func parsePrice(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
