package model

// SymbolResult is the outcome of fetching and saving one symbol.
type SymbolResult struct {
	Symbol  string
	Ticker  string
	Candles int
	Saved   bool
	Code    string // error code name when Saved is false
	Err     string
}

// FetchSummary tallies one fetch run over the configured symbols.
type FetchSummary struct {
	RunID     string
	Days      int
	Succeeded int
	Total     int
	Results   []SymbolResult
}

// Failed returns the symbols that were not saved, in run order.
func (s *FetchSummary) Failed() []string {
	var out []string
	for _, r := range s.Results {
		if !r.Saved {
			out = append(out, r.Symbol)
		}
	}
	return out
}
