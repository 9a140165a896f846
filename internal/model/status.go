package model

import "time"

// FileStatus describes one CSV file found in the data directory.
type FileStatus struct {
	Name      string
	Symbol    string
	SizeBytes int64
	Rows      int // data rows, header excluded
}

// StatusReport compares the files on disk with the configured symbols.
// It is computed on demand and never persisted.
type StatusReport struct {
	Dir        string
	DirExists  bool
	Files      []FileStatus
	Missing    []string
	Configured int
}

// Complete reports whether every configured symbol has a file.
func (r *StatusReport) Complete() bool {
	return r.DirExists && len(r.Missing) == 0
}

// SymbolAnalysis summarises a downloaded series.
type SymbolAnalysis struct {
	Symbol    string
	Records   int
	MinClose  float64
	MaxClose  float64
	LastClose float64
	Position  float64 // last close within [MinClose, MaxClose], 0.0~1.0
	First     time.Time
	Last      time.Time
}
