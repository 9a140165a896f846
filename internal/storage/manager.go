package storage

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"KiteBacktest/internal/config"
	"KiteBacktest/internal/errors"
	"KiteBacktest/internal/model"
)

// Manager owns the data directory holding one CSV file per symbol.
type Manager struct {
	dataDir string
	symbols []string
	log     *zap.Logger
}

// NewManager creates a Manager for the configured data directory.
func NewManager(cfg *config.Config, log *zap.Logger) *Manager {
	return &Manager{
		dataDir: cfg.Storage.DataDir,
		symbols: cfg.Market.Symbols,
		log:     log,
	}
}

// Dir returns the data directory.
func (m *Manager) Dir() string { return m.dataDir }

// Path returns the CSV path for symbol.
func (m *Manager) Path(symbol string) string {
	return filepath.Join(m.dataDir, symbol+".csv")
}

// SetupDirectories creates the data directory if needed. Safe to call repeatedly.
func (m *Manager) SetupDirectories() error {
	if _, err := os.Stat(m.dataDir); err == nil {
		return nil
	}
	if err := os.MkdirAll(m.dataDir, 0755); err != nil {
		return errors.Wrapf(errors.ErrCodeDirectoryCreate, err, "create %s", m.dataDir)
	}
	m.log.Info("created data directory", zap.String("dir", m.dataDir))
	return nil
}

// LoadCSV reads the candles for symbol. A missing file returns
// ErrCodeDataNotFound; a malformed file returns ErrCodeCSVParse and no rows.
func (m *Manager) LoadCSV(symbol string) ([]model.Candle, error) {
	path := m.Path(symbol)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			m.log.Warn("file not found", zap.String("path", path))
			return nil, errors.Newf(errors.ErrCodeDataNotFound, "file not found: %s", path)
		}
		return nil, errors.Wrapf(errors.ErrCodeCSVParse, err, "open %s", path)
	}
	defer f.Close()

	candles, err := ReadCandles(f)
	if err != nil {
		m.log.Error("error loading csv", zap.String("symbol", symbol), zap.Error(err))
		return nil, errors.Wrapf(errors.ErrCodeCSVParse, err, "parse %s", path)
	}
	return candles, nil
}

// StatusReport lists the CSV files present and the configured symbols that
// have none. It never writes anything.
func (m *Manager) StatusReport() (*model.StatusReport, error) {
	report := &model.StatusReport{
		Dir:        m.dataDir,
		Configured: len(m.symbols),
	}

	entries, err := os.ReadDir(m.dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			m.log.Warn("data directory does not exist", zap.String("dir", m.dataDir))
			report.Missing = sortedCopy(m.symbols)
			return report, nil
		}
		return nil, errors.Wrapf(errors.ErrCodeDirectoryRead, err, "read %s", m.dataDir)
	}
	report.DirExists = true

	present := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		path := filepath.Join(m.dataDir, e.Name())
		info, err := e.Info()
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeDirectoryRead, err, "stat %s", path)
		}
		lines, err := countLines(path)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeDirectoryRead, err, "read %s", path)
		}
		rows := lines - 1
		if rows < 0 {
			rows = 0
		}

		symbol := strings.TrimSuffix(e.Name(), ".csv")
		present[symbol] = true
		report.Files = append(report.Files, model.FileStatus{
			Name:      e.Name(),
			Symbol:    symbol,
			SizeBytes: info.Size(),
			Rows:      rows,
		})
	}
	sort.Slice(report.Files, func(i, j int) bool { return report.Files[i].Name < report.Files[j].Name })

	for _, s := range m.symbols {
		if !present[s] {
			report.Missing = append(report.Missing, s)
		}
	}
	sort.Strings(report.Missing)

	return report, nil
}

func countLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	n := 0
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		n++
	}
	return n, sc.Err()
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
