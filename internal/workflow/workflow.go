package workflow

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"KiteBacktest/internal/auth"
	"KiteBacktest/internal/broker"
	"KiteBacktest/internal/calculator"
	"KiteBacktest/internal/collector"
	"KiteBacktest/internal/config"
	"KiteBacktest/internal/errors"
	"KiteBacktest/internal/model"
	"KiteBacktest/internal/recorder"
	"KiteBacktest/internal/report"
	"KiteBacktest/internal/storage"
)

// Workflow ties authentication, download and storage together for the CLI.
type Workflow struct {
	Auth      *auth.Manager
	Store     *storage.Manager
	Collector *collector.Collector
	Recorder  recorder.Recorder

	cfg      *config.Config
	log      *zap.Logger
	progress io.Writer
	newRunID func() string
}

// New creates a Workflow. Progress is drawn on stderr until
// SetProgressOutput says otherwise.
func New(cfg *config.Config, am *auth.Manager, store *storage.Manager, col *collector.Collector, rec recorder.Recorder, log *zap.Logger) *Workflow {
	return &Workflow{
		Auth:      am,
		Store:     store,
		Collector: col,
		Recorder:  rec,
		cfg:       cfg,
		log:       log,
		progress:  os.Stderr,
		newRunID:  func() string { return uuid.New().String() },
	}
}

// SetProgressOutput redirects the fetch progress bar.
func (w *Workflow) SetProgressOutput(out io.Writer) {
	w.progress = out
}

// BeginAuth returns the login URL for the manual browser step.
func (w *Workflow) BeginAuth() string {
	return w.Auth.LoginURL()
}

// CompleteAuth exchanges a request token and records the outcome.
func (w *Workflow) CompleteAuth(ctx context.Context, requestToken string) (broker.Session, error) {
	session, err := w.Auth.AuthenticateWithToken(ctx, requestToken)

	evt := &recorder.AuthEvent{Success: err == nil, UserName: session.UserName, Code: errors.CodeName(err)}
	if recErr := w.Recorder.RecordAuth(evt); recErr != nil {
		w.log.Error("record auth", zap.Error(recErr))
	}
	return session, err
}

// Authenticate is the single-entry form of the auth protocol. Without a
// request token it returns the login instructions; with one it performs the
// exchange and returns a confirmation or the failure text.
func (w *Workflow) Authenticate(ctx context.Context, requestToken string) (bool, string) {
	if requestToken == "" {
		return false, report.FormatAuthInstructions(w.BeginAuth())
	}

	session, err := w.CompleteAuth(ctx, requestToken)
	if err != nil {
		return false, "❌ Authentication failed: " + err.Error()
	}
	return true, report.FormatAuthSuccess(session, w.cfg.Storage.TokenFile)
}

// FetchAndSaveData downloads every configured symbol in order and writes its
// CSV file. It refuses to start without authentication, before any network
// call or filesystem write. A failing symbol is tallied and the loop moves on.
func (w *Workflow) FetchAndSaveData(ctx context.Context, days int) (*model.FetchSummary, error) {
	if !w.Auth.IsAuthenticated() {
		w.log.Warn("fetch refused: not authenticated")
		return nil, errors.New(errors.ErrCodeNotAuthenticated, "not authenticated; run login and auth first")
	}
	if days <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "days must be positive, got %d", days)
	}
	if err := w.Store.SetupDirectories(); err != nil {
		return nil, err
	}

	symbols := w.cfg.Market.Symbols
	summary := &model.FetchSummary{
		RunID: w.newRunID(),
		Days:  days,
		Total: len(symbols),
	}
	w.log.Info("fetch run started",
		zap.String("run_id", summary.RunID),
		zap.Int("symbols", len(symbols)),
		zap.Int("days", days))

	bar := progressbar.NewOptions(len(symbols),
		progressbar.OptionSetWriter(w.progress),
		progressbar.OptionSetDescription("Fetching"),
		progressbar.OptionShowCount())

	started := time.Now()
	for _, symbol := range symbols {
		bar.Describe(symbol)
		res := w.fetchOne(ctx, symbol, days)
		if res.Saved {
			summary.Succeeded++
		}
		summary.Results = append(summary.Results, res)

		if err := w.Recorder.RecordFetch(&recorder.FetchEvent{
			RunID:   summary.RunID,
			Symbol:  res.Symbol,
			Ticker:  res.Ticker,
			Candles: res.Candles,
			Saved:   res.Saved,
			Code:    res.Code,
		}); err != nil {
			w.log.Error("record fetch", zap.String("symbol", symbol), zap.Error(err))
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	if err := w.Recorder.RecordRun(&recorder.RunEvent{
		RunID:     summary.RunID,
		Days:      days,
		Succeeded: summary.Succeeded,
		Total:     summary.Total,
		Duration:  time.Since(started),
	}); err != nil {
		w.log.Error("record run", zap.Error(err))
	}

	w.log.Info("fetch run finished",
		zap.String("run_id", summary.RunID),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("total", summary.Total))
	return summary, nil
}

func (w *Workflow) fetchOne(ctx context.Context, symbol string, days int) model.SymbolResult {
	res := model.SymbolResult{Symbol: symbol, Ticker: w.cfg.ResolveTicker(symbol)}

	candles, err := w.Collector.FetchHistoricalData(ctx, symbol, days)
	if err == nil {
		err = w.Collector.SaveDataToCSV(symbol, candles)
	}
	if err != nil {
		res.Code = errors.CodeName(err)
		res.Err = err.Error()
		if !errors.IsMarketDataError(err) {
			w.log.Error("local failure while saving", zap.String("symbol", symbol), zap.Error(err))
		}
		return res
	}

	res.Candles = len(candles)
	res.Saved = true
	return res
}

// StatusReport describes the data directory. It never writes.
func (w *Workflow) StatusReport() (*model.StatusReport, error) {
	return w.Store.StatusReport()
}

// LoadData returns the stored candles for symbol.
func (w *Workflow) LoadData(symbol string) ([]model.Candle, error) {
	return w.Store.LoadCSV(symbol)
}

// AnalyzeData summarises every configured symbol that has a readable file.
// Absent or unparseable files are skipped.
func (w *Workflow) AnalyzeData() []model.SymbolAnalysis {
	var out []model.SymbolAnalysis
	for _, symbol := range w.cfg.Market.Symbols {
		candles, err := w.Store.LoadCSV(symbol)
		if err != nil || len(candles) == 0 {
			continue
		}
		a, err := calculator.Analyze(symbol, candles)
		if err != nil {
			w.log.Warn("analyze failed", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		out = append(out, a)
	}
	return out
}
