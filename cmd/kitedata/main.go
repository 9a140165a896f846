package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"KiteBacktest/internal/auth"
	"KiteBacktest/internal/broker"
	"KiteBacktest/internal/collector"
	"KiteBacktest/internal/config"
	"KiteBacktest/internal/logger"
	"KiteBacktest/internal/recorder"
	"KiteBacktest/internal/report"
	"KiteBacktest/internal/storage"
	"KiteBacktest/internal/workflow"
)

// app holds everything a subcommand needs.
type app struct {
	cfg *config.Config
	log *logger.Logger
	wf  *workflow.Workflow
	rec recorder.Recorder
}

func (a *app) close() {
	if err := a.rec.Close(); err != nil {
		a.log.Error("close recorder", zap.Error(err))
	}
	_ = a.log.Sync()
}

// openHistory switches the workflow to the SQLite recorder. Only commands
// that change state call it, so read-only commands never create the file.
func (a *app) openHistory() {
	if !a.cfg.HistoryEnabled() {
		return
	}
	sr, err := recorder.NewSQLiteRecorder(a.cfg.Storage.HistoryDB, a.log.Logger)
	if err != nil {
		a.log.Warn("init sqlite recorder failed, using noop", zap.Error(err))
		return
	}
	a.rec = sr
	a.wf.Recorder = sr
}

func setup(cmd *cli.Command) (*app, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lg, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log := lg.Logger

	rec := recorder.NewNoopRecorder()
	b := broker.NewKiteBroker(cfg.Kite.APIKey, cfg.Kite.BaseURI, cfg.Proxy, cfg.Market.Timeout)
	am := auth.NewManager(cfg, b, log)
	store := storage.NewManager(cfg, log)
	fetcher := collector.NewYahooFetcher(cfg.Market.BaseURL, cfg.Proxy, cfg.Market.Timeout)
	col := collector.NewCollector(fetcher, cfg, store, log)
	log.Debug("components ready", zap.String("data_source", fetcher.Name()), zap.String("data_dir", store.Dir()))

	return &app{
		cfg: cfg,
		log: lg,
		wf:  workflow.New(cfg, am, store, col, rec, log),
		rec: rec,
	}, nil
}

// withApp builds the application for one subcommand and tears it down afterwards.
func withApp(fn func(ctx context.Context, cmd *cli.Command, a *app) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		a, err := setup(cmd)
		if err != nil {
			return cli.Exit(report.ErrorStyle.Render("❌ "+err.Error()), 1)
		}
		defer a.close()
		return fn(ctx, cmd, a)
	}
}

func loginAction(_ context.Context, _ *cli.Command, a *app) error {
	if err := a.cfg.RequireAPIKey(); err != nil {
		return cli.Exit("❌ "+err.Error(), 1)
	}
	fmt.Print(report.FormatAuthInstructions(a.wf.BeginAuth()))
	return nil
}

func authAction(ctx context.Context, cmd *cli.Command, a *app) error {
	if err := a.cfg.RequireCredentials(); err != nil {
		return cli.Exit("❌ "+err.Error(), 1)
	}
	a.openHistory()
	ok, text := a.wf.Authenticate(ctx, cmd.String("request-token"))
	if !ok {
		return cli.Exit(text, 1)
	}
	fmt.Print(text)
	return nil
}

func fetchAction(ctx context.Context, cmd *cli.Command, a *app) error {
	days := a.cfg.Market.Days
	if cmd.IsSet("days") {
		days = int(cmd.Int("days"))
	}

	if !a.wf.Auth.IsAuthenticated() {
		return cli.Exit(report.FormatNotAuthenticated(), 1)
	}
	a.openHistory()

	fmt.Print(report.FormatFetchHeader(len(a.cfg.Market.Symbols), days, a.wf.Collector.Fetcher.Name()))
	summary, err := a.wf.FetchAndSaveData(ctx, days)
	if err != nil {
		return cli.Exit("❌ "+err.Error(), 1)
	}
	fmt.Print(report.FormatFetchSummary(summary))
	return nil
}

func statusAction(_ context.Context, _ *cli.Command, a *app) error {
	status, err := a.wf.StatusReport()
	if err != nil {
		return cli.Exit("❌ "+err.Error(), 1)
	}
	fmt.Print(report.FormatStatusReport(status))

	if !a.cfg.HistoryEnabled() {
		return nil
	}
	hist, err := recorder.OpenSQLiteHistory(a.cfg.Storage.HistoryDB, a.log.Logger)
	if err != nil {
		if !os.IsNotExist(err) {
			a.log.Warn("open run history", zap.Error(err))
		}
		return nil
	}
	defer hist.Close()

	run, at, err := hist.LastRun()
	if err != nil {
		a.log.Warn("read run history", zap.Error(err))
		return nil
	}
	var failed []string
	if run != nil {
		if failed, err = hist.FailedSymbols(run.RunID); err != nil {
			a.log.Warn("read run history", zap.Error(err))
		}
	}
	fmt.Print(report.FormatLastRun(run, at, failed))
	return nil
}

func analyzeAction(_ context.Context, _ *cli.Command, a *app) error {
	fmt.Print(report.FormatAnalysis(a.wf.AnalyzeData()))
	return nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:        "kitedata",
		Usage:       "Kite Connect authentication and daily historical data for backtesting",
		Description: report.FormatBanner(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file (optional)",
				Value:   "configs/config.yaml",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
		},
		Action: func(_ context.Context, _ *cli.Command) error {
			fmt.Print(report.FormatBanner())
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Print the Kite login URL and the steps to obtain a request token",
				Action: withApp(loginAction),
			},
			{
				Name:  "auth",
				Usage: "Exchange a request token for an access token and save it",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "request-token",
						Aliases:  []string{"t"},
						Usage:    "The request_token from the login callback URL",
						Required: true,
					},
				},
				Action: withApp(authAction),
			},
			{
				Name:  "fetch",
				Usage: "Download daily candles for every configured symbol",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "days",
						Aliases: []string{"d"},
						Usage:   "Number of calendar days to download (defaults to market.days)",
					},
				},
				Action: withApp(fetchAction),
			},
			{
				Name:   "status",
				Usage:  "List downloaded files and missing symbols",
				Action: withApp(statusAction),
			},
			{
				Name:   "analyze",
				Usage:  "Summarise close prices for each downloaded symbol",
				Action: withApp(analyzeAction),
			},
		},
	}
}

func main() {
	cmd := newCommand()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
