package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"KiteBacktest/internal/errors"
)

// DefaultSymbols is the NSE watch list used when the config file names none.
var DefaultSymbols = []string{
	"RELIANCE", "TCS", "INFY", "HDFCBANK", "ICICIBANK",
	"HINDUNILVR", "ITC", "SBIN", "BHARTIARTL", "LT",
}

// DefaultTickerSuffix is appended to symbols that have no explicit ticker mapping.
const DefaultTickerSuffix = ".NS"

// DefaultRateLimitDelay spaces consecutive market data requests. An explicit
// zero in the config file disables pacing.
const DefaultRateLimitDelay = 500 * time.Millisecond

// Config holds all application configuration. It is built once at startup
// and handed to every component; nothing reads the environment afterwards.
type Config struct {
	Kite struct {
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
		BaseURI   string `yaml:"base_uri" validate:"omitempty,url"`
	} `yaml:"kite"`
	Market struct {
		BaseURL        string            `yaml:"base_url" validate:"required,url"`
		Suffix         string            `yaml:"suffix"`
		Symbols        []string          `yaml:"symbols" validate:"min=1,dive,required"`
		TickerMap      map[string]string `yaml:"ticker_map"`
		Days           int               `yaml:"days" validate:"min=1"`
		RateLimitDelay time.Duration     `yaml:"rate_limit_delay" validate:"gte=0"`
		Timeout        time.Duration     `yaml:"timeout" validate:"gte=0"`
	} `yaml:"market"`
	Storage struct {
		DataDir   string `yaml:"data_dir" validate:"required"`
		TokenFile string `yaml:"token_file" validate:"required"`
		HistoryDB string `yaml:"history_db"`
	} `yaml:"storage"`
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads .env and an optional YAML file, then applies environment
// variable overrides and defaults. Missing Kite credentials are not an
// error here; the broker rejects them later.
func Load(path string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Market.RateLimitDelay = DefaultRateLimitDelay

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "read config", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "parse %s", path)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("KITE_API_KEY"); v != "" {
		cfg.Kite.APIKey = v
	}
	if v := os.Getenv("KITE_API_SECRET"); v != "" {
		cfg.Kite.APISecret = v
	}
	if v := os.Getenv("KITE_BASE_URI"); v != "" {
		cfg.Kite.BaseURI = v
	}
	if v := os.Getenv("YAHOO_BASE_URL"); v != "" {
		cfg.Market.BaseURL = v
	}
	if v := os.Getenv("FETCH_DAYS"); v != "" {
		days, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "FETCH_DAYS=%q is not a whole number", v)
		}
		cfg.Market.Days = days
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("TOKEN_FILE"); v != "" {
		cfg.Storage.TokenFile = v
	}
	if v := os.Getenv("HISTORY_DB"); v != "" {
		cfg.Storage.HistoryDB = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Market.BaseURL == "" {
		cfg.Market.BaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	}
	if cfg.Market.Suffix == "" {
		cfg.Market.Suffix = DefaultTickerSuffix
	}
	if len(cfg.Market.Symbols) == 0 {
		cfg.Market.Symbols = append([]string(nil), DefaultSymbols...)
	}
	if cfg.Market.TickerMap == nil {
		cfg.Market.TickerMap = make(map[string]string, len(DefaultSymbols))
		for _, s := range DefaultSymbols {
			cfg.Market.TickerMap[s] = s + DefaultTickerSuffix
		}
	}
	if cfg.Market.Days == 0 {
		cfg.Market.Days = 365
	}
	if cfg.Market.Timeout == 0 {
		cfg.Market.Timeout = 30 * time.Second
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "historical_data"
	}
	if cfg.Storage.TokenFile == "" {
		cfg.Storage.TokenFile = "access_token.txt"
	}
	if cfg.Storage.HistoryDB == "" {
		cfg.Storage.HistoryDB = "kitedata_history.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks the structural fields. Credentials are intentionally not
// checked: an empty key only fails once it reaches the broker.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}
	return nil
}

// CredentialsMissing reports whether the Kite key or secret is empty.
func (c *Config) CredentialsMissing() bool {
	return strings.TrimSpace(c.Kite.APIKey) == "" || strings.TrimSpace(c.Kite.APISecret) == ""
}

// RequireAPIKey fails when the Kite API key is empty. Building the login URL
// needs nothing else.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.Kite.APIKey) == "" {
		return errors.New(errors.ErrCodeConfigurationIncomplete, "KITE_API_KEY must be set (environment or .env)")
	}
	return nil
}

// RequireCredentials fails when either the Kite API key or secret is empty.
func (c *Config) RequireCredentials() error {
	if c.CredentialsMissing() {
		return errors.New(errors.ErrCodeConfigurationIncomplete, "KITE_API_KEY and KITE_API_SECRET must be set (environment or .env)")
	}
	return nil
}

// HistoryEnabled reports whether run history should be written to SQLite.
func (c *Config) HistoryEnabled() bool {
	return c.Storage.HistoryDB != "off"
}

// ResolveTicker maps an internal symbol to the market data ticker, falling
// back to the configured exchange suffix.
func (c *Config) ResolveTicker(symbol string) string {
	if mapped, ok := c.Market.TickerMap[symbol]; ok {
		return mapped
	}
	return symbol + c.Market.Suffix
}
