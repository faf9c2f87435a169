package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"rwafolio/internal/domain"
)

// Config is the full agent configuration. Tunables come from the YAML file,
// secrets from the environment (.env in development); env values win.
type Config struct {
	Trading  TradingConfig  `yaml:"trading"`
	Risk     RiskConfig     `yaml:"risk"`
	Exchange ExchangeConfig `yaml:"exchange"`
	Advisor  AdvisorConfig  `yaml:"advisor"`
	News     NewsConfig     `yaml:"news"`
	Storage  StorageConfig  `yaml:"storage"`
	API      APIConfig      `yaml:"api"`
	Log      LogConfig      `yaml:"log"`
}

// TradingConfig defines the instrument universe and the cycle cadence.
type TradingConfig struct {
	Symbols  []string `yaml:"symbols"` // currency pairs, e.g. PAXG_USDT
	Cash     string   `yaml:"cash"`
	Schedule string   `yaml:"schedule"` // cron expression for daemon mode
}

// RiskConfig holds the risk-gate policies.
type RiskConfig struct {
	MaxSpreadPercent    float64 `yaml:"max_spread_percent"`    // reject order when book spread exceeds this
	MaxDeviationPercent float64 `yaml:"max_deviation_percent"` // reject when price drifted from stored history
	MinOrderSize        float64 `yaml:"min_order_size"`        // base units
	FeePercent          float64 `yaml:"fee_percent"`
	BalanceUsageRatio   float64 `yaml:"balance_usage_ratio"` // headroom for fees/slippage
	MinConfidenceScore  int     `yaml:"min_confidence_score"`
}

// ExchangeConfig holds Gate.io connection settings. Key and secret come from
// GATEIO_API_KEY / GATEIO_API_SECRET.
type ExchangeConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"-"`
	APISecret string `yaml:"-"`
}

// AdvisorConfig holds the Gemini settings. The key comes from GEMINI_API_KEY.
type AdvisorConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"-"`
}

// NewsConfig holds news-source settings. The CryptoPanic token comes from
// CRYPTOPANIC_AUTH_TOKEN.
type NewsConfig struct {
	AuthToken string `yaml:"-"`
}

// StorageConfig selects the ledger backend: DynamoDB in production, a local
// SQLite file in dry-run mode.
type StorageConfig struct {
	Region           string `yaml:"region"`       // AWS region for DynamoDB
	TablePrefix      string `yaml:"table_prefix"` // e.g. rwa_trading_agent
	LockLeaseMinutes int    `yaml:"lock_lease_minutes"`
	SQLiteDSN        string `yaml:"sqlite_dsn"`
}

// APIConfig controls the read API server.
type APIConfig struct {
	Port int `yaml:"port"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load reads the YAML file, then .env if present, then applies environment
// overrides and defaults. A missing YAML file is an error; a missing .env
// is not.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// Universe builds the domain universe from the configured symbols.
func (c *Config) Universe() domain.Universe {
	return domain.Universe{Symbols: c.Trading.Symbols, Cash: c.Trading.Cash}
}

// LockLease returns the lock lease duration.
func (c *Config) LockLease() time.Duration {
	return time.Duration(c.Storage.LockLeaseMinutes) * time.Minute
}

func applyEnvOverrides(cfg *Config) {
	cfg.Exchange.APIKey = os.Getenv("GATEIO_API_KEY")
	cfg.Exchange.APISecret = os.Getenv("GATEIO_API_SECRET")
	cfg.Advisor.APIKey = os.Getenv("GEMINI_API_KEY")
	cfg.News.AuthToken = os.Getenv("CRYPTOPANIC_AUTH_TOKEN")

	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Storage.Region = v
	}
	if v := os.Getenv("DYNAMODB_TABLE_PREFIX"); v != "" {
		cfg.Storage.TablePrefix = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}
}

func setDefaults(cfg *Config) {
	if len(cfg.Trading.Symbols) == 0 {
		cfg.Trading.Symbols = domain.DefaultUniverse().Symbols
	}
	if cfg.Trading.Cash == "" {
		cfg.Trading.Cash = "USDT"
	}
	if cfg.Trading.Schedule == "" {
		cfg.Trading.Schedule = "*/5 * * * *" // every 5 minutes
	}
	if cfg.Risk.MaxSpreadPercent <= 0 {
		cfg.Risk.MaxSpreadPercent = 0.5
	}
	if cfg.Risk.MaxDeviationPercent <= 0 {
		cfg.Risk.MaxDeviationPercent = 5.0
	}
	if cfg.Risk.MinOrderSize <= 0 {
		cfg.Risk.MinOrderSize = 0.001
	}
	if cfg.Risk.FeePercent <= 0 {
		cfg.Risk.FeePercent = 0.2
	}
	if cfg.Risk.BalanceUsageRatio <= 0 {
		cfg.Risk.BalanceUsageRatio = 0.998
	}
	if cfg.Risk.MinConfidenceScore <= 0 {
		cfg.Risk.MinConfidenceScore = 8
	}
	if cfg.Exchange.BaseURL == "" {
		cfg.Exchange.BaseURL = "https://api.gateio.ws/api/v4"
	}
	if cfg.Advisor.BaseURL == "" {
		cfg.Advisor.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Advisor.Model == "" {
		cfg.Advisor.Model = "gemini-2.0-flash"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "ap-northeast-1"
	}
	if cfg.Storage.TablePrefix == "" {
		cfg.Storage.TablePrefix = "rwa_trading_agent"
	}
	if cfg.Storage.LockLeaseMinutes <= 0 {
		cfg.Storage.LockLeaseMinutes = 10
	}
	if cfg.Storage.SQLiteDSN == "" {
		cfg.Storage.SQLiteDSN = "rwafolio.db"
	}
	if cfg.API.Port <= 0 {
		cfg.API.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
