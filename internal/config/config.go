package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"PriceBoard/internal/session"
)

// Config holds all application configuration.
type Config struct {
	Source struct {
		BaseURL string        `yaml:"base_url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"source"`
	Session struct {
		Timezone string `yaml:"timezone"`
		Open     string `yaml:"open"`
		Close    string `yaml:"close"`
	} `yaml:"session"`
	Display struct {
		TickInterval     time.Duration `yaml:"tick_interval"`
		FlashDuration    time.Duration `yaml:"flash_duration"`
		MaxHistory       int           `yaml:"max_history"`
		LedgerColumnSize int           `yaml:"ledger_column_size"`
		FilterLedger     *bool         `yaml:"filter_ledger"`
		Console          bool          `yaml:"console"`
	} `yaml:"display"`
	Cache struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"cache"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "read config")
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "parse config")
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PRICE_SOURCE_URL"); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv("PRICE_SOURCE_API_KEY"); v != "" {
		cfg.Source.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SESSION_TZ"); v != "" {
		cfg.Session.Timezone = v
	}
	if v := os.Getenv("SESSION_OPEN"); v != "" {
		cfg.Session.Open = v
	}
	if v := os.Getenv("SESSION_CLOSE"); v != "" {
		cfg.Session.Close = v
	}
	if v := os.Getenv("TICK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Display.TickInterval = d
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Cache.SQLitePath = v
	}
	if v, ok := os.LookupEnv("SERVER_ADDR"); ok {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Defaults
	if cfg.Source.Timeout == 0 {
		cfg.Source.Timeout = 10 * time.Second
	}
	if cfg.Session.Timezone == "" {
		cfg.Session.Timezone = "America/New_York"
	}
	if cfg.Session.Open == "" {
		cfg.Session.Open = "16:00"
	}
	if cfg.Session.Close == "" {
		cfg.Session.Close = "00:00"
	}
	if cfg.Display.TickInterval == 0 {
		cfg.Display.TickInterval = 10 * time.Second
	}
	if cfg.Display.FlashDuration == 0 {
		cfg.Display.FlashDuration = 800 * time.Millisecond
	}
	if cfg.Display.MaxHistory == 0 {
		cfg.Display.MaxHistory = 300
	}
	if cfg.Display.LedgerColumnSize == 0 {
		cfg.Display.LedgerColumnSize = 20
	}
	if cfg.Display.FilterLedger == nil {
		filter := true
		cfg.Display.FilterLedger = &filter
	}
	if _, ok := os.LookupEnv("SERVER_ADDR"); !ok && cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Source.BaseURL == "" {
		return errors.New("source.base_url is required")
	}
	if _, err := c.Window(); err != nil {
		return err
	}
	if c.Display.TickInterval <= 0 {
		return errors.New("display.tick_interval must be positive")
	}
	if c.Display.FlashDuration <= 0 {
		return errors.New("display.flash_duration must be positive")
	}
	if c.Display.MaxHistory <= 0 {
		return errors.New("display.max_history must be positive")
	}
	if c.Display.LedgerColumnSize <= 0 {
		return errors.New("display.ledger_column_size must be positive")
	}
	return nil
}

// Window parses the session open and close times.
func (c *Config) Window() (session.Window, error) {
	open, err := session.ParseClock(c.Session.Open)
	if err != nil {
		return session.Window{}, errors.Wrap(err, "session.open")
	}
	closeAt, err := session.ParseClock(c.Session.Close)
	if err != nil {
		return session.Window{}, errors.Wrap(err, "session.close")
	}
	return session.Window{Open: open, Close: closeAt}, nil
}
