package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"marketplace/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	API        APIConfig        `yaml:"api"`
	Redis      RedisConfig      `yaml:"redis"`
	Cache      CacheConfig      `yaml:"cache"`
	Session    SessionConfig    `yaml:"session"`
	Booking    BookingConfig    `yaml:"booking"`
	Wallet     WalletConfig     `yaml:"wallet"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	// RPS limits outgoing requests; zero disables the limiter.
	RPS   float64     `yaml:"rps"`
	Burst int         `yaml:"burst"`
	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig applies to idempotent reads only.
type RetryConfig struct {
	MaxRetries    int           `yaml:"max_retries"`
	InitialDelay  time.Duration `yaml:"initial_delay"`
	MaxDelay      time.Duration `yaml:"max_delay"`
	BackoffFactor float64       `yaml:"backoff_factor"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type CacheConfig struct {
	CatalogTTL time.Duration `yaml:"catalog_ttl"`
}

type SessionConfig struct {
	TTL       time.Duration `yaml:"ttl"`
	KeyPrefix string        `yaml:"key_prefix"`
	// Name is the local profile the session is stored under.
	Name string `yaml:"name"`
}

type BookingConfig struct {
	Location    string `yaml:"location"`
	FirstSlot   string `yaml:"first_slot"`
	LastSlot    string `yaml:"last_slot"`
	SlotMinutes int    `yaml:"slot_minutes"`
}

// Loc returns the configured time zone, UTC if it cannot be loaded.
func (b BookingConfig) Loc() *time.Location {
	loc, err := time.LoadLocation(b.Location)
	if err != nil {
		return time.UTC
	}
	return loc
}

type WalletConfig struct {
	MinDeposit   int64   `yaml:"min_deposit"`
	QuickAmounts []int64 `yaml:"quick_amounts"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api base_url is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api base_url %q is not an absolute URL", c.API.BaseURL)
	}
	if c.API.RPS < 0 {
		return errors.New("api rps must not be negative")
	}
	if _, err := time.LoadLocation(c.Booking.Location); err != nil {
		return fmt.Errorf("booking location: %w", err)
	}
	if c.Booking.SlotMinutes <= 0 {
		return errors.New("booking slot_minutes must be positive")
	}
	if c.Booking.FirstSlot > c.Booking.LastSlot {
		return fmt.Errorf("booking first_slot %s is after last_slot %s", c.Booking.FirstSlot, c.Booking.LastSlot)
	}
	if c.Wallet.MinDeposit < 0 {
		return errors.New("wallet min_deposit must not be negative")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "marketplace"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 15 * time.Second
	}
	if c.API.RPS > 0 && c.API.Burst == 0 {
		c.API.Burst = 1
	}
	if c.API.Retry.InitialDelay == 0 {
		c.API.Retry.InitialDelay = 200 * time.Millisecond
	}
	if c.API.Retry.MaxDelay == 0 {
		c.API.Retry.MaxDelay = 2 * time.Second
	}
	if c.API.Retry.BackoffFactor == 0 {
		c.API.Retry.BackoffFactor = 2
	}
	if c.Cache.CatalogTTL == 0 {
		c.Cache.CatalogTTL = models.DefaultCatalogCacheTTL * time.Second
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = models.DefaultSessionTTL * time.Second
	}
	if c.Session.KeyPrefix == "" {
		c.Session.KeyPrefix = "marketplace:session:"
	}
	if c.Session.Name == "" {
		c.Session.Name = "default"
	}
	if c.Booking.Location == "" {
		c.Booking.Location = "Africa/Luanda"
	}
	if c.Booking.FirstSlot == "" {
		c.Booking.FirstSlot = models.FirstSlot
	}
	if c.Booking.LastSlot == "" {
		c.Booking.LastSlot = models.LastSlot
	}
	if c.Booking.SlotMinutes == 0 {
		c.Booking.SlotMinutes = models.SlotMinutes
	}
	if c.Wallet.MinDeposit == 0 {
		c.Wallet.MinDeposit = models.DefaultMinDeposit
	}
	if len(c.Wallet.QuickAmounts) == 0 {
		c.Wallet.QuickAmounts = append([]int64(nil), models.QuickDepositAmounts...)
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
