package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddress      = ":8081"
	defaultTokenKey         = "coursedesk:session:token"
	defaultPackagesCacheTTL = 300
	defaultHorizonDays      = 30
	defaultTimezone         = "Europe/Rome"
	defaultCurrency         = "EUR"
	defaultAuthPerMinute    = 20
	defaultAuthBurst        = 5
)

var defaultTimeSlots = []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00", "17:00"}

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Backend   BackendConfig   `yaml:"backend"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Booking   BookingConfig   `yaml:"booking"`
	Checkout  CheckoutConfig  `yaml:"checkout"`
	Log       LogConfig       `yaml:"log"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

// BackendConfig points at the course backend REST API. No request timeout is
// applied unless TimeoutSeconds is set.
type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr                    string `yaml:"addr"`
	Password                string `yaml:"password"`
	DB                      int    `yaml:"db"`
	TokenKey                string `yaml:"token_key"`
	PackagesCacheTTLSeconds int    `yaml:"packages_cache_ttl_seconds"`
}

func (r RedisConfig) PackagesCacheTTL() time.Duration {
	return time.Duration(r.PackagesCacheTTLSeconds) * time.Second
}

type KafkaConfig struct {
	Brokers       []string `yaml:"brokers"`
	CheckoutTopic string   `yaml:"checkout_topic"`
	BookingTopic  string   `yaml:"booking_topic"`
	GroupID       string   `yaml:"group_id"`
}

type BookingConfig struct {
	HorizonDays int      `yaml:"horizon_days"`
	TimeSlots   []string `yaml:"time_slots"`
	Timezone    string   `yaml:"timezone"`
}

// Location resolves Timezone, falling back to UTC when the zone database
// does not know it.
func (b BookingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type CheckoutConfig struct {
	Currency string `yaml:"currency"`
}

type LogConfig struct {
	Env string `yaml:"env"`
}

type RateLimitConfig struct {
	AuthPerMinute int `yaml:"auth_per_minute"`
	Burst         int `yaml:"burst"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf("backend.base_url is required")
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = defaultHTTPAddress
	}
	if c.Redis.TokenKey == "" {
		c.Redis.TokenKey = defaultTokenKey
	}
	if c.Redis.PackagesCacheTTLSeconds == 0 {
		c.Redis.PackagesCacheTTLSeconds = defaultPackagesCacheTTL
	}
	if c.Booking.HorizonDays == 0 {
		c.Booking.HorizonDays = defaultHorizonDays
	}
	if len(c.Booking.TimeSlots) == 0 {
		c.Booking.TimeSlots = append([]string(nil), defaultTimeSlots...)
	}
	if c.Booking.Timezone == "" {
		c.Booking.Timezone = defaultTimezone
	}
	if c.Checkout.Currency == "" {
		c.Checkout.Currency = defaultCurrency
	}
	if c.RateLimit.AuthPerMinute == 0 {
		c.RateLimit.AuthPerMinute = defaultAuthPerMinute
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = defaultAuthBurst
	}
}
