package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "chargepulse/libs/config"
)

// TableServiceConfig points at the generic table service and the session table.
type TableServiceConfig struct {
	URL   string `yaml:"url" env:"MONITOR_TABLE_API_URL"`
	Table string `yaml:"table" env:"MONITOR_TABLE_NAME"`
}

// StatusServiceConfig points at the status-ping service. Empty URL disables
// the ping.
type StatusServiceConfig struct {
	URL string `yaml:"url" env:"MONITOR_STATUS_API_URL"`
}

// RedisConfig configures the live-projection cache. Empty addr disables it.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"MONITOR_REDIS_ADDR"`
	Password string `yaml:"password" env:"MONITOR_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"MONITOR_REDIS_DB"`
	TTL      int    `yaml:"ttlSeconds" env:"MONITOR_REDIS_TTL"`
}

// WSConfig configures the live-update gateway. Empty secret means clients
// identify with a plain connection_id query parameter.
type WSConfig struct {
	TokenSecret     string `yaml:"tokenSecret" env:"MONITOR_WS_TOKEN_SECRET"`
	TokenTTLMinutes int    `yaml:"tokenTtlMinutes" env:"MONITOR_WS_TOKEN_TTL"`
	WriteTimeoutSec int    `yaml:"writeTimeoutSeconds" env:"MONITOR_WS_WRITE_TIMEOUT"`
	PingIntervalSec int    `yaml:"pingIntervalSeconds" env:"MONITOR_WS_PING_INTERVAL"`
}

// BookingConfig holds the decision-engine knobs.
type BookingConfig struct {
	InitialTimeoutMinutes int `yaml:"initialTimeoutMinutes" env:"MONITOR_INITIAL_TIMEOUT_MINUTES"`
}

// Config defines session-monitor configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"MONITOR_HTTP_PORT"`
	} `yaml:"http"`
	TableService  TableServiceConfig  `yaml:"tableService"`
	StatusService StatusServiceConfig `yaml:"statusService"`
	Redis         RedisConfig         `yaml:"redis"`
	WS            WSConfig            `yaml:"ws"`
	Booking       BookingConfig       `yaml:"booking"`
}

// Load reads configuration via the shared helper and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8086"
	cfg.TableService.Table = "ChargingSessionRecords"
	cfg.Redis.TTL = 3600
	cfg.WS.TokenTTLMinutes = 60
	cfg.WS.WriteTimeoutSec = 10
	cfg.WS.PingIntervalSec = 30
	cfg.Booking.InitialTimeoutMinutes = 5

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.TableService.URL) == "" {
		return nil, errors.New("config: table service url required")
	}
	if strings.TrimSpace(cfg.TableService.Table) == "" {
		return nil, errors.New("config: table name required")
	}
	if cfg.Booking.InitialTimeoutMinutes <= 0 {
		return nil, errors.New("config: initial booking timeout must be positive")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8086"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// BookingTimeout is how long a BOOKED session may wait for a start.
func (c *Config) BookingTimeout() time.Duration {
	return time.Duration(c.Booking.InitialTimeoutMinutes) * time.Minute
}

// LiveTTL is how long cached live projections survive.
func (c *Config) LiveTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return time.Hour
	}
	return time.Duration(c.Redis.TTL) * time.Second
}

// TokenTTL is the connect-token lifetime.
func (c *Config) TokenTTL() time.Duration {
	if c.WS.TokenTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.WS.TokenTTLMinutes) * time.Minute
}

// WSWriteTimeout bounds a single socket write.
func (c *Config) WSWriteTimeout() time.Duration {
	if c.WS.WriteTimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.WS.WriteTimeoutSec) * time.Second
}

// WSPingInterval is the keepalive cadence.
func (c *Config) WSPingInterval() time.Duration {
	if c.WS.PingIntervalSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.WS.PingIntervalSec) * time.Second
}
