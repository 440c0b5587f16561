package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup BackupConfig `yaml:"backup"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
		Channel         string `yaml:"channel"`
	} `yaml:"redis"`

	API struct {
		Port           int     `yaml:"port"`
		APIKey         string  `yaml:"api_key"`
		RateLimitRPS   float64 `yaml:"rate_limit_rps"`
		RateLimitBurst int     `yaml:"rate_limit_burst"`
	} `yaml:"api"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Availability struct {
		DefaultStartTime string `yaml:"default_start_time"`
		DefaultEndTime   string `yaml:"default_end_time"`
		Timezone         string `yaml:"timezone"`
	} `yaml:"availability"`

	Directory struct {
		Path                  string `yaml:"path"`
		ReloadIntervalSeconds int    `yaml:"reload_interval_seconds"`
	} `yaml:"directory"`

	Notifications struct {
		CheckIntervalSeconds int `yaml:"check_interval_seconds"`
		RetentionDays        int `yaml:"retention_days"`
	} `yaml:"notifications"`

	Logging struct {
		Level   string `yaml:"level"`
		Console bool   `yaml:"console"`
	} `yaml:"logging"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	IntervalHours int    `yaml:"interval_hours"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

// Interval returns the backup period, 24h when unset.
func (b BackupConfig) Interval() time.Duration {
	if b.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(b.IntervalHours) * time.Hour
}

// LoadEnv loads variables from .env files when present. Existing
// environment variables win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = "data/ascend.db"
	}
	if c.Backup.Path == "" {
		c.Backup.Path = "data/backups"
	}
	if c.Redis.Channel == "" {
		c.Redis.Channel = "ascend:changes"
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.RateLimitRPS <= 0 {
		c.API.RateLimitRPS = 20
	}
	if c.API.RateLimitBurst <= 0 {
		c.API.RateLimitBurst = 40
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Availability.DefaultStartTime == "" {
		c.Availability.DefaultStartTime = "09:00"
	}
	if c.Availability.DefaultEndTime == "" {
		c.Availability.DefaultEndTime = "17:00"
	}
	if c.Directory.Path == "" {
		c.Directory.Path = "configs/directory.yaml"
	}
	if c.Notifications.CheckIntervalSeconds <= 0 {
		c.Notifications.CheckIntervalSeconds = 60
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// CacheTTL returns the Redis slot cache TTL; zero disables caching.
func (c *Config) CacheTTL() time.Duration {
	if c.Redis.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

// Location returns the configured timezone used to interpret calendar days.
func (c *Config) Location() *time.Location {
	if c.Availability.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Availability.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// DirectoryReloadInterval returns the seed file polling period.
func (c *Config) DirectoryReloadInterval() time.Duration {
	if c.Directory.ReloadIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Directory.ReloadIntervalSeconds) * time.Second
}

// NotificationCheckInterval returns how often scheduled notifications are
// delivered.
func (c *Config) NotificationCheckInterval() time.Duration {
	return time.Duration(c.Notifications.CheckIntervalSeconds) * time.Second
}
