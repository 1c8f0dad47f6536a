package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server      ServerConfig
	RateLimit   RateLimitConfig
	DB          DBConfig
	Redis       RedisConfig
	NATS        NATSConfig
	Log         LogConfig
	Detector    DetectorConfig
	Memory      MemoryConfig
	Persona     PersonaConfig
	Maintenance MaintenanceConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

// RateLimitConfig bounds /api/v1 requests per client address. Requests <= 0
// disables the limiter.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NATSConfig is optional; an empty URL disables event publishing and the
// profile-invalidation consumer.
type NATSConfig struct {
	URL string
}

type LogConfig struct {
	Level  string
	Format string
}

// DetectorConfig controls how turn timestamps are converted to local time.
type DetectorConfig struct {
	Timezone string
}

// Location resolves the configured timezone, falling back to time.Local.
func (c DetectorConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

type MemoryConfig struct {
	ShortTermLimit  int
	TopicWindow     int
	LongTermSamples int
}

type PersonaConfig struct {
	CacheSize int
	CacheTTL  time.Duration
}

type MaintenanceConfig struct {
	Enabled       bool
	Schedule      string
	RetentionDays int
	LockTTL       time.Duration
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        k.String("server.host"),
			Port:        k.Int("server.port"),
			CORSOrigins: splitList(k.String("server.cors.origins")),
		},
		RateLimit: RateLimitConfig{
			Requests: k.Int("ratelimit.requests"),
		},
		DB: DBConfig{
			Host:     k.String("db.host"),
			Port:     k.Int("db.port"),
			User:     k.String("db.user"),
			Password: k.String("db.password"),
			Name:     k.String("db.name"),
			SSLMode:  k.String("db.sslmode"),
			MaxConns: int32(k.Int("db.max.conns")),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
		Detector: DetectorConfig{
			Timezone: k.String("detector.timezone"),
		},
		Memory: MemoryConfig{
			ShortTermLimit:  k.Int("memory.shortterm.limit"),
			TopicWindow:     k.Int("memory.topic.window"),
			LongTermSamples: k.Int("memory.longterm.samples"),
		},
		Persona: PersonaConfig{
			CacheSize: k.Int("persona.cache.size"),
		},
		Maintenance: MaintenanceConfig{
			Enabled:       k.String("maintenance.enabled") != "false",
			Schedule:      k.String("maintenance.schedule"),
			RetentionDays: k.Int("maintenance.retention.days"),
		},
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8090
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "persona"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "persona"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 25
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Memory.ShortTermLimit == 0 {
		cfg.Memory.ShortTermLimit = 10
	}
	if cfg.Memory.TopicWindow == 0 {
		cfg.Memory.TopicWindow = 5
	}
	if cfg.Memory.LongTermSamples == 0 {
		cfg.Memory.LongTermSamples = 100
	}
	if cfg.Persona.CacheSize == 0 {
		cfg.Persona.CacheSize = 256
	}
	if cfg.Maintenance.Schedule == "" {
		cfg.Maintenance.Schedule = "@daily"
	}
	if cfg.Maintenance.RetentionDays == 0 {
		cfg.Maintenance.RetentionDays = 90
	}

	// Parse durations
	cfg.Persona.CacheTTL, err = durationOrDefault(k, "persona.cache.ttl", "1h")
	if err != nil {
		return nil, err
	}
	cfg.Maintenance.LockTTL, err = durationOrDefault(k, "maintenance.lock.ttl", "10m")
	if err != nil {
		return nil, err
	}
	cfg.RateLimit.Window, err = durationOrDefault(k, "ratelimit.window", "1m")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func durationOrDefault(k *koanf.Koanf, key, fallback string) (time.Duration, error) {
	s := k.String(key)
	if s == "" {
		s = fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}
