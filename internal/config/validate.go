package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1–65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1–65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1–65535, got %d", c.Redis.Port))
	}

	if _, err := c.Detector.Location(); err != nil {
		errs = append(errs, fmt.Sprintf("DETECTOR_TIMEZONE is invalid: %v", err))
	}

	if c.Memory.ShortTermLimit < 1 {
		errs = append(errs, "MEMORY_SHORTTERM_LIMIT must be positive")
	}
	if c.Memory.TopicWindow < 1 {
		errs = append(errs, "MEMORY_TOPIC_WINDOW must be positive")
	}
	if c.Memory.LongTermSamples < 1 {
		errs = append(errs, "MEMORY_LONGTERM_SAMPLES must be positive")
	}

	if c.Persona.CacheSize < 1 {
		errs = append(errs, "PERSONA_CACHE_SIZE must be positive")
	}
	if c.Persona.CacheTTL <= 0 {
		errs = append(errs, "PERSONA_CACHE_TTL must be positive")
	}

	if c.Maintenance.Enabled {
		if c.Maintenance.RetentionDays < 1 {
			errs = append(errs, "MAINTENANCE_RETENTION_DAYS must be positive")
		}
		if _, err := cron.ParseStandard(c.Maintenance.Schedule); err != nil {
			errs = append(errs, fmt.Sprintf("MAINTENANCE_SCHEDULE is invalid: %v", err))
		}
		if c.Maintenance.LockTTL <= 0 {
			errs = append(errs, "MAINTENANCE_LOCK_TTL must be positive")
		}
	}

	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		errs = append(errs, "RATELIMIT_WINDOW must be positive when RATELIMIT_REQUESTS is set")
	}

	// NATS is optional: warn only
	if c.NATS.URL == "" {
		slog.Warn("NATS_URL is empty; events are not published and profile invalidation is local only")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
