package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aiox-platform/persona/internal/api"
	"github.com/aiox-platform/persona/internal/config"
	"github.com/aiox-platform/persona/internal/convcontext"
	"github.com/aiox-platform/persona/internal/database"
	"github.com/aiox-platform/persona/internal/maintenance"
	"github.com/aiox-platform/persona/internal/memory"
	mw "github.com/aiox-platform/persona/internal/middleware"
	inats "github.com/aiox-platform/persona/internal/nats"
	"github.com/aiox-platform/persona/internal/orchestrator"
	"github.com/aiox-platform/persona/internal/persona"
	iredis "github.com/aiox-platform/persona/internal/redis"
	"github.com/aiox-platform/persona/internal/relationships"
	"github.com/aiox-platform/persona/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.DB.DSN()); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// NATS (optional)
	var natsClient *inats.Client
	var publisher *inats.Publisher
	if cfg.NATS.URL != "" {
		natsClient, err = inats.NewClient(ctx, cfg.NATS)
		if err != nil {
			slog.Error("connecting to nats", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()
		publisher = inats.NewPublisher(natsClient.JetStream())
	}

	loc, err := cfg.Detector.Location()
	if err != nil {
		slog.Error("resolving detector timezone", "error", err)
		os.Exit(1)
	}

	// Core components
	relRepo := relationships.NewPostgresRepository(pool)
	memoryMgr := memory.NewManager(memory.NewPostgresRepository(pool), relRepo, memory.Config{
		ShortTermLimit:  cfg.Memory.ShortTermLimit,
		TopicWindow:     cfg.Memory.TopicWindow,
		LongTermSamples: cfg.Memory.LongTermSamples,
		RetentionDays:   cfg.Maintenance.RetentionDays,
	})
	detector := convcontext.NewDetector(relRepo,
		convcontext.WithLocation(loc),
		convcontext.WithHistory(memoryMgr),
	)
	selector := persona.NewSelector(persona.NewPostgresRepository(pool), persona.Config{
		CacheSize: cfg.Persona.CacheSize,
		CacheTTL:  cfg.Persona.CacheTTL,
	})

	// Keep typed-nil publishers out of the interface fields.
	var turnEvents orchestrator.EventPublisher
	var profileEvents persona.ProfileEvents
	var maintenanceEvents maintenance.EventPublisher
	if publisher != nil {
		turnEvents, profileEvents, maintenanceEvents = publisher, publisher, publisher
	}

	pipeline := orchestrator.NewPipeline(detector, memoryMgr, selector, turnEvents)
	turnHandler := orchestrator.NewHandler(pipeline, detector)
	personaHandler := persona.NewHandler(selector, profileEvents)

	var wg sync.WaitGroup

	if natsClient != nil {
		listener := inats.NewProfileUpdateListener(
			inats.NewConsumerManager(natsClient.JetStream()),
			selector,
			listenerName(),
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := listener.Start(ctx); err != nil {
				slog.Error("profile update listener error", "error", err)
			}
		}()
	}

	if cfg.Maintenance.Enabled {
		janitor := maintenance.NewJanitor(memoryMgr, iredis.NewLocker(redisClient), maintenanceEvents, maintenance.Config{
			Schedule:      cfg.Maintenance.Schedule,
			RetentionDays: cfg.Maintenance.RetentionDays,
			LockTTL:       cfg.Maintenance.LockTTL,
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := janitor.Start(ctx); err != nil {
				slog.Error("maintenance janitor error", "error", err)
			}
		}()
	}

	// Router
	routerCfg := api.RouterConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		Readiness: map[string]api.Check{
			"database": func(ctx context.Context) error { return database.HealthCheck(ctx, pool) },
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
			"nats":     natsCheck(natsClient),
		},
	}
	if cfg.RateLimit.Requests > 0 {
		routerCfg.RateLimiter = mw.NewRateLimiter(redisClient, "ratelimit:api:", cfg.RateLimit.Requests, cfg.RateLimit.Window).Middleware
	}

	router := api.NewRouter(routerCfg, api.HandlerSet{
		PrepareTurn:       turnHandler.Prepare,
		RecordTurn:        turnHandler.Record,
		ContextStatistics: turnHandler.Statistics,
		InvalidatePersona: personaHandler.Invalidate,
		ClearPersonaCache: personaHandler.ClearCache,
	})

	// Start server
	srv := server.New(cfg.Server, router)
	if err := srv.Start(ctx); err != nil {
		slog.Error("server error", "error", err)
		stop()
		wg.Wait()
		os.Exit(1)
	}

	stop()
	wg.Wait()
	slog.Info("persona daemon stopped")
}

func natsCheck(c *inats.Client) api.Check {
	if c == nil {
		return nil
	}
	return c.Ping
}

// listenerName gives each replica its own durable consumer so every replica
// sees every profile update.
func listenerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "persona-profile-cache"
	}
	return "persona-profile-cache-" + host
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
