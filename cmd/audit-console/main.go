package main

// @title           Audit Console Agent API
// @version         1.0
// @description     Local agent that owns the console session lifecycle and talks to the audit backend.

// @contact.name   Custodia Labs
// @contact.url    https://github.com/custodia-labs/audit-console/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      127.0.0.1:7070
// @BasePath  /
// @schemes   http

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	_ "github.com/custodia-labs/audit-console/docs"
	"github.com/custodia-labs/audit-console/internal/adapters/driven/api"
	"github.com/custodia-labs/audit-console/internal/adapters/driven/auth"
	"github.com/custodia-labs/audit-console/internal/adapters/driven/clock"
	"github.com/custodia-labs/audit-console/internal/adapters/driven/kvstore"
	"github.com/custodia-labs/audit-console/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/audit-console/internal/adapters/driven/redis"
	"github.com/custodia-labs/audit-console/internal/adapters/driven/ui"
	"github.com/custodia-labs/audit-console/internal/adapters/driving/http"
	"github.com/custodia-labs/audit-console/internal/config"
	"github.com/custodia-labs/audit-console/internal/core/ports/driven"
	"github.com/custodia-labs/audit-console/internal/core/services"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	instanceID := uuid.NewString()
	log.Printf("audit-console %s starting (instance %s, store %s)", version, instanceID, cfg.StoreBackend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	// Session store
	store, pinger, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}
	defer closeStore()

	if cfg.StoreSecret != "" {
		sealed, err := kvstore.NewSealedStore(store, []byte(cfg.StoreSecret), cfg.StoreNamespace)
		if err != nil {
			log.Fatalf("Failed to configure store encryption: %v", err)
		}
		store = sealed
		log.Println("Session store encryption enabled")
	}

	// Core wiring
	realClock := clock.Real{}
	policy := cfg.Policy()

	unauthorized := services.NewUnauthorizedSignal(services.UnauthorizedSignalConfig{
		Clock:    realClock,
		Cooldown: cfg.UnauthorizedCooldown,
		Logger:   logger,
	})
	defer unauthorized.Close()

	// The client reads the token from the manager, which is built after it.
	var manager *services.SessionManager
	tokens := api.TokenSourceFunc(func() string {
		if manager == nil {
			return ""
		}
		return manager.Token()
	})

	client, err := api.NewClient(api.Config{
		BaseURL:      cfg.APIBaseURL,
		TenantID:     cfg.TenantID,
		TenantHeader: cfg.TenantHeader,
		Timeout:      cfg.HTTPTimeout,
	}, tokens, unauthorized, logger)
	if err != nil {
		log.Fatalf("Failed to create backend client: %v", err)
	}

	outbox := ui.NewOutbox(realClock.Now)

	manager, err = services.NewSessionManager(services.SessionManagerConfig{
		Repository: kvstore.NewRepository(store),
		Clock:      realClock,
		Signal:     unauthorized,
		AuthAPI:    client,
		Notifier:   outbox,
		Navigator:  outbox,
		Inspector:  auth.NewTokenInspector(),
		Policy:     policy,
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("Failed to create session manager: %v", err)
	}
	if err := manager.Start(ctx); err != nil {
		log.Fatalf("Failed to restore session: %v", err)
	}
	defer manager.Close()

	accounts := services.NewAccountService(client, manager, logger)

	log.Printf("Session policy: absolute=%s idle=%s check=%s",
		policy.AbsoluteTimeout, policy.IdleTimeout, policy.CheckInterval)

	serverCfg := http.DefaultConfig()
	serverCfg.Addr = cfg.AgentAddr
	serverCfg.Version = version
	serverCfg.InstanceID = instanceID
	if origins := cfg.Origins(); len(origins) > 0 {
		serverCfg.AllowedOrigins = origins
	}

	server := http.NewServer(serverCfg, manager, accounts, outbox, pinger, logger)

	log.Printf("Agent API starting on %s", cfg.AgentAddr)
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// openStore returns the configured KV store, an optional health check and a cleanup func.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (driven.KVStore, http.Pinger, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreRedis:
		client, err := redisadapter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Println("Connected to Redis")
		store := redisadapter.NewKVStore(client, cfg.StoreNamespace, cfg.StoreTTL)
		return store, redisPinger{client}, func() { _ = client.Close() }, nil

	case config.StorePostgres:
		db, err := postgres.Connect(ctx, postgres.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			return nil, nil, nil, err
		}
		log.Println("Connected to PostgreSQL")
		store := postgres.NewKVStore(db, cfg.StoreNamespace)
		if cfg.StoreTTL > 0 {
			go purgeLoop(ctx, store, cfg.StoreTTL, logger)
		}
		return store, db, func() { _ = db.Close() }, nil

	default:
		return kvstore.NewMemoryStore(), nil, func() {}, nil
	}
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// purgeLoop drops rows untouched for longer than ttl, which Redis would have expired
func purgeLoop(ctx context.Context, store *postgres.KVStore, ttl time.Duration, logger *slog.Logger) {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		n, err := store.PurgeStale(ctx, time.Now().Add(-ttl))
		if err != nil && ctx.Err() == nil {
			logger.Warn("failed to purge stale session rows", "error", err)
		} else if n > 0 {
			logger.Info("purged stale session rows", "count", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
