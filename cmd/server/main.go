package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/helios/session-gateway/internal/api"
	"github.com/helios/session-gateway/internal/api/handler"
	"github.com/helios/session-gateway/internal/core/guard"
	"github.com/helios/session-gateway/internal/core/ports"
	"github.com/helios/session-gateway/internal/core/service"
	"github.com/helios/session-gateway/internal/core/session"
	"github.com/helios/session-gateway/internal/core/sessioncookie"
	mongodb "github.com/helios/session-gateway/internal/infrastructure/db/mongo"
	redisdb "github.com/helios/session-gateway/internal/infrastructure/db/redis"
	"github.com/helios/session-gateway/internal/infrastructure/memory"
	"github.com/helios/session-gateway/internal/infrastructure/queue"
	"github.com/helios/session-gateway/internal/pkg/config"
	"github.com/helios/session-gateway/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.Production(),
		Service: "session-gateway",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	secret := cfg.CookieSecret
	if secret == "" {
		secret = randomSecret()
		log.Warn().Msg("COOKIE_SECRET not set, sessions will not survive a restart")
	}
	codec := sessioncookie.NewCodec(secret, sessioncookie.TTL)

	checks := map[string]handler.Check{}

	var (
		slots session.SlotProvider
		lock  handler.SubmissionLock
	)
	switch cfg.StorageBackend {
	case config.StorageRedis:
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		slots = redisdb.NewDurableStore(rdb, sessioncookie.Name, sessioncookie.TTL)
		lock = redisdb.NewSubmissionLock(rdb, cfg.SubmissionTTL)
		checks["redis"] = redisdb.Ping(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis session storage enabled")
	default:
		slots = memory.NewDurableStore()
		lock = memory.NewSubmissionLock()
	}

	var (
		credentials ports.CredentialVerifier = service.NewPlaceholderVerifier()
		events      ports.EventRepository    = memory.NewEventLog(cfg.EventLogSize)
	)
	if cfg.AuthBackend == config.AuthMongo {
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()

		accounts := mongodb.NewAccountRepository(db)
		if err := accounts.EnsureIndexes(ctx); err != nil {
			return err
		}
		credentials = service.NewAccountVerifier(accounts, bcrypt.DefaultCost)
		events = mongodb.NewEventRepository(db)
		checks["mongodb"] = mongodb.Ping(db)
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo accounts enabled")
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.EventWorkers, service.NewEventService(events, log), log)
	dispatcher.Start(workerCtx)

	factory := &session.Factory{
		Slots:       slots,
		Codec:       codec,
		Backend:     service.NewDelayBackend(cfg.SimulatedLatency),
		Credentials: credentials,
		IDs:         service.RandomIDGenerator{},
		Events:      dispatcher,
		Log:         logger.Component("session"),
	}

	e := api.NewRouter(api.RouterDeps{
		Open: func(ctx context.Context, deviceID string, jar ports.CookieJar, nav ports.Navigator) ports.SessionStore {
			return factory.Open(ctx, deviceID, jar, nav)
		},
		Guard:         guard.New(codec),
		Lock:          lock,
		Checks:        checks,
		SecureCookies: cfg.CookieSecure,
		Log:           logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("storage", cfg.StorageBackend).Str("auth", cfg.AuthBackend).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		stopWorkers()
		dispatcher.Wait()
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	stopWorkers()
	dispatcher.Wait()
	return nil
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
