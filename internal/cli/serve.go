package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/playground/userstats/internal/api"
	"github.com/playground/userstats/internal/api/handler"
	"github.com/playground/userstats/internal/core/domain"
	"github.com/playground/userstats/internal/core/pda"
	"github.com/playground/userstats/internal/core/ports"
	"github.com/playground/userstats/internal/core/service"
	"github.com/playground/userstats/internal/infrastructure/config"
	"github.com/playground/userstats/internal/infrastructure/db/memory"
	mongostore "github.com/playground/userstats/internal/infrastructure/db/mongo"
	redisstore "github.com/playground/userstats/internal/infrastructure/db/redis"
	sqlitestore "github.com/playground/userstats/internal/infrastructure/db/sqlite"
	"github.com/playground/userstats/internal/infrastructure/identity"
	"github.com/playground/userstats/internal/infrastructure/queue"
	"github.com/playground/userstats/pkg/logger"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			if rootOpts.ProgramID != "" {
				cfg.ProgramID = rootOpts.ProgramID
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.IsDevelopment(), Service: "userstats"})
			return runServe(ctx, cfg, log)
		},
	}
}

// storage bundles the selected backend with its readiness checks and cleanup.
type storage struct {
	repo   ports.RecordRepository
	guard  ports.ReplayGuard
	checks map[string]handler.Check
	close  func(context.Context) error
}

func runServe(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	programID, err := domain.ParseAddress(cfg.ProgramID)
	if err != nil {
		return fmt.Errorf("program id: %w", err)
	}

	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET unset, using development secret")
	}
	issuer, err := identity.NewIssuer(cfg.SigningSecret(), cfg.TokenTTL)
	if err != nil {
		return err
	}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := store.close(closeCtx); err != nil {
			log.Error().Err(err).Msg("failed to close storage")
		}
	}()

	records := service.NewRecordService(store.repo, pda.NewDeriver(programID), logger.Component("records"))

	exec := queue.NewExecutor(records, queue.Options{
		Workers:   cfg.ExecutorWorkers,
		ReplayTTL: cfg.ReplayTTL,
		Guard:     store.guard,
	}, logger.Component("executor"))
	// Workers outlive the signal so requests still in flight during
	// e.Shutdown get answered.
	execCtx, stopExec := context.WithCancel(context.WithoutCancel(ctx))
	defer func() {
		stopExec()
		<-exec.Stopped()
	}()
	exec.Start(execCtx)

	e := api.NewRouter(api.Deps{
		Executor:  exec,
		Records:   records,
		Verifier:  issuer,
		ProgramID: programID.String(),
		Checks:    store.checks,
		Logger:    logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("storage", cfg.StorageBackend).
			Str("program_id", programID.String()).
			Int("workers", cfg.ExecutorWorkers).
			Msg("userstats listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// openStorage connects the backend named by STORAGE_BACKEND. Idempotency keys
// live in Redis when it is the store and in process memory otherwise.
func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.StorageBackend {
	case config.BackendMemory:
		repo := memory.NewRecordRepository()
		return &storage{
			repo:   repo,
			guard:  memory.NewReplayGuard(),
			checks: map[string]handler.Check{"storage": repo.Ping},
			close:  noop,
		}, nil

	case config.BackendSQLite:
		db, err := sqlitestore.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		repo := sqlitestore.NewRecordRepository(db)
		log.Info().Str("path", cfg.SQLite.Path).Msg("sqlite storage ready")
		return &storage{
			repo:   repo,
			guard:  memory.NewReplayGuard(),
			checks: map[string]handler.Check{"sqlite": repo.Ping},
			close:  func(context.Context) error { return db.Close() },
		}, nil

	case config.BackendMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		repo := mongostore.NewRecordRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo storage ready")
		return &storage{
			repo:   repo,
			guard:  memory.NewReplayGuard(),
			checks: map[string]handler.Check{"mongodb": repo.Ping},
			close:  client.Disconnect,
		}, nil

	case config.BackendRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		repo := redisstore.NewRecordRepository(client)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis storage ready")
		return &storage{
			repo:   repo,
			guard:  redisstore.NewReplayGuard(client),
			checks: map[string]handler.Check{"redis": repo.Ping},
			close:  func(context.Context) error { return client.Close() },
		}, nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}
