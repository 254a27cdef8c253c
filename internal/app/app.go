package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/club-events/external/livepush"
	"github.com/riskibarqy/club-events/internal/config"
	"github.com/riskibarqy/club-events/internal/domain/event"
	"github.com/riskibarqy/club-events/internal/domain/participant"
	"github.com/riskibarqy/club-events/internal/domain/points"
	"github.com/riskibarqy/club-events/internal/domain/progress"
	"github.com/riskibarqy/club-events/internal/domain/round"
	"github.com/riskibarqy/club-events/internal/domain/winner"
	auditinfra "github.com/riskibarqy/club-events/internal/infrastructure/audit"
	repocache "github.com/riskibarqy/club-events/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/club-events/internal/infrastructure/identity"
	"github.com/riskibarqy/club-events/internal/infrastructure/livecache"
	"github.com/riskibarqy/club-events/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/club-events/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/club-events/internal/interfaces/httpapi"
	"github.com/riskibarqy/club-events/internal/platform/cache"
	idgen "github.com/riskibarqy/club-events/internal/platform/id"
	"github.com/riskibarqy/club-events/internal/platform/logging"
	"github.com/riskibarqy/club-events/internal/usecase"
)

const drainTimeout = 5 * time.Second

// App owns the HTTP server and everything that has to be drained after it
// stops accepting requests.
type App struct {
	Server *http.Server

	closers []func(context.Context) error
}

type repositories struct {
	events       event.Repository
	rounds       round.Repository
	participants participant.Repository
	progress     progress.Repository
	winners      winner.Repository
	points       points.Repository
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{}
	repos, err := a.buildRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.DirectoryCacheTTL > 0 {
		directory := cache.NewStore(cfg.DirectoryCacheTTL)
		repos.rounds = repocache.NewRoundRepository(repos.rounds, directory)
		repos.participants = repocache.NewParticipantRepository(repos.participants, directory)
	}

	liveCache := cache.NewStore(cfg.LiveStateCacheTTL)
	invalidator, err := a.buildInvalidator(cfg, liveCache, logger)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	recorder, err := a.buildAuditRecorder(cfg, logger)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	ids := idgen.NewUUIDGenerator()
	live := usecase.NewLiveStateService(repos.events, repos.rounds, repos.participants, repos.progress, repos.winners, repos.points, liveCache)
	scoring := usecase.NewScoringService(repos.winners, repos.progress, repos.rounds, repos.points, ids, logger)
	progression := usecase.NewProgressionService(
		repos.events,
		repos.rounds,
		repos.participants,
		repos.progress,
		repos.winners,
		scoring,
		live,
		recorder,
		invalidator,
		ids,
		logger,
	)
	rounds := usecase.NewRoundService(repos.events, repos.rounds, recorder, invalidator, ids)
	pointsSvc := usecase.NewPointsService(repos.events, repos.participants, repos.points, recorder, invalidator, ids)
	dispatcher := usecase.NewDispatcher(progression, rounds, pointsSvc, logger)

	handler := httpapi.NewHandler(progression, rounds, pointsSvc, dispatcher, logger)
	router := httpapi.NewRouter(handler, newTokenVerifier(cfg, logger), logger, cfg.CORSAllowedOrigins)

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return a, nil
}

// Close releases resources in reverse construction order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

func (a *App) buildRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	if !cfg.UsesPostgres() {
		logger.Warn("DB_URL not set, using in-memory repositories with demo data")
		db := memory.NewDatabase()
		memory.SeedDemo(db)
		return repositories{
			events:       memory.NewEventRepository(db),
			rounds:       memory.NewRoundRepository(db),
			participants: memory.NewParticipantRepository(db),
			progress:     memory.NewProgressRepository(db),
			winners:      memory.NewWinnerRepository(db),
			points:       memory.NewPointsRepository(db),
		}, nil
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return repositories{}, err
	}
	a.onClose(func(context.Context) error { return db.Close() })
	logger.Info("postgres connected", "db_name", dbNameFromURL(cfg.DBURL))

	return postgresRepositories(db), nil
}

func postgresRepositories(db *sqlx.DB) repositories {
	return repositories{
		events:       postgres.NewEventRepository(db),
		rounds:       postgres.NewRoundRepository(db),
		participants: postgres.NewParticipantRepository(db),
		progress:     postgres.NewProgressRepository(db),
		winners:      postgres.NewWinnerRepository(db),
		points:       postgres.NewPointsRepository(db),
	}
}

func (a *App) buildInvalidator(cfg config.Config, store *cache.Store, logger *logging.Logger) (*livecache.Invalidator, error) {
	var publisher livecache.Publisher
	if cfg.LivePushURL != "" {
		publisher = livepush.NewClient(livepush.Config{
			URL:            cfg.LivePushURL,
			Token:          cfg.LivePushToken,
			Timeout:        cfg.LivePushTimeout,
			CircuitBreaker: cfg.LivePushCircuit,
			Logger:         logger,
		})
	}

	invalidator, err := livecache.NewInvalidator(store, publisher, cfg.LivePushWorkers, logger)
	if err != nil {
		return nil, err
	}
	a.onClose(func(context.Context) error { return invalidator.Close(drainTimeout) })
	return invalidator, nil
}

func (a *App) buildAuditRecorder(cfg config.Config, logger *logging.Logger) (*auditinfra.AsyncRecorder, error) {
	targets := []auditinfra.Target{{Name: "log", Sink: auditinfra.NewLogSink(logger)}}

	if len(cfg.AuditKafkaBrokers) > 0 {
		sink, err := auditinfra.NewKafkaSink(auditinfra.KafkaConfig{
			Brokers: cfg.AuditKafkaBrokers,
			Topic:   cfg.AuditKafkaTopic,
		})
		if err != nil {
			return nil, fmt.Errorf("build audit kafka sink: %w", err)
		}
		a.onClose(func(context.Context) error { return sink.Close() })
		targets = append(targets, auditinfra.Target{Name: "kafka", Sink: sink})
	}

	recorder, err := auditinfra.NewAsyncRecorder(auditinfra.RecorderConfig{
		Workers:      cfg.AuditWorkers,
		WriteTimeout: cfg.AuditWriteTimeout,
		Logger:       logger,
	}, targets...)
	if err != nil {
		return nil, fmt.Errorf("build audit recorder: %w", err)
	}
	// registered after the sinks so pending records drain before they close
	a.onClose(func(context.Context) error { return recorder.Close(drainTimeout) })
	return recorder, nil
}

func newTokenVerifier(cfg config.Config, logger *logging.Logger) httpapi.TokenVerifier {
	if cfg.UsesJWT() {
		logger.Info("identity tokens verified locally", "issuer", cfg.IdentityJWTIssuer)
		return identity.NewJWTVerifier(cfg.IdentityJWTSecret, cfg.IdentityJWTIssuer)
	}

	return identity.NewIntrospectionClient(identity.IntrospectionConfig{
		BaseURL:        cfg.IdentityBaseURL,
		IntrospectPath: cfg.IdentityIntrospectPath,
		Timeout:        cfg.IdentityTimeout,
		CacheTTL:       cfg.IdentityCacheTTL,
		CircuitBreaker: cfg.IdentityCircuit,
		Logger:         logger,
	})
}
