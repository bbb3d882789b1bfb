package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Singularity-Shift/sui-squad/internal/bot"
	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
	"github.com/Singularity-Shift/sui-squad/internal/core/port"
	"github.com/Singularity-Shift/sui-squad/internal/infra/config"
	"github.com/Singularity-Shift/sui-squad/internal/infra/database"
	kafkainfra "github.com/Singularity-Shift/sui-squad/internal/infra/kafka"
	"github.com/Singularity-Shift/sui-squad/internal/infra/llm"
	"github.com/Singularity-Shift/sui-squad/internal/infra/logger"
	"github.com/Singularity-Shift/sui-squad/internal/infra/prover"
	redisinfra "github.com/Singularity-Shift/sui-squad/internal/infra/redis"
	"github.com/Singularity-Shift/sui-squad/internal/infra/sui"
	"github.com/Singularity-Shift/sui-squad/internal/infra/telegram"
	"github.com/Singularity-Shift/sui-squad/internal/infra/telemetry"
	"github.com/Singularity-Shift/sui-squad/internal/repository/memory"
	postgresrepo "github.com/Singularity-Shift/sui-squad/internal/repository/postgres"
	redisrepo "github.com/Singularity-Shift/sui-squad/internal/repository/redis"
	"github.com/Singularity-Shift/sui-squad/internal/transport/http/middleware"
	"github.com/Singularity-Shift/sui-squad/internal/transport/http/routes"
	"github.com/Singularity-Shift/sui-squad/internal/usecase"
)

// Application wires the bot, the HTTP callback server, and the background
// conversation sweeper.
type Application struct {
	cfg           *config.AppConfig
	engine        *gin.Engine
	router        *bot.Router
	conversations port.ConversationCache
	sweepInterval time.Duration
	logger        *zap.Logger
	pool          *pgxpool.Pool
	redis         *redisinfra.Client
	producer      *kafkainfra.Producer
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	network, err := domain.ParseNetwork(cfg.Sui.Network)
	if err != nil {
		return nil, fmt.Errorf("init chain client: %w", err)
	}

	metrics := telemetry.NewMetrics(cfg.Telemetry.Namespace, prometheus.DefaultRegisterer)

	chainClient := sui.NewClient(network, cfg.Sui.RPCURL, log)
	proverClient := prover.NewClient(cfg.Prover.URL, log)

	llmClient, err := llm.NewClient(cfg.LLM, log)
	if err != nil {
		return nil, fmt.Errorf("init llm client: %w", err)
	}

	tgClient, err := telegram.NewClient(cfg.Telegram, log)
	if err != nil {
		return nil, fmt.Errorf("init telegram client: %w", err)
	}

	app := &Application{
		cfg:           cfg,
		sweepInterval: cfg.Conversation.SweepInterval,
		logger:        log,
	}

	// Conversation continuity can live in Redis for multi-instance
	// deployments; the default is the in-process cache.
	var conversations port.ConversationCache
	if cfg.Conversation.Backend == "redis" {
		redisClient, err := redisinfra.NewClient(cfg.Redis, log)
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		app.redis = redisClient
		conversations = redisrepo.NewConversationCache(redisClient.Client(), cfg.Conversation.RedisPrefix, cfg.Conversation.TTL)
	} else {
		conversations = memory.NewConversationCache(cfg.Conversation.TTL)
	}
	app.conversations = conversations

	var activity port.ActivityRepository
	if cfg.Postgres.Enabled {
		pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
		if err != nil {
			app.closeInfra()
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		app.pool = pool
		activity = postgresrepo.NewActivityRepository(pool)
	}

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			app.producer = producer
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	pendingStore := memory.NewPendingLoginStore(cfg.PendingLogin.Capacity)
	sessionStore := memory.NewSessionStore()

	broker := usecase.NewIdentityBroker(cfg, chainClient, proverClient, metrics, log)
	sessionService := usecase.NewSessionService(broker, pendingStore, sessionStore, chainClient, eventPublisher, log)
	walletService := usecase.NewWalletService(sessionService, broker, chainClient, activity, eventPublisher, cfg.Sui.GasBudget, log)
	promptService := usecase.NewPromptService(llmClient, conversations, walletService, metrics, log)

	handlers := bot.NewHandlers(tgClient, sessionService, walletService, promptService, network, log)
	app.router = bot.NewRouter(tgClient, handlers, log)

	httpMetrics, err := middleware.NewHTTPMetrics(nil, cfg.Telemetry.Namespace)
	if err != nil {
		app.closeInfra()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	app.engine = routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		Sessions:    sessionService,
		Messenger:   tgClient,
		HTTPMetrics: httpMetrics,
	})

	return app, nil
}

func (a *Application) closeInfra() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.producer != nil {
		_ = a.producer.Close()
	}
}

// Run starts the HTTP callback server, the bot poll loop, and the
// conversation sweeper, then blocks until the context is cancelled or a
// component fails.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer a.closeInfra()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting sui-squad bot",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
		zap.String("network", a.cfg.Sui.Network),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	botErrCh := make(chan error, 1)
	go func() {
		if err := a.router.Run(runCtx); err != nil && runCtx.Err() == nil {
			botErrCh <- fmt.Errorf("run bot: %w", err)
		}
	}()

	go a.sweepConversations(runCtx)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serverErrCh:
	case runErr = <-botErrCh:
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		return fmt.Errorf("shutdown server: %w", err)
	}

	return runErr
}

func (a *Application) sweepConversations(ctx context.Context) {
	interval := a.sweepInterval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed, err := a.conversations.Sweep(ctx)
			if err != nil {
				a.logger.Warn("sweep conversations", zap.Error(err))
			} else if removed > 0 {
				a.logger.Debug("swept stale conversations", zap.Int("removed", removed))
			}
		case <-ctx.Done():
			return
		}
	}
}
