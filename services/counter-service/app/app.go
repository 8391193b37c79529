package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/devayla/base-counter/common/cache"
	"github.com/devayla/base-counter/common/config"
	"github.com/devayla/base-counter/common/database"
	apperrors "github.com/devayla/base-counter/common/errors"
	commonevents "github.com/devayla/base-counter/common/events"
	"github.com/devayla/base-counter/common/httpx"
	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/common/metrics"
	"github.com/devayla/base-counter/common/natsjetstream"
	"github.com/devayla/base-counter/common/utils"
	"github.com/devayla/base-counter/services/counter-service/internal/events"
	"github.com/devayla/base-counter/services/counter-service/internal/feed"
	"github.com/devayla/base-counter/services/counter-service/internal/handler"
	"github.com/devayla/base-counter/services/counter-service/internal/neynar"
	"github.com/devayla/base-counter/services/counter-service/internal/pinata"
	"github.com/devayla/base-counter/services/counter-service/internal/repository"
	"github.com/devayla/base-counter/services/counter-service/internal/scheduler"
	"github.com/devayla/base-counter/services/counter-service/internal/service"
	"github.com/devayla/base-counter/services/counter-service/internal/signer"
)

const serviceName = "counter-service"

type App struct {
	cfg          *config.Config
	logger       *logger.Logger
	db           *database.DynamoDBClient
	redis        *cache.RedisClient
	natsClient   *natsjetstream.Client
	metrics      *metrics.Metrics
	hub          *feed.Hub
	services     handler.Services
	httpServer   *http.Server
	grpcServer   *grpc.Server
	healthServer *health.Server
	scheduler    *scheduler.Scheduler

	eventPublisher  *events.EventPublisher
	eventSubscriber *events.EventSubscriber

	cleanup []func() error
}

func New(ctx context.Context, cfg *config.Config) (*App, *apperrors.AppError) {
	app := &App{
		cfg:     cfg,
		cleanup: make([]func() error, 0),
	}

	app.initLogger()

	if err := app.initDatabase(ctx); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalServer, "failed to init database")
	}

	if err := app.initRedis(ctx); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalServer, "failed to init redis")
	}

	if err := app.initNATS(ctx); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalServer, "failed to init nats client")
	}

	app.metrics = metrics.NewMetrics(serviceName)
	app.eventPublisher = events.NewEventPublisher(app.natsClient, app.logger)

	if err := app.initServices(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalServer, "failed to init services")
	}

	if err := app.initMessageSubscriber(ctx); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalServer, "failed to init messaging subscriber")
	}

	if err := app.initHTTP(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalServer, "failed to init http server")
	}
	app.initGRPC()
	app.initScheduler()

	return app, nil
}

func (a *App) initLogger() {
	a.logger = logger.New(logger.Config{
		Level:       a.cfg.Server.LogLevel,
		Format:      a.cfg.Server.LogFormat,
		ServiceName: serviceName,
	})
	a.cleanup = append(a.cleanup, func() error {
		_ = a.logger.Sync()
		return nil
	})
}

func (a *App) initDatabase(ctx context.Context) error {
	dynamoClient, err := database.NewDynamoDBClient(ctx, a.cfg)
	if err != nil {
		return err
	}
	a.db = dynamoClient

	if a.cfg.DynamoDB.UseLocalEndpoint {
		if err := a.db.EnsureTable(ctx); err != nil {
			return err
		}
	}

	a.logger.Info("DynamoDB ready", "table", a.db.Table())
	return nil
}

func (a *App) initRedis(ctx context.Context) error {
	redisClient, err := cache.NewRedisClient(a.cfg.Redis)
	if err != nil {
		return err
	}
	a.redis = redisClient
	a.cleanup = append(a.cleanup, redisClient.Close)

	if err := redisClient.Ping(ctx); err != nil {
		return err
	}
	a.logger.Info("Redis ready", "address", a.cfg.Redis.Address)
	return nil
}

func (a *App) initNATS(ctx context.Context) error {
	natsClient, err := natsjetstream.NewClient(&natsjetstream.Config{
		URL:           a.cfg.NATS.URL,
		Name:          serviceName,
		MaxReconnect:  a.cfg.NATS.MaxReconnect,
		ReconnectWait: time.Duration(a.cfg.NATS.ReconnectWaitSeconds) * time.Second,
		Timeout:       time.Duration(a.cfg.NATS.TimeoutSeconds) * time.Second,
	}, a.logger)
	if err != nil {
		return err
	}

	a.natsClient = natsClient
	a.cleanup = append(a.cleanup, natsClient.Close)

	streams := []natsjetstream.StreamConfig{
		{
			Name:     commonevents.CounterEventsStream,
			Subjects: commonevents.CounterStreamSubjects(),
			MaxAge:   commonevents.StreamRetention,
		},
		{
			Name:     commonevents.NotificationEventsStream,
			Subjects: []string{commonevents.NotificationEventsWildcard},
			MaxAge:   commonevents.StreamRetention,
		},
	}
	for _, stream := range streams {
		if err := a.natsClient.EnsureStream(ctx, stream); err != nil {
			a.logger.Error("Failed to create stream", "error", err, "stream", stream.Name)
			return err
		}
	}

	return nil
}

// rewardSigner returns nil when no key is configured so the signing
// endpoints answer as misconfigured instead of blocking startup.
func (a *App) rewardSigner() (*signer.Signer, error) {
	rewardSigner, err := signer.New(a.cfg.Signer.PrivateKey)
	if stderrors.Is(err, signer.ErrNoKey) {
		a.logger.Warn("SIGNER_PRIVATE_KEY is not set; signature endpoints are disabled")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.logger.Info("Reward signer loaded", "address", rewardSigner.Address().Hex())
	return rewardSigner, nil
}

func (a *App) initServices() error {
	rewardSigner, err := a.rewardSigner()
	if err != nil {
		return err
	}

	neynarClient := neynar.NewClient(a.cfg.Neynar, a.logger, neynar.WithFailoverHook(func(index int, err error) {
		a.metrics.RecordFailover("neynar")
	}))
	pinataClient := pinata.NewClient(a.cfg.Pinata, a.logger, pinata.WithFailoverHook(func(index int, err error) {
		a.metrics.RecordFailover("pinata")
	}))

	scoreRepo := repository.NewGameScoreRepository(a.db)
	leaderboardRepo := repository.NewLeaderboardRepository(a.db)
	leaderboardCache := repository.NewLeaderboardCache(a.redis)
	userCache := repository.NewUserCacheRepository(a.db)
	giftBoxRepo := repository.NewGiftBoxRepository(a.db)
	mintRepo := repository.NewMintRepository(a.db)
	faucetRepo := repository.NewFaucetRepository(a.db)
	followRepo := repository.NewFollowRepository(a.db)
	authKeyRepo := repository.NewAuthKeyRepository(a.db)
	notificationRepo := repository.NewNotificationRepository(a.redis)

	profiles := service.NewProfileService(userCache, neynarClient, a.metrics, a.logger)

	a.services = handler.Services{
		Profiles:      profiles,
		Signatures:    service.NewSignatureService(profiles, rewardSigner, rand.Float64, a.eventPublisher, a.metrics, a.logger),
		Leaderboard:   service.NewLeaderboardService(leaderboardRepo, leaderboardCache, a.eventPublisher, a.metrics, a.logger),
		IPFS:          service.NewIPFSService(pinataClient, a.cfg.Pinata.MaxUploadBytes, a.logger),
		GiftBoxes:     service.NewGiftBoxService(scoreRepo, giftBoxRepo, profiles, rewardSigner, rand.Float64, a.eventPublisher, a.metrics, a.logger),
		Games:         service.NewGameService(scoreRepo, a.eventPublisher, a.logger),
		Mints:         service.NewMintService(mintRepo, scoreRepo, a.logger),
		Faucet:        service.NewFaucetService(faucetRepo, scoreRepo, a.logger),
		Follows:       service.NewFollowService(followRepo, a.logger),
		Auth:          service.NewAuthService(a.cfg.Auth.APISecret, authKeyRepo, a.logger),
		Notifications: service.NewNotificationService(notificationRepo, a.eventPublisher, a.logger),
	}

	if !a.services.Auth.Enabled() {
		a.logger.Warn("API_SECRET is not set; mutating routes are unauthenticated")
	}
	return nil
}

func (a *App) initMessageSubscriber(ctx context.Context) error {
	a.hub = feed.NewHub(a.cfg.Server.AllowedOrigins, a.logger)
	a.eventSubscriber = events.NewEventSubscriber(a.natsClient, a.services.Notifications, a.hub, a.logger)
	return a.eventSubscriber.Start(ctx)
}

func (a *App) healthChecks() map[string]handler.HealthCheck {
	return map[string]handler.HealthCheck{
		"nats": func(context.Context) error {
			if !a.natsClient.IsConnected() {
				return stderrors.New("not connected")
			}
			return nil
		},
		"dynamodb": a.db.Ping,
		"redis":    a.redis.Ping,
	}
}

func (a *App) initHTTP() error {
	proxies, err := httpx.ParseTrustedProxies(a.cfg.Server.TrustedProxies)
	if err != nil {
		return err
	}

	h := handler.NewHandler(a.services, a.cfg.App, a.cfg.Pinata.MaxUploadBytes, a.logger)

	var admin *handler.AdminAuth
	if a.cfg.Auth.AdminJWTSecret != "" {
		admin = handler.NewAdminAuth(a.cfg.Auth.AdminJWTSecret, a.cfg.Auth.AdminIssuer, a.logger)
	}

	var limiter *httpx.IPRateLimiter
	if rps := a.cfg.Server.RequestsPerSecond; rps > 0 {
		limiter = httpx.NewIPRateLimiter(rps, httpx.BurstFor(rps), proxies)
	}

	router := handler.NewRouter(handler.RouterConfig{
		Handler:        h,
		Admin:          admin,
		Feed:           a.hub,
		Metrics:        a.metrics,
		Limiter:        limiter,
		HealthChecks:   a.healthChecks(),
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		TrustedProxies: proxies,
		Logger:         a.logger,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

func (a *App) initGRPC() {
	a.grpcServer = grpc.NewServer(
		grpc.UnaryInterceptor(utils.LoggingInterceptor(a.logger)),
	)

	a.healthServer = health.NewServer()
	healthpb.RegisterHealthServer(a.grpcServer, a.healthServer)
	reflection.Register(a.grpcServer)
}

func (a *App) initScheduler() {
	a.scheduler = scheduler.NewScheduler(a.logger,
		scheduler.NewDailyMintResetJob(a.services.Mints),
		scheduler.NewAuthKeyCleanupJob(a.services.Auth),
	)
}

func (a *App) Start() *apperrors.AppError {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.Server.GRPCPort))
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternalServer, "failed to listen for grpc")
	}

	go func() {
		a.logger.Info("gRPC health server listening", "port", a.cfg.Server.GRPCPort)
		if err := a.grpcServer.Serve(lis); err != nil {
			a.logger.Error("gRPC server stopped", "error", err)
		}
	}()

	go func() {
		a.logger.Info("HTTP server listening", "port", a.cfg.Server.HTTPPort)
		if err := a.httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server stopped", "error", err)
			a.healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		}
	}()

	go a.scheduler.Start()
	a.logger.Info("Daily scheduler is started")

	a.healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	a.logger.Info("Application started successfully")

	return nil
}

func (a *App) Stop() *apperrors.AppError {
	a.logger.Info("Stopping application...")

	if a.healthServer != nil {
		a.healthServer.Shutdown()
	}

	timeout := time.Duration(a.cfg.Server.ShutdownTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.logger.Error("HTTP shutdown error", "error", err)
		}
	}
	if a.hub != nil {
		a.hub.Close()
	}
	if a.grpcServer != nil {
		a.grpcServer.GracefulStop()
	}
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.eventSubscriber != nil {
		a.eventSubscriber.Stop()
	}

	for i := len(a.cleanup) - 1; i >= 0; i-- {
		if err := a.cleanup[i](); err != nil {
			a.logger.Error("Cleanup error", "error", err)
		}
	}

	a.logger.Info("Application stopped")
	return nil
}
