package internal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fileshare-api/config"
	"fileshare-api/internal/application/ports"
	"fileshare-api/internal/application/services"
	"fileshare-api/internal/infrastructure/db/postgres"
	"fileshare-api/internal/infrastructure/db/postgres/file"
	"fileshare-api/internal/infrastructure/db/postgres/file_delivery"
	"fileshare-api/internal/infrastructure/db/postgres/share"
	"fileshare-api/internal/infrastructure/db/postgres/user"
	"fileshare-api/internal/infrastructure/jwt"
	"fileshare-api/internal/infrastructure/metrics"
	"fileshare-api/internal/infrastructure/mq"
	"fileshare-api/internal/infrastructure/realtime"
	"fileshare-api/internal/infrastructure/redis"
	"fileshare-api/internal/infrastructure/s3"
	"fileshare-api/internal/interface/api/rest"
	"fileshare-api/internal/interface/api/rest/middleware"
	"fileshare-api/pkg/rmqconsumer"
)

const (
	// event streams refresh presence every PresenceTTL/heartbeatDivisor
	heartbeatDivisor = 3
	shutdownTimeout  = 5 * time.Second
)

type App struct {
	logger     *zap.Logger
	cfg        config.Config
	db         *pgxpool.Pool
	redis      *goredis.Client
	s3         ports.S3Client
	httpSrv    *http.Server
	router     *gin.Engine
	mCounter   *prometheus.CounterVec
	mDuration  *prometheus.HistogramVec
	mq         ports.RabbitMQ
	mqConsumer ports.RMQConsumer
	hub        *realtime.Hub

	// parent of every request context; cancelling it ends open event streams
	stopStreams context.CancelFunc

	// retries outlive the request that triggered them
	retryCtx    context.Context
	stopRetries context.CancelFunc
	scheduler   *services.RetryScheduler
}

func NewApp(ctx context.Context) (*App, error) {
	// logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("cannot initialize zap logger: %v", err)
	}
	defer logger.Sync()

	// config
	if err = godotenv.Load(".env"); err != nil {
		logger.Warn("no .env file, using process environment", zap.Error(err))
	}
	cfg := config.Load()
	if cfg.App.JWTSecret == "" {
		logger.Fatal("SERVICE_JWT_SECRET is required")
	}

	// metrics
	mCounter := metrics.NewCounter()
	mDuration := metrics.NewRetryDuration(prometheus.DefaultRegisterer)

	// router
	switch cfg.App.Env {
	case gin.ReleaseMode, "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	case gin.TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogGin(logger, mCounter))

	// httpServer
	streamCtx, stopStreams := context.WithCancel(context.Background())
	httpSrv := newHTTPServer(":"+cfg.App.Port, r, streamCtx)

	// db
	dbDsn, err := cfg.DBDSN()
	if err != nil {
		logger.Fatal("DB config error", zap.Error(err))
	}
	dbPool, err := postgres.New(ctx, logger, dbDsn)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err = postgres.Migrate(ctx, logger, dbPool); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	// redis
	redisClient, err := redis.New(ctx, logger, cfg.Redis)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}

	// s3
	s3Client, err := s3.New(ctx, logger, cfg.S3)
	if err != nil {
		logger.Fatal("failed to connect to S3", zap.Error(err))
	}

	// rabbitMQ
	rabbitDsn, err := cfg.AMQPDSN()
	if err != nil {
		logger.Fatal("RabbitMQ config error", zap.Error(err))
	}
	rbMQ := mq.New(cfg.MQ, logger)
	if err = rbMQ.Connect(ctx, rabbitDsn); err != nil {
		logger.Fatal("failed to connect to rabbitMQ", zap.Error(err))
	}
	if err = rbMQ.Init(); err != nil {
		logger.Fatal("failed init rabbitMQ", zap.Error(err))
	}

	// realtime: every instance consumes all events and pushes the ones
	// addressed to its own connected users
	hub := realtime.NewHub()
	rmqConsumer := rmqconsumer.New(cfg.MQ, logger, rbMQ.GetConn(), func(env rmqconsumer.Envelope) int {
		return hub.Send(env.RecipientID, realtime.Message{Name: env.Name, Data: env.Payload})
	})
	if err = rmqConsumer.Connect(rabbitDsn); err != nil {
		logger.Fatal("failed to connect rabbitMQ consumer", zap.Error(err))
	}
	if err = rmqConsumer.Init(); err != nil {
		logger.Fatal("failed to init rabbitMQ consumer", zap.Error(err))
	}

	retryCtx, stopRetries := context.WithCancel(context.Background())

	return &App{
		logger:      logger,
		cfg:         cfg,
		db:          dbPool,
		redis:       redisClient,
		s3:          s3Client,
		httpSrv:     httpSrv,
		router:      r,
		mCounter:    mCounter,
		mDuration:   mDuration,
		mq:          rbMQ,
		mqConsumer:  rmqConsumer,
		hub:         hub,
		stopStreams: stopStreams,
		retryCtx:    retryCtx,
		stopRetries: stopRetries,
	}, nil
}

// newHTTPServer has no WriteTimeout since event streams stay open; they end
// when base is cancelled.
func newHTTPServer(addr string, h http.Handler, base context.Context) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
}

func (a *App) Close() {
	if a.stopStreams != nil {
		a.stopStreams()
	}
	if a.stopRetries != nil {
		a.stopRetries()
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.mq != nil {
		_ = a.mq.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// Run - The central place to launch and manage our application and
// parallel processes through a single context.
func (a *App) Run(ctx context.Context) error {
	// context with os signals cancel chan
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting "+a.cfg.App.Name, zap.String("addr", a.cfg.App.Host+":"+a.cfg.App.Port))
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server "+a.cfg.App.Name+" error: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		a.mq.PublisherWorker(ctx)
		return nil
	})

	g.Go(func() error {
		a.mqConsumer.DeliveryWorker(ctx)
		return nil
	})

	<-ctx.Done()

	a.logger.Info("shutting down " + a.cfg.App.Name + " gracefully...")
	shutdownErr := a.shutdown()

	if err := g.Wait(); err != nil {
		a.logger.Error(a.cfg.App.Name+" returning an error", zap.Error(err))
		return err
	}

	if shutdownErr != nil {
		return shutdownErr
	}

	a.logger.Info(a.cfg.App.Name + " gracefully stopped")

	return nil
}

// shutdown ends event streams before Shutdown, which never cancels request
// contexts itself. Retries are stopped even when Shutdown fails.
func (a *App) shutdown() error {
	if a.stopStreams != nil {
		a.stopStreams()
	}

	var err error
	if a.httpSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err = a.httpSrv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("http server shutdown "+a.cfg.App.Name+" error", zap.Error(err))
		}
	}

	// in-flight attempts record their cancellation before the pool closes
	if a.stopRetries != nil {
		a.stopRetries()
	}
	if a.scheduler != nil {
		a.scheduler.Wait()
	}

	return err
}

func (a *App) InitControllers() {
	// repos
	userRepo := user.NewRepository(a.db)
	fileRepo := file.NewRepository(a.db)
	shareRepo := share.NewRepository(a.db)
	deliveryRepo := file_delivery.NewRepository(a.db)

	// services
	jwtService := jwt.New(a.cfg.App.JWTSecret)
	authService := services.NewAuthService(jwtService)
	userService := services.NewUserService(userRepo, a.mCounter)
	fileService := services.NewFileService(a.s3, fileRepo, a.logger, a.mCounter)

	validator := services.NewRecipientValidator(userRepo)
	tracker := services.NewDeliveryTracker(services.EmitterNotifier(a.mq), a.logger)
	shareService := services.NewShareService(
		fileRepo, shareRepo, deliveryRepo,
		validator, tracker, a.mq, a.s3,
		a.cfg.Delivery, a.logger, a.mCounter,
	)
	deliveryService := services.NewDeliveryService(
		shareRepo, deliveryRepo,
		validator, tracker, a.mq,
		a.cfg.Delivery.MaxRetries, a.logger, a.mCounter,
	)

	a.scheduler = services.NewRetryScheduler(
		a.retryCtx, deliveryRepo, shareRepo, tracker,
		services.NewHubDeliverer(a.hub), a.mq,
		a.cfg.Delivery, a.logger, a.mCounter, a.mDuration,
	)
	presenceService := services.NewPresenceService(
		redis.NewPresenceStore(a.redis, a.cfg.Delivery.PresenceTTL),
		a.scheduler, a.logger, a.mCounter,
	)

	// controllers
	rest.NewAuthController(a.router, a.logger, userService, authService)
	rest.NewUserController(a.router, userService, a.logger, jwtService)
	rest.NewFileController(a.router, fileService, a.logger, jwtService)
	rest.NewShareController(a.router, shareService, a.logger, jwtService)
	rest.NewDeliveryController(a.router, deliveryService, a.logger, jwtService)
	rest.NewRealtimeController(a.router, a.hub, presenceService,
		a.cfg.Delivery.PresenceTTL/heartbeatDivisor, a.logger, jwtService)

	// ops
	a.router.GET(rest.RouteHealth, func(c *gin.Context) { c.Status(http.StatusOK) })
	a.router.GET(rest.RouteMetrics, gin.WrapH(promhttp.Handler()))
}

func (a *App) Logger() *zap.Logger { return a.logger }
