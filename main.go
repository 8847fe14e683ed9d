// File: boxcric/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boxcric/config"
	"boxcric/cron"
	"boxcric/database"
	bookingRepo "boxcric/database/repository/booking"
	groundRepo "boxcric/database/repository/ground"
	"boxcric/database/repository/memstore"
	"boxcric/handlers"
	"boxcric/middleware"
	"boxcric/mq"
	"boxcric/realtime"
	"boxcric/routes"
	"boxcric/services/booking"
	"boxcric/services/ground"
	"boxcric/services/notification"
	"boxcric/services/payment"
	"boxcric/services/storage"
	"boxcric/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stripe/stripe-go/v76"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.GetLogger().Sugar().Fatalf("main: %v", err)
	}
	utils.InitializeLogger(cfg.IsProduction(), cfg.LogLevel)
	logger := utils.GetLogger()
	defer logger.Sync() //nolint:errcheck

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	loc, err := cfg.Location()
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// repositories.
	var (
		mongoClient *mongo.Client
		grounds     groundRepo.GroundRepository
		bookings    bookingRepo.BookingRepository
	)
	switch cfg.StoreDriver {
	case "memory":
		logger.Warn("Using in-memory store; data is lost on restart")
		grounds = memstore.NewGroundRepo()
		bookings = memstore.NewBookingRepo()
	default:
		mongoClient, err = database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		db := mongoClient.Database(cfg.DatabaseName)
		if err := groundRepo.EnsureIndexes(ctx, db); err != nil {
			logger.Sugar().Fatalf("main: ground indexes: %v", err)
		}
		if err := bookingRepo.EnsureIndexes(ctx, db); err != nil {
			logger.Sugar().Fatalf("main: booking indexes: %v", err)
		}
		grounds = groundRepo.NewMongoGroundRepo(db)
		bookings = bookingRepo.NewMongoBookingRepo(db)
		logger.Info("Connected to MongoDB", zap.String("database", cfg.DatabaseName))
	}

	// Redis backs the listing cache and the job queue; both are optional.
	redisClient, err := utils.InitCache(cfg)
	if err != nil {
		logger.Warn("Redis unavailable; caching and background jobs disabled", zap.Error(err))
	}

	// integrations.
	stripe.Key = cfg.StripeKey
	var images storage.ImageStore
	if cfg.CloudinaryURL != "" {
		cld, err := storage.NewCloudinaryStore(cfg.CloudinaryURL)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize cloudinary storage service: %v", err)
		}
		images = cld
	}

	hub := realtime.NewHub(cfg.Origins(), logger)
	notifiers := notification.Fanout{hub}
	if cfg.FirebaseCredentialsFile != "" {
		fcm, err := notification.NewFCMNotifier(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			logger.Warn("Push notifications disabled", zap.Error(err))
		} else {
			notifiers = append(notifiers, fcm)
		}
	}
	var publisher *mq.Publisher
	if cfg.RabbitURL != "" {
		publisher, err = mq.NewPublisher(cfg.RabbitURL, cfg.BookingExchange)
		if err != nil {
			logger.Warn("Booking events disabled", zap.Error(err))
		} else {
			notifiers = append(notifiers, publisher)
		}
	}

	// services.
	bookingOpts := []booking.Option{booking.WithNotifier(notifiers)}
	var scheduler *cron.TaskScheduler
	if redisClient != nil {
		scheduler = cron.NewTaskScheduler(cron.RedisOpt(cfg))
		bookingOpts = append(bookingOpts, booking.WithScheduler(scheduler))
	}
	bookingService := booking.NewService(grounds, bookings, booking.Settings{
		PendingTimeout:     cfg.PendingBookingTimeout,
		CancellationCutoff: cfg.CancellationCutoff,
		Location:           loc,
		Currency:           cfg.PaymentCurrency,
	}, logger, bookingOpts...)

	var groundCache ground.Cache
	if redisClient != nil {
		groundCache = utils.NewVersionedCache(redisClient, utils.GroundCacheNamespace, cfg.GroundCacheTTL)
	}
	groundService := ground.NewService(grounds, groundCache, images, logger)

	var paymentService *payment.Service
	if cfg.StripeKey != "" {
		paymentService = payment.NewService(payment.NewStripeGateway(), bookingService, cfg.PublicBaseURL, cfg.FrontendURL, logger)
	} else {
		logger.Warn("STRIPE_KEY not set; payment endpoints disabled")
	}

	var worker *cron.Worker
	if redisClient != nil {
		worker, err = cron.StartWorker(cron.RedisOpt(cfg), bookingService, logger)
		if err != nil {
			logger.Error("Background worker not started", zap.Error(err))
		}
	}

	monitor := utils.NewHealthMonitor(redisClient, mongoClient)
	monitor.Start(ctx, utils.HealthCheckInterval)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler(logger))
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	hb := &handlers.HandlerBundle{
		JWTSecret: cfg.JWTSecret,
		Grounds:   handlers.NewGroundHandler(groundService, bookingService.Checker()),
		Bookings:  handlers.NewBookingHandler(bookingService),
		Payments:  handlers.NewPaymentHandler(paymentService),
		Admin:     handlers.NewAdminHandler(groundService, bookingService),
		Health:    handlers.NewHealthHandler(cfg.Env, monitor),
		Realtime:  hub,
	}
	routes.RegisterRoutes(router, hb, routes.Options{
		AllowedOrigins: cfg.Origins(),
		Production:     cfg.IsProduction(),
		StaticDir:      cfg.StaticDir,
	})

	port := cfg.AppPort
	if port == "" {
		port = "3001"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	go func() {
		logger.Sugar().Infof("Server listening on %s (%s)", srv.Addr, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("ListenAndServe error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("Shutting down server...")

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Fatalf("Server forced to shutdown: %v", err)
	}

	closeAll(shutdownCtx, logger, hub, worker, scheduler, publisher, redisClient, mongoClient)
	logger.Sugar().Info("Server exiting")
}

func closeAll(ctx context.Context, logger *zap.Logger, hub *realtime.Hub, worker *cron.Worker, scheduler *cron.TaskScheduler, publisher *mq.Publisher, redisClient *redis.Client, mongoClient *mongo.Client) {
	hub.Close()
	if worker != nil {
		worker.Shutdown()
	}
	if scheduler != nil {
		if err := scheduler.Close(); err != nil {
			logger.Warn("Closing task client", zap.Error(err))
		}
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Warn("Closing publisher", zap.Error(err))
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if mongoClient != nil {
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Warn("Disconnecting MongoDB", zap.Error(err))
		}
	}
}
