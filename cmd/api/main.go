package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"handyghana/internal/config"
	"handyghana/internal/database"
	"handyghana/internal/integrations/mailer"
	"handyghana/internal/integrations/paystack"
	"handyghana/internal/integrations/sms"
	"handyghana/internal/integrations/storage"
	"handyghana/internal/jobs"
	"handyghana/internal/logger"
	"handyghana/internal/middleware"
	"handyghana/internal/modules/auth"
	"handyghana/internal/modules/booking"
	"handyghana/internal/modules/catalog"
	"handyghana/internal/modules/chat"
	"handyghana/internal/modules/notification"
	"handyghana/internal/modules/payment"
	"handyghana/internal/modules/payout"
	"handyghana/internal/modules/provider"
	"handyghana/internal/modules/review"
	"handyghana/internal/modules/subscription"
	"handyghana/internal/pkg/jwt"
	"handyghana/internal/realtime"
	"handyghana/internal/repository"
)

func main() {
	_ = godotenv.Load()
	logger.Setup()

	cfg := config.Load()
	logf := logger.Printf()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("connect database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		logrus.Fatalf("migrate database: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	providerRepo := repository.NewProviderRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	chatRepo := repository.NewChatRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Integrations. Missing credentials degrade to mock mode.
	jwtService := jwt.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	mail := mailer.FromConfig(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass)
	smsSender := sms.FromConfig(cfg.SMSAPIKey, cfg.SMSSender)
	otpStore := sms.OTPStoreFromConfig(cfg.RedisAddr)
	uploader := storage.FromConfig(cfg.CloudinaryURL)
	gateway := paystack.NewClient(cfg.PaystackSecretKey, cfg.PaystackBaseURL, logf)

	hub := realtime.NewHub()
	defer hub.Close()

	// Services
	notificationService := notification.NewService(notificationRepo, userRepo, hub, mail, smsSender)
	payoutService := payout.NewService(db, providerRepo, notificationService, payout.SimulatedDisburser{Delay: cfg.PayoutSettleDelay}, cfg.PayoutProcessDelay, logf)
	providerService := provider.NewService(providerRepo, userRepo, payoutService, uploader, notificationService, logf)
	authService := auth.NewService(userRepo, jwtService, smsSender, otpStore, logf)
	catalogService := catalog.NewService(serviceRepo, providerRepo)
	bookingService := booking.NewService(bookingRepo, providerRepo, serviceRepo, notificationService)
	paymentService := payment.NewService(paymentRepo, bookingRepo, userRepo, settingsRepo, payoutService, gateway, notificationService, cfg.WebhookSecret, logf)
	subscriptionService := subscription.NewService(subscriptionRepo, serviceRepo, logf)
	reviewService := review.NewService(reviewRepo, providerRepo, bookingRepo, notificationService, logf)
	chatService := chat.NewService(chatRepo, providerRepo, hub, notificationService, logf)

	// Handlers
	authHandler := auth.NewHandler(authService)
	providerHandler := provider.NewHandler(providerService)
	catalogHandler := catalog.NewHandler(catalogService)
	bookingHandler := booking.NewHandler(bookingService)
	paymentHandler := payment.NewHandler(paymentService)
	payoutHandler := payout.NewHandler(payoutService, providerHandler)
	subscriptionHandler := subscription.NewHandler(subscriptionService)
	reviewHandler := review.NewHandler(reviewService)
	chatHandler := chat.NewHandler(chatService)
	notificationHandler := notification.NewHandler(notificationService)
	wsHandler := realtime.NewWSHandler(hub, jwtService, chatService)

	// Background jobs
	scheduler := jobs.NewScheduler(
		subscriptionService,
		bookingRepo,
		notificationService,
		jobs.DeduperFromConfig(cfg.RedisAddr),
		logf,
	)
	if err := scheduler.Start(); err != nil {
		logrus.Fatalf("start scheduler: %v", err)
	}
	defer scheduler.Stop()

	if cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(), middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "ws_clients": hub.OnlineCount()})
	})
	router.GET("/ws", wsHandler.HandleWebSocket)

	api := router.Group("/api/v1")

	// Public routes. The webhook authenticates with its HMAC signature.
	authHandler.RegisterPublicRoutes(api)
	providerHandler.RegisterPublicRoutes(api)
	catalogHandler.RegisterPublicRoutes(api)
	reviewHandler.RegisterPublicRoutes(api)
	paymentHandler.RegisterWebhook(api)

	protected := api.Group("")
	protected.Use(middleware.Auth(jwtService))
	authHandler.RegisterProtectedRoutes(protected)
	providerHandler.RegisterProtectedRoutes(protected)
	bookingHandler.RegisterRoutes(protected)
	paymentHandler.RegisterRoutes(protected)
	subscriptionHandler.RegisterRoutes(protected)
	reviewHandler.RegisterProtectedRoutes(protected)
	chatHandler.RegisterRoutes(protected)
	notificationHandler.RegisterRoutes(protected)

	providerOnly := api.Group("")
	providerOnly.Use(middleware.Auth(jwtService), middleware.ProviderOnly())
	catalogHandler.RegisterProviderRoutes(providerOnly)
	payoutHandler.RegisterRoutes(providerOnly)

	adminOnly := api.Group("")
	adminOnly.Use(middleware.Auth(jwtService), middleware.AdminOnly())
	providerHandler.RegisterAdminRoutes(adminOnly)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logrus.Infof("listening on :%s (env=%s, payments_live=%v)", cfg.Port, cfg.AppEnv, cfg.PaymentsLive())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("shutdown: %v", err)
	}
}
