package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mercadolocal/marketplace-service/internals/app/config"
	"github.com/mercadolocal/marketplace-service/internals/app/grpc"
	"github.com/mercadolocal/marketplace-service/internals/app/handlers"
	"github.com/mercadolocal/marketplace-service/internals/app/healthcheck"
	"github.com/mercadolocal/marketplace-service/internals/app/jobs"
	"github.com/mercadolocal/marketplace-service/internals/app/middleware"
	"github.com/mercadolocal/marketplace-service/internals/app/realtime"
	"github.com/mercadolocal/marketplace-service/internals/app/router"
	"github.com/mercadolocal/marketplace-service/internals/core/cache"
	"github.com/mercadolocal/marketplace-service/internals/core/cloudinary"
	"github.com/mercadolocal/marketplace-service/internals/core/database"
	"github.com/mercadolocal/marketplace-service/internals/core/facebook"
	"github.com/mercadolocal/marketplace-service/internals/core/firebase"
	"github.com/mercadolocal/marketplace-service/internals/core/groq"
	"github.com/mercadolocal/marketplace-service/internals/core/payments"
	"github.com/mercadolocal/marketplace-service/internals/core/repository"
	"github.com/mercadolocal/marketplace-service/internals/core/services"
	"github.com/mercadolocal/marketplace-service/internals/logger"
	"github.com/mercadolocal/marketplace-service/internals/utils"
	"github.com/spf13/cobra"
	"github.com/stripe/stripe-go/v76"
)

const shutdownTimeout = 15 * time.Second

func main() {
	root := &cobra.Command{
		Use:           "marketplace",
		Short:         "Local marketplace API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP, websocket and gRPC servers",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema and exit",
			RunE:  runMigrate,
		},
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runMigrate(_ *cobra.Command, _ []string) error {
	configEnv, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("error in config .env: %w", err)
	}
	log := logger.NewLogrusLoggerWithLevel(configEnv.LOG_LEVEL)

	db, err := database.ConnectDatabase(configEnv)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	log.Info("Database schema is up to date")
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	configEnv, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("error in config .env: %w", err)
	}
	log := logger.NewLogrusLoggerWithLevel(configEnv.LOG_LEVEL)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stripe.Key = configEnv.STRIPE_SECRET_KEY
	db, err := database.ConnectDatabase(configEnv)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	featuredCache, err := cache.New(ctx, configEnv.REDIS_URL)
	if err != nil {
		log.Warn("Redis unavailable, featured vendors will not be cached: %v", err)
		featuredCache = cache.Nop{}
	}

	images, err := cloudinary.NewClient(configEnv)
	if err != nil {
		return err
	}
	if !images.Enabled() {
		log.Warn("Cloudinary is not configured, uploads will fail")
	}

	pusher, err := firebase.NewPusher(ctx, configEnv.FIREBASE_CREDENTIALS_FILE)
	if err != nil {
		log.Warn("Firebase unavailable, push notifications disabled: %v", err)
		pusher = firebase.NopPusher{}
	}

	captions := groq.NewClient(configEnv.GROQ_API_KEY, configEnv.GROQ_MODEL, configEnv.GROQ_BASE_URL)
	publisher := facebook.NewClient(configEnv.FACEBOOK_PAGE_ID, configEnv.FACEBOOK_PAGE_TOKEN, configEnv.FACEBOOK_GRAPH_URL)
	gateway := payments.NewStripeGateway(configEnv.STRIPE_SECRET_KEY, configEnv.STRIPE_WEBHOOK_SECRET,
		configEnv.STRIPE_SUCCESS_URL, configEnv.STRIPE_CANCEL_URL)
	if !configEnv.StripeEnabled() {
		log.Warn("Stripe is not configured, featured checkout is disabled")
	}
	if !configEnv.FacebookEnabled() {
		log.Debug("Facebook page is not configured, products will not be published")
	}

	userRepo := repository.NewUserRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	productRepo := repository.NewProductRepository(db)
	classifiedRepo := repository.NewClassifiedRepository(db)
	followRepo := repository.NewFollowRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	chatRepo := repository.NewChatRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	origins := configEnv.Origins()
	hub := realtime.NewHub(origins, log)
	tokens := utils.NewTokenManager(configEnv.JWT_SECRET, time.Duration(configEnv.JWT_TTL_HOURS)*time.Hour)

	notificationService := services.NewNotificationService(notificationRepo, userRepo, pusher, log)
	userService := services.NewUserService(userRepo, tokens)
	vendorService := services.NewVendorService(vendorRepo, images, featuredCache, configEnv.PUBLIC_BASE_URL, log)
	productService := services.NewProductService(productRepo, vendorRepo, followRepo, notificationService, images, captions, publisher, log)
	classifiedService := services.NewClassifiedService(classifiedRepo, images, configEnv.MAX_ACTIVE_CLASSIFIEDS, configEnv.CLASSIFIED_DAYS, log)
	followService := services.NewFollowService(followRepo, vendorRepo, userRepo)
	favoriteService := services.NewFavoriteService(favoriteRepo, productRepo)
	chatService := services.NewChatService(chatRepo, userRepo, notificationService, hub, log)
	couponService := services.NewCouponService(couponRepo, vendorRepo, followRepo, notificationService, log)
	mediaService := services.NewMediaService(images, log)
	paymentService := services.NewPaymentService(paymentRepo, vendorRepo, vendorService, gateway, notificationService,
		services.FeaturedPlan{
			PriceCents: configEnv.FEATURED_PRICE_CENTS,
			Currency:   configEnv.FEATURED_CURRENCY,
			Days:       configEnv.FEATURED_DAYS,
		}, log)

	health := healthcheck.New(db)
	grpcServer := grpc.NewServer(health, log)
	if err := grpcServer.StartgRPCServer(ctx, configEnv); err != nil {
		return fmt.Errorf("failed to start gRPC server: %w", err)
	}

	scheduler := jobs.NewScheduler(log)
	for _, job := range jobs.Maintenance(classifiedService, vendorService) {
		if err := scheduler.Add(job); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", job.Name, err)
		}
	}
	scheduler.Start()

	limiter := middleware.NewRateLimiter(configEnv.RATE_LIMIT_RPS, configEnv.RATE_LIMIT_BURST, log)
	limiter.StartCleanup(ctx, time.Minute)

	if configEnv.LOG_LEVEL != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.New(router.Handlers{
		Users:         handlers.NewUserHandler(userService, log),
		Vendors:       handlers.NewVendorHandler(vendorService, paymentService, log),
		Products:      handlers.NewProductHandler(productService, log),
		Classifieds:   handlers.NewClassifiedHandler(classifiedService, log),
		Social:        handlers.NewSocialHandler(followService, favoriteService, log),
		Chat:          handlers.NewChatHandler(chatService, userService, hub, log),
		Coupons:       handlers.NewCouponHandler(couponService, log),
		Notifications: handlers.NewNotificationHandler(notificationService, log),
		Uploads:       handlers.NewUploadHandler(mediaService, log),
		Payments:      handlers.NewPaymentHandler(paymentService, log),
		Health:        health.HealthCheckHandler,
	}, router.Options{
		Auth:    userService,
		Limiter: limiter,
		Origins: origins,
		Log:     log,
	})

	srv := &http.Server{
		Addr:              ":" + configEnv.PORT,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP Server started on port %s", configEnv.PORT)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down")
	case err := <-errCh:
		log.Error("HTTP server failed: %v", err)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown: %v", err)
	}
	scheduler.Stop(shutdownCtx)
	grpcServer.Stop()

	if closer, ok := featuredCache.(io.Closer); ok {
		_ = closer.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
