package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kariqs/tableside/backend"
	"github.com/Kariqs/tableside/cart"
	"github.com/Kariqs/tableside/checkout"
	"github.com/Kariqs/tableside/controllers"
	"github.com/Kariqs/tableside/initializers"
	"github.com/Kariqs/tableside/logger"
	"github.com/Kariqs/tableside/menu"
	"github.com/Kariqs/tableside/middlewares"
	"github.com/Kariqs/tableside/notify"
	"github.com/Kariqs/tableside/payment"
	"github.com/Kariqs/tableside/repository"
	"github.com/Kariqs/tableside/routes"
	"github.com/Kariqs/tableside/session"
	"github.com/Kariqs/tableside/storage"
	"github.com/Kariqs/tableside/store"
	"github.com/Kariqs/tableside/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func init() {
	initializers.LoadEnv()
}

func main() {
	cfg := initializers.LoadConfig()
	log := logger.New("tableside")
	ctx := context.Background()

	if len(cfg.JWTSecret) == 0 {
		log.Error(ctx, "startup_failed", "SECRET must be set", nil)
		os.Exit(1)
	}

	redisClient, err := initializers.ConnectToRedis(ctx, cfg)
	if err != nil {
		log.Error(ctx, "startup_failed", "redis unavailable", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	kv := store.NewRedisStore(redisClient, cfg.RedisPrefix)

	api := backend.New(cfg.BackendURL, cfg.BackendTimeout)
	var validator session.Validator
	if cfg.ValidateSessions {
		validator = api
	}

	opts := controllers.Options{
		Backend: api,
		Menu: menu.NewService(api, menu.Settings{
			FailureThreshold: cfg.MenuBreakerFailures,
			OpenTimeout:      cfg.MenuBreakerTimeout,
		}),
		Sessions:     session.NewBinder(kv, cfg.SessionTTL, validator),
		Carts:        cart.NewService(kv, cfg.CartTTL),
		Attempts:     checkout.NewAttemptStore(kv, cfg.SessionTTL),
		Log:          log,
		Currency:     cfg.Currency,
		JWTSecret:    []byte(cfg.JWTSecret),
		TokenTTL:     cfg.AdminTokenTTL,
		CookieSecure: cfg.CookieSecure,
	}

	if cfg.StripeSecretKey != "" {
		opts.Verifier = payment.NewStripeVerifier(cfg.StripeBaseURL, cfg.StripeSecretKey, cfg.BackendTimeout)
	} else {
		log.Warn(ctx, "payments_disabled", "STRIPE_SECRET_KEY not set, checkout confirmation is disabled")
	}

	if cfg.DatabaseDSN != "" {
		db, err := initializers.ConnectToDB(cfg.DatabaseDSN)
		if err != nil {
			log.Error(ctx, "startup_failed", "database unavailable", err)
			os.Exit(1)
		}
		if err := initializers.SyncDatabase(db); err != nil {
			log.Error(ctx, "startup_failed", "database migration failed", err)
			os.Exit(1)
		}
		opts.Ledger = repository.NewCheckoutAttemptRepository(db)
	}

	var events notify.EventPublisher
	if cfg.RabbitMQURL != "" {
		conn, err := notify.Dial(cfg.RabbitMQURL, log)
		if err != nil {
			log.Error(ctx, "startup_failed", "rabbitmq unavailable", err)
			os.Exit(1)
		}
		defer conn.Close()
		events = notify.NewPublisher(conn, log)
	}
	var mailer notify.Mailer
	if cfg.Mail.Enabled() {
		m, err := utils.NewSMTPMailer(cfg.Mail)
		if err != nil {
			log.Error(ctx, "startup_failed", "mail templates invalid", err)
			os.Exit(1)
		}
		mailer = m
	}
	if events != nil || mailer != nil {
		opts.Notifier = notify.NewNotifier(events, mailer, cfg.StaffEmail, cfg.AdminURL)
	}

	if cfg.S3Bucket != "" {
		uploader, err := storage.NewS3Uploader(ctx, cfg.S3Bucket)
		if err != nil {
			log.Error(ctx, "startup_failed", "s3 unavailable", err)
			os.Exit(1)
		}
		opts.Uploader = uploader
	}

	server := gin.Default()
	server.Use(middlewares.RequestID())
	server.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middlewares.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middlewares.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	routes.Register(server, controllers.New(opts), cfg.CookieSecure, []byte(cfg.JWTSecret))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info(ctx, "service_started", "listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server_failed", "http server stopped", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "graceful_shutdown", "shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "graceful_shutdown", "forced shutdown", err)
	}
}
