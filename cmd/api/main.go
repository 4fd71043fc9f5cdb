package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"nepalstay/internal/config"
	"nepalstay/internal/database"
	"nepalstay/internal/middleware"
	"nepalstay/internal/modules/admin"
	"nepalstay/internal/modules/auth"
	"nepalstay/internal/modules/booking"
	"nepalstay/internal/modules/catalog"
	"nepalstay/internal/modules/payment"
	"nepalstay/internal/modules/review"
	"nepalstay/internal/notification"
	"nepalstay/internal/pkg/circuitbreaker"
	"nepalstay/internal/pkg/events"
	jwtsvc "nepalstay/internal/pkg/jwt"
	"nepalstay/internal/pkg/logger"
	"nepalstay/internal/pkg/upload"
	"nepalstay/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Default().WithError(err).Fatal("config")
	}
	log := logger.New(os.Stdout, cfg.LogLevel)
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	db, err := database.Connect(cfg.Database.URL, log)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	pub := newPublisher(cfg, log)
	defer pub.Close()

	mailer, err := newMailer(cfg, log)
	if err != nil {
		return err
	}

	dispatcher := notification.NewDispatcher(cfg.Notify.QueueSize, log)
	dispatcher.Start(cfg.Notify.Workers)
	hub := notification.NewHub()
	defer hub.Close()
	notifier := notification.NewService(mailer, hub, dispatcher, log)

	j := jwtsvc.New(cfg.JWT.Secret, cfg.JWT.TTL)

	rdb := newRedis(cfg, log)
	if rdb != nil {
		defer rdb.Close()
	}

	r := newRouter(cfg, log, db, j, rdb, pub, notifier, hub)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	if err := dispatcher.Stop(ctx); err != nil {
		log.WithError(err).Warn("notification queue not drained")
	}
	return nil
}

func newRouter(
	cfg *config.Config,
	log *logrus.Logger,
	db *gorm.DB,
	j *jwtsvc.Service,
	rdb *redis.Client,
	pub events.Publisher,
	notifier *notification.Service,
	hub *notification.Hub,
) *gin.Engine {
	userRepo := repository.NewUserRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	docs := upload.NewStore(cfg.Upload.Dir, cfg.Upload.MaxBytes)

	authHandler := auth.NewHandler(auth.NewService(userRepo, j, log), docs)
	catalogHandler := catalog.NewHandler(catalog.NewService(propertyRepo, userRepo, log))
	bookingHandler := booking.NewHandler(booking.NewService(bookingRepo, propertyRepo, notifier, pub, log))
	paymentHandler := payment.NewHandler(payment.NewService(
		bookingRepo, notifier, pub, log, cfg.Payment.Stripe.Currency,
		paymentGateways(cfg, log)...,
	))
	reviewHandler := review.NewHandler(review.NewService(reviewRepo, bookingRepo, propertyRepo, notifier, pub, log))
	adminHandler := admin.NewHandler(admin.NewService(userRepo, propertyRepo, bookingRepo, notifier, pub, log))
	wsHandler := notification.NewWSHandler(hub, j, cfg.Server.CORSOrigins, log)

	var authLimit gin.HandlerFunc
	if rdb != nil {
		authLimit = middleware.RateLimit(middleware.NewRedisCounter(rdb), cfg.Redis.AuthLimit, cfg.Redis.AuthWindow, log)
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.ErrorLogger(log),
		middleware.AccessLog(log),
		middleware.CORS(cfg.Server.CORSOrigins),
	)

	v1 := r.Group("/api")
	{
		authHandler.RegisterPublicRoutes(v1, authLimit)
		catalogHandler.RegisterPublicRoutes(v1)
		bookingHandler.RegisterPublicRoutes(v1)
		reviewHandler.RegisterPublicRoutes(v1)
		wsHandler.RegisterRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			catalogHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterProtectedRoutes(protected)
			paymentHandler.RegisterProtectedRoutes(protected)
			reviewHandler.RegisterProtectedRoutes(protected)
			adminHandler.RegisterRoutes(protected)
		}
	}

	return r
}

// paymentGateways wraps every configured gateway with retries and its own
// breaker. Stripe is skipped without a secret key.
func paymentGateways(cfg *config.Config, log logrus.FieldLogger) []payment.Gateway {
	pc := cfg.Payment
	policy := payment.RetryPolicy{
		Timeout:     pc.VerifyTimeout,
		MaxAttempts: pc.MaxAttempts,
		BackoffBase: pc.BackoffBase,
		BackoffMax:  pc.BackoffMax,
	}
	wrap := func(g payment.Gateway) payment.Gateway {
		breaker := circuitbreaker.New(pc.BreakerFailures, pc.BreakerCooldown)
		return payment.NewResilientGateway(g, policy, breaker, log.WithField("gateway", string(g.Method())))
	}

	gateways := []payment.Gateway{
		wrap(payment.NewKhaltiGateway(pc.Khalti.BaseURL, pc.Khalti.SecretKey)),
		wrap(payment.NewEsewaGateway(pc.Esewa.BaseURL, pc.Esewa.ProductCode)),
	}
	if pc.Stripe.SecretKey != "" {
		gateways = append(gateways, wrap(payment.NewStripeGateway(pc.Stripe.SecretKey, pc.Stripe.Currency)))
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, stripe payments disabled")
	}
	return gateways
}

func newPublisher(cfg *config.Config, log logrus.FieldLogger) events.Publisher {
	if cfg.NATS.URL == "" {
		return events.NoopPublisher{}
	}
	pub, err := events.NewNATSPublisher(cfg.NATS.URL, log)
	if err != nil {
		log.WithError(err).Warn("events disabled")
		return events.NoopPublisher{}
	}
	return pub
}

func newMailer(cfg *config.Config, log logrus.FieldLogger) (notification.Mailer, error) {
	mc := cfg.Mail
	switch mc.Provider {
	case "smtp":
		return notification.NewSMTPMailer(mc.SMTPHost, mc.SMTPPort, mc.FromEmail, mc.SMTPUser, mc.SMTPPass, mc.SMTPUseTLS), nil
	case "mailersend":
		return notification.NewMailerSendMailer(mc.MailerSendAPIKey, mc.FromName, mc.FromEmail)
	default:
		return notification.LogMailer{Log: log}, nil
	}
}

// newRedis returns nil when REDIS_URL is unset or unreachable; auth routes
// then run without a rate limit.
func newRedis(cfg *config.Config, log logrus.FieldLogger) *redis.Client {
	if cfg.Redis.URL == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.WithError(err).Warn("invalid REDIS_URL, rate limiting disabled")
		return nil
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("redis unreachable, rate limiting disabled")
		_ = rdb.Close()
		return nil
	}
	return rdb
}
