package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rallyhq/rally-core/internal/config"
	"github.com/rallyhq/rally-core/internal/contentfilter"
	"github.com/rallyhq/rally-core/internal/db"
	"github.com/rallyhq/rally-core/internal/gateway"
	"github.com/rallyhq/rally-core/internal/httpapi"
	"github.com/rallyhq/rally-core/internal/logging"
	"github.com/rallyhq/rally-core/internal/mail"
	"github.com/rallyhq/rally-core/internal/model"
	"github.com/rallyhq/rally-core/internal/repository"
	"github.com/rallyhq/rally-core/internal/service"

	authpkg "github.com/rallyhq/rally-core/internal/auth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	gormDB, err := db.NewGormDB(&cfg.DB)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	store := repository.NewStore(gormDB)
	if err := store.Roles.EnsureDefaults(context.Background()); err != nil {
		log.Fatal("role seeding failed", zap.Error(err))
	}

	filter := contentfilter.New(nil)
	if cfg.BannedTermsPath != "" {
		filter, err = contentfilter.NewFromFile(cfg.BannedTermsPath)
		if err != nil {
			log.Fatal("banned terms load failed", zap.Error(err))
		}
	}

	var mailer mail.Mailer = mail.NopMailer{}
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
	}

	gw := gateway.NewStripeClient(cfg.Stripe.SecretKey, gateway.StripeURLs{
		SuccessURL: cfg.Stripe.SuccessURL,
		CancelURL:  cfg.Stripe.CancelURL,
		RefreshURL: cfg.Stripe.RefreshURL,
		ReturnURL:  cfg.Stripe.ReturnURL,
	})

	authenticator := authpkg.NewAuthenticator(cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute)

	registrations := service.NewRegistrationService(gormDB, log)
	api := httpapi.NewAPI(httpapi.Deps{
		Log:           log,
		Auth:          authenticator,
		Users:         service.NewUserService(gormDB, log),
		Events:        service.NewEventService(gormDB, filter, log),
		Comments:      service.NewCommentService(gormDB, filter, log),
		Likes:         service.NewLikeService(gormDB, log),
		Registrations: registrations,
		Payments:      service.NewPaymentService(gormDB, gw, mailer, registrations, log),
		Moderation:    service.NewModerationService(gormDB, log),
		Signals:       service.NewSignalService(gormDB, log),
		Banned:        service.NewBannedUserService(gormDB, log),
		Reasons:       service.NewReasonService(gormDB, log),
		Counters:      service.NewCounterService(gormDB, log),
		WebhookSecret: cfg.Stripe.WebhookSecret,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}
