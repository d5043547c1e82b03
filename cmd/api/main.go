package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/internal/risk"
	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()

	cfg, err := config.ConfigFromEnv()
	if err != nil {
		sugar.Fatalf("config: %v", err)
	}
	sugar.Infow("starting", "app", cfg.AppName, "version", cfg.AppVersion, "debug", cfg.Debug)

	if cfg.SecretKey == config.Defaults().SecretKey {
		sugar.Warn("SECRET_KEY is the development default; set a long random value in production")
	}
	if cfg.AdminPasswordHash == "" {
		sugar.Warn("ADMIN_PASSWORD_HASH is not set; every login will fail until it is configured")
	} else if _, err := bcrypt.Cost([]byte(cfg.AdminPasswordHash)); err != nil {
		sugar.Warnw("ADMIN_PASSWORD_HASH is not a bcrypt hash; logins will return 500 (see cmd/pwhash)", "err", err)
	}
	if !cfg.WeightsNormalized() {
		sugar.Warnw("risk weights do not sum to 1; scores are clamped to [0,1]", "sum", cfg.Risk.Weights.Sum())
	}

	authSvc, err := auth.NewService(cfg)
	if err != nil {
		sugar.Fatalf("auth service: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := router.RegisterRoutes(router.Deps{
		Config:  cfg,
		Logger:  sugar,
		Auth:    authSvc,
		Scorer:  risk.NewScorer(cfg.Risk),
		Metrics: metrics.New(),
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// run server in background
	go func() {
		sugar.Infow("listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
