package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bryanwahyu/ai-detector/internal/application/analyze"
	"github.com/bryanwahyu/ai-detector/internal/config"
	"github.com/bryanwahyu/ai-detector/internal/domain/ai"
	"github.com/bryanwahyu/ai-detector/internal/infra/ai/gemini"
	"github.com/bryanwahyu/ai-detector/internal/infra/ai/openai"
	"github.com/bryanwahyu/ai-detector/internal/infra/httpserver"
	"github.com/bryanwahyu/ai-detector/internal/infra/logging"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// init model client; tanpa key server tetap jalan, request dijawab ConfigurationError
	client, err := newModelClient(ctx, cfg)
	if err != nil {
		logger.Fatal("model client init error", zap.Error(err))
	}
	if client == nil {
		logger.Warn("no model credential configured", zap.String("provider", cfg.Model.Provider))
	}

	// init service
	svc := analyze.NewService(client, cfg.Model.APIKey, analyze.Limits{
		MaxContentBytes: cfg.Limits.MaxContentBytes,
		MaxTextChars:    cfg.Limits.MaxTextChars,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpserver.NewRouter(svc, logger, cfg.CORS.AllowedOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", addr), zap.String("provider", cfg.Model.Provider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	// graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}

func newModelClient(ctx context.Context, cfg *config.Config) (ai.Client, error) {
	if cfg.Model.APIKey == "" {
		return nil, nil
	}
	switch strings.ToLower(cfg.Model.Provider) {
	case "openai":
		return openai.NewClient(cfg.Model.APIKey, cfg.Model.Name, cfg.Model.MaxTokens), nil
	case "gemini", "":
		return gemini.NewClient(ctx, cfg.Model.APIKey, cfg.Model.Name, cfg.Model.MaxTokens)
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Model.Provider)
	}
}
