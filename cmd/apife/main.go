package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/efreitasn/apife/internal/config"
	"github.com/efreitasn/apife/internal/domain"
	"github.com/efreitasn/apife/internal/engine"
	"github.com/efreitasn/apife/internal/handler"
	"github.com/efreitasn/apife/internal/service"
	"github.com/efreitasn/apife/internal/store"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	deploymentStore := store.NewDeploymentStore()
	deploymentSvc := service.NewDeploymentService(deploymentStore)
	predictionSvc := service.NewPredictionService(deploymentStore, cfg.MicroserviceTimeout)

	if cfg.DeploymentsFile != "" {
		if err := seedDeployments(deploymentSvc, cfg.DeploymentsFile, logger); err != nil {
			logger.Error("failed to seed deployments", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	expiryMgr := engine.NewExpiryManager(cfg.LeaseSweepInterval, deploymentStore, logger)

	router := handler.NewRouter(deploymentSvc, predictionSvc, logger, cfg.MaxBodyBytes)

	// Start lease expiry with cancellable context.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	expiryMgr.Start(ctx)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown: stop HTTP server, cancel context (stops lease expiry).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	cancel()

	logger.Info("server stopped")
}

// seedDeployments registers every deployment listed in the seed file.
func seedDeployments(svc *service.DeploymentService, path string, logger *slog.Logger) error {
	file, err := config.LoadDeployments(path)
	if err != nil {
		return err
	}

	for _, seed := range file.Deployments {
		d, err := svc.Register(service.RegisterDeploymentRequest{
			Name:        seed.Name,
			EndpointURL: seed.EndpointURL,
			LeaseTTL:    seed.LeaseTTL,
		})
		if err != nil {
			return fmt.Errorf("deployment %q: %w", seed.Name, err)
		}
		if seed.Stopped {
			if d, err = svc.SetStatus(d.Name, domain.DeploymentStatusStopped); err != nil {
				return fmt.Errorf("deployment %q: %w", seed.Name, err)
			}
		}
		logger.Info("deployment registered",
			slog.String("deployment", d.Name),
			slog.String("endpoint_url", d.EndpointURL),
			slog.String("status", string(d.Status)),
		)
	}
	return nil
}
