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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/georgemunganga/supplyhub/internal/config"
	"github.com/georgemunganga/supplyhub/internal/modules/auth"
	"github.com/georgemunganga/supplyhub/internal/modules/contract"
	"github.com/georgemunganga/supplyhub/internal/modules/evaluation"
	"github.com/georgemunganga/supplyhub/internal/modules/operator"
	"github.com/georgemunganga/supplyhub/internal/modules/qualification"
	"github.com/georgemunganga/supplyhub/internal/modules/supplier"
	"github.com/georgemunganga/supplyhub/internal/platform/database"
	"github.com/georgemunganga/supplyhub/internal/platform/logger"
	"github.com/georgemunganga/supplyhub/internal/platform/metrics"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, foundEnv, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)
	if !foundEnv {
		log.Debug("no .env file found, using environment only")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer repos.close()
	log.Info("storage ready", zap.String("driver", cfg.Storage.Driver))

	m := metrics.New(cfg.Metrics.Prefix)

	// ── Services ────────────────────────────────────────────
	supplierService := supplier.NewService(repos.suppliers, repos.contacts, m)
	qualificationService := qualification.NewService(repos.qualifications, repos.suppliers, m, database.UTC)
	contractService := contract.NewService(repos.contracts, repos.suppliers, m, database.UTC)
	evaluationService := evaluation.NewService(repos.evaluations, repos.suppliers, m)
	operatorService := operator.NewService(repos.operators)
	authService := auth.NewService(operatorService, cfg.JWT.Secret, cfg.JWT.TTL)

	if cfg.JWT.AdminEmail != "" {
		if err := seedAdmin(logger.WithContext(ctx, log), operatorService, cfg.JWT); err != nil {
			return err
		}
	}

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.Middleware(log))
	router.Use(middleware.Recoverer)
	router.Use(m.Middleware)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Handle("/metrics", m.Handler())
	auth.NewHandler(authService).RegisterRoutes(router)

	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(authService))
		operator.NewHandler(operatorService).RegisterRoutes(r)
		supplier.NewHandler(supplierService).RegisterRoutes(r)
		qualification.NewHandler(qualificationService).RegisterRoutes(r)
		contract.NewHandler(contractService).RegisterRoutes(r)
		evaluation.NewHandler(evaluationService).RegisterRoutes(r)
	})

	// ── Start Server ────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("supplyhub API server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.Sweep.QualificationInterval > 0 {
		g.Go(func() error {
			sweepQualifications(logger.WithContext(gctx, log), qualificationService, cfg.Sweep.QualificationInterval)
			return nil
		})
	}
	return g.Wait()
}

// sweepQualifications expires overdue qualifications every interval until
// ctx is cancelled. Failures are logged and retried on the next tick.
func sweepQualifications(ctx context.Context, svc qualification.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.ExpireDue(ctx); err != nil && ctx.Err() == nil {
				logger.FromContext(ctx).Error("qualification sweep failed", zap.Error(err))
			}
		}
	}
}

// seedAdmin registers the configured ADMIN operator unless it already exists.
func seedAdmin(ctx context.Context, svc operator.Service, cfg config.JWTConfig) error {
	_, err := svc.Register(ctx, operator.Input{
		Email:       cfg.AdminEmail,
		Password:    cfg.AdminPassword,
		DisplayName: "Administrator",
		Role:        operator.RoleAdmin,
	})
	if errors.Is(err, operator.ErrDuplicate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed admin operator: %w", err)
	}
	return nil
}
