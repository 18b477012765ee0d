package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/poyrazK/dnskitchen/internal/adapters/api"
	"github.com/poyrazK/dnskitchen/internal/adapters/lock"
	"github.com/poyrazK/dnskitchen/internal/adapters/repository"
	"github.com/poyrazK/dnskitchen/internal/adapters/resolver"
	"github.com/poyrazK/dnskitchen/internal/core/ports"
	"github.com/poyrazK/dnskitchen/internal/core/services"
	"github.com/poyrazK/dnskitchen/internal/infrastructure/config"
	"github.com/poyrazK/dnskitchen/internal/infrastructure/logging"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("dnskitchen: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, closer, err := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.HTTPAddr, err)
	}
	return a.serve(ctx, ln)
}

type app struct {
	cfg        config.Config
	logger     *slog.Logger
	repo       *repository.Repository
	closers    []io.Closer
	reconciler *services.Reconciler
	limiter    *api.RateLimiter
	handler    http.Handler
}

// newApp opens the database, runs migrations and wires every component.
func newApp(cfg config.Config, logger *slog.Logger) (*app, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := repository.Open(repository.Options{
		Driver:   cfg.DBDriver,
		DSN:      cfg.DatabaseURL,
		LogLevel: logging.GormLevel(cfg.LogLevel),
	})
	if err != nil {
		return nil, err
	}
	repo := repository.NewRepository(db)
	a := &app{cfg: cfg, logger: logger, repo: repo, closers: []io.Closer{repo}}

	var locker ports.NameLocker
	if cfg.RedisAddr != "" {
		rl := lock.NewRedisLocker(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.LockTTL, logger)
		a.closers = append(a.closers, rl)
		locker = rl
		logger.Info("using redis name locks", "addr", cfg.RedisAddr)
	} else {
		locker = lock.NewLocalLocker()
	}

	var servers []string
	if cfg.ResolverAddr != "" {
		servers = []string{cfg.ResolverAddr}
	}
	res, err := resolver.New(resolver.Options{
		Servers: servers,
		Rate:    cfg.LookupRate,
		Timeout: cfg.LookupTimeout,
	}, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	logger.Info("delegation checks resolve through", "servers", res.Servers())

	checker := services.NewDelegationChecker(res, cfg.NameserverSet(), cfg.LookupTimeout)
	domains := services.NewDomainService(repo, cfg.NameserverSet(), checker, locker, logger)
	records := services.NewRecordService(repo, repo, locker, logger)
	acme := services.NewACMEService(repo, domains, records, repo, cfg.APIKeyCacheTTL, logger)
	a.reconciler = services.NewReconciler(repo, checker, cfg.ReconcileInterval, cfg.ReconcileConcurrency, logger)

	if cfg.RateLimit > 0 {
		a.limiter = api.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
	}
	verifier := api.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	a.handler = api.NewAPIHandler(domains, records, acme, logger).Router(verifier, a.limiter)
	return a, nil
}

// serve runs the HTTP server and the reconciler until ctx is done.
func (a *app) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.reconciler.Start(gctx)
		return nil
	})
	if a.limiter != nil {
		g.Go(func() error {
			a.limiter.Run(time.Minute, gctx.Done())
			return nil
		})
	}
	g.Go(func() error {
		a.logger.Info("management API listening", "addr", ln.Addr().String(), "tls", a.cfg.TLSEnabled())
		var err error
		if a.cfg.TLSEnabled() {
			err = srv.ServeTLS(ln, a.cfg.TLSCertFile, a.cfg.TLSKeyFile)
		} else {
			err = srv.Serve(ln)
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down management API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close releases the lock backend and the database.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
