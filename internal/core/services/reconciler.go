package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/poyrazK/dnskitchen/internal/core/domain"
	"github.com/poyrazK/dnskitchen/internal/core/ports"
	"github.com/poyrazK/dnskitchen/internal/infrastructure/metrics"
	"golang.org/x/sync/errgroup"
)

// DefaultReconcileInterval is the pause between two activation passes.
const DefaultReconcileInterval = 5 * time.Minute

// RunResult summarizes one activation pass.
type RunResult struct {
	Checked   int
	Activated int
	Failed    int
}

// Reconciler promotes PENDING domains to ACTIVE once their delegation to
// the operator nameservers is observed.
type Reconciler struct {
	repo        ports.DomainRepository
	checker     ports.DelegationChecker
	interval    time.Duration
	concurrency int
	logger      *slog.Logger
	running     atomic.Bool
}

func NewReconciler(
	repo ports.DomainRepository,
	checker ports.DelegationChecker,
	interval time.Duration,
	concurrency int,
	logger *slog.Logger,
) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Reconciler{
		repo:        repo,
		checker:     checker,
		interval:    interval,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Start runs a pass immediately and then every interval until ctx is done.
func (r *Reconciler) Start(ctx context.Context) {
	r.logger.Info("starting domain reconciler", "interval", r.interval, "concurrency", r.concurrency)

	r.TriggerRun(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("shutting down domain reconciler")
			return
		case <-ticker.C:
			r.TriggerRun(ctx)
		}
	}
}

// TriggerRun performs a pass unless one is already in progress.
func (r *Reconciler) TriggerRun(ctx context.Context) {
	if !r.running.CompareAndSwap(false, true) {
		r.logger.Debug("reconcile pass already running, skipping")
		return
	}
	defer r.running.Store(false)

	res, err := r.RunOnce(ctx)
	if err != nil {
		metrics.ReconcileRuns.WithLabelValues("error").Inc()
		r.logger.Error("reconcile pass failed", "error", err)
		return
	}
	metrics.ReconcileRuns.WithLabelValues("success").Inc()
	r.logger.Debug("reconcile pass finished", "checked", res.Checked, "activated", res.Activated, "failed", res.Failed)
}

// RunOnce checks every PENDING domain once. Lookup failures leave the domain
// PENDING and never fail the pass; only loading the batch can fail.
func (r *Reconciler) RunOnce(ctx context.Context) (RunResult, error) {
	pending, err := r.repo.ListDomainsByStatus(ctx, domain.StatusPending)
	if err != nil {
		return RunResult{}, fmt.Errorf("list pending domains: %w", err)
	}
	metrics.PendingDomains.Set(float64(len(pending)))

	var (
		mu       sync.Mutex
		res      = RunResult{Checked: len(pending)}
		failures *multierror.Error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, d := range pending {
		g.Go(func() error {
			activated, err := r.reconcile(gctx, d)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed++
				failures = multierror.Append(failures, fmt.Errorf("%s: %w", d.Name, err))
			}
			if activated {
				res.Activated++
			}
			// per-domain failures are swallowed so the batch always completes
			return nil
		})
	}
	_ = g.Wait()

	if err := failures.ErrorOrNil(); err != nil {
		r.logger.Debug("domains not yet delegated", "count", res.Failed, "errors", err.Error())
	}
	return res, nil
}

func (r *Reconciler) reconcile(ctx context.Context, d domain.Domain) (bool, error) {
	delegated, err := r.checker.IsDelegated(ctx, d.Name)
	if err != nil {
		return false, err
	}
	if !delegated {
		return false, nil
	}
	changed, err := r.repo.ActivateDomain(ctx, d.ID)
	if err != nil {
		return false, fmt.Errorf("activate: %w", err)
	}
	if changed {
		metrics.DomainsActivated.Inc()
		r.logger.Info("domain activated", "namespace", d.Namespace, "domain", d.Name)
	}
	return changed, nil
}
