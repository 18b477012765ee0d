package services

import (
	"context"
	"log/slog"

	"github.com/poyrazK/dnskitchen/internal/core/domain"
	"github.com/poyrazK/dnskitchen/internal/core/ports"
)

type domainService struct {
	repo        ports.DomainRepository
	nameservers domain.NameserverSet
	checker     ports.DelegationChecker
	locker      ports.NameLocker
	logger      *slog.Logger
}

// NewDomainService wires the zone lifecycle. checker and locker may be nil:
// without a checker new zones always start PENDING.
func NewDomainService(
	repo ports.DomainRepository,
	nameservers domain.NameserverSet,
	checker ports.DelegationChecker,
	locker ports.NameLocker,
	logger *slog.Logger,
) ports.DomainService {
	if logger == nil {
		logger = slog.Default()
	}
	return &domainService{
		repo:        repo,
		nameservers: nameservers,
		checker:     checker,
		locker:      locker,
		logger:      logger,
	}
}

func (s *domainService) CreateDomain(ctx context.Context, namespace, name string) (*domain.Domain, error) {
	if namespace == "" {
		return nil, domain.NewValidationError("namespace", "namespace is required")
	}
	name = domain.NormalizeDomainName(name)
	if err := domain.ValidateDomainName(name); err != nil {
		return nil, err
	}

	d := &domain.Domain{
		Namespace: namespace,
		Name:      name,
		Status:    domain.StatusPending,
		Records:   s.nameservers.SeedRecords(),
	}
	if s.checker != nil {
		delegated, err := s.checker.IsDelegated(ctx, name)
		if err != nil {
			s.logger.Debug("initial delegation check failed", "domain", name, "error", err)
		}
		if delegated {
			d.Status = domain.StatusActive
		}
	}

	if err := s.repo.CreateDomain(ctx, d); err != nil {
		return nil, err
	}
	s.logger.Info("domain created", "namespace", namespace, "domain", name, "status", d.Status)
	return d, nil
}

func (s *domainService) GetDomain(ctx context.Context, namespace, ref string) (*domain.Domain, error) {
	d, err := s.repo.GetDomain(ctx, domainRef(namespace, ref))
	if err != nil {
		return nil, notFoundAs(err, "domain", ref)
	}
	return d, nil
}

func (s *domainService) ListDomains(ctx context.Context, namespace string, filter domain.Filter, page domain.PageRequest) (*domain.Page[domain.Domain], error) {
	if namespace == "" {
		return nil, domain.NewValidationError("namespace", "namespace is required")
	}
	return s.repo.PaginateDomains(ctx, domain.AllOf(domain.Eq("namespace", namespace), filter), page)
}

func (s *domainService) UpdateDomain(ctx context.Context, namespace, ref string, patch domain.DomainPatch) (*domain.Domain, error) {
	if patch.Name != nil {
		name := domain.NormalizeDomainName(*patch.Name)
		if err := domain.ValidateDomainName(name); err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	d, err := s.repo.UpdateDomain(ctx, domainRef(namespace, ref), patch)
	if err != nil {
		return nil, notFoundAs(err, "domain", ref)
	}
	return d, nil
}

func (s *domainService) DeleteDomain(ctx context.Context, namespace, ref string) error {
	if err := s.repo.DeleteDomain(ctx, domainRef(namespace, ref)); err != nil {
		return notFoundAs(err, "domain", ref)
	}
	s.logger.Info("domain deleted", "namespace", namespace, "domain", ref)
	return nil
}

func (s *domainService) ReadActiveByName(ctx context.Context, namespace, name string) (*domain.Domain, error) {
	name = domain.NormalizeDomainName(name)
	d, err := s.repo.GetDomain(ctx, domain.AllOf(
		domain.Eq("namespace", namespace),
		domain.Eq("name", name),
		domain.Eq("status", string(domain.StatusActive)),
	))
	if err != nil {
		return nil, notFoundAs(err, "domain", name)
	}
	return d, nil
}

func (s *domainService) HealthCheck(ctx context.Context) map[string]error {
	res := map[string]error{"database": s.repo.Ping(ctx)}
	if s.locker != nil {
		res["lock"] = s.locker.Ping(ctx)
	}
	return res
}

// domainRef matches a domain of namespace by id or by name.
func domainRef(namespace, ref string) domain.Filter {
	return domain.AllOf(
		domain.Eq("namespace", namespace),
		domain.Or{
			domain.Eq("id", ref),
			domain.Eq("name", domain.NormalizeDomainName(ref)),
		},
	)
}
