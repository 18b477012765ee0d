package ports

import (
	"context"
	"io"

	"github.com/poyrazK/dnskitchen/internal/core/domain"
)

// DomainRepository persists zones. Filters are evaluated by the storage
// engine; a nil filter matches every row.
type DomainRepository interface {
	// CreateDomain inserts the domain together with d.Records in one transaction.
	CreateDomain(ctx context.Context, d *domain.Domain) error
	GetDomain(ctx context.Context, filter domain.Filter) (*domain.Domain, error)
	PaginateDomains(ctx context.Context, filter domain.Filter, page domain.PageRequest) (*domain.Page[domain.Domain], error)
	UpdateDomain(ctx context.Context, filter domain.Filter, patch domain.DomainPatch) (*domain.Domain, error)
	// DeleteDomain removes the matching domain and all of its records.
	DeleteDomain(ctx context.Context, filter domain.Filter) error
	ListDomainsByStatus(ctx context.Context, status domain.DomainStatus) ([]domain.Domain, error)
	// ActivateDomain moves a PENDING domain to ACTIVE and reports whether it changed.
	ActivateDomain(ctx context.Context, id string) (bool, error)
	Ping(ctx context.Context) error
}

// RecordRepository persists records. Create and update evaluate the CNAME
// exclusivity rule inside the write transaction.
type RecordRepository interface {
	CreateRecord(ctx context.Context, record *domain.Record) error
	// UpdateRecord applies patch to the record id of domainID. A patch name is
	// the stored (qualified) name.
	UpdateRecord(ctx context.Context, domainID, id string, patch domain.RecordPatch) (*domain.Record, error)
	GetRecord(ctx context.Context, filter domain.Filter) (*domain.Record, error)
	PaginateRecords(ctx context.Context, filter domain.Filter, page domain.PageRequest) (*domain.Page[domain.Record], error)
	DeleteRecords(ctx context.Context, filter domain.Filter) (int64, error)
}

// APIKeyRepository persists ACME webhook keys.
type APIKeyRepository interface {
	CreateAPIKey(ctx context.Context, key *domain.APIKey) error
	// GetAPIKeyByHash returns nil, nil when no key matches.
	GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error)
	ListAPIKeys(ctx context.Context, namespace string) ([]domain.APIKey, error)
	RevokeAPIKey(ctx context.Context, id string) error
}

// NameLocker serializes writers of one (domain, owner name) group.
type NameLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
	Ping(ctx context.Context) error
}

// NSResolver resolves the authoritative nameservers of a zone.
type NSResolver interface {
	LookupNS(ctx context.Context, name string) ([]string, error)
}

// DelegationChecker decides whether a zone is delegated to the operator.
type DelegationChecker interface {
	IsDelegated(ctx context.Context, name string) (bool, error)
}

type DomainService interface {
	CreateDomain(ctx context.Context, namespace, name string) (*domain.Domain, error)
	GetDomain(ctx context.Context, namespace, ref string) (*domain.Domain, error)
	ListDomains(ctx context.Context, namespace string, filter domain.Filter, page domain.PageRequest) (*domain.Page[domain.Domain], error)
	UpdateDomain(ctx context.Context, namespace, ref string, patch domain.DomainPatch) (*domain.Domain, error)
	DeleteDomain(ctx context.Context, namespace, ref string) error
	// ReadActiveByName returns the ACTIVE domain named name, if any, within namespace.
	ReadActiveByName(ctx context.Context, namespace, name string) (*domain.Domain, error)
	HealthCheck(ctx context.Context) map[string]error
}

type RecordService interface {
	CreateRecord(ctx context.Context, namespace, domainRef string, record *domain.Record) error
	CreateInDomain(ctx context.Context, d *domain.Domain, record *domain.Record) error
	GetRecord(ctx context.Context, namespace, domainRef, id string) (*domain.Record, error)
	ListRecords(ctx context.Context, namespace, domainRef string, filter domain.Filter, page domain.PageRequest) (*domain.Page[domain.Record], error)
	UpdateRecord(ctx context.Context, namespace, domainRef, id string, patch domain.RecordPatch) (*domain.Record, error)
	DeleteRecord(ctx context.Context, namespace, domainRef, id string) error
	// DeleteByName removes every record of d stored exactly as name and
	// matching where.
	DeleteByName(ctx context.Context, d *domain.Domain, name string, where domain.Filter) (int64, error)
	ImportZone(ctx context.Context, namespace, domainRef string, zone io.Reader) (*domain.ImportResult, error)
}

type ACMEService interface {
	Present(ctx context.Context, challenge domain.ACMEChallenge) error
	Cleanup(ctx context.Context, challenge domain.ACMEChallenge) error
}
