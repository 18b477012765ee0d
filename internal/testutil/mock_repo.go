package testutil

import (
	"context"

	"github.com/poyrazK/dnskitchen/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// MockRepo implements the domain, record and API key repositories.
type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) CreateDomain(ctx context.Context, d *domain.Domain) error {
	args := m.Called(d)
	return args.Error(0)
}

func (m *MockRepo) GetDomain(ctx context.Context, filter domain.Filter) (*domain.Domain, error) {
	args := m.Called(filter)
	d, _ := args.Get(0).(*domain.Domain)
	return d, args.Error(1)
}

func (m *MockRepo) PaginateDomains(ctx context.Context, filter domain.Filter, page domain.PageRequest) (*domain.Page[domain.Domain], error) {
	args := m.Called(filter, page)
	p, _ := args.Get(0).(*domain.Page[domain.Domain])
	return p, args.Error(1)
}

func (m *MockRepo) UpdateDomain(ctx context.Context, filter domain.Filter, patch domain.DomainPatch) (*domain.Domain, error) {
	args := m.Called(filter, patch)
	d, _ := args.Get(0).(*domain.Domain)
	return d, args.Error(1)
}

func (m *MockRepo) DeleteDomain(ctx context.Context, filter domain.Filter) error {
	args := m.Called(filter)
	return args.Error(0)
}

func (m *MockRepo) ListDomainsByStatus(ctx context.Context, status domain.DomainStatus) ([]domain.Domain, error) {
	args := m.Called(status)
	ds, _ := args.Get(0).([]domain.Domain)
	return ds, args.Error(1)
}

func (m *MockRepo) ActivateDomain(ctx context.Context, id string) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepo) Ping(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepo) CreateRecord(ctx context.Context, record *domain.Record) error {
	args := m.Called(record)
	return args.Error(0)
}

func (m *MockRepo) UpdateRecord(ctx context.Context, domainID, id string, patch domain.RecordPatch) (*domain.Record, error) {
	args := m.Called(domainID, id, patch)
	r, _ := args.Get(0).(*domain.Record)
	return r, args.Error(1)
}

func (m *MockRepo) GetRecord(ctx context.Context, filter domain.Filter) (*domain.Record, error) {
	args := m.Called(filter)
	r, _ := args.Get(0).(*domain.Record)
	return r, args.Error(1)
}

func (m *MockRepo) PaginateRecords(ctx context.Context, filter domain.Filter, page domain.PageRequest) (*domain.Page[domain.Record], error) {
	args := m.Called(filter, page)
	p, _ := args.Get(0).(*domain.Page[domain.Record])
	return p, args.Error(1)
}

func (m *MockRepo) DeleteRecords(ctx context.Context, filter domain.Filter) (int64, error) {
	args := m.Called(filter)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

func (m *MockRepo) CreateAPIKey(ctx context.Context, key *domain.APIKey) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockRepo) GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	args := m.Called(keyHash)
	k, _ := args.Get(0).(*domain.APIKey)
	return k, args.Error(1)
}

func (m *MockRepo) ListAPIKeys(ctx context.Context, namespace string) ([]domain.APIKey, error) {
	args := m.Called(namespace)
	ks, _ := args.Get(0).([]domain.APIKey)
	return ks, args.Error(1)
}

func (m *MockRepo) RevokeAPIKey(ctx context.Context, id string) error {
	args := m.Called(id)
	return args.Error(0)
}
