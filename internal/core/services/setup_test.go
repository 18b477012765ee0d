package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/poyrazK/dnskitchen/internal/adapters/lock"
	"github.com/poyrazK/dnskitchen/internal/adapters/repository"
	"github.com/poyrazK/dnskitchen/internal/core/ports"
	"github.com/poyrazK/dnskitchen/internal/testutil"
)

type fixture struct {
	repo     *repository.Repository
	checker  *testutil.MockDelegationChecker
	domains  ports.DomainService
	records  ports.RecordService
	acme     ports.ACMEService
	nsLocker *lock.LocalLocker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "services.db") + "?_pragma=foreign_keys(1)"
	db, err := repository.Open(repository.Options{Driver: repository.DriverSQLite, DSN: dsn, MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	repo := repository.NewRepository(db)
	t.Cleanup(func() { _ = repo.Close() })

	f := &fixture{
		repo:     repo,
		checker:  &testutil.MockDelegationChecker{},
		nsLocker: lock.NewLocalLocker(),
	}
	f.domains = NewDomainService(repo, operatorNS, f.checker, f.nsLocker, nil)
	f.records = NewRecordService(repo, repo, f.nsLocker, nil)
	f.acme = NewACMEService(repo, f.domains, f.records, repo, time.Minute, nil)
	return f
}
