package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poyrazK/dnskitchen/internal/adapters/lock"
	"github.com/poyrazK/dnskitchen/internal/adapters/repository"
	"github.com/poyrazK/dnskitchen/internal/core/domain"
	"github.com/poyrazK/dnskitchen/internal/core/ports"
	"github.com/poyrazK/dnskitchen/internal/core/services"
)

const zoneFile = `$ORIGIN import.test.
$TTL 600
@    IN SOA ns1.kitchen.test. hostmaster.import.test. 1 7200 3600 1209600 300
www  IN A     192.0.2.10
api  IN CNAME www
@    IN MX    10 mail.import.test.
`

func newServices(t *testing.T) (ports.DomainService, ports.RecordService) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "import.db") + "?_pragma=foreign_keys(1)"
	db, err := repository.Open(repository.Options{Driver: repository.DriverSQLite, DSN: dsn, MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	repo := repository.NewRepository(db)
	t.Cleanup(func() { _ = repo.Close() })

	locker := lock.NewLocalLocker()
	ns := domain.NewNameserverSet("ns1.kitchen.test")
	return services.NewDomainService(repo, ns, nil, locker, nil), services.NewRecordService(repo, repo, locker, nil)
}

func TestRun_FileWithCreate(t *testing.T) {
	domains, records := newServices(t)
	path := filepath.Join(t.TempDir(), "import.test.zone")
	if err := os.WriteFile(path, []byte(zoneFile), 0o600); err != nil {
		t.Fatal(err)
	}

	out := &bytes.Buffer{}
	err := run(context.Background(), []string{"-n", "acme", "-d", "import.test", "--create", path}, nil, out, domains, records)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out.String(), "Created zone import.test") {
		t.Errorf("expected zone creation in output, got %q", out.String())
	}
	if !strings.Contains(out.String(), "Imported:   3") {
		t.Errorf("expected 3 imported records, got %q", out.String())
	}

	page, err := records.ListRecords(context.Background(), "acme", "import.test", domain.Eq("type", "CNAME"), domain.PageRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalRows != 1 || page.Rows[0].Name != "api.import.test" {
		t.Errorf("unexpected CNAME rows %+v", page.Rows)
	}
}

func TestRun_StdinAndURL(t *testing.T) {
	domains, records := newServices(t)
	ctx := context.Background()
	if _, err := domains.CreateDomain(ctx, "acme", "import.test"); err != nil {
		t.Fatal(err)
	}

	out := &bytes.Buffer{}
	if err := run(ctx, []string{"-n", "acme", "-d", "import.test", "-"}, strings.NewReader("mail IN A 192.0.2.25\n"), out, domains, records); err != nil {
		t.Fatalf("stdin import failed: %v", err)
	}
	if !strings.Contains(out.String(), "Imported:   1") {
		t.Errorf("unexpected output %q", out.String())
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(zoneFile))
	}))
	defer ts.Close()
	out.Reset()
	if err := run(ctx, []string{"-n", "acme", "-d", "import.test", ts.URL}, nil, out, domains, records); err != nil {
		t.Fatalf("url import failed: %v", err)
	}
	if !strings.Contains(out.String(), "Imported:   3") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRun_Errors(t *testing.T) {
	domains, records := newServices(t)
	ctx := context.Background()
	out := &bytes.Buffer{}

	if err := run(ctx, []string{"-d", "import.test", "-"}, strings.NewReader(""), out, domains, records); err == nil {
		t.Error("expected error for missing namespace")
	}
	if err := run(ctx, []string{"-n", "acme", "-d", "missing.test", "-"}, strings.NewReader(zoneFile), out, domains, records); err == nil {
		t.Error("expected error for unknown zone")
	}
	if err := run(ctx, []string{"-n", "acme", "-d", "import.test", filepath.Join(t.TempDir(), "nope.zone")}, nil, out, domains, records); err == nil {
		t.Error("expected error for missing file")
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()
	if err := run(ctx, []string{"-n", "acme", "-d", "import.test", "--create", ts.URL}, nil, out, domains, records); err == nil {
		t.Error("expected error for 404 status")
	}
}
