package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/poyrazK/dnskitchen/internal/core/domain"
	"github.com/poyrazK/dnskitchen/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newZone(t *testing.T, f *fixture, name string) *domain.Domain {
	t.Helper()
	d, err := f.domains.CreateDomain(context.Background(), "acme", name)
	require.NoError(t, err)
	return d
}

func TestCreateRecord_Naming(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := newZone(t, f, "example.com")

	tests := []struct {
		in   string
		want string
	}{
		{"@", "@"},
		{"example.com", "example.com"},
		{"www", "www.example.com"},
		{"A.B", "a.b.example.com"},
		{"_acme-challenge", "_acme-challenge.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			rec := &domain.Record{Name: tt.in, Type: domain.TypeTXT, Content: "v=" + tt.in}
			require.NoError(t, f.records.CreateRecord(ctx, "acme", d.ID, rec))
			assert.Equal(t, tt.want, rec.Name)
			assert.Equal(t, d.ID, rec.DomainID)
			assert.Equal(t, domain.DefaultTTL, rec.TTL)
			assert.NotEmpty(t, rec.ID)
		})
	}

	err := f.records.CreateRecord(ctx, "acme", d.ID, &domain.Record{Name: "www", Type: "CAA", Content: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	err = f.records.CreateRecord(ctx, "acme", d.ID, &domain.Record{Name: "www", Type: domain.TypeA, Content: "not-an-ip"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	err = f.records.CreateRecord(ctx, "acme", "missing.test", &domain.Record{Name: "www", Type: domain.TypeA, Content: "192.0.2.1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateRecord_CNAMEExclusivity(t *testing.T) {
	ctx := context.Background()

	t.Run("address then CNAME", func(t *testing.T) {
		f := newFixture(t)
		d := newZone(t, f, "one.test")
		require.NoError(t, f.records.CreateRecord(ctx, "acme", d.ID, &domain.Record{Name: "www", Type: domain.TypeA, Content: "192.0.2.1"}))

		err := f.records.CreateRecord(ctx, "acme", d.ID, &domain.Record{Name: "www", Type: domain.TypeCNAME, Content: "target.test."})
		var ce *domain.ConflictError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, domain.TypeCNAME, ce.Type)
		assert.Equal(t, []domain.RecordType{domain.TypeA}, ce.Existing)
	})

	t.Run("CNAME then address", func(t *testing.T) {
		f := newFixture(t)
		d := newZone(t, f, "two.test")
		require.NoError(t, f.records.CreateRecord(ctx, "acme", d.ID, &domain.Record{Name: "www", Type: domain.TypeCNAME, Content: "target.test."}))

		err := f.records.CreateRecord(ctx, "acme", d.ID, &domain.Record{Name: "www", Type: domain.TypeAAAA, Content: "2001:db8::1"})
		assert.ErrorIs(t, err, domain.ErrConflict)
		err = f.records.CreateRecord(ctx, "acme", d.ID, &domain.Record{Name: "www", Type: domain.TypeCNAME, Content: "other.test."})
		assert.ErrorIs(t, err, domain.ErrConflict, "a second CNAME is rejected too")

		require.NoError(t, f.records.CreateRecord(ctx, "acme", d.ID, &domain.Record{Name: "www", Type: domain.TypeTXT, Content: "unrelated"}))
	})

	t.Run("addresses coexist", func(t *testing.T) {
		f := newFixture(t)
		d := newZone(t, f, "three.test")
		for _, r := range []*domain.Record{
			{Name: "www", Type: domain.TypeA, Content: "192.0.2.1"},
			{Name: "www", Type: domain.TypeA, Content: "192.0.2.2"},
			{Name: "www", Type: domain.TypeAAAA, Content: "2001:db8::1"},
		} {
			require.NoError(t, f.records.CreateRecord(ctx, "acme", d.ID, r))
		}
	})

	t.Run("apex spellings share a group", func(t *testing.T) {
		f := newFixture(t)
		d := newZone(t, f, "four.test")
		require.NoError(t, f.records.CreateRecord(ctx, "acme", d.ID, &domain.Record{Name: "@", Type: domain.TypeA, Content: "192.0.2.1"}))
		err := f.records.CreateRecord(ctx, "acme", d.ID, &domain.Record{Name: "four.test", Type: domain.TypeCNAME, Content: "x.test."})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestCreateRecord_ConcurrentCNAME(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := newZone(t, f, "race.test")

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := &domain.Record{Name: "www", Type: domain.TypeCNAME, Content: "target.test."}
			if i%2 == 0 {
				rec = &domain.Record{Name: "www", Type: domain.TypeA, Content: "192.0.2.1"}
			}
			errs <- f.records.CreateRecord(ctx, "acme", d.ID, rec)
		}(i)
	}
	wg.Wait()
	close(errs)

	page, err := f.records.ListRecords(ctx, "acme", d.ID, domain.Eq("name", "www.race.test"), domain.PageRequest{})
	require.NoError(t, err)
	var cname, addr int
	for _, r := range page.Rows {
		switch r.Type {
		case domain.TypeCNAME:
			cname++
		case domain.TypeA:
			addr++
		}
	}
	assert.False(t, cname > 0 && addr > 0, "CNAME and A must never coexist")
	assert.LessOrEqual(t, cname, 1)

	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrConflict)
		}
	}
}

func TestUpdateRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := newZone(t, f, "patch.test")
	a := &domain.Record{Name: "www", Type: domain.TypeA, Content: "192.0.2.1", TTL: 300}
	require.NoError(t, f.records.CreateRecord(ctx, "acme", d.ID, a))
	c := &domain.Record{Name: "alias", Type: domain.TypeCNAME, Content: "www.patch.test."}
	require.NoError(t, f.records.CreateRecord(ctx, "acme", d.ID, c))

	content := "192.0.2.9"
	got, err := f.records.UpdateRecord(ctx, "acme", d.ID, a.ID, domain.RecordPatch{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.9", got.Content)
	assert.Equal(t, 300, got.TTL, "omitted fields are left unchanged")
	assert.Equal(t, "www.patch.test", got.Name)

	name := "mail"
	got, err = f.records.UpdateRecord(ctx, "acme", d.ID, a.ID, domain.RecordPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "mail.patch.test", got.Name)

	name = "alias"
	_, err = f.records.UpdateRecord(ctx, "acme", d.ID, a.ID, domain.RecordPatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrConflict, "cannot move an address onto a CNAME")

	bad := 0
	_, err = f.records.UpdateRecord(ctx, "acme", d.ID, a.ID, domain.RecordPatch{TTL: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)

	same, err := f.records.UpdateRecord(ctx, "acme", d.ID, c.ID, domain.RecordPatch{})
	require.NoError(t, err)
	assert.Equal(t, c.ID, same.ID)

	_, err = f.records.UpdateRecord(ctx, "acme", d.ID, "no-such-id", domain.RecordPatch{Content: &content})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetAndDeleteRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := newZone(t, f, "del.test")
	other := newZone(t, f, "other.test")
	r := &domain.Record{Name: "www", Type: domain.TypeA, Content: "192.0.2.1"}
	require.NoError(t, f.records.CreateRecord(ctx, "acme", d.ID, r))

	got, err := f.records.GetRecord(ctx, "acme", "del.test", r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Content, got.Content)

	_, err = f.records.GetRecord(ctx, "acme", other.ID, r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "records are scoped to their domain")
	assert.ErrorIs(t, f.records.DeleteRecord(ctx, "acme", other.ID, r.ID), domain.ErrNotFound)

	require.NoError(t, f.records.DeleteRecord(ctx, "acme", d.ID, r.ID))
	assert.ErrorIs(t, f.records.DeleteRecord(ctx, "acme", d.ID, r.ID), domain.ErrNotFound)
}

func TestImportZone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := newZone(t, f, "import.test")
	require.NoError(t, f.records.CreateRecord(ctx, "acme", d.ID, &domain.Record{Name: "web", Type: domain.TypeCNAME, Content: "www.import.test."}))

	zone := `$ORIGIN import.test.
$TTL 600
@       IN SOA ns1.kitchen.test. hostmaster.import.test. 1 7200 3600 1209600 300
@       IN NS  ns1.kitchen.test.
www     IN A   192.0.2.10
www     IN A   192.0.2.11
web     IN A   192.0.2.12
mail    IN MX  10 mx.import.test.
@       IN CAA 0 issue "letsencrypt.org"
`
	res, err := f.records.ImportZone(ctx, "acme", d.ID, strings.NewReader(zone))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Imported)
	// SOA, the seeded NS, the conflicting web A and the unsupported CAA.
	assert.Equal(t, 4, res.Skipped)
	assert.NotEmpty(t, res.Errors)

	page, err := f.records.ListRecords(ctx, "acme", d.ID, domain.Eq("name", "www.import.test"), domain.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, 600, page.Rows[0].TTL)

	again, err := f.records.ImportZone(ctx, "acme", d.ID, strings.NewReader(zone))
	require.NoError(t, err)
	assert.Equal(t, 0, again.Imported, "importing twice is a no-op")

	_, err = f.records.ImportZone(ctx, "acme", d.ID, strings.NewReader("www IN A not-an-ip\n"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateRecord_LocksOwnerGroup(t *testing.T) {
	repo := new(testutil.MockRepo)
	d := &domain.Domain{ID: "d1", Namespace: "acme", Name: "lock.test"}
	repo.On("GetDomain", mock.Anything).Return(d, nil)
	repo.On("CreateRecord", mock.AnythingOfType("*domain.Record")).Return(nil)
	locker := &testutil.MockLocker{}

	svc := NewRecordService(repo, repo, locker, nil)
	require.NoError(t, svc.CreateRecord(context.Background(), "acme", "d1", &domain.Record{Name: "@", Type: domain.TypeA, Content: "192.0.2.1"}))
	require.NoError(t, svc.CreateRecord(context.Background(), "acme", "d1", &domain.Record{Name: "lock.test", Type: domain.TypeA, Content: "192.0.2.2"}))
	assert.Equal(t, []string{"d1/@", "d1/@"}, locker.Keys)

	locker.LockErr = errors.New("redis down")
	err := svc.CreateRecord(context.Background(), "acme", "d1", &domain.Record{Name: "www", Type: domain.TypeA, Content: "192.0.2.3"})
	assert.Error(t, err)
	repo.AssertNumberOfCalls(t, "CreateRecord", 2)
}
