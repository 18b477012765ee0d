package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/poyrazK/dnskitchen/internal/core/domain"
	"github.com/poyrazK/dnskitchen/internal/core/ports"
	"github.com/poyrazK/dnskitchen/internal/dns/master"
	"github.com/poyrazK/dnskitchen/internal/infrastructure/metrics"
)

type recordService struct {
	domains ports.DomainRepository
	repo    ports.RecordRepository
	locker  ports.NameLocker
	logger  *slog.Logger
}

// NewRecordService wires record management. Writes to one owner name are
// serialized through locker when it is not nil, on top of the repository
// transaction.
func NewRecordService(
	domains ports.DomainRepository,
	repo ports.RecordRepository,
	locker ports.NameLocker,
	logger *slog.Logger,
) ports.RecordService {
	if logger == nil {
		logger = slog.Default()
	}
	return &recordService{domains: domains, repo: repo, locker: locker, logger: logger}
}

func (s *recordService) CreateRecord(ctx context.Context, namespace, domainRef string, record *domain.Record) error {
	d, err := s.resolveDomain(ctx, namespace, domainRef)
	if err != nil {
		return err
	}
	return s.CreateInDomain(ctx, d, record)
}

// CreateInDomain qualifies record.Name against d, validates the record and
// stores it. On success record holds the stored values.
func (s *recordService) CreateInDomain(ctx context.Context, d *domain.Domain, record *domain.Record) error {
	name := strings.ToLower(strings.TrimSpace(record.Name))
	if err := domain.ValidateRecordName(name); err != nil {
		return err
	}
	t, err := domain.ParseRecordType(string(record.Type))
	if err != nil {
		return err
	}
	if record.TTL == 0 {
		record.TTL = domain.DefaultTTL
	}
	record.DomainID = d.ID
	record.Name = domain.QualifyRecordName(name, d.Name)
	record.Type = t
	if err := domain.ValidateRecord(record); err != nil {
		return err
	}

	unlock, err := s.lock(ctx, d, record.Name)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.repo.CreateRecord(ctx, record); err != nil {
		s.observeConflict(err, record.Type)
		return err
	}
	s.logger.Debug("record created", "domain", d.Name, "name", record.Name, "type", record.Type)
	return nil
}

func (s *recordService) GetRecord(ctx context.Context, namespace, domainRef, id string) (*domain.Record, error) {
	d, err := s.resolveDomain(ctx, namespace, domainRef)
	if err != nil {
		return nil, err
	}
	return s.getInDomain(ctx, d, id)
}

func (s *recordService) ListRecords(ctx context.Context, namespace, domainRef string, filter domain.Filter, page domain.PageRequest) (*domain.Page[domain.Record], error) {
	d, err := s.resolveDomain(ctx, namespace, domainRef)
	if err != nil {
		return nil, err
	}
	return s.repo.PaginateRecords(ctx, domain.AllOf(domain.Eq("domainId", d.ID), filter), page)
}

func (s *recordService) UpdateRecord(ctx context.Context, namespace, domainRef, id string, patch domain.RecordPatch) (*domain.Record, error) {
	d, err := s.resolveDomain(ctx, namespace, domainRef)
	if err != nil {
		return nil, err
	}
	current, err := s.getInDomain(ctx, d, id)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return current, nil
	}

	target := current.Name
	if patch.Name != nil {
		name := strings.ToLower(strings.TrimSpace(*patch.Name))
		if err := domain.ValidateRecordName(name); err != nil {
			return nil, err
		}
		target = domain.QualifyRecordName(name, d.Name)
		patch.Name = &target
	}
	if patch.Type != nil {
		t, err := domain.ParseRecordType(string(*patch.Type))
		if err != nil {
			return nil, err
		}
		patch.Type = &t
	}
	if patch.TTL != nil {
		if err := domain.ValidateTTL(*patch.TTL); err != nil {
			return nil, err
		}
	}

	unlock, err := s.lock(ctx, d, target)
	if err != nil {
		return nil, err
	}
	defer unlock()

	updated, err := s.repo.UpdateRecord(ctx, d.ID, id, patch)
	if err != nil {
		if patch.Type != nil {
			s.observeConflict(err, *patch.Type)
		} else {
			s.observeConflict(err, current.Type)
		}
		return nil, notFoundAs(err, "record", id)
	}
	return updated, nil
}

func (s *recordService) DeleteRecord(ctx context.Context, namespace, domainRef, id string) error {
	d, err := s.resolveDomain(ctx, namespace, domainRef)
	if err != nil {
		return err
	}
	n, err := s.repo.DeleteRecords(ctx, domain.AllOf(domain.Eq("domainId", d.ID), domain.Eq("id", id)))
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: "record", Key: id}
	}
	return nil
}

func (s *recordService) DeleteByName(ctx context.Context, d *domain.Domain, name string, where domain.Filter) (int64, error) {
	return s.repo.DeleteRecords(ctx, domain.AllOf(
		domain.Eq("domainId", d.ID),
		domain.Eq("name", name),
		where,
	))
}

// ImportZone creates every supported record of a master file through the
// regular create path. Records already present and SOA records are skipped.
func (s *recordService) ImportZone(ctx context.Context, namespace, domainRef string, zone io.Reader) (*domain.ImportResult, error) {
	d, err := s.resolveDomain(ctx, namespace, domainRef)
	if err != nil {
		return nil, err
	}
	data, err := master.NewMasterParser(d.Name).Parse(zone)
	if err != nil {
		return nil, domain.NewValidationError("zone", err.Error())
	}
	master.SortRecordsCanonically(data.Records)

	res := &domain.ImportResult{Skipped: len(data.Skipped), Errors: data.Skipped}
	for _, rec := range data.Records {
		if rec.Type == domain.TypeSOA {
			res.Skipped++
			continue
		}
		stored := domain.QualifyRecordName(rec.Name, d.Name)
		exists, err := s.exists(ctx, d, stored, rec.Type, rec.Content)
		if err != nil {
			return nil, err
		}
		if exists {
			res.Skipped++
			continue
		}
		if err := s.CreateInDomain(ctx, d, &rec); err != nil {
			if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrConflict) {
				res.Skipped++
				res.Errors = append(res.Errors, fmt.Sprintf("%s %s: %v", stored, rec.Type, err))
				continue
			}
			return nil, err
		}
		res.Imported++
	}
	s.logger.Info("zone imported", "domain", d.Name, "imported", res.Imported, "skipped", res.Skipped)
	return res, nil
}

func (s *recordService) resolveDomain(ctx context.Context, namespace, ref string) (*domain.Domain, error) {
	if namespace == "" {
		return nil, domain.NewValidationError("namespace", "namespace is required")
	}
	d, err := s.domains.GetDomain(ctx, domainRef(namespace, ref))
	if err != nil {
		return nil, notFoundAs(err, "domain", ref)
	}
	return d, nil
}

func (s *recordService) getInDomain(ctx context.Context, d *domain.Domain, id string) (*domain.Record, error) {
	rec, err := s.repo.GetRecord(ctx, domain.AllOf(domain.Eq("domainId", d.ID), domain.Eq("id", id)))
	if err != nil {
		return nil, notFoundAs(err, "record", id)
	}
	return rec, nil
}

func (s *recordService) exists(ctx context.Context, d *domain.Domain, stored string, t domain.RecordType, content string) (bool, error) {
	_, err := s.repo.GetRecord(ctx, domain.AllOf(
		domain.Eq("domainId", d.ID),
		domain.In("name", domain.NameGroup(stored, d.Name)...),
		domain.Eq("type", string(t)),
		domain.Eq("content", content),
	))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	}
	return false, err
}

func (s *recordService) lock(ctx context.Context, d *domain.Domain, stored string) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	return s.locker.Lock(ctx, groupKey(d, stored))
}

func (s *recordService) observeConflict(err error, t domain.RecordType) {
	if errors.Is(err, domain.ErrConflict) {
		metrics.RecordConflicts.WithLabelValues(string(t)).Inc()
	}
}

// groupKey identifies the owner name group of stored within d. Both apex
// spellings share one key.
func groupKey(d *domain.Domain, stored string) string {
	return d.ID + "/" + domain.NameGroup(stored, d.Name)[0]
}
