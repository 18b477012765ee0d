package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/poyrazK/dnskitchen/internal/core/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *Repository) CreateDomain(ctx context.Context, d *domain.Domain) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	for i := range d.Records {
		if d.Records[i].ID == "" {
			d.Records[i].ID = uuid.NewString()
		}
		d.Records[i].DomainID = d.ID
	}
	model := toDomainModel(d)

	err := r.transaction(ctx, func(tx *gorm.DB) error {
		if err := ensureDomainNameFree(tx, d.Namespace, d.Name, ""); err != nil {
			return err
		}
		return tx.Create(&model).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainExists(d.Name)
	}
	if err != nil {
		return err
	}
	*d = model.toDomain()
	return nil
}

func (r *Repository) GetDomain(ctx context.Context, filter domain.Filter) (*domain.Domain, error) {
	m, err := findDomain(r.db.WithContext(ctx), filter)
	if err != nil {
		return nil, err
	}
	d := m.toDomain()
	return &d, nil
}

func (r *Repository) PaginateDomains(ctx context.Context, filter domain.Filter, page domain.PageRequest) (*domain.Page[domain.Domain], error) {
	return paginate(r.db.WithContext(ctx), domainFields, filter, page, domainModel.toDomain)
}

// UpdateDomain renames the matching domain. Record names qualified with the
// old zone name are rewritten in the same transaction.
func (r *Repository) UpdateDomain(ctx context.Context, filter domain.Filter, patch domain.DomainPatch) (*domain.Domain, error) {
	var out domainModel
	err := r.transaction(ctx, func(tx *gorm.DB) error {
		m, err := findDomain(tx.Clauses(clause.Locking{Strength: "UPDATE"}), filter)
		if err != nil {
			return err
		}
		out = *m
		if patch.Name == nil || *patch.Name == m.Name {
			return nil
		}
		newName := *patch.Name
		if err := ensureDomainNameFree(tx, m.Namespace, newName, m.ID); err != nil {
			return err
		}

		now := tx.NowFunc()
		if err := tx.Model(&domainModel{}).Where("id = ?", m.ID).
			Updates(map[string]any{"name": newName, "updated_at": now}).Error; err != nil {
			return fmt.Errorf("rename domain: %w", err)
		}

		var records []recordModel
		if err := tx.Where("domain_id = ?", m.ID).Find(&records).Error; err != nil {
			return fmt.Errorf("load records: %w", err)
		}
		for _, rec := range records {
			renamed := domain.RenameRecord(rec.Name, m.Name, newName)
			if renamed == rec.Name {
				continue
			}
			if err := tx.Model(&recordModel{}).Where("id = ?", rec.ID).
				Updates(map[string]any{"name": renamed, "updated_at": now}).Error; err != nil {
				return fmt.Errorf("rename record %s: %w", rec.ID, err)
			}
		}
		out.Name = newName
		out.UpdatedAt = now
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, domainExists(*patch.Name)
	}
	if err != nil {
		return nil, err
	}
	d := out.toDomain()
	return &d, nil
}

func (r *Repository) DeleteDomain(ctx context.Context, filter domain.Filter) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		m, err := findDomain(tx, filter)
		if err != nil {
			return err
		}
		if err := tx.Where("domain_id = ?", m.ID).Delete(&recordModel{}).Error; err != nil {
			return fmt.Errorf("delete records: %w", err)
		}
		return tx.Where("id = ?", m.ID).Delete(&domainModel{}).Error
	})
}

func (r *Repository) ListDomainsByStatus(ctx context.Context, status domain.DomainStatus) ([]domain.Domain, error) {
	var models []domainModel
	if err := r.db.WithContext(ctx).Where("status = ?", string(status)).
		Order("created_at").Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Domain, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *Repository) ActivateDomain(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domainModel{}).
		Where("id = ? AND status = ?", id, string(domain.StatusPending)).
		Updates(map[string]any{"status": string(domain.StatusActive), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func findDomain(tx *gorm.DB, filter domain.Filter) (*domainModel, error) {
	scope, err := domainFields.where(filter)
	if err != nil {
		return nil, err
	}
	var m domainModel
	if err := tx.Scopes(scope).Take(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, &domain.NotFoundError{Entity: "domain"}
		}
		return nil, err
	}
	return &m, nil
}

func ensureDomainNameFree(tx *gorm.DB, namespace, name, exceptID string) error {
	query := tx.Model(&domainModel{}).Where("namespace = ? AND name = ?", namespace, name)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	var n int64
	if err := query.Count(&n).Error; err != nil {
		return fmt.Errorf("check domain name: %w", err)
	}
	if n > 0 {
		return domainExists(name)
	}
	return nil
}

func domainExists(name string) error {
	return &domain.ConflictError{Name: name, Reason: fmt.Sprintf("domain %q already exists", name)}
}
