package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/poyrazK/dnskitchen/internal/core/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateRecord inserts record after checking it against the records stored
// under the same owner name. The domain row is locked for the duration of
// the transaction so concurrent writers to one zone are serialized.
func (r *Repository) CreateRecord(ctx context.Context, record *domain.Record) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	model := toRecordModel(record)
	err := r.transaction(ctx, func(tx *gorm.DB) error {
		d, err := lockDomain(tx, record.DomainID)
		if err != nil {
			return err
		}
		if err := checkConflict(tx, d, record.Name, record.Type, ""); err != nil {
			return err
		}
		return tx.Create(&model).Error
	})
	if err != nil {
		return err
	}
	*record = model.toDomain()
	return nil
}

func (r *Repository) UpdateRecord(ctx context.Context, domainID, id string, patch domain.RecordPatch) (*domain.Record, error) {
	var out recordModel
	err := r.transaction(ctx, func(tx *gorm.DB) error {
		d, err := lockDomain(tx, domainID)
		if err != nil {
			return err
		}
		var current recordModel
		if err := tx.Where("id = ? AND domain_id = ?", id, domainID).Take(&current).Error; err != nil {
			if isNotFound(err) {
				return &domain.NotFoundError{Entity: "record", Key: id}
			}
			return err
		}

		merged := current.toDomain()
		if patch.Name != nil {
			merged.Name = *patch.Name
		}
		if patch.Type != nil {
			merged.Type = *patch.Type
		}
		if patch.Content != nil {
			merged.Content = *patch.Content
		}
		if patch.TTL != nil {
			merged.TTL = *patch.TTL
		}
		if err := domain.ValidateRecord(&merged); err != nil {
			return err
		}
		if err := checkConflict(tx, d, merged.Name, merged.Type, id); err != nil {
			return err
		}

		merged.UpdatedAt = tx.NowFunc()
		out = toRecordModel(&merged)
		return tx.Model(&recordModel{}).Where("id = ?", id).Updates(map[string]any{
			"name":       out.Name,
			"type":       out.Type,
			"content":    out.Content,
			"ttl":        out.TTL,
			"updated_at": out.UpdatedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	rec := out.toDomain()
	return &rec, nil
}

func (r *Repository) GetRecord(ctx context.Context, filter domain.Filter) (*domain.Record, error) {
	scope, err := recordFields.where(filter)
	if err != nil {
		return nil, err
	}
	var m recordModel
	if err := r.db.WithContext(ctx).Scopes(scope).Take(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, &domain.NotFoundError{Entity: "record"}
		}
		return nil, err
	}
	rec := m.toDomain()
	return &rec, nil
}

func (r *Repository) PaginateRecords(ctx context.Context, filter domain.Filter, page domain.PageRequest) (*domain.Page[domain.Record], error) {
	return paginate(r.db.WithContext(ctx), recordFields, filter, page, recordModel.toDomain)
}

// DeleteRecords removes every record matching filter. An unrestricted
// filter is refused.
func (r *Repository) DeleteRecords(ctx context.Context, filter domain.Filter) (int64, error) {
	if filter == nil {
		return 0, domain.NewValidationError("filter", "refusing to delete without a filter")
	}
	scope, err := recordFields.where(filter)
	if err != nil {
		return 0, err
	}
	res := r.db.WithContext(ctx).Scopes(scope).Delete(&recordModel{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func lockDomain(tx *gorm.DB, id string) (*domainModel, error) {
	var m domainModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(&m).Error
	if err != nil {
		if isNotFound(err) {
			return nil, &domain.NotFoundError{Entity: "domain", Key: id}
		}
		return nil, fmt.Errorf("lock domain: %w", err)
	}
	return &m, nil
}

// checkConflict loads the types stored under every spelling of name in zone
// d, excluding the record exceptID, and applies the exclusivity rule.
func checkConflict(tx *gorm.DB, d *domainModel, name string, candidate domain.RecordType, exceptID string) error {
	if !domain.ExclusiveType(candidate) {
		return nil
	}
	query := tx.Model(&recordModel{}).Where("domain_id = ? AND name IN ?", d.ID, domain.NameGroup(name, d.Name))
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	var types []string
	if err := query.Pluck("type", &types).Error; err != nil {
		return fmt.Errorf("load name group: %w", err)
	}
	existing := make([]domain.RecordType, 0, len(types))
	for _, t := range types {
		existing = append(existing, domain.RecordType(t))
	}
	return domain.CheckRecordConflict(name, candidate, existing)
}
