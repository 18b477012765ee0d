package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/poyrazK/dnskitchen/internal/core/domain"
)

func (r *Repository) CreateAPIKey(ctx context.Context, key *domain.APIKey) error {
	if key.ID == "" {
		key.ID = uuid.NewString()
	}
	m := toAPIKeyModel(key)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*key = m.toDomain()
	return nil
}

func (r *Repository) GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	var m apiKeyModel
	if err := r.db.WithContext(ctx).Where("key_hash = ?", keyHash).Take(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	k := m.toDomain()
	return &k, nil
}

func (r *Repository) ListAPIKeys(ctx context.Context, namespace string) ([]domain.APIKey, error) {
	query := r.db.WithContext(ctx).Order("created_at").Order("id")
	if namespace != "" {
		query = query.Where("namespace = ?", namespace)
	}
	var models []apiKeyModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	keys := make([]domain.APIKey, 0, len(models))
	for _, m := range models {
		keys = append(keys, m.toDomain())
	}
	return keys, nil
}

func (r *Repository) RevokeAPIKey(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&apiKeyModel{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &domain.NotFoundError{Entity: "api key", Key: id}
	}
	return nil
}
