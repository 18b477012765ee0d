package services

import (
	"errors"

	"github.com/poyrazK/dnskitchen/internal/core/domain"
)

// notFoundAs names the entity the caller asked for in not-found errors.
func notFoundAs(err error, entity, key string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.NotFoundError{Entity: entity, Key: key}
	}
	return err
}
