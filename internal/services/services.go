// Package services holds the business rules: access control, folder
// hierarchy, sharing, versioning and file content. Handlers stay thin and
// translate the typed errors returned here into transport responses.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Cache is the process-scoped key-value service the managers invalidate by
// hand. internal/redis.Service implements it; tests use a map-backed fake.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Remove(ctx context.Context, keys ...string) error
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
