package repository

import (
	"context"
	"errors"

	"pacas-inventario/models"
)

// ErrBundleNotFound is returned when no bundle has the requested id
var ErrBundleNotFound = errors.New("bundle not found")

// BundleRepositoryInterface defines the contract for bundle repository operations
type BundleRepositoryInterface interface {
	GetAll(ctx context.Context) ([]models.Bundle, error)
	GetByID(ctx context.Context, id int64) (*models.Bundle, error)
	Save(ctx context.Context, bundle *models.Bundle) (*models.Bundle, error)
	Update(ctx context.Context, bundle *models.Bundle) (*models.Bundle, error)
	Delete(ctx context.Context, id int64) error
	ExistsByName(ctx context.Context, name string) (bool, error)
	Restore(ctx context.Context, bundle *models.Bundle) (*models.Bundle, error)
}

// ConfigRepositoryInterface defines the contract for the pricing config record
type ConfigRepositoryInterface interface {
	Get(ctx context.Context) (*models.PricingConfig, error)
	Set(ctx context.Context, update models.PricingConfigUpdate) (*models.PricingConfig, error)
}
