package service

import (
	"context"

	"pacas-inventario/models"
)

// BundleServiceInterface defines the contract for bundle operations
type BundleServiceInterface interface {
	Create(ctx context.Context, input models.BundleRequest) (*models.Bundle, error)
	Update(ctx context.Context, id int64, input models.BundleRequest) (*models.Bundle, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.BundleDetail, error)
	List(ctx context.Context) ([]models.Bundle, error)
	Dashboard(ctx context.Context) (*models.Dashboard, error)
	NewBundleDefaults(ctx context.Context) (*models.BundleDefaults, error)
}

// ConfigServiceInterface defines the contract for pricing config operations
type ConfigServiceInterface interface {
	Get(ctx context.Context) (*models.PricingConfig, error)
	Update(ctx context.Context, update models.PricingConfigUpdate) (*models.PricingConfig, error)
}
