package service

import (
	"context"
	"fmt"
	"strings"

	"pacas-inventario/logging"
	"pacas-inventario/models"
	"pacas-inventario/pricing"
	"pacas-inventario/repository"
	"pacas-inventario/utils"
)

// BundleService handles bundle create/edit/delete flows and metrics
type BundleService struct {
	bundles   repository.BundleRepositoryInterface
	config    repository.ConfigRepositoryInterface
	formatter *utils.Formatter
}

// NewBundleService creates a new BundleService
func NewBundleService(
	bundles repository.BundleRepositoryInterface,
	config repository.ConfigRepositoryInterface,
	formatter *utils.Formatter,
) *BundleService {
	if formatter == nil {
		formatter = utils.DefaultFormatter()
	}
	return &BundleService{
		bundles:   bundles,
		config:    config,
		formatter: formatter,
	}
}

// Ensure BundleService implements BundleServiceInterface
var _ BundleServiceInterface = (*BundleService)(nil)

// Create validates the input and stores a new bundle
func (s *BundleService) Create(ctx context.Context, input models.BundleRequest) (*models.Bundle, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := ValidateBundle(input); err != nil {
		logging.Sugar.Warnf("❌ CreateBundle: Validation failed: %v", err)
		return nil, err
	}

	bundle := input.ToBundle()
	saved, err := s.bundles.Save(ctx, &bundle)
	if err != nil {
		return nil, fmt.Errorf("failed to save bundle: %w", err)
	}
	return saved, nil
}

// Update validates the input and replaces the stored bundle
func (s *BundleService) Update(ctx context.Context, id int64, input models.BundleRequest) (*models.Bundle, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := ValidateBundle(input); err != nil {
		logging.Sugar.Warnf("❌ UpdateBundle: Validation failed for id=%d: %v", id, err)
		return nil, err
	}

	bundle := input.ToBundle()
	bundle.ID = id
	return s.bundles.Update(ctx, &bundle)
}

// Delete removes a bundle
func (s *BundleService) Delete(ctx context.Context, id int64) error {
	return s.bundles.Delete(ctx, id)
}

// Get returns a bundle with its metrics and formatted display values
func (s *BundleService) Get(ctx context.Context, id int64) (*models.BundleDetail, error) {
	bundle, err := s.bundles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing config: %w", err)
	}

	metrics := pricing.ComputeMetrics(*bundle, *cfg)
	logging.Sugar.Debugf("💰 GetBundle: id=%d cost_per_piece=%s ideal_profit=%s", id, metrics.CostPerPiece, metrics.IdealProfit)

	return &models.BundleDetail{
		Bundle:  *bundle,
		Metrics: metrics,
		Display: MetricsDisplay(s.formatter, metrics),
	}, nil
}

// List returns all bundles, newest first
func (s *BundleService) List(ctx context.Context) ([]models.Bundle, error) {
	return s.bundles.GetAll(ctx)
}

// Dashboard returns all bundles with their metrics and the portfolio summary
func (s *BundleService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	bundles, err := s.bundles.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing config: %w", err)
	}

	withMetrics := make([]models.BundleWithMetrics, 0, len(bundles))
	for _, b := range bundles {
		withMetrics = append(withMetrics, models.BundleWithMetrics{
			Bundle:  b,
			Metrics: pricing.ComputeMetrics(b, *cfg),
		})
	}
	summary := pricing.ComputePortfolio(bundles, *cfg)

	return &models.Dashboard{
		Bundles: withMetrics,
		Summary: summary,
		Display: map[string]string{
			"total_bundles":           s.formatter.FormatCount(summary.TotalBundles),
			"total_investment":        s.formatter.FormatCurrency(summary.TotalInvestment),
			"total_estimated_profit":  s.formatter.FormatCurrency(summary.TotalEstimatedProfit),
			"estimated_profit_margin": s.formatter.FormatPercentage(summary.EstimatedProfitMargin),
		},
	}, nil
}

// NewBundleDefaults returns the pre-filled values for a new bundle: the default
// expenses from the config and every known type and grade with zero pieces
func (s *BundleService) NewBundleDefaults(ctx context.Context) (*models.BundleDefaults, error) {
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing config: %w", err)
	}

	var byType, byQuality models.Counts
	for _, t := range models.DefaultTypes {
		byType.Set(t, 0)
	}
	for _, g := range models.DefaultGrades {
		byQuality.Set(g, 0)
	}
	// Grades added through the config are offered too
	for _, g := range cfg.ProfitPercentages.Keys() {
		if _, ok := byQuality.Get(g); !ok {
			byQuality.Set(g, 0)
		}
	}

	return &models.BundleDefaults{
		AdditionalExpenses: cfg.DefaultExpenses,
		Classification:     models.Classification{ByType: byType, ByQuality: byQuality},
	}, nil
}

// MetricsDisplay formats the headline values of a metrics record
func MetricsDisplay(f *utils.Formatter, m models.BundleMetrics) map[string]string {
	display := map[string]string{
		"total_cost":                f.FormatCurrency(m.TotalCost),
		"total_additional_expenses": f.FormatCurrency(m.TotalAdditionalExpenses),
		"total_cost_with_expenses":  f.FormatCurrency(m.TotalCostWithExpenses),
		"cost_per_piece":            f.FormatCurrency(m.CostPerPiece),
		"total_minimum_revenue":     f.FormatCurrency(m.TotalMinimumRevenue),
		"total_ideal_revenue":       f.FormatCurrency(m.TotalIdealRevenue),
		"minimum_profit":            f.FormatCurrency(m.MinimumProfit),
		"ideal_profit":              f.FormatCurrency(m.IdealProfit),
		"minimum_profit_margin":     f.FormatPercentage(m.MinimumProfitMargin),
		"ideal_profit_margin":       f.FormatPercentage(m.IdealProfitMargin),
	}
	for _, q := range m.QualityBreakdown {
		display[q.Quality+".minimum_price"] = f.FormatCurrency(q.MinimumPrice)
		display[q.Quality+".ideal_price"] = f.FormatCurrency(q.IdealPrice)
	}
	return display
}

// ConfigService handles reads and merge updates of the pricing config
type ConfigService struct {
	repository repository.ConfigRepositoryInterface
}

// NewConfigService creates a new ConfigService
func NewConfigService(repo repository.ConfigRepositoryInterface) *ConfigService {
	return &ConfigService{repository: repo}
}

// Ensure ConfigService implements ConfigServiceInterface
var _ ConfigServiceInterface = (*ConfigService)(nil)

// Get returns the current pricing config
func (s *ConfigService) Get(ctx context.Context) (*models.PricingConfig, error) {
	return s.repository.Get(ctx)
}

// Update merges the given percentages and expenses into the config.
// Negative values are rejected.
func (s *ConfigService) Update(ctx context.Context, update models.PricingConfigUpdate) (*models.PricingConfig, error) {
	if err := ValidateConfigUpdate(update); err != nil {
		return nil, err
	}

	logging.Sugar.Infof("🔍 UpdateConfig: Merging config update")
	return s.repository.Set(ctx, update)
}
