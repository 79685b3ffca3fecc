package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"pacas-inventario/logging"
	"pacas-inventario/models"
	"pacas-inventario/pricing"
	"pacas-inventario/repository"
	"pacas-inventario/utils"
)

// Layouts accepted for legacy created_at values, tried in order
var legacyTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ImportService loads legacy flat-file exports into the repository
type ImportService struct {
	bundles   repository.BundleRepositoryInterface
	config    repository.ConfigRepositoryInterface
	backupDir string
	now       func() time.Time
}

// NewImportService creates a new ImportService. Source files are copied into
// backupDir before anything is imported.
func NewImportService(
	bundles repository.BundleRepositoryInterface,
	config repository.ConfigRepositoryInterface,
	backupDir string,
) *ImportService {
	return &ImportService{
		bundles:   bundles,
		config:    config,
		backupDir: backupDir,
		now:       time.Now,
	}
}

// Ensure ImportService implements ImportServiceInterface
var _ ImportServiceInterface = (*ImportService)(nil)

// ImportFile backs up the source files, merges the legacy config and restores
// every bundle whose name is not stored yet. Missing files are skipped.
func (s *ImportService) ImportFile(ctx context.Context, bundlesPath string, configPath string) (*models.ImportResult, error) {
	logging.Sugar.Infof("🔄 Starting import: bundles=%s config=%s", bundlesPath, configPath)

	result := &models.ImportResult{Backups: []string{}}
	for _, path := range []string{bundlesPath, configPath} {
		backup, err := s.backupFile(path)
		if err != nil {
			return nil, err
		}
		if backup != "" {
			result.Backups = append(result.Backups, backup)
		}
	}

	legacyBundles, embeddedConfig, err := readLegacyBundles(bundlesPath)
	if err != nil {
		return nil, err
	}

	configUpdate, err := readLegacyConfig(configPath)
	if err != nil {
		return nil, err
	}
	if configUpdate == nil && embeddedConfig != nil {
		configUpdate = embeddedConfig
	}
	if configUpdate != nil {
		if _, err := s.config.Set(ctx, *configUpdate); err != nil {
			return nil, fmt.Errorf("failed to import config: %w", err)
		}
		logging.Sugar.Infof("✅ Config imported")
	}

	result.Total = len(legacyBundles)
	for _, legacy := range legacyBundles {
		bundle := s.fromLegacy(legacy)
		if bundle.Name == "" {
			logging.Sugar.Warnf("⏭️  Skipping bundle without name")
			result.Skipped++
			continue
		}

		exists, err := s.bundles.ExistsByName(ctx, bundle.Name)
		if err != nil {
			logging.Sugar.Errorf("❌ Error checking existence for bundle %q: %v", bundle.Name, err)
			continue
		}
		if exists {
			logging.Sugar.Infof("⏭️  Skipping bundle %q (already exists in database)", bundle.Name)
			result.Skipped++
			continue
		}
		if err := pricing.CheckInput(bundle); err != nil {
			logging.Sugar.Warnf("⏭️  Skipping bundle %q: %v", legacy.Name, err)
			result.Skipped++
			continue
		}

		if _, err := s.bundles.Restore(ctx, &bundle); err != nil {
			logging.Sugar.Errorf("❌ Error restoring bundle %q: %v", legacy.Name, err)
			continue
		}
		result.Inserted++
	}

	logging.Sugar.Infof("🎉 Import completed: %d inserted, %d skipped, %d total", result.Inserted, result.Skipped, result.Total)
	return result, nil
}

// backupFile copies path into the backup directory with a timestamp suffix.
// It returns "" when path does not exist.
func (s *ImportService) backupFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	src, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		logging.Sugar.Infof("No %s file found, skipping backup", filepath.Base(path))
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer src.Close()

	if err := os.MkdirAll(s.backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	backupPath := filepath.Join(s.backupDir, utils.BackupFileName(filepath.Base(path), s.now()))
	dst, err := os.Create(backupPath)
	if err != nil {
		return "", fmt.Errorf("failed to create backup %s: %w", backupPath, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("failed to write backup %s: %w", backupPath, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to write backup %s: %w", backupPath, err)
	}

	logging.Sugar.Infof("💾 Backed up %s to %s", path, backupPath)
	return backupPath, nil
}

// fromLegacy converts a legacy record, normalizing category and grade names
func (s *ImportService) fromLegacy(legacy models.LegacyBundle) models.Bundle {
	sumInts := func(a, b int) int { return a + b }
	sumAmounts := func(a, b decimal.Decimal) decimal.Decimal { return a.Add(b) }

	createdAt, ok := ParseLegacyTime(legacy.CreatedAt)
	if !ok {
		createdAt = s.now()
	}

	return models.Bundle{
		Name:               strings.TrimSpace(legacy.Name),
		TotalCost:          legacy.TotalCost,
		TotalPieces:        legacy.TotalPieces,
		AdditionalExpenses: utils.MapKeys(legacy.AdditionalExpenses, utils.MapExpenseToCode, sumAmounts),
		Classification: models.Classification{
			ByType:    utils.MapKeys(legacy.Classification.ByType, utils.MapTypeToCode, sumInts),
			ByQuality: utils.MapKeys(legacy.Classification.ByQuality, utils.MapGradeToCode, sumInts),
		},
		CreatedAt: createdAt,
	}
}

// ParseLegacyTime parses an ISO-8601 timestamp. Values without a zone are read as UTC.
func ParseLegacyTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range legacyTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// readLegacyBundles reads a bundles.json list, or a full backup export whose
// "bundles" and "config" members are returned separately
func readLegacyBundles(path string) ([]models.LegacyBundle, *models.PricingConfigUpdate, error) {
	if path == "" {
		return nil, nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logging.Sugar.Infof("No %s file found, skipping bundle import", filepath.Base(path))
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, nil, fmt.Errorf("failed to parse %s: invalid JSON", path)
	}

	doc := gjson.ParseBytes(data)
	bundlesJSON := doc.Raw
	var embedded *models.PricingConfigUpdate
	if doc.IsObject() {
		members := doc.Get("bundles")
		if !members.IsArray() {
			return nil, nil, fmt.Errorf("failed to parse %s: expected a list of bundles", path)
		}
		bundlesJSON = members.Raw
		if cfg := doc.Get("config"); cfg.IsObject() {
			embedded = &models.PricingConfigUpdate{}
			if err := json.Unmarshal([]byte(cfg.Raw), embedded); err != nil {
				return nil, nil, fmt.Errorf("failed to parse config in %s: %w", path, err)
			}
		}
	}

	var bundles []models.LegacyBundle
	if err := json.Unmarshal([]byte(bundlesJSON), &bundles); err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return bundles, normalizeConfigUpdate(embedded), nil
}

// readLegacyConfig reads config.json into a merge update. Unknown keys are ignored.
func readLegacyConfig(path string) (*models.PricingConfigUpdate, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logging.Sugar.Infof("No %s file found, skipping config import", filepath.Base(path))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var update models.PricingConfigUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return normalizeConfigUpdate(&update), nil
}

func normalizeConfigUpdate(update *models.PricingConfigUpdate) *models.PricingConfigUpdate {
	if update == nil {
		return nil
	}
	last := func(_, b decimal.Decimal) decimal.Decimal { return b }
	if update.ProfitPercentages != nil {
		mapped := utils.MapKeys(*update.ProfitPercentages, utils.MapGradeToCode, last)
		update.ProfitPercentages = &mapped
	}
	if update.DefaultExpenses != nil {
		mapped := utils.MapKeys(*update.DefaultExpenses, utils.MapExpenseToCode, last)
		update.DefaultExpenses = &mapped
	}
	return update
}
