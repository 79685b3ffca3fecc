package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pacas-inventario/db"
	"pacas-inventario/logging"
	"pacas-inventario/models"
)

// ConfigRepository stores the pricing config as key/value rows
type ConfigRepository struct {
	db       *db.DB
	defaults models.PricingConfig
	now      func() time.Time
}

// NewConfigRepository creates a new ConfigRepository. defaults seeds the keys
// that are not stored yet.
func NewConfigRepository(database *db.DB, defaults models.PricingConfig) *ConfigRepository {
	return &ConfigRepository{db: database, defaults: defaults, now: time.Now}
}

// Ensure ConfigRepository implements ConfigRepositoryInterface
var _ ConfigRepositoryInterface = (*ConfigRepository)(nil)

const (
	seedConfigQuery = `
		INSERT INTO config (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO NOTHING
	`
	upsertConfigQuery = `
		INSERT INTO config (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
)

// Get returns the stored config. Missing keys are filled from the defaults and persisted;
// keys written concurrently win over the defaults.
func (r *ConfigRepository) Get(ctx context.Context) (*models.PricingConfig, error) {
	cfg, missing, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(missing) == 0 {
		return cfg, nil
	}

	defaults := map[string]models.Amounts{}
	for _, key := range missing {
		defaults[key] = r.field(&r.defaults, key).Merge(models.Amounts{})
	}
	logging.Sugar.Infof("🔍 GetConfig: Seeding %d missing config keys with defaults", len(defaults))
	if err := r.store(ctx, seedConfigQuery, defaults, r.timestamp()); err != nil {
		return nil, err
	}

	cfg, missing, err = r.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("failed to seed config keys %v", missing)
	}
	return cfg, nil
}

// load reads the stored keys and reports the ones not stored yet
func (r *ConfigRepository) load(ctx context.Context) (*models.PricingConfig, []string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, value, updated_at FROM config WHERE key IN ($1, $2)`,
		models.ConfigKeyProfitPercentages, models.ConfigKeyDefaultExpenses,
	)
	if err != nil {
		logging.Sugar.Errorf("❌ GetConfig: Error querying config: %v", err)
		return nil, nil, fmt.Errorf("failed to query config: %w", err)
	}
	defer rows.Close()

	cfg := models.PricingConfig{}
	found := map[string]bool{}
	var latest int64
	for rows.Next() {
		var key, value string
		var updatedAt int64
		if err := rows.Scan(&key, &value, &updatedAt); err != nil {
			return nil, nil, fmt.Errorf("failed to scan config row: %w", err)
		}

		target := r.field(&cfg, key)
		if err := json.Unmarshal([]byte(value), target); err != nil {
			return nil, nil, fmt.Errorf("failed to decode config %s: %w", key, err)
		}
		found[key] = true
		if updatedAt > latest {
			latest = updatedAt
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate config: %w", err)
	}

	var missing []string
	for _, key := range []string{models.ConfigKeyProfitPercentages, models.ConfigKeyDefaultExpenses} {
		if !found[key] {
			missing = append(missing, key)
		}
	}

	cfg.UpdatedAt = time.UnixMilli(latest).UTC()
	return &cfg, missing, nil
}

// Set merges the update into the stored config key by key and returns the result
func (r *ConfigRepository) Set(ctx context.Context, update models.PricingConfigUpdate) (*models.PricingConfig, error) {
	current, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}

	merged := current.Merge(update)
	now := r.timestamp()

	changed := map[string]models.Amounts{}
	if update.ProfitPercentages != nil {
		changed[models.ConfigKeyProfitPercentages] = merged.ProfitPercentages
	}
	if update.DefaultExpenses != nil {
		changed[models.ConfigKeyDefaultExpenses] = merged.DefaultExpenses
	}
	if len(changed) == 0 {
		return current, nil
	}

	if err := r.store(ctx, upsertConfigQuery, changed, now); err != nil {
		return nil, err
	}

	merged.UpdatedAt = now
	logging.Sugar.Infof("✅ SetConfig: Config updated (%d keys)", len(changed))
	return &merged, nil
}

// store writes values in one transaction with query (seed or upsert)
func (r *ConfigRepository) store(ctx context.Context, query string, values map[string]models.Amounts, now time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for key, value := range values {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode config %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx, query, key, string(encoded), now.UnixMilli()); err != nil {
			logging.Sugar.Errorf("❌ StoreConfig: Error storing key=%s: %v", key, err)
			return fmt.Errorf("failed to store config %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit config: %w", err)
	}
	return nil
}

// field returns the config field stored under key; unknown keys decode into a discarded map
func (r *ConfigRepository) field(cfg *models.PricingConfig, key string) *models.Amounts {
	switch key {
	case models.ConfigKeyProfitPercentages:
		return &cfg.ProfitPercentages
	case models.ConfigKeyDefaultExpenses:
		return &cfg.DefaultExpenses
	default:
		return &models.Amounts{}
	}
}

func (r *ConfigRepository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}
