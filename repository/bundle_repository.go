package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pacas-inventario/db"
	"pacas-inventario/logging"
	"pacas-inventario/models"
)

const bundleColumns = `id, name, total_cost, total_pieces, additional_expenses, classification, created_at, updated_at`

// BundleRepository handles database operations for bundles
type BundleRepository struct {
	db  *db.DB
	now func() time.Time
}

// NewBundleRepository creates a new BundleRepository
func NewBundleRepository(database *db.DB) *BundleRepository {
	return &BundleRepository{db: database, now: time.Now}
}

// Ensure BundleRepository implements BundleRepositoryInterface
var _ BundleRepositoryInterface = (*BundleRepository)(nil)

// GetAll retrieves all bundles, newest first
func (r *BundleRepository) GetAll(ctx context.Context) ([]models.Bundle, error) {
	query := `SELECT ` + bundleColumns + ` FROM bundles ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logging.Sugar.Errorf("❌ GetAll: Error querying bundles: %v", err)
		return nil, fmt.Errorf("failed to query bundles: %w", err)
	}
	defer rows.Close()

	bundles := []models.Bundle{}
	for rows.Next() {
		bundle, err := scanBundle(rows)
		if err != nil {
			logging.Sugar.Errorf("❌ GetAll: Error scanning bundle: %v", err)
			return nil, err
		}
		bundles = append(bundles, *bundle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bundles: %w", err)
	}

	logging.Sugar.Debugf("📥 GetAll: Retrieved %d bundles", len(bundles))
	return bundles, nil
}

// GetByID retrieves a bundle by id. Returns ErrBundleNotFound when it does not exist.
func (r *BundleRepository) GetByID(ctx context.Context, id int64) (*models.Bundle, error) {
	query := `SELECT ` + bundleColumns + ` FROM bundles WHERE id = $1`

	bundle, err := scanBundle(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBundleNotFound
	}
	if err != nil {
		logging.Sugar.Errorf("❌ GetByID: Error fetching bundle id=%d: %v", id, err)
		return nil, err
	}
	return bundle, nil
}

// Save inserts a new bundle, assigning its id and timestamps
func (r *BundleRepository) Save(ctx context.Context, bundle *models.Bundle) (*models.Bundle, error) {
	now := r.timestamp()
	stored := *bundle
	stored.CreatedAt = now
	stored.UpdatedAt = now
	return r.insert(ctx, "Save", &stored)
}

// Restore inserts a bundle keeping its created_at, used when importing legacy exports.
// Missing timestamps are set to now.
func (r *BundleRepository) Restore(ctx context.Context, bundle *models.Bundle) (*models.Bundle, error) {
	now := r.timestamp()
	stored := *bundle
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = stored.CreatedAt
	}
	stored.CreatedAt = stored.CreatedAt.UTC().Truncate(time.Millisecond)
	stored.UpdatedAt = stored.UpdatedAt.UTC().Truncate(time.Millisecond)
	return r.insert(ctx, "Restore", &stored)
}

func (r *BundleRepository) insert(ctx context.Context, op string, bundle *models.Bundle) (*models.Bundle, error) {
	expenses, classification, err := encodeNested(bundle)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO bundles (name, total_cost, total_pieces, additional_expenses, classification, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err = r.db.QueryRowContext(ctx, query,
		bundle.Name,
		bundle.TotalCost,
		bundle.TotalPieces,
		expenses,
		classification,
		bundle.CreatedAt.UnixMilli(),
		bundle.UpdatedAt.UnixMilli(),
	).Scan(&bundle.ID)
	if err != nil {
		logging.Sugar.Errorf("❌ %s: Error inserting bundle name=%s: %v", op, bundle.Name, err)
		return nil, fmt.Errorf("failed to insert bundle: %w", err)
	}

	logging.Sugar.Infof("✅ %s: Bundle stored id=%d name=%s", op, bundle.ID, bundle.Name)
	return bundle, nil
}

// Update replaces every editable field of an existing bundle and refreshes updated_at
func (r *BundleRepository) Update(ctx context.Context, bundle *models.Bundle) (*models.Bundle, error) {
	expenses, classification, err := encodeNested(bundle)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE bundles
		SET name = $1, total_cost = $2, total_pieces = $3, additional_expenses = $4, classification = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		bundle.Name,
		bundle.TotalCost,
		bundle.TotalPieces,
		expenses,
		classification,
		r.timestamp().UnixMilli(),
		bundle.ID,
	)
	if err != nil {
		logging.Sugar.Errorf("❌ Update: Error updating bundle id=%d: %v", bundle.ID, err)
		return nil, fmt.Errorf("failed to update bundle: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrBundleNotFound
	}

	logging.Sugar.Infof("✅ Update: Bundle updated id=%d", bundle.ID)
	return r.GetByID(ctx, bundle.ID)
}

// Delete removes a bundle permanently
func (r *BundleRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bundles WHERE id = $1`, id)
	if err != nil {
		logging.Sugar.Errorf("❌ Delete: Error deleting bundle id=%d: %v", id, err)
		return fmt.Errorf("failed to delete bundle: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrBundleNotFound
	}

	logging.Sugar.Infof("✅ Delete: Bundle deleted id=%d", id)
	return nil
}

// ExistsByName checks whether a bundle with exactly this name is stored
func (r *BundleRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bundles WHERE name = $1`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check bundle existence: %w", err)
	}
	return count > 0, nil
}

func (r *BundleRepository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBundle(row rowScanner) (*models.Bundle, error) {
	var (
		bundle                   models.Bundle
		expenses, classification string
		createdAt, updatedAt     int64
	)

	err := row.Scan(
		&bundle.ID,
		&bundle.Name,
		&bundle.TotalCost,
		&bundle.TotalPieces,
		&expenses,
		&classification,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan bundle: %w", err)
	}

	if err := json.Unmarshal([]byte(expenses), &bundle.AdditionalExpenses); err != nil {
		return nil, fmt.Errorf("failed to decode additional expenses of bundle %d: %w", bundle.ID, err)
	}
	if err := json.Unmarshal([]byte(classification), &bundle.Classification); err != nil {
		return nil, fmt.Errorf("failed to decode classification of bundle %d: %w", bundle.ID, err)
	}
	bundle.CreatedAt = time.UnixMilli(createdAt).UTC()
	bundle.UpdatedAt = time.UnixMilli(updatedAt).UTC()

	return &bundle, nil
}

func encodeNested(bundle *models.Bundle) (string, string, error) {
	expenses, err := json.Marshal(bundle.AdditionalExpenses)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode additional expenses: %w", err)
	}
	classification, err := json.Marshal(bundle.Classification)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode classification: %w", err)
	}
	return string(expenses), string(classification), nil
}
