package service

import (
	"context"

	"pacas-inventario/models"
)

// ImportServiceInterface defines the contract for legacy flat-file imports
type ImportServiceInterface interface {
	// ImportFile loads bundles.json (a list, or a full backup export) and config.json.
	// inserted = new bundles stored, skipped = already existed by name or unusable, total = bundles seen in the file.
	ImportFile(ctx context.Context, bundlesPath string, configPath string) (*models.ImportResult, error)
}

// BackupServiceInterface defines the contract for backup exports
type BackupServiceInterface interface {
	Export(ctx context.Context) (*models.BackupResult, error)
	// List returns local backups (exports and import copies) followed by Drive backups
	List(ctx context.Context) ([]models.BackupFile, error)
}
