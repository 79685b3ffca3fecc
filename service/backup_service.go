package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"pacas-inventario/logging"
	"pacas-inventario/models"
	"pacas-inventario/repository"
	"pacas-inventario/utils"
)

// BackupService exports all bundles and the config as a legacy-compatible JSON file
type BackupService struct {
	bundles       repository.BundleRepositoryInterface
	config        repository.ConfigRepositoryInterface
	driveService  DriveServiceInterface
	driveFolderID string
	backupDir     string
	now           func() time.Time
}

// NewBackupService creates a new BackupService. driveService may be nil, in which
// case backups are only written locally.
func NewBackupService(
	bundles repository.BundleRepositoryInterface,
	config repository.ConfigRepositoryInterface,
	driveService DriveServiceInterface,
	driveFolderID string,
	backupDir string,
) *BackupService {
	return &BackupService{
		bundles:       bundles,
		config:        config,
		driveService:  driveService,
		driveFolderID: driveFolderID,
		backupDir:     backupDir,
		now:           time.Now,
	}
}

// Ensure BackupService implements BackupServiceInterface
var _ BackupServiceInterface = (*BackupService)(nil)

// Export writes pacas_backup_YYYYMMDD_HHMMSS.json into the backup directory and
// uploads it to Google Drive when a Drive folder is configured
func (s *BackupService) Export(ctx context.Context) (*models.BackupResult, error) {
	bundles, err := s.bundles.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing config: %w", err)
	}

	export := models.LegacyExport{
		Bundles: make([]models.LegacyBundle, 0, len(bundles)),
		Config:  *cfg,
	}
	for _, b := range bundles {
		export.Bundles = append(export.Bundles, ToLegacy(b))
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	if err := os.MkdirAll(s.backupDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	name := backupPrefix + s.now().Format(utils.BackupTimestampLayout) + ".json"
	path := filepath.Join(s.backupDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}
	logging.Sugar.Infof("💾 Backup written: %s (%d bundles)", path, len(bundles))

	result := &models.BackupResult{Path: path, Bundles: len(bundles), DriveSkipped: true}
	if s.driveService == nil || s.driveFolderID == "" {
		return result, nil
	}

	fileID, err := s.driveService.UploadBackup(ctx, s.driveFolderID, name, bytes.NewReader(data))
	if err != nil {
		return result, fmt.Errorf("backup written to %s but upload failed: %w", path, err)
	}
	result.DriveFileID = fileID
	result.DriveSkipped = false
	return result, nil
}

// List returns the backups in the backup directory, newest first, followed by
// the Drive backups when a Drive folder is configured. A missing directory is empty.
func (s *BackupService) List(ctx context.Context) ([]models.BackupFile, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	type localBackup struct {
		file models.BackupFile
		at   time.Time
	}
	var local []localBackup
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		at, ok := backupTime(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat backup %s: %w", entry.Name(), err)
		}
		local = append(local, localBackup{
			file: models.BackupFile{
				Name:        entry.Name(),
				Source:      models.BackupSourceLocal,
				CreatedTime: at.Format(time.RFC3339),
				Size:        info.Size(),
			},
			at: at,
		})
	}
	sort.SliceStable(local, func(i, j int) bool { return local[i].at.After(local[j].at) })

	files := make([]models.BackupFile, 0, len(local))
	for _, b := range local {
		files = append(files, b.file)
	}

	if s.driveService == nil || s.driveFolderID == "" {
		return files, nil
	}
	remote, err := s.driveService.ListBackups(ctx, s.driveFolderID)
	if err != nil {
		return files, fmt.Errorf("failed to list Drive backups: %w", err)
	}
	return append(files, remote...), nil
}

// backupTime reads the timestamp of an export (pacas_backup_TS.json) or an
// import copy (NAME.json.backup_TS)
func backupTime(name string) (time.Time, bool) {
	if strings.HasPrefix(name, backupPrefix) && strings.HasSuffix(name, ".json") {
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, backupPrefix), ".json")
		at, err := time.ParseInLocation(utils.BackupTimestampLayout, stamp, time.Local)
		return at, err == nil
	}
	_, at, err := utils.ParseBackupFileName(name)
	return at, err == nil
}

// ToLegacy converts a stored bundle into its flat-file representation
func ToLegacy(b models.Bundle) models.LegacyBundle {
	return models.LegacyBundle{
		ID:                 b.ID,
		Name:               b.Name,
		TotalCost:          b.TotalCost,
		TotalPieces:        b.TotalPieces,
		AdditionalExpenses: b.AdditionalExpenses,
		Classification:     b.Classification,
		CreatedAt:          b.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
