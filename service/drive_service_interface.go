package service

import (
	"context"
	"io"

	"pacas-inventario/models"
)

// DriveServiceInterface defines the contract for Google Drive backup operations
type DriveServiceInterface interface {
	UploadBackup(ctx context.Context, folderID string, name string, content io.Reader) (string, error)
	ListBackups(ctx context.Context, folderID string) ([]models.BackupFile, error)
}
