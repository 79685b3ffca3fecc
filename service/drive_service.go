package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"pacas-inventario/logging"
	"pacas-inventario/models"
)

// Prefix of every backup file name
const backupPrefix = "pacas_backup_"

// DriveService handles Google Drive API operations
type DriveService struct {
	client *drive.Service
}

// NewDriveService creates a new DriveService instance
// credentialsPath should be the path to the Service Account JSON file
func NewDriveService(ctx context.Context, credentialsPath string) (*DriveService, error) {
	// option.WithCredentialsFile automatically handles Service Account authentication
	driveService, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &DriveService{
		client: driveService,
	}, nil
}

// Ensure DriveService implements DriveServiceInterface
var _ DriveServiceInterface = (*DriveService)(nil)

// UploadBackup uploads a JSON backup into a Drive folder and returns the new file id
func (ds *DriveService) UploadBackup(ctx context.Context, folderID string, name string, content io.Reader) (string, error) {
	file := &drive.File{
		Name:     name,
		MimeType: "application/json",
		Parents:  []string{folderID},
	}

	created, err := ds.client.Files.Create(file).
		Media(content).
		Fields("id, name").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload backup: %w", err)
	}

	logging.Sugar.Infof("☁️  UploadBackup: Uploaded %s (drive_file_id: %s)", created.Name, created.Id)
	return created.Id, nil
}

// ListBackups lists the backup files stored in a Drive folder
func (ds *DriveService) ListBackups(ctx context.Context, folderID string) ([]models.BackupFile, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false", folderID)

	var allFiles []*drive.File
	pageToken := ""
	for {
		call := ds.client.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name, createdTime, size)").
			Context(ctx)

		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		r, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}

		allFiles = append(allFiles, r.Files...)
		pageToken = r.NextPageToken

		if pageToken == "" {
			break
		}
	}

	backups := []models.BackupFile{}
	for _, file := range allFiles {
		if !strings.HasPrefix(file.Name, backupPrefix) {
			continue
		}
		backups = append(backups, models.BackupFile{
			ID:          file.Id,
			Name:        file.Name,
			Source:      models.BackupSourceDrive,
			CreatedTime: file.CreatedTime,
			Size:        file.Size,
		})
	}

	return backups, nil
}
