package models

import "github.com/shopspring/decimal"

// LegacyBundle is a bundle as stored in the flat-file export (bundles.json).
// created_at is an ISO-8601 string, with or without a zone.
type LegacyBundle struct {
	ID                 int64           `json:"id,omitempty"`
	Name               string          `json:"name"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	TotalPieces        int             `json:"total_pieces"`
	AdditionalExpenses Amounts         `json:"additional_expenses"`
	Classification     Classification  `json:"classification"`
	CreatedAt          string          `json:"created_at,omitempty"`
}

// LegacyExport is the full flat-file export written by backups.
// bundles.json and config.json hold its two halves.
type LegacyExport struct {
	Bundles []LegacyBundle `json:"bundles"`
	Config  PricingConfig  `json:"config"`
}

// ImportResult reports what an import did
type ImportResult struct {
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Total    int      `json:"total"`
	Backups  []string `json:"backups"`
}

// Backup sources
const (
	BackupSourceLocal = "local"
	BackupSourceDrive = "drive"
)

// BackupFile describes a backup in the local backup directory or in Google Drive
type BackupFile struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Source      string `json:"source"`
	CreatedTime string `json:"created_time"`
	Size        int64  `json:"size"`
}

// BackupResult reports where a backup was written
type BackupResult struct {
	Path         string `json:"path"`
	Bundles      int    `json:"bundles"`
	DriveFileID  string `json:"drive_file_id,omitempty"`
	DriveSkipped bool   `json:"drive_skipped"`
}
