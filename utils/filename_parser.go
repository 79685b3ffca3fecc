package utils

import (
	"fmt"
	"regexp"
	"time"
)

// BackupTimestampLayout is the timestamp suffix layout of backup files
const BackupTimestampLayout = "20060102_150405"

var backupNameRegex = regexp.MustCompile(`^(.+\.json)\.backup_(\d{8}_\d{6})$`)

// BackupFileName builds a backup file name following the pattern:
// NAME.json.backup_YYYYMMDD_HHMMSS
// Example: bundles.json.backup_20240501_101500
func BackupFileName(name string, at time.Time) string {
	return fmt.Sprintf("%s.backup_%s", name, at.Format(BackupTimestampLayout))
}

// ParseBackupFileName splits a backup file name into the original name and its timestamp
func ParseBackupFileName(filename string) (string, time.Time, error) {
	matches := backupNameRegex.FindStringSubmatch(filename)
	if len(matches) != 3 {
		return "", time.Time{}, fmt.Errorf("invalid backup filename format: expected NAME.json.backup_YYYYMMDD_HHMMSS, got %s", filename)
	}

	at, err := time.ParseInLocation(BackupTimestampLayout, matches[2], time.Local)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("invalid backup timestamp %s: %w", matches[2], err)
	}
	return matches[1], at, nil
}
