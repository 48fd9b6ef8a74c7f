// Package pathutil provides centralized path management for the ledger database and exports.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathResolver manages paths for the ledger database and exported workbooks.
type PathResolver struct {
	dataDir      string
	databasePath string
	exportsDir   string
}

// Config represents the configuration for PathResolver.
type Config struct {
	// DataDir is the root directory for ledger files (e.g., ~/association/data)
	DataDir string
	// DatabasePath is the path to the SQLite ledger database
	DatabasePath string
	// ExportsDir is the directory for exported journals
	ExportsDir string
}

// New creates a new PathResolver with the given configuration.
// If DatabasePath is empty, it defaults to {DataDir}/association.db
// If ExportsDir is empty, it defaults to {DataDir}/exports
func New(config Config) *PathResolver {
	dbPath := config.DatabasePath
	if dbPath == "" {
		dbPath = filepath.Join(config.DataDir, "association.db")
	}

	exportsDir := config.ExportsDir
	if exportsDir == "" {
		exportsDir = filepath.Join(config.DataDir, "exports")
	}

	return &PathResolver{
		dataDir:      config.DataDir,
		databasePath: dbPath,
		exportsDir:   exportsDir,
	}
}

// GetDataDir returns the data directory.
func (p *PathResolver) GetDataDir() string {
	return p.dataDir
}

// GetDatabasePath returns the database file path.
func (p *PathResolver) GetDatabasePath() string {
	return p.databasePath
}

// GetExportsDir returns the exports directory.
func (p *PathResolver) GetExportsDir() string {
	return p.exportsDir
}

// GetJournalExportPath returns the workbook path for a journal export.
// period is a year (YYYY) or a year-month (YYYY-MM); empty means all dates.
// Example: exports/2025/journal-12-2025-03.xlsx
func (p *PathResolver) GetJournalExportPath(associationID int64, period string) (string, error) {
	if period == "" {
		return filepath.Join(p.exportsDir, fmt.Sprintf("journal-%d.xlsx", associationID)), nil
	}

	parts := strings.Split(period, "-")
	if len(parts[0]) != 4 || len(parts) > 2 || (len(parts) == 2 && len(parts[1]) != 2) {
		return "", fmt.Errorf("invalid period format: %s. Expected YYYY or YYYY-MM", period)
	}

	filename := fmt.Sprintf("journal-%d-%s.xlsx", associationID, period)
	return filepath.Join(p.exportsDir, parts[0], filename), nil
}

// EnsureDir creates a directory if it doesn't exist.
// It creates all parent directories as needed (like mkdir -p).
func (p *PathResolver) EnsureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return nil
}

// EnsureParentDir ensures the parent directory of a file exists.
func (p *PathResolver) EnsureParentDir(filePath string) error {
	return p.EnsureDir(filepath.Dir(filePath))
}

// FileExists checks if a file exists.
func (p *PathResolver) FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}
