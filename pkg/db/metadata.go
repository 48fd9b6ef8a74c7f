package db

import (
	"database/sql"
	"fmt"
)

// Metadata keys.
const (
	MetadataSchemaVersion = "schema_version"
	MetadataLastExport    = "last_export"
)

// Metadata manages the key-value metadata table.
type Metadata struct {
	conn *Connection
}

// NewMetadata creates a new Metadata instance.
func NewMetadata(conn *Connection) *Metadata {
	return &Metadata{conn: conn}
}

// Get retrieves a metadata value. Missing keys return "".
func (m *Metadata) Get(key string) (string, error) {
	query := `SELECT value FROM ledger_metadata WHERE key = ?`

	var value string
	err := m.conn.QueryRow(query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata: %w", err)
	}

	return value, nil
}

// Set sets a metadata value.
func (m *Metadata) Set(key, value string) error {
	query := `
		INSERT INTO ledger_metadata (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := m.conn.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to set metadata: %w", err)
	}

	return nil
}
