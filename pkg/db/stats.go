package db

import (
	"database/sql"
	"fmt"
)

// Stats represents row counts of one association's books.
type Stats struct {
	IncomeTransactions  int
	ExpenseTransactions int
	CashTransactions    int
	BankTransactions    int
	Checkbooks          int
	CancelledChecks     int
	LastExport          sql.NullString
}

// GetStats retrieves row counts for an association.
func GetStats(conn *Connection, associationID int64) (*Stats, error) {
	var stats Stats

	counts := []struct {
		table string
		dest  *int
	}{
		{"income_transactions", &stats.IncomeTransactions},
		{"expense_transactions", &stats.ExpenseTransactions},
		{"cash_transactions", &stats.CashTransactions},
		{"bank_transactions", &stats.BankTransactions},
		{"checkbooks", &stats.Checkbooks},
		{"cancelled_checks", &stats.CancelledChecks},
	}

	for _, c := range counts {
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE association_id = ?`, c.table)
		if err := conn.QueryRow(query, associationID).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}

	err := conn.QueryRow(`SELECT value FROM ledger_metadata WHERE key = ?`, MetadataLastExport).Scan(&stats.LastExport)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get last export time: %w", err)
	}

	return &stats, nil
}
