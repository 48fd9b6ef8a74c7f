package ledger

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/progmawarid-dot/association-najah-ass/pkg/db"
	"github.com/shopspring/decimal"
)

// newTestLedger returns a ledger over a fresh in-memory store.
func newTestLedger(t *testing.T) (*Ledger, *db.Connection) {
	t.Helper()

	conn, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})

	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	opts.Now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }

	return New(conn, opts), conn
}

// newTestAssociation creates an association with the builtin defaults.
func newTestAssociation(t *testing.T, l *Ledger) int64 {
	t.Helper()

	a, err := l.CreateAssociation("Association Najah", 2025)
	if err != nil {
		t.Fatalf("Failed to create association: %v", err)
	}
	return a.ID
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, expected %s", name, got, want)
	}
}

func countRows(t *testing.T, conn *db.Connection, query string, args ...interface{}) int {
	t.Helper()
	var n int
	if err := conn.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	return n
}
