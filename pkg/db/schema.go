// Package db provides SQLite storage for the association books.
package db

// SchemaVersion is recorded in the metadata table after initialisation.
const SchemaVersion = "1"

// Schema defines the SQL statements to create database tables.
const Schema = `
CREATE TABLE IF NOT EXISTS associations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS fiscal_years (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    association_id INTEGER NOT NULL REFERENCES associations(id) ON DELETE CASCADE,
    year INTEGER NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT 0,
    UNIQUE(association_id, year)
);

-- current_balance is a display hint refreshed after postings
CREATE TABLE IF NOT EXISTS accounts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    association_id INTEGER NOT NULL REFERENCES associations(id) ON DELETE CASCADE,
    name_ar TEXT,
    type TEXT NOT NULL,                -- 'cash' or 'bank'
    current_balance REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS payment_methods (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    association_id INTEGER NOT NULL REFERENCES associations(id) ON DELETE CASCADE,
    name_ar TEXT,
    name TEXT,
    account_type TEXT NOT NULL         -- 'cash' or 'bank'
);

CREATE TABLE IF NOT EXISTS income_fields (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    association_id INTEGER NOT NULL REFERENCES associations(id) ON DELETE CASCADE,
    name_ar TEXT,
    name TEXT
);

CREATE TABLE IF NOT EXISTS expense_fields (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    association_id INTEGER NOT NULL REFERENCES associations(id) ON DELETE CASCADE,
    name_ar TEXT,
    name TEXT
);

CREATE TABLE IF NOT EXISTS income_transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    association_id INTEGER NOT NULL REFERENCES associations(id) ON DELETE CASCADE,
    date TEXT NOT NULL,                -- YYYY-MM-DD
    description TEXT,
    income_field_id INTEGER,
    amount REAL NOT NULL,
    payment_method TEXT NOT NULL,      -- 'cash' or 'bank'
    reference_number TEXT,
    notes TEXT
);

CREATE INDEX IF NOT EXISTS idx_income_assoc_date
    ON income_transactions(association_id, date);

CREATE TABLE IF NOT EXISTS expense_transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    association_id INTEGER NOT NULL REFERENCES associations(id) ON DELETE CASCADE,
    date TEXT NOT NULL,
    description TEXT,
    expense_field_id INTEGER,
    amount REAL NOT NULL DEFAULT 0,
    payment_method TEXT NOT NULL,
    service_status TEXT NOT NULL DEFAULT 'encours',
    payment_status TEXT NOT NULL DEFAULT 'non_paye',
    op_number TEXT,
    op_date TEXT,
    bc_number TEXT,
    bl_number TEXT,
    check_number TEXT,
    checkbook_id INTEGER REFERENCES checkbooks(id) ON DELETE SET NULL,
    invoice_type TEXT,                 -- 'invoice', 'bon' or 'statement'
    invoice_number TEXT,
    beneficiary_name TEXT,
    beneficiary_cin TEXT,
    beneficiary_vehicle TEXT,
    notes TEXT,
    reference_number TEXT
);

CREATE INDEX IF NOT EXISTS idx_expense_assoc_date
    ON expense_transactions(association_id, date);

CREATE TABLE IF NOT EXISTS checkbooks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    association_id INTEGER NOT NULL REFERENCES associations(id) ON DELETE CASCADE,
    bank_account_name TEXT,
    series_name TEXT NOT NULL,
    start_number INTEGER NOT NULL,
    end_number INTEGER NOT NULL,
    alert_threshold INTEGER NOT NULL DEFAULT 5,
    is_active BOOLEAN NOT NULL DEFAULT 1,
    created_at TEXT
);

CREATE TABLE IF NOT EXISTS cancelled_checks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    association_id INTEGER NOT NULL REFERENCES associations(id) ON DELETE CASCADE,
    checkbook_id INTEGER NOT NULL REFERENCES checkbooks(id) ON DELETE CASCADE,
    check_number TEXT NOT NULL,
    cancellation_reason TEXT NOT NULL,
    cancellation_date TEXT,
    UNIQUE(checkbook_id, check_number)
);

-- Cash register; linked_* point back at the originating transaction
CREATE TABLE IF NOT EXISTS cash_transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    association_id INTEGER NOT NULL REFERENCES associations(id) ON DELETE CASCADE,
    transaction_date TEXT NOT NULL,
    operation_label TEXT,
    movement_type TEXT NOT NULL,       -- 'receipt' or 'payment'
    amount REAL NOT NULL,
    document_type TEXT,
    document_number TEXT,
    linked_income_id INTEGER,
    linked_expense_id INTEGER,
    balance_after REAL NOT NULL DEFAULT 0,
    notes TEXT
);

CREATE INDEX IF NOT EXISTS idx_cash_assoc_date
    ON cash_transactions(association_id, transaction_date);

-- Bank register
CREATE TABLE IF NOT EXISTS bank_transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    association_id INTEGER NOT NULL REFERENCES associations(id) ON DELETE CASCADE,
    transaction_date TEXT NOT NULL,
    operation_label TEXT,
    movement_type TEXT NOT NULL,       -- 'deposit' or 'withdrawal'
    amount REAL NOT NULL,
    check_number TEXT,
    checkbook_id INTEGER REFERENCES checkbooks(id) ON DELETE SET NULL,
    payment_method_id INTEGER,
    linked_income_id INTEGER,
    linked_expense_id INTEGER,
    balance_after REAL NOT NULL DEFAULT 0,
    notes TEXT
);

CREATE INDEX IF NOT EXISTS idx_bank_assoc_date
    ON bank_transactions(association_id, transaction_date);

-- Key-value metadata (schema version, last export)
CREATE TABLE IF NOT EXISTS ledger_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// InitializeSchema creates all tables if they don't exist and records the
// schema version.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.Exec(Schema); err != nil {
		return err
	}
	return NewMetadata(conn).Set(MetadataSchemaVersion, SchemaVersion)
}
