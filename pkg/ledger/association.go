package ledger

import (
	"database/sql"
	"strings"
)

// CreateAssociation creates an association with an active fiscal year,
// its cash and bank accounts, and the seed payment methods and fields.
func (l *Ledger) CreateAssociation(name string, year int) (*Association, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("association name is required")
	}
	if year <= 0 {
		return nil, validationError("fiscal year must be positive, got %d", year)
	}

	var a Association
	err := l.mutate("create-association", func(tx *sql.Tx) error {
		res, err := tx.Exec(`INSERT INTO associations (name) VALUES (?)`, name)
		if err != nil {
			return storageError("insert association", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return storageError("read association id", err)
		}
		a = Association{ID: id, Name: name}

		if _, err := tx.Exec(`INSERT INTO fiscal_years (association_id, year, is_active) VALUES (?, ?, 1)`, id, year); err != nil {
			return storageError("insert fiscal year", err)
		}

		for _, acc := range l.seed.Accounts {
			if _, err := tx.Exec(`INSERT INTO accounts (association_id, name_ar, type) VALUES (?, ?, ?)`, id, acc.NameAr, acc.Type); err != nil {
				return storageError("insert account", err)
			}
		}
		for _, m := range l.seed.PaymentMethods {
			if _, err := tx.Exec(`INSERT INTO payment_methods (association_id, name, name_ar, account_type) VALUES (?, ?, ?, ?)`,
				id, m.Name, m.NameAr, m.AccountType); err != nil {
				return storageError("insert payment method", err)
			}
		}
		for _, f := range l.seed.IncomeFields {
			if _, err := tx.Exec(`INSERT INTO income_fields (association_id, name, name_ar) VALUES (?, ?, ?)`, id, f.Name, f.NameAr); err != nil {
				return storageError("insert income field", err)
			}
		}
		for _, f := range l.seed.ExpenseFields {
			if _, err := tx.Exec(`INSERT INTO expense_fields (association_id, name, name_ar) VALUES (?, ?, ?)`, id, f.Name, f.NameAr); err != nil {
				return storageError("insert expense field", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("association created", "association_id", a.ID, "name", a.Name, "fiscal_year", year)
	return &a, nil
}

// ListAssociations returns all associations ordered by id.
func (l *Ledger) ListAssociations() ([]Association, error) {
	rows, err := l.conn.Query(`SELECT id, name FROM associations ORDER BY id`)
	if err != nil {
		return nil, storageError("list associations", err)
	}
	defer rows.Close()

	var out []Association
	for rows.Next() {
		var a Association
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, storageError("scan association", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list associations", err)
	}
	return out, nil
}

// DeleteAssociation deletes an association and, by cascade, everything it owns.
func (l *Ledger) DeleteAssociation(id int64) error {
	return l.mutate("delete-association", func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM associations WHERE id = ?`, id)
		if err != nil {
			return storageError("delete association", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return notFound("association", id)
		}
		return nil
	})
}

// ActivateFiscalYear makes year the single active fiscal year of the
// association, creating it when missing.
func (l *Ledger) ActivateFiscalYear(associationID int64, year int) error {
	if year <= 0 {
		return validationError("fiscal year must be positive, got %d", year)
	}

	return l.mutate("activate-fiscal-year", func(tx *sql.Tx) error {
		if err := associationExists(tx, associationID); err != nil {
			return err
		}
		if _, err := tx.Exec(`UPDATE fiscal_years SET is_active = 0 WHERE association_id = ?`, associationID); err != nil {
			return storageError("deactivate fiscal years", err)
		}
		_, err := tx.Exec(`
			INSERT INTO fiscal_years (association_id, year, is_active) VALUES (?, ?, 1)
			ON CONFLICT(association_id, year) DO UPDATE SET is_active = 1
		`, associationID, year)
		if err != nil {
			return storageError("activate fiscal year", err)
		}
		return nil
	})
}

// ListFiscalYears returns the fiscal years of an association, newest first.
func (l *Ledger) ListFiscalYears(associationID int64) ([]FiscalYear, error) {
	rows, err := l.conn.Query(`
		SELECT id, association_id, year, is_active FROM fiscal_years
		WHERE association_id = ? ORDER BY year DESC
	`, associationID)
	if err != nil {
		return nil, storageError("list fiscal years", err)
	}
	defer rows.Close()

	var out []FiscalYear
	for rows.Next() {
		var fy FiscalYear
		if err := rows.Scan(&fy.ID, &fy.AssociationID, &fy.Year, &fy.IsActive); err != nil {
			return nil, storageError("scan fiscal year", err)
		}
		out = append(out, fy)
	}
	return out, rows.Err()
}

// ActiveFiscalYear returns the active fiscal year, or ErrNotFound.
func (l *Ledger) ActiveFiscalYear(associationID int64) (*FiscalYear, error) {
	var fy FiscalYear
	err := l.conn.QueryRow(`
		SELECT id, association_id, year, is_active FROM fiscal_years
		WHERE association_id = ? AND is_active = 1
	`, associationID).Scan(&fy.ID, &fy.AssociationID, &fy.Year, &fy.IsActive)
	if err == sql.ErrNoRows {
		return nil, notFound("active fiscal year of association", associationID)
	}
	if err != nil {
		return nil, storageError("get active fiscal year", err)
	}
	return &fy, nil
}

// ListAccounts returns the cash and bank accounts of an association.
func (l *Ledger) ListAccounts(associationID int64) ([]Account, error) {
	rows, err := l.conn.Query(`
		SELECT id, association_id, COALESCE(name_ar, ''), type, current_balance
		FROM accounts WHERE association_id = ? ORDER BY id
	`, associationID)
	if err != nil {
		return nil, storageError("list accounts", err)
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.AssociationID, &a.NameAr, &a.Type, &a.CurrentBalance); err != nil {
			return nil, storageError("scan account", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListPaymentMethods returns the payment methods of an association.
func (l *Ledger) ListPaymentMethods(associationID int64) ([]PaymentMethod, error) {
	rows, err := l.conn.Query(`
		SELECT id, association_id, COALESCE(name, ''), COALESCE(name_ar, ''), account_type
		FROM payment_methods WHERE association_id = ? ORDER BY id
	`, associationID)
	if err != nil {
		return nil, storageError("list payment methods", err)
	}
	defer rows.Close()

	var out []PaymentMethod
	for rows.Next() {
		var m PaymentMethod
		if err := rows.Scan(&m.ID, &m.AssociationID, &m.Name, &m.NameAr, &m.AccountType); err != nil {
			return nil, storageError("scan payment method", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListIncomeFields returns the income categories of an association.
func (l *Ledger) ListIncomeFields(associationID int64) ([]Field, error) {
	return l.listFields("income_fields", associationID)
}

// ListExpenseFields returns the expense categories of an association.
func (l *Ledger) ListExpenseFields(associationID int64) ([]Field, error) {
	return l.listFields("expense_fields", associationID)
}

func (l *Ledger) listFields(table string, associationID int64) ([]Field, error) {
	rows, err := l.conn.Query(`
		SELECT id, association_id, COALESCE(name, ''), COALESCE(name_ar, '')
		FROM `+table+` WHERE association_id = ? ORDER BY id
	`, associationID)
	if err != nil {
		return nil, storageError("list "+table, err)
	}
	defer rows.Close()

	var out []Field
	for rows.Next() {
		var f Field
		if err := rows.Scan(&f.ID, &f.AssociationID, &f.Name, &f.NameAr); err != nil {
			return nil, storageError("scan "+table, err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
