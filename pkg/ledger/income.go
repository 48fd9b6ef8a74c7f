package ledger

import (
	"database/sql"

	"github.com/progmawarid-dot/association-najah-ass/pkg/db"
	"github.com/shopspring/decimal"
)

// TransactionFilter restricts income and expense listings.
type TransactionFilter struct {
	FiscalYear    int    `json:"fiscal_year,omitempty"`
	StartDate     string `json:"start_date,omitempty"`
	EndDate       string `json:"end_date,omitempty"`
	FieldID       int64  `json:"field_id,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	// PaymentStatus applies to expenses only.
	PaymentStatus string `json:"payment_status,omitempty"`
}

func (f TransactionFilter) clauses(fieldColumn string) (string, []interface{}, error) {
	if err := validateOptionalDate("start date", f.StartDate); err != nil {
		return "", nil, err
	}
	if err := validateOptionalDate("end date", f.EndDate); err != nil {
		return "", nil, err
	}
	where, args := dateClauses("date", f.FiscalYear, f.StartDate, f.EndDate)
	if f.FieldID != 0 {
		where += " AND " + fieldColumn + " = ?"
		args = append(args, f.FieldID)
	}
	if !isAll(f.PaymentMethod) {
		where += " AND payment_method = ?"
		args = append(args, f.PaymentMethod)
	}
	return where, args, nil
}

// IncomeInput holds the fields of a new income.
type IncomeInput struct {
	AssociationID   int64           `json:"association_id"`
	Date            string          `json:"date"`
	Description     string          `json:"description"`
	IncomeFieldID   *int64          `json:"income_field_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   AccountType     `json:"payment_method"`
	ReferenceNumber string          `json:"reference_number"`
	Notes           string          `json:"notes"`
}

func (in IncomeInput) validate() error {
	if err := validateDate("date", in.Date); err != nil {
		return err
	}
	if !in.Amount.IsPositive() {
		return validationError("amount must be positive")
	}
	if !in.PaymentMethod.valid() {
		return validationError("payment method must be cash or bank, got %q", in.PaymentMethod)
	}
	return nil
}

// PostIncome records an income and its register row: a receipt voucher in
// the cash register, or a deposit in the bank register when bank mirroring
// is enabled. A missing reference number gets the next receipt number.
func (l *Ledger) PostIncome(in IncomeInput) (*IncomeTransaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	inc := &IncomeTransaction{
		AssociationID:   in.AssociationID,
		Date:            in.Date,
		Description:     in.Description,
		IncomeFieldID:   in.IncomeFieldID,
		Amount:          in.Amount,
		PaymentMethod:   in.PaymentMethod,
		ReferenceNumber: in.ReferenceNumber,
		Notes:           in.Notes,
	}

	err := l.mutate("post-income", func(tx *sql.Tx) error {
		if err := associationExists(tx, inc.AssociationID); err != nil {
			return err
		}
		if inc.ReferenceNumber == "" {
			inc.ReferenceNumber = l.nextDocumentNumber(tx, DocIncomeReceipt, dateYear(inc.Date), inc.AssociationID)
		}

		res, err := tx.Exec(`
			INSERT INTO income_transactions (association_id, date, description, income_field_id, amount,
				payment_method, reference_number, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, inc.AssociationID, inc.Date, inc.Description, inc.IncomeFieldID, inc.Amount,
			string(inc.PaymentMethod), inc.ReferenceNumber, inc.Notes)
		if err != nil {
			return storageError("insert income", err)
		}
		if inc.ID, err = res.LastInsertId(); err != nil {
			return storageError("read income id", err)
		}

		if err := l.postIncomeRow(tx, inc); err != nil {
			return err
		}
		return syncAccountBalances(tx, inc.AssociationID)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Debug("income posted", "id", inc.ID, "association_id", inc.AssociationID,
		"amount", inc.Amount.String(), "method", inc.PaymentMethod)
	return inc, nil
}

func (l *Ledger) postIncomeRow(q db.Querier, inc *IncomeTransaction) error {
	id := inc.ID
	switch {
	case inc.PaymentMethod == AccountCash:
		return insertCash(q, &CashTransaction{
			AssociationID:  inc.AssociationID,
			Date:           inc.Date,
			OperationLabel: inc.Description,
			MovementType:   MovementReceipt,
			Amount:         inc.Amount,
			DocumentType:   DocumentReceiptVoucher,
			DocumentNumber: inc.ReferenceNumber,
			LinkedIncomeID: &id,
		})
	case inc.PaymentMethod == AccountBank && l.mirrorBank:
		return insertBank(q, &BankTransaction{
			AssociationID:  inc.AssociationID,
			Date:           inc.Date,
			OperationLabel: inc.Description,
			MovementType:   MovementDeposit,
			Amount:         inc.Amount,
			LinkedIncomeID: &id,
		})
	}
	return nil
}

// DeleteIncome deletes an income together with its register rows.
func (l *Ledger) DeleteIncome(id int64) error {
	return l.mutate("delete-income", func(tx *sql.Tx) error {
		inc, err := getIncome(tx, id)
		if err != nil {
			return err
		}
		if err := deleteLinkedRows(tx, "linked_income_id", id); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM income_transactions WHERE id = ?`, id); err != nil {
			return storageError("delete income", err)
		}
		return syncAccountBalances(tx, inc.AssociationID)
	})
}

// GetIncome returns one income.
func (l *Ledger) GetIncome(id int64) (*IncomeTransaction, error) {
	return getIncome(l.conn, id)
}

const incomeColumns = `id, association_id, date, COALESCE(description, ''), income_field_id, amount,
	payment_method, COALESCE(reference_number, ''), COALESCE(notes, '')`

func scanIncome(scan func(dest ...interface{}) error) (*IncomeTransaction, error) {
	var inc IncomeTransaction
	var fieldID sql.NullInt64
	var method string
	if err := scan(&inc.ID, &inc.AssociationID, &inc.Date, &inc.Description, &fieldID, &inc.Amount,
		&method, &inc.ReferenceNumber, &inc.Notes); err != nil {
		return nil, err
	}
	inc.IncomeFieldID = nullInt64Ptr(fieldID)
	inc.PaymentMethod = AccountType(method)
	return &inc, nil
}

func getIncome(q db.Querier, id int64) (*IncomeTransaction, error) {
	inc, err := scanIncome(q.QueryRow(`SELECT `+incomeColumns+` FROM income_transactions WHERE id = ?`, id).Scan)
	if err == sql.ErrNoRows {
		return nil, notFound("income", id)
	}
	if err != nil {
		return nil, storageError("get income", err)
	}
	return inc, nil
}

// ListIncome returns the incomes of an association, newest first.
func (l *Ledger) ListIncome(associationID int64, f TransactionFilter) ([]IncomeTransaction, error) {
	where, args, err := f.clauses("income_field_id")
	if err != nil {
		return nil, err
	}

	rows, err := l.conn.Query(`SELECT `+incomeColumns+` FROM income_transactions WHERE association_id = ?`+where+`
		ORDER BY date DESC, id DESC`, append([]interface{}{associationID}, args...)...)
	if err != nil {
		return nil, storageError("list income", err)
	}
	defer rows.Close()

	var out []IncomeTransaction
	for rows.Next() {
		inc, err := scanIncome(rows.Scan)
		if err != nil {
			return nil, storageError("scan income", err)
		}
		out = append(out, *inc)
	}
	return out, rows.Err()
}
