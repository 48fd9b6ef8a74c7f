package ledger

import (
	"database/sql"
	"strings"
	"time"

	"github.com/progmawarid-dot/association-najah-ass/pkg/db"
	"github.com/shopspring/decimal"
)

// RegisterFilter restricts register and transaction listings.
// Zero values mean no restriction.
type RegisterFilter struct {
	FiscalYear   int    `json:"fiscal_year,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	MovementType string `json:"movement_type,omitempty"`
}

func (f RegisterFilter) validate() error {
	if err := validateOptionalDate("start date", f.StartDate); err != nil {
		return err
	}
	return validateOptionalDate("end date", f.EndDate)
}

// dateClauses returns the SQL conditions for a fiscal year and an inclusive
// date range on column.
func dateClauses(column string, fiscalYear int, start, end string) (string, []interface{}) {
	var sb strings.Builder
	var args []interface{}
	if fiscalYear > 0 {
		sb.WriteString(" AND strftime('%Y', " + column + ") = ?")
		args = append(args, yearString(fiscalYear))
	}
	if start != "" {
		sb.WriteString(" AND " + column + " >= ?")
		args = append(args, start)
	}
	if end != "" {
		sb.WriteString(" AND " + column + " <= ?")
		args = append(args, end)
	}
	return sb.String(), args
}

// CashInput is a cash register row entered directly.
type CashInput struct {
	AssociationID  int64           `json:"association_id"`
	Date           string          `json:"transaction_date"`
	OperationLabel string          `json:"operation_label"`
	MovementType   string          `json:"movement_type"`
	Amount         decimal.Decimal `json:"amount"`
	DocumentType   string          `json:"document_type"`
	DocumentNumber string          `json:"document_number"`
	Notes          string          `json:"notes"`
}

// BankInput is a bank register row entered directly.
type BankInput struct {
	AssociationID   int64           `json:"association_id"`
	Date            string          `json:"transaction_date"`
	OperationLabel  string          `json:"operation_label"`
	MovementType    string          `json:"movement_type"`
	Amount          decimal.Decimal `json:"amount"`
	CheckNumber     string          `json:"check_number"`
	CheckbookID     *int64          `json:"checkbook_id,omitempty"`
	PaymentMethodID *int64          `json:"payment_method_id,omitempty"`
	Notes           string          `json:"notes"`
}

// AddCashTransaction records a cash movement not tied to an income or
// expense. A payment without a document number gets the next cash voucher
// number.
func (l *Ledger) AddCashTransaction(in CashInput) (*CashTransaction, error) {
	if err := validateDate("transaction date", in.Date); err != nil {
		return nil, err
	}
	if in.MovementType != MovementReceipt && in.MovementType != MovementPayment {
		return nil, validationError("cash movement type must be receipt or payment, got %q", in.MovementType)
	}
	if strings.TrimSpace(in.OperationLabel) == "" {
		return nil, validationError("operation label is required")
	}
	if !in.Amount.IsPositive() {
		return nil, validationError("amount must be positive")
	}
	if in.DocumentNumber == "" && in.MovementType == MovementReceipt {
		return nil, validationError("document number is required for a receipt")
	}

	row := &CashTransaction{
		AssociationID:  in.AssociationID,
		Date:           in.Date,
		OperationLabel: in.OperationLabel,
		MovementType:   in.MovementType,
		Amount:         in.Amount,
		DocumentType:   in.DocumentType,
		DocumentNumber: in.DocumentNumber,
		Notes:          in.Notes,
	}

	err := l.mutate("add-cash-transaction", func(tx *sql.Tx) error {
		if err := associationExists(tx, in.AssociationID); err != nil {
			return err
		}
		if row.DocumentNumber == "" {
			row.DocumentNumber = l.nextDocumentNumber(tx, DocCashPayment, dateYear(row.Date), row.AssociationID)
			if row.DocumentType == "" {
				row.DocumentType = DocumentCashVoucher
			}
		}
		if err := insertCash(tx, row); err != nil {
			return err
		}
		return syncAccountBalances(tx, row.AssociationID)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// AddBankTransaction records a bank movement not tied to an income or expense.
// A withdrawal naming a checkbook consumes that check.
func (l *Ledger) AddBankTransaction(in BankInput) (*BankTransaction, error) {
	if err := validateDate("transaction date", in.Date); err != nil {
		return nil, err
	}
	if in.MovementType != MovementDeposit && in.MovementType != MovementWithdrawal {
		return nil, validationError("bank movement type must be deposit or withdrawal, got %q", in.MovementType)
	}
	if strings.TrimSpace(in.OperationLabel) == "" {
		return nil, validationError("operation label is required")
	}
	if !in.Amount.IsPositive() {
		return nil, validationError("amount must be positive")
	}
	if in.CheckbookID != nil && in.MovementType != MovementWithdrawal {
		return nil, validationError("only a withdrawal can consume a check")
	}

	row := &BankTransaction{
		AssociationID:   in.AssociationID,
		Date:            in.Date,
		OperationLabel:  in.OperationLabel,
		MovementType:    in.MovementType,
		Amount:          in.Amount,
		CheckNumber:     in.CheckNumber,
		CheckbookID:     in.CheckbookID,
		PaymentMethodID: in.PaymentMethodID,
		Notes:           in.Notes,
	}

	err := l.mutate("add-bank-transaction", func(tx *sql.Tx) error {
		if err := associationExists(tx, in.AssociationID); err != nil {
			return err
		}
		if row.CheckbookID != nil {
			n, err := claimCheck(tx, row.AssociationID, *row.CheckbookID, row.CheckNumber, 0)
			if err != nil {
				return err
			}
			row.CheckNumber = n
		}
		if err := insertBank(tx, row); err != nil {
			return err
		}
		return syncAccountBalances(tx, row.AssociationID)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// DeleteCashTransaction deletes a direct cash row. Rows derived from an
// income or expense must be removed through their source.
func (l *Ledger) DeleteCashTransaction(id int64) error {
	return l.deleteRegisterRow("cash_transactions", "cash transaction", id)
}

// DeleteBankTransaction deletes a direct bank row.
func (l *Ledger) DeleteBankTransaction(id int64) error {
	return l.deleteRegisterRow("bank_transactions", "bank transaction", id)
}

func (l *Ledger) deleteRegisterRow(table, what string, id int64) error {
	return l.mutate("delete-"+strings.ReplaceAll(what, " ", "-"), func(tx *sql.Tx) error {
		var associationID int64
		var incomeID, expenseID sql.NullInt64
		err := tx.QueryRow(`SELECT association_id, linked_income_id, linked_expense_id FROM `+table+` WHERE id = ?`, id).
			Scan(&associationID, &incomeID, &expenseID)
		if err == sql.ErrNoRows {
			return notFound(what, id)
		}
		if err != nil {
			return storageError("get "+what, err)
		}
		if incomeID.Valid || expenseID.Valid {
			return invalidState("%s %d is derived from a transaction; delete the transaction instead", what, id)
		}
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE id = ?`, id); err != nil {
			return storageError("delete "+what, err)
		}
		return syncAccountBalances(tx, associationID)
	})
}

// ListCashTransactions returns cash rows, newest first.
func (l *Ledger) ListCashTransactions(associationID int64, f RegisterFilter) ([]CashTransaction, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	return listCash(l.conn, associationID, f)
}

func listCash(q db.Querier, associationID int64, f RegisterFilter) ([]CashTransaction, error) {
	where, args := dateClauses("transaction_date", f.FiscalYear, f.StartDate, f.EndDate)
	if !isAll(f.MovementType) {
		where += " AND movement_type = ?"
		args = append(args, f.MovementType)
	}

	rows, err := q.Query(`
		SELECT id, association_id, transaction_date, COALESCE(operation_label, ''), movement_type, amount,
		       COALESCE(document_type, ''), COALESCE(document_number, ''), linked_income_id, linked_expense_id,
		       balance_after, COALESCE(notes, '')
		FROM cash_transactions WHERE association_id = ?`+where+`
		ORDER BY transaction_date DESC, id DESC
	`, append([]interface{}{associationID}, args...)...)
	if err != nil {
		return nil, storageError("list cash transactions", err)
	}
	defer rows.Close()

	var out []CashTransaction
	for rows.Next() {
		var c CashTransaction
		var incomeID, expenseID sql.NullInt64
		if err := rows.Scan(&c.ID, &c.AssociationID, &c.Date, &c.OperationLabel, &c.MovementType, &c.Amount,
			&c.DocumentType, &c.DocumentNumber, &incomeID, &expenseID, &c.BalanceAfter, &c.Notes); err != nil {
			return nil, storageError("scan cash transaction", err)
		}
		c.LinkedIncomeID = nullInt64Ptr(incomeID)
		c.LinkedExpenseID = nullInt64Ptr(expenseID)
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListBankTransactions returns bank rows, newest first.
func (l *Ledger) ListBankTransactions(associationID int64, f RegisterFilter) ([]BankTransaction, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	return listBank(l.conn, associationID, f)
}

func listBank(q db.Querier, associationID int64, f RegisterFilter) ([]BankTransaction, error) {
	where, args := dateClauses("transaction_date", f.FiscalYear, f.StartDate, f.EndDate)
	if !isAll(f.MovementType) {
		where += " AND movement_type = ?"
		args = append(args, f.MovementType)
	}

	rows, err := q.Query(`
		SELECT id, association_id, transaction_date, COALESCE(operation_label, ''), movement_type, amount,
		       COALESCE(check_number, ''), checkbook_id, payment_method_id, linked_income_id, linked_expense_id,
		       balance_after, COALESCE(notes, '')
		FROM bank_transactions WHERE association_id = ?`+where+`
		ORDER BY transaction_date DESC, id DESC
	`, append([]interface{}{associationID}, args...)...)
	if err != nil {
		return nil, storageError("list bank transactions", err)
	}
	defer rows.Close()

	var out []BankTransaction
	for rows.Next() {
		var b BankTransaction
		var checkbookID, methodID, incomeID, expenseID sql.NullInt64
		if err := rows.Scan(&b.ID, &b.AssociationID, &b.Date, &b.OperationLabel, &b.MovementType, &b.Amount,
			&b.CheckNumber, &checkbookID, &methodID, &incomeID, &expenseID, &b.BalanceAfter, &b.Notes); err != nil {
			return nil, storageError("scan bank transaction", err)
		}
		b.CheckbookID = nullInt64Ptr(checkbookID)
		b.PaymentMethodID = nullInt64Ptr(methodID)
		b.LinkedIncomeID = nullInt64Ptr(incomeID)
		b.LinkedExpenseID = nullInt64Ptr(expenseID)
		out = append(out, b)
	}
	return out, rows.Err()
}

// insertCash stores a cash row with its balance snapshot and sets row.ID.
func insertCash(q db.Querier, row *CashTransaction) error {
	balance, err := cashBalance(q, row.AssociationID)
	if err != nil {
		return err
	}
	row.BalanceAfter = balance.Add(signedCash(row.MovementType, row.Amount))

	res, err := q.Exec(`
		INSERT INTO cash_transactions (association_id, transaction_date, operation_label, movement_type, amount,
			document_type, document_number, linked_income_id, linked_expense_id, balance_after, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, row.AssociationID, row.Date, row.OperationLabel, row.MovementType, row.Amount,
		row.DocumentType, row.DocumentNumber, row.LinkedIncomeID, row.LinkedExpenseID, row.BalanceAfter, row.Notes)
	if err != nil {
		return storageError("insert cash transaction", err)
	}
	row.ID, err = res.LastInsertId()
	if err != nil {
		return storageError("read cash transaction id", err)
	}
	return nil
}

// insertBank stores a bank row with its balance snapshot and sets row.ID.
func insertBank(q db.Querier, row *BankTransaction) error {
	balance, err := bankBalance(q, row.AssociationID)
	if err != nil {
		return err
	}
	row.BalanceAfter = balance.Add(signedBank(row.MovementType, row.Amount))

	res, err := q.Exec(`
		INSERT INTO bank_transactions (association_id, transaction_date, operation_label, movement_type, amount,
			check_number, checkbook_id, payment_method_id, linked_income_id, linked_expense_id, balance_after, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, row.AssociationID, row.Date, row.OperationLabel, row.MovementType, row.Amount,
		row.CheckNumber, row.CheckbookID, row.PaymentMethodID, row.LinkedIncomeID, row.LinkedExpenseID, row.BalanceAfter, row.Notes)
	if err != nil {
		return storageError("insert bank transaction", err)
	}
	row.ID, err = res.LastInsertId()
	if err != nil {
		return storageError("read bank transaction id", err)
	}
	return nil
}

// deleteLinkedRows removes the register rows derived from a source
// transaction. column is linked_income_id or linked_expense_id.
func deleteLinkedRows(q db.Querier, column string, sourceID int64) error {
	for _, table := range []string{"cash_transactions", "bank_transactions"} {
		if _, err := q.Exec(`DELETE FROM `+table+` WHERE `+column+` = ?`, sourceID); err != nil {
			return storageError("delete linked "+table, err)
		}
	}
	return nil
}

// linkedRowDate returns the date of the register row derived from a source
// transaction, or "" when there is none.
func linkedRowDate(q db.Querier, column string, sourceID int64) (string, error) {
	var date string
	err := q.QueryRow(`
		SELECT transaction_date FROM cash_transactions WHERE `+column+` = ?
		UNION ALL
		SELECT transaction_date FROM bank_transactions WHERE `+column+` = ?
		LIMIT 1
	`, sourceID, sourceID).Scan(&date)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", storageError("get linked row date", err)
	}
	return date, nil
}

// syncAccountBalances refreshes the denormalised account balances from the
// derived register sums.
func syncAccountBalances(q db.Querier, associationID int64) error {
	cash, err := cashBalance(q, associationID)
	if err != nil {
		return err
	}
	bank, err := bankBalance(q, associationID)
	if err != nil {
		return err
	}
	for _, u := range []struct {
		typ     AccountType
		balance decimal.Decimal
	}{{AccountCash, cash}, {AccountBank, bank}} {
		if _, err := q.Exec(`UPDATE accounts SET current_balance = ? WHERE association_id = ? AND type = ?`,
			u.balance, associationID, string(u.typ)); err != nil {
			return storageError("update account balance", err)
		}
	}
	return nil
}

// dateYear returns the year of a date already checked by validateDate.
func dateYear(date string) int {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return 0
	}
	return t.Year()
}
