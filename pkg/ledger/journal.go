package ledger

import (
	"sort"

	"github.com/progmawarid-dot/association-najah-ass/pkg/db"
	"github.com/shopspring/decimal"
)

// Journal directions.
const (
	Debit  = "debit"
	Credit = "credit"
)

// Journal operation types.
const (
	OperationIncome   = "income"
	OperationExpense  = "expense"
	OperationTransfer = "transfer"
)

// Journal source registers, in tie-break order.
const (
	SourceCash    = "cash"
	SourceBank    = "bank"
	SourceIncome  = "income"
	SourceExpense = "expense"
)

var sourceOrder = map[string]int{SourceCash: 0, SourceBank: 1, SourceIncome: 2, SourceExpense: 3}

// JournalEntry is one money movement of the daily operations journal.
type JournalEntry struct {
	ID              int64           `json:"id"`
	Date            string          `json:"date"`
	Description     string          `json:"description"`
	SourceRegister  string          `json:"source_register"`
	MovementType    string          `json:"movement_type"`
	Direction       string          `json:"direction"`
	OperationType   string          `json:"operation_type"`
	Amount          decimal.Decimal `json:"amount"`
	Reference       string          `json:"reference"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	OperationNumber int             `json:"operation_number"`
}

// JournalFilter restricts the returned journal. Empty or "all" values
// mean no restriction.
type JournalFilter struct {
	FiscalYear     int    `json:"fiscal_year,omitempty"`
	StartDate      string `json:"start_date,omitempty"`
	EndDate        string `json:"end_date,omitempty"`
	OperationType  string `json:"operation_type,omitempty"`
	SourceRegister string `json:"source_register,omitempty"`
}

func (f JournalFilter) validate() error {
	if err := validateOptionalDate("start date", f.StartDate); err != nil {
		return err
	}
	if err := validateOptionalDate("end date", f.EndDate); err != nil {
		return err
	}
	switch {
	case isAll(f.OperationType), f.OperationType == OperationIncome,
		f.OperationType == OperationExpense, f.OperationType == OperationTransfer:
	default:
		return validationError("unknown operation type %q", f.OperationType)
	}
	if _, ok := sourceOrder[f.SourceRegister]; !ok && !isAll(f.SourceRegister) {
		return validationError("unknown source register %q", f.SourceRegister)
	}
	return nil
}

func (f JournalFilter) match(e *JournalEntry) bool {
	if f.FiscalYear > 0 && (len(e.Date) < 4 || e.Date[:4] != yearString(f.FiscalYear)) {
		return false
	}
	if f.StartDate != "" && e.Date < f.StartDate {
		return false
	}
	if f.EndDate != "" && e.Date > f.EndDate {
		return false
	}
	if !isAll(f.OperationType) && e.OperationType != f.OperationType {
		return false
	}
	if !isAll(f.SourceRegister) && e.SourceRegister != f.SourceRegister {
		return false
	}
	return true
}

// DailyJournal merges the cash and bank registers with the incomes and paid
// expenses that have no register row, in chronological order. Each money
// movement appears once. BalanceAfter runs over the whole history of the
// association, so filtering does not change it.
func (l *Ledger) DailyJournal(associationID int64, f JournalFilter) ([]JournalEntry, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	if err := associationExists(l.conn, associationID); err != nil {
		return nil, err
	}

	all, err := journalStream(l.conn, associationID)
	if err != nil {
		return nil, err
	}

	balance := decimal.Zero
	out := make([]JournalEntry, 0, len(all))
	for i := range all {
		e := &all[i]
		if e.Direction == Debit {
			balance = balance.Add(e.Amount)
		} else {
			balance = balance.Sub(e.Amount)
		}
		e.BalanceAfter = balance
		if f.match(e) {
			e.OperationNumber = len(out) + 1
			out = append(out, *e)
		}
	}
	return out, nil
}

// journalStream returns every journal entry of an association sorted by
// date, id and source register.
func journalStream(q db.Querier, associationID int64) ([]JournalEntry, error) {
	var entries []JournalEntry

	cash, err := listCash(q, associationID, RegisterFilter{})
	if err != nil {
		return nil, err
	}
	for _, c := range cash {
		e := JournalEntry{
			ID:             c.ID,
			Date:           c.Date,
			Description:    c.OperationLabel,
			SourceRegister: SourceCash,
			MovementType:   c.MovementType,
			Direction:      Credit,
			OperationType:  linkedOperation(c.LinkedIncomeID, c.LinkedExpenseID),
			Amount:         c.Amount,
			Reference:      c.DocumentNumber,
		}
		if c.MovementType == MovementReceipt {
			e.Direction = Debit
		}
		entries = append(entries, e)
	}

	bank, err := listBank(q, associationID, RegisterFilter{})
	if err != nil {
		return nil, err
	}
	for _, b := range bank {
		e := JournalEntry{
			ID:             b.ID,
			Date:           b.Date,
			Description:    b.OperationLabel,
			SourceRegister: SourceBank,
			MovementType:   b.MovementType,
			Direction:      Credit,
			OperationType:  linkedOperation(b.LinkedIncomeID, b.LinkedExpenseID),
			Amount:         b.Amount,
			Reference:      b.CheckNumber,
		}
		if b.MovementType == MovementDeposit {
			e.Direction = Debit
		}
		entries = append(entries, e)
	}

	incomes, err := unpostedIncome(q, associationID)
	if err != nil {
		return nil, err
	}
	for _, inc := range incomes {
		entries = append(entries, JournalEntry{
			ID:             inc.ID,
			Date:           inc.Date,
			Description:    inc.Description,
			SourceRegister: SourceIncome,
			MovementType:   OperationIncome,
			Direction:      Debit,
			OperationType:  OperationIncome,
			Amount:         inc.Amount,
			Reference:      inc.ReferenceNumber,
		})
	}

	expenses, err := unpostedExpenses(q, associationID)
	if err != nil {
		return nil, err
	}
	for _, x := range expenses {
		entries = append(entries, JournalEntry{
			ID:             x.ID,
			Date:           x.Date,
			Description:    x.Description,
			SourceRegister: SourceExpense,
			MovementType:   OperationExpense,
			Direction:      Credit,
			OperationType:  OperationExpense,
			Amount:         x.Amount,
			Reference:      expenseReference(&x),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return sourceOrder[a.SourceRegister] < sourceOrder[b.SourceRegister]
	})
	return entries, nil
}

func linkedOperation(incomeID, expenseID *int64) string {
	switch {
	case incomeID != nil:
		return OperationIncome
	case expenseID != nil:
		return OperationExpense
	}
	return OperationTransfer
}

func expenseReference(e *ExpenseTransaction) string {
	for _, ref := range []string{e.BCNumber, e.CheckNumber, e.OpNumber} {
		if ref != "" {
			return ref
		}
	}
	return ""
}

// unpostedIncome returns incomes without a register row.
func unpostedIncome(q db.Querier, associationID int64) ([]IncomeTransaction, error) {
	rows, err := q.Query(`
		SELECT `+incomeColumns+` FROM income_transactions i
		WHERE association_id = ?
		  AND NOT EXISTS (SELECT 1 FROM cash_transactions c WHERE c.linked_income_id = i.id)
		  AND NOT EXISTS (SELECT 1 FROM bank_transactions b WHERE b.linked_income_id = i.id)
	`, associationID)
	if err != nil {
		return nil, storageError("list unposted income", err)
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

// unpostedExpenses returns paid expenses without a register row.
func unpostedExpenses(q db.Querier, associationID int64) ([]ExpenseTransaction, error) {
	rows, err := q.Query(`
		SELECT `+expenseColumns+` FROM expense_transactions x
		WHERE association_id = ? AND payment_status = 'paye'
		  AND NOT EXISTS (SELECT 1 FROM cash_transactions c WHERE c.linked_expense_id = x.id)
		  AND NOT EXISTS (SELECT 1 FROM bank_transactions b WHERE b.linked_expense_id = x.id)
	`, associationID)
	if err != nil {
		return nil, storageError("list unposted expenses", err)
	}
	defer rows.Close()

	var out []ExpenseTransaction
	for rows.Next() {
		e, err := scanExpense(rows.Scan)
		if err != nil {
			return nil, storageError("scan expense", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}
