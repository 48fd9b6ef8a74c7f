package ledger

import (
	"database/sql"
	"slices"

	"github.com/shopspring/decimal"
)

// Summary is the dashboard view of an association.
type Summary struct {
	AssociationID   int64           `json:"association_id"`
	FiscalYear      int             `json:"fiscal_year,omitempty"`
	CashBalance     decimal.Decimal `json:"cash_balance"`
	BankBalance     decimal.Decimal `json:"bank_balance"`
	TotalBalance    decimal.Decimal `json:"total_balance"`
	TotalIncome     decimal.Decimal `json:"total_income"`
	TotalExpenses   decimal.Decimal `json:"total_expenses"`
	OperationsCount int             `json:"operations_count"`
}

// Summary returns the balances of an association with its income, paid
// expenses and journal operations of fiscalYear. A zero year covers all
// years. Balances are always all-time.
func (l *Ledger) Summary(associationID int64, fiscalYear int) (*Summary, error) {
	bal, err := l.CurrentBalance(associationID)
	if err != nil {
		return nil, err
	}
	s := &Summary{
		AssociationID: associationID,
		FiscalYear:    fiscalYear,
		CashBalance:   bal.CashBalance,
		BankBalance:   bal.BankBalance,
		TotalBalance:  bal.TotalBalance,
	}

	totals, err := l.fieldTotals(associationID, TransactionFilter{FiscalYear: fiscalYear})
	if err != nil {
		return nil, err
	}
	s.TotalIncome, s.TotalExpenses = decimal.Zero, decimal.Zero
	for _, t := range totals {
		if t.Kind == OperationIncome {
			s.TotalIncome = s.TotalIncome.Add(t.Total)
		} else {
			s.TotalExpenses = s.TotalExpenses.Add(t.Total)
		}
	}

	journal, err := l.DailyJournal(associationID, JournalFilter{FiscalYear: fiscalYear})
	if err != nil {
		return nil, err
	}
	s.OperationsCount = len(journal)
	return s, nil
}

// FieldTotal is the total of one income or expense field over a period.
type FieldTotal struct {
	Kind      string          `json:"kind"`
	FieldID   *int64          `json:"field_id,omitempty"`
	FieldName string          `json:"field_name"`
	Total     decimal.Decimal `json:"total"`
	Count     int             `json:"count"`
}

// FieldTotals groups incomes and paid expenses dated between start and end
// (inclusive, either may be empty) by field. Incomes come first, each kind
// ordered by field id with uncategorised rows last.
func (l *Ledger) FieldTotals(associationID int64, start, end string) ([]FieldTotal, error) {
	if err := associationExists(l.conn, associationID); err != nil {
		return nil, err
	}
	return l.fieldTotals(associationID, TransactionFilter{StartDate: start, EndDate: end})
}

func (l *Ledger) fieldTotals(associationID int64, f TransactionFilter) ([]FieldTotal, error) {
	var out []FieldTotal
	for _, src := range []struct {
		kind        string
		fieldColumn string
		query       string
	}{
		{OperationIncome, "t.income_field_id", `
			SELECT t.income_field_id, COALESCE(f.name, f.name_ar, ''), t.amount
			FROM income_transactions t LEFT JOIN income_fields f ON f.id = t.income_field_id
			WHERE t.association_id = ?`},
		{OperationExpense, "t.expense_field_id", `
			SELECT t.expense_field_id, COALESCE(f.name, f.name_ar, ''), t.amount
			FROM expense_transactions t LEFT JOIN expense_fields f ON f.id = t.expense_field_id
			WHERE t.association_id = ? AND t.payment_status = 'paye'`},
	} {
		where, args, err := f.clauses(src.fieldColumn)
		if err != nil {
			return nil, err
		}
		totals, err := l.sumByField(src.kind, src.query+where, associationID, args)
		if err != nil {
			return nil, err
		}
		out = append(out, totals...)
	}
	return out, nil
}

func (l *Ledger) sumByField(kind, query string, associationID int64, args []interface{}) ([]FieldTotal, error) {
	rows, err := l.conn.Query(query+` ORDER BY t.id`, append([]interface{}{associationID}, args...)...)
	if err != nil {
		return nil, storageError("sum "+kind+" by field", err)
	}
	defer rows.Close()

	byField := make(map[int64]*FieldTotal)
	var ids []int64
	var uncategorised *FieldTotal
	for rows.Next() {
		var fieldID sql.NullInt64
		var name string
		var amount decimal.Decimal
		if err := rows.Scan(&fieldID, &name, &amount); err != nil {
			return nil, storageError("scan "+kind+" total", err)
		}

		var t *FieldTotal
		switch {
		case !fieldID.Valid:
			if uncategorised == nil {
				uncategorised = &FieldTotal{Kind: kind, Total: decimal.Zero}
			}
			t = uncategorised
		case byField[fieldID.Int64] != nil:
			t = byField[fieldID.Int64]
		default:
			t = &FieldTotal{Kind: kind, FieldID: nullInt64Ptr(fieldID), FieldName: name, Total: decimal.Zero}
			byField[fieldID.Int64] = t
			ids = append(ids, fieldID.Int64)
		}
		t.Total = t.Total.Add(amount)
		t.Count++
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("sum "+kind+" by field", err)
	}

	slices.Sort(ids)
	out := make([]FieldTotal, 0, len(ids)+1)
	for _, id := range ids {
		out = append(out, *byField[id])
	}
	if uncategorised != nil {
		out = append(out, *uncategorised)
	}
	return out, nil
}
