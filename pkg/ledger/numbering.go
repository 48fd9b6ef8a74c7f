package ledger

import (
	"fmt"

	"github.com/progmawarid-dot/association-najah-ass/pkg/db"
)

// DocumentKind selects a numbered document series.
type DocumentKind string

const (
	DocExpenseOrder  DocumentKind = "expense-order"
	DocCashPayment   DocumentKind = "cash-payment"
	DocIncomeReceipt DocumentKind = "income-receipt"
)

type documentSeries struct {
	prefix     string
	table      string
	dateColumn string
}

var documentSeriesByKind = map[DocumentKind]documentSeries{
	DocExpenseOrder:  {prefix: "OP", table: "expense_transactions", dateColumn: "date"},
	DocCashPayment:   {prefix: "BC", table: "cash_transactions", dateColumn: "transaction_date"},
	DocIncomeReceipt: {prefix: "REC", table: "income_transactions", dateColumn: "date"},
}

// ParseDocumentKind validates a document kind name.
func ParseDocumentKind(s string) (DocumentKind, error) {
	kind := DocumentKind(s)
	if _, ok := documentSeriesByKind[kind]; !ok {
		return "", validationError("unknown document kind %q", s)
	}
	return kind, nil
}

// NextDocumentNumber returns the next reference number of a series, for
// example "OP-003/25". The sequence is the count of the association's rows
// dated in year, plus one.
//
// Numbers are not reserved: two calls before either row is stored return
// the same number. If the count fails the first number of the year is
// returned. Unknown kinds return "".
func (l *Ledger) NextDocumentNumber(kind DocumentKind, year int, associationID int64) string {
	return l.nextDocumentNumber(l.conn, kind, year, associationID)
}

func (l *Ledger) nextDocumentNumber(q db.Querier, kind DocumentKind, year int, associationID int64) string {
	series, ok := documentSeriesByKind[kind]
	if !ok {
		return ""
	}

	query := fmt.Sprintf(
		`SELECT COUNT(*) FROM %s WHERE association_id = ? AND strftime('%%Y', %s) = ?`,
		series.table, series.dateColumn,
	)

	var count int
	if err := q.QueryRow(query, associationID, yearString(year)).Scan(&count); err != nil {
		l.logger.Warn("document count failed, using first number of the year",
			"kind", kind, "year", year, "association_id", associationID, "error", err)
		count = 0
	}

	return formatDocumentNumber(series.prefix, count+1, year)
}

func formatDocumentNumber(prefix string, seq, year int) string {
	return fmt.Sprintf("%s-%03d/%02d", prefix, seq, year%100)
}
