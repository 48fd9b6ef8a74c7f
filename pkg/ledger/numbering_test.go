package ledger

import (
	"errors"
	"testing"
)

func TestNextDocumentNumber_CountsRowsOfTheYear(t *testing.T) {
	l, _ := newTestLedger(t)
	assoc := newTestAssociation(t, l)

	for _, date := range []string{"2025-01-05", "2025-06-30", "2024-12-31"} {
		if _, err := l.PostExpense(ExpenseInput{
			AssociationID: assoc,
			Date:          date,
			Description:   "fournitures",
			Amount:        dec("100"),
			PaymentMethod: AccountCash,
		}); err != nil {
			t.Fatalf("PostExpense() error = %v", err)
		}
	}

	if got := l.NextDocumentNumber(DocExpenseOrder, 2025, assoc); got != "OP-003/25" {
		t.Errorf("NextDocumentNumber(2025) = %q, expected %q", got, "OP-003/25")
	}
	if got := l.NextDocumentNumber(DocExpenseOrder, 2024, assoc); got != "OP-002/24" {
		t.Errorf("NextDocumentNumber(2024) = %q, expected %q", got, "OP-002/24")
	}
	if got := l.NextDocumentNumber(DocExpenseOrder, 2025, assoc+1); got != "OP-001/25" {
		t.Errorf("other association = %q, expected %q", got, "OP-001/25")
	}
}

func TestNextDocumentNumber_Kinds(t *testing.T) {
	l, _ := newTestLedger(t)
	assoc := newTestAssociation(t, l)

	tests := []struct {
		kind     DocumentKind
		year     int
		expected string
	}{
		{DocExpenseOrder, 2025, "OP-001/25"},
		{DocCashPayment, 2025, "BC-001/25"},
		{DocIncomeReceipt, 2030, "REC-001/30"},
		{DocumentKind("invoice"), 2025, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := l.NextDocumentNumber(tt.kind, tt.year, assoc); got != tt.expected {
				t.Errorf("NextDocumentNumber() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestNextDocumentNumber_FallsBackOnStorageFailure(t *testing.T) {
	l, conn := newTestLedger(t)
	assoc := newTestAssociation(t, l)

	if _, err := conn.Exec(`DROP TABLE cash_transactions`); err != nil {
		t.Fatalf("drop error = %v", err)
	}

	if got := l.NextDocumentNumber(DocCashPayment, 2025, assoc); got != "BC-001/25" {
		t.Errorf("NextDocumentNumber() = %q, expected fallback %q", got, "BC-001/25")
	}
}

func TestParseDocumentKind(t *testing.T) {
	if k, err := ParseDocumentKind("cash-payment"); err != nil || k != DocCashPayment {
		t.Errorf("ParseDocumentKind(cash-payment) = %q, %v", k, err)
	}
	if _, err := ParseDocumentKind("receipt"); !errors.Is(err, ErrValidation) {
		t.Errorf("ParseDocumentKind(receipt) error = %v, expected ErrValidation", err)
	}
}
