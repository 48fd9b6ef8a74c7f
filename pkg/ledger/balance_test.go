package ledger

import (
	"errors"
	"testing"
)

func TestCurrentBalance_Empty(t *testing.T) {
	l, _ := newTestLedger(t)
	assoc := newTestAssociation(t, l)

	bal, err := l.CurrentBalance(assoc)
	if err != nil {
		t.Fatalf("CurrentBalance() error = %v", err)
	}
	assertAmount(t, "cash", bal.CashBalance, "0")
	assertAmount(t, "bank", bal.BankBalance, "0")
	assertAmount(t, "total", bal.TotalBalance, "0")
}

func TestCurrentBalance_Derived(t *testing.T) {
	l, conn := newTestLedger(t)
	assoc := newTestAssociation(t, l)

	if _, err := l.PostIncome(IncomeInput{AssociationID: assoc, Date: "2025-01-01", Amount: dec("1000.10"), PaymentMethod: AccountCash}); err != nil {
		t.Fatalf("PostIncome(cash) error = %v", err)
	}
	if _, err := l.PostIncome(IncomeInput{AssociationID: assoc, Date: "2025-01-02", Amount: dec("0.20"), PaymentMethod: AccountBank}); err != nil {
		t.Fatalf("PostIncome(bank) error = %v", err)
	}
	if _, err := l.PostExpense(ExpenseInput{AssociationID: assoc, Date: "2025-01-03", Amount: dec("0.30"), PaymentMethod: AccountCash, PaymentStatus: PaymentPaid}); err != nil {
		t.Fatalf("PostExpense() error = %v", err)
	}

	first, err := l.CurrentBalance(assoc)
	if err != nil {
		t.Fatalf("CurrentBalance() error = %v", err)
	}
	assertAmount(t, "cash", first.CashBalance, "999.80")
	assertAmount(t, "bank", first.BankBalance, "0.20")
	assertAmount(t, "total", first.TotalBalance, "1000")

	// Snapshots are hints; corrupting them must not change the result.
	if _, err := conn.Exec(`UPDATE accounts SET current_balance = 123456`); err != nil {
		t.Fatalf("update error = %v", err)
	}
	if _, err := conn.Exec(`UPDATE cash_transactions SET balance_after = -1`); err != nil {
		t.Fatalf("update error = %v", err)
	}

	second, err := l.CurrentBalance(assoc)
	if err != nil {
		t.Fatalf("CurrentBalance() error = %v", err)
	}
	if !second.TotalBalance.Equal(first.TotalBalance) || !second.CashBalance.Equal(first.CashBalance) {
		t.Errorf("CurrentBalance() = %+v, expected %+v", second, first)
	}
}

func TestCurrentBalance_UnknownAssociation(t *testing.T) {
	l, _ := newTestLedger(t)

	if _, err := l.CurrentBalance(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("CurrentBalance() error = %v, expected ErrNotFound", err)
	}
}
