package ledger

import (
	"errors"
	"testing"
)

func TestAddCashTransaction(t *testing.T) {
	l, _ := newTestLedger(t)
	assoc := newTestAssociation(t, l)

	receipt, err := l.AddCashTransaction(CashInput{
		AssociationID:  assoc,
		Date:           "2025-01-02",
		OperationLabel: "fond de caisse",
		MovementType:   MovementReceipt,
		Amount:         dec("400"),
		DocumentType:   DocumentReceiptVoucher,
		DocumentNumber: "R-77",
	})
	if err != nil {
		t.Fatalf("AddCashTransaction(receipt) error = %v", err)
	}
	assertAmount(t, "receipt balance_after", receipt.BalanceAfter, "400")

	payment, err := l.AddCashTransaction(CashInput{
		AssociationID:  assoc,
		Date:           "2025-01-03",
		OperationLabel: "timbres",
		MovementType:   MovementPayment,
		Amount:         dec("25.50"),
	})
	if err != nil {
		t.Fatalf("AddCashTransaction(payment) error = %v", err)
	}
	if payment.DocumentNumber != "BC-002/25" || payment.DocumentType != DocumentCashVoucher {
		t.Errorf("payment document = %s %s, expected cash_voucher BC-002/25", payment.DocumentType, payment.DocumentNumber)
	}
	assertAmount(t, "payment balance_after", payment.BalanceAfter, "374.50")

	accounts, _ := l.ListAccounts(assoc)
	for _, a := range accounts {
		if a.Type == AccountCash {
			assertAmount(t, "cash account", a.CurrentBalance, "374.50")
		}
	}
}

func TestAddCashTransaction_Validation(t *testing.T) {
	l, _ := newTestLedger(t)
	assoc := newTestAssociation(t, l)

	base := CashInput{AssociationID: assoc, Date: "2025-01-02", OperationLabel: "x", MovementType: MovementReceipt, Amount: dec("1"), DocumentNumber: "R-1"}
	tests := []struct {
		name   string
		mutate func(*CashInput)
	}{
		{"bank movement", func(in *CashInput) { in.MovementType = MovementDeposit }},
		{"no label", func(in *CashInput) { in.OperationLabel = "" }},
		{"zero amount", func(in *CashInput) { in.Amount = dec("0") }},
		{"receipt without document", func(in *CashInput) { in.DocumentNumber = "" }},
		{"bad date", func(in *CashInput) { in.Date = "2025-13-01" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			if _, err := l.AddCashTransaction(in); !errors.Is(err, ErrValidation) {
				t.Errorf("AddCashTransaction() error = %v, expected ErrValidation", err)
			}
		})
	}
}

func TestAddBankTransaction(t *testing.T) {
	l, _ := newTestLedger(t)
	assoc := newTestAssociation(t, l)
	cb := newTestCheckbook(t, l, assoc, 1, 10)
	id := cb.ID

	if _, err := l.AddBankTransaction(BankInput{
		AssociationID:  assoc,
		Date:           "2025-01-02",
		OperationLabel: "versement",
		MovementType:   MovementDeposit,
		Amount:         dec("1000"),
	}); err != nil {
		t.Fatalf("AddBankTransaction(deposit) error = %v", err)
	}

	w, err := l.AddBankTransaction(BankInput{
		AssociationID:  assoc,
		Date:           "2025-01-04",
		OperationLabel: "retrait",
		MovementType:   MovementWithdrawal,
		Amount:         dec("300"),
		CheckNumber:    "3",
		CheckbookID:    &id,
	})
	if err != nil {
		t.Fatalf("AddBankTransaction(withdrawal) error = %v", err)
	}
	assertAmount(t, "balance_after", w.BalanceAfter, "700")

	state, _ := l.CheckStatus(cb.ID, 3)
	if state != CheckUsed {
		t.Errorf("CheckStatus(3) = %s, expected used", state)
	}

	_, err = l.AddBankTransaction(BankInput{
		AssociationID:  assoc,
		Date:           "2025-01-04",
		OperationLabel: "versement",
		MovementType:   MovementDeposit,
		Amount:         dec("1"),
		CheckNumber:    "4",
		CheckbookID:    &id,
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("deposit with check error = %v, expected ErrValidation", err)
	}
}

func TestDeleteRegisterRows(t *testing.T) {
	l, _ := newTestLedger(t)
	assoc := newTestAssociation(t, l)

	if _, err := l.PostIncome(IncomeInput{AssociationID: assoc, Date: "2025-01-01", Amount: dec("50"), PaymentMethod: AccountCash}); err != nil {
		t.Fatalf("PostIncome() error = %v", err)
	}
	cash, _ := l.ListCashTransactions(assoc, RegisterFilter{})
	if err := l.DeleteCashTransaction(cash[0].ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("DeleteCashTransaction(linked) error = %v, expected ErrInvalidState", err)
	}

	direct, err := l.AddBankTransaction(BankInput{AssociationID: assoc, Date: "2025-01-02", OperationLabel: "frais", MovementType: MovementWithdrawal, Amount: dec("5")})
	if err != nil {
		t.Fatalf("AddBankTransaction() error = %v", err)
	}
	if err := l.DeleteBankTransaction(direct.ID); err != nil {
		t.Fatalf("DeleteBankTransaction() error = %v", err)
	}
	if err := l.DeleteBankTransaction(direct.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteBankTransaction() error = %v, expected ErrNotFound", err)
	}

	bal, _ := l.CurrentBalance(assoc)
	assertAmount(t, "bank balance", bal.BankBalance, "0")
}

func TestListCashTransactions_Filters(t *testing.T) {
	l, _ := newTestLedger(t)
	assoc := newTestAssociation(t, l)

	for _, in := range []CashInput{
		{AssociationID: assoc, Date: "2024-12-31", OperationLabel: "a", MovementType: MovementReceipt, Amount: dec("1"), DocumentNumber: "R-1"},
		{AssociationID: assoc, Date: "2025-01-01", OperationLabel: "b", MovementType: MovementPayment, Amount: dec("1")},
		{AssociationID: assoc, Date: "2025-01-02", OperationLabel: "c", MovementType: MovementReceipt, Amount: dec("1"), DocumentNumber: "R-2"},
	} {
		if _, err := l.AddCashTransaction(in); err != nil {
			t.Fatalf("AddCashTransaction() error = %v", err)
		}
	}

	tests := []struct {
		name     string
		filter   RegisterFilter
		expected int
	}{
		{"none", RegisterFilter{}, 3},
		{"year", RegisterFilter{FiscalYear: 2025}, 2},
		{"movement", RegisterFilter{MovementType: MovementReceipt}, 2},
		{"end date", RegisterFilter{EndDate: "2025-01-01"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.ListCashTransactions(assoc, tt.filter)
			if err != nil {
				t.Fatalf("ListCashTransactions() error = %v", err)
			}
			if len(got) != tt.expected {
				t.Errorf("ListCashTransactions() returned %d, expected %d", len(got), tt.expected)
			}
		})
	}

	if _, err := l.ListCashTransactions(assoc, RegisterFilter{StartDate: "yesterday"}); !errors.Is(err, ErrValidation) {
		t.Errorf("bad start date error = %v, expected ErrValidation", err)
	}
}
