package ledger

import (
	"errors"
	"testing"
)

func newTestCheckbook(t *testing.T, l *Ledger, assoc int64, start, end int) *Checkbook {
	t.Helper()

	cb, err := l.RegisterCheckbook(assoc, "Banque Populaire", "A", start, end, 0)
	if err != nil {
		t.Fatalf("RegisterCheckbook() error = %v", err)
	}
	return cb
}

// payByCheck posts a paid bank expense using a check of cb.
func payByCheck(t *testing.T, l *Ledger, assoc int64, cb *Checkbook, number, amount string) *ExpenseTransaction {
	t.Helper()

	id := cb.ID
	e, err := l.PostExpense(ExpenseInput{
		AssociationID: assoc,
		Date:          "2025-03-01",
		Description:   "location salle",
		Amount:        dec(amount),
		PaymentMethod: AccountBank,
		CheckNumber:   number,
		CheckbookID:   &id,
	})
	if err != nil {
		t.Fatalf("PostExpense(check %s) error = %v", number, err)
	}
	return e
}

func TestRegisterCheckbook_Validation(t *testing.T) {
	l, _ := newTestLedger(t)
	assoc := newTestAssociation(t, l)

	tests := []struct {
		name   string
		series string
		start  int
		end    int
	}{
		{"empty series", "  ", 1, 10},
		{"end before start", "A", 50, 49},
		{"negative start", "A", -1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.RegisterCheckbook(assoc, "bank", tt.series, tt.start, tt.end, 5)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("RegisterCheckbook() error = %v, expected ErrValidation", err)
			}
		})
	}

	if _, err := l.RegisterCheckbook(assoc+99, "bank", "A", 1, 10, 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown association error = %v, expected ErrNotFound", err)
	}
}

func TestRegisterCheckbook_DefaultThreshold(t *testing.T) {
	l, _ := newTestLedger(t)
	assoc := newTestAssociation(t, l)

	cb := newTestCheckbook(t, l, assoc, 1, 25)
	if cb.AlertThreshold != DefaultAlertThreshold {
		t.Errorf("AlertThreshold = %d, expected %d", cb.AlertThreshold, DefaultAlertThreshold)
	}

	got, err := l.GetCheckbook(cb.ID)
	if err != nil {
		t.Fatalf("GetCheckbook() error = %v", err)
	}
	if got.SeriesName != "A" || got.StartNumber != 1 || got.EndNumber != 25 || !got.IsActive {
		t.Errorf("GetCheckbook() = %+v", got)
	}
}

func TestCheckbookStats_RoundTrip(t *testing.T) {
	l, _ := newTestLedger(t)
	assoc := newTestAssociation(t, l)
	cb := newTestCheckbook(t, l, assoc, 500, 550)

	if _, err := l.CancelCheck(cb.ID, 510, "spoiled", "2025-03-02"); err != nil {
		t.Fatalf("CancelCheck() error = %v", err)
	}
	payByCheck(t, l, assoc, cb, "520", "300")

	stats, err := l.Stats(cb.ID)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 51 || stats.Cancelled != 1 || stats.Used != 1 || stats.Remaining != 49 {
		t.Errorf("Stats() = %+v, expected total 51, cancelled 1, used 1, remaining 49", stats)
	}
	if stats.LowStock {
		t.Error("LowStock should be false with 49 remaining")
	}

	tests := []struct {
		number   int
		expected CheckState
	}{
		{500, CheckAvailable},
		{510, CheckCancelled},
		{520, CheckUsed},
		{550, CheckAvailable},
	}
	for _, tt := range tests {
		state, err := l.CheckStatus(cb.ID, tt.number)
		if err != nil {
			t.Fatalf("CheckStatus(%d) error = %v", tt.number, err)
		}
		if state != tt.expected {
			t.Errorf("CheckStatus(%d) = %s, expected %s", tt.number, state, tt.expected)
		}
	}
}

func TestCheckStatus_OutOfRange(t *testing.T) {
	l, _ := newTestLedger(t)
	assoc := newTestAssociation(t, l)
	cb := newTestCheckbook(t, l, assoc, 100, 110)

	for _, n := range []int{99, 111} {
		if _, err := l.CheckStatus(cb.ID, n); !errors.Is(err, ErrValidation) {
			t.Errorf("CheckStatus(%d) error = %v, expected ErrValidation", n, err)
		}
	}
	if _, err := l.CheckStatus(cb.ID+1, 100); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown checkbook error = %v, expected ErrNotFound", err)
	}
}

func TestCancelCheck_States(t *testing.T) {
	l, _ := newTestLedger(t)
	assoc := newTestAssociation(t, l)
	cb := newTestCheckbook(t, l, assoc, 1, 10)

	cc, err := l.CancelCheck(cb.ID, 3, "torn", "")
	if err != nil {
		t.Fatalf("CancelCheck() error = %v", err)
	}
	if cc.CancellationDate != "2025-03-10" {
		t.Errorf("CancellationDate = %q, expected today", cc.CancellationDate)
	}

	if _, err := l.CancelCheck(cb.ID, 3, "again", ""); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second cancel error = %v, expected ErrInvalidState", err)
	}

	payByCheck(t, l, assoc, cb, "4", "50")
	if _, err := l.CancelCheck(cb.ID, 4, "mistake", ""); !errors.Is(err, ErrInvalidState) {
		t.Errorf("cancel used check error = %v, expected ErrInvalidState", err)
	}

	if _, err := l.CancelCheck(cb.ID, 5, " ", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("empty reason error = %v, expected ErrValidation", err)
	}
	if _, err := l.CancelCheck(cb.ID, 11, "out of range", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("out of range error = %v, expected ErrValidation", err)
	}
}

func TestClaimCheck_KeepsStatesExclusive(t *testing.T) {
	l, _ := newTestLedger(t)
	assoc := newTestAssociation(t, l)
	cb := newTestCheckbook(t, l, assoc, 1, 10)
	id := cb.ID

	payByCheck(t, l, assoc, cb, "2", "10")
	if _, err := l.CancelCheck(cb.ID, 3, "void", ""); err != nil {
		t.Fatalf("CancelCheck() error = %v", err)
	}

	tests := []struct {
		name   string
		number string
		target error
	}{
		{"used", "2", ErrInvalidState},
		{"cancelled", "3", ErrInvalidState},
		{"out of range", "42", ErrValidation},
		{"not numeric", "abc", ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.PostExpense(ExpenseInput{
				AssociationID: assoc,
				Date:          "2025-03-05",
				Amount:        dec("10"),
				PaymentMethod: AccountBank,
				CheckNumber:   tt.number,
				CheckbookID:   &id,
			})
			if !errors.Is(err, tt.target) {
				t.Errorf("PostExpense(check %s) error = %v, expected %v", tt.number, err, tt.target)
			}
		})
	}

	_, err := l.AddBankTransaction(BankInput{
		AssociationID:  assoc,
		Date:           "2025-03-05",
		OperationLabel: "retrait",
		MovementType:   MovementWithdrawal,
		Amount:         dec("5"),
		CheckNumber:    "2",
		CheckbookID:    &id,
	})
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("AddBankTransaction(used check) error = %v, expected ErrInvalidState", err)
	}
}

func TestClaimCheck_OtherAssociation(t *testing.T) {
	l, _ := newTestLedger(t)
	assoc := newTestAssociation(t, l)
	other := newTestAssociation(t, l)
	cb := newTestCheckbook(t, l, assoc, 1, 10)
	id := cb.ID

	_, err := l.PostExpense(ExpenseInput{
		AssociationID: other,
		Date:          "2025-03-05",
		Amount:        dec("10"),
		PaymentMethod: AccountBank,
		CheckNumber:   "1",
		CheckbookID:   &id,
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("foreign checkbook error = %v, expected ErrValidation", err)
	}
}

func TestCheckGridAndList(t *testing.T) {
	l, _ := newTestLedger(t)
	assoc := newTestAssociation(t, l)
	cb := newTestCheckbook(t, l, assoc, 1, 6)

	payByCheck(t, l, assoc, cb, "01", "20")
	if _, err := l.CancelCheck(cb.ID, 2, "void", ""); err != nil {
		t.Fatalf("CancelCheck() error = %v", err)
	}

	grid, err := l.CheckGrid(cb.ID)
	if err != nil {
		t.Fatalf("CheckGrid() error = %v", err)
	}
	expected := []CheckState{CheckUsed, CheckCancelled, CheckAvailable, CheckAvailable, CheckAvailable, CheckAvailable}
	if len(grid) != len(expected) {
		t.Fatalf("CheckGrid() returned %d cells, expected %d", len(grid), len(expected))
	}
	for i, cell := range grid {
		if cell.Number != i+1 || cell.State != expected[i] {
			t.Errorf("cell %d = %+v, expected number %d state %s", i, cell, i+1, expected[i])
		}
	}

	list, err := l.ListCheckbooks(assoc)
	if err != nil {
		t.Fatalf("ListCheckbooks() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("ListCheckbooks() returned %d, expected 1", len(list))
	}
	if list[0].Stats.Remaining != 4 || !list[0].Stats.LowStock {
		t.Errorf("summary stats = %+v, expected remaining 4 and low stock", list[0].Stats)
	}
}
