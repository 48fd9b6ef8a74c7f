package ledger

import (
	"github.com/progmawarid-dot/association-najah-ass/pkg/db"
	"github.com/shopspring/decimal"
)

// CurrentBalance derives the cash and bank balances of an association from
// its registers. Stored balance snapshots are not consulted.
func (l *Ledger) CurrentBalance(associationID int64) (*Balance, error) {
	if err := associationExists(l.conn, associationID); err != nil {
		return nil, err
	}
	cash, err := cashBalance(l.conn, associationID)
	if err != nil {
		return nil, err
	}
	bank, err := bankBalance(l.conn, associationID)
	if err != nil {
		return nil, err
	}
	return &Balance{
		CashBalance:  cash,
		BankBalance:  bank,
		TotalBalance: cash.Add(bank),
	}, nil
}

func signedCash(movementType string, amount decimal.Decimal) decimal.Decimal {
	if movementType == MovementReceipt {
		return amount
	}
	return amount.Neg()
}

func signedBank(movementType string, amount decimal.Decimal) decimal.Decimal {
	if movementType == MovementDeposit {
		return amount
	}
	return amount.Neg()
}

func cashBalance(q db.Querier, associationID int64) (decimal.Decimal, error) {
	return registerBalance(q, `SELECT movement_type, amount FROM cash_transactions WHERE association_id = ?`,
		associationID, signedCash)
}

func bankBalance(q db.Querier, associationID int64) (decimal.Decimal, error) {
	return registerBalance(q, `SELECT movement_type, amount FROM bank_transactions WHERE association_id = ?`,
		associationID, signedBank)
}

// registerBalance sums rows in decimal; SQL SUM over REAL would drift.
func registerBalance(q db.Querier, query string, associationID int64, sign func(string, decimal.Decimal) decimal.Decimal) (decimal.Decimal, error) {
	rows, err := q.Query(query, associationID)
	if err != nil {
		return decimal.Zero, storageError("sum register", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var movement string
		var amount decimal.Decimal
		if err := rows.Scan(&movement, &amount); err != nil {
			return decimal.Zero, storageError("scan register row", err)
		}
		total = total.Add(sign(movement, amount))
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, storageError("sum register", err)
	}
	return total, nil
}
