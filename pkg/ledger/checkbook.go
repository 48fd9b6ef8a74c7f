package ledger

import (
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/progmawarid-dot/association-najah-ass/pkg/db"
)

// DefaultAlertThreshold is used when a checkbook is registered without one.
const DefaultAlertThreshold = 5

// CheckState is the state of one check number of a checkbook.
// Every number is in exactly one state.
type CheckState string

const (
	CheckAvailable CheckState = "available"
	CheckUsed      CheckState = "used"
	CheckCancelled CheckState = "cancelled"
)

// CheckbookStats summarises the usage of a checkbook.
type CheckbookStats struct {
	Total     int  `json:"total"`
	Used      int  `json:"used"`
	Cancelled int  `json:"cancelled"`
	Remaining int  `json:"remaining"`
	LowStock  bool `json:"low_stock"`
}

// CheckbookSummary is a checkbook with its stats.
type CheckbookSummary struct {
	Checkbook
	Stats CheckbookStats `json:"stats"`
}

// CheckCell is one number of the check grid.
type CheckCell struct {
	Number int        `json:"number"`
	State  CheckState `json:"state"`
}

// RegisterCheckbook records a new checkbook covering [start, end].
// A non-positive alertThreshold selects DefaultAlertThreshold.
func (l *Ledger) RegisterCheckbook(associationID int64, bankAccountName, seriesName string, start, end, alertThreshold int) (*Checkbook, error) {
	seriesName = strings.TrimSpace(seriesName)
	if seriesName == "" {
		return nil, validationError("series name is required")
	}
	if start < 0 {
		return nil, validationError("start number must not be negative")
	}
	if end < start {
		return nil, validationError("end number %d is before start number %d", end, start)
	}
	if alertThreshold <= 0 {
		alertThreshold = DefaultAlertThreshold
	}

	cb := Checkbook{
		AssociationID:   associationID,
		BankAccountName: bankAccountName,
		SeriesName:      seriesName,
		StartNumber:     start,
		EndNumber:       end,
		AlertThreshold:  alertThreshold,
		IsActive:        true,
		CreatedAt:       l.now().Format(time.RFC3339),
	}

	err := l.mutate("register-checkbook", func(tx *sql.Tx) error {
		if err := associationExists(tx, associationID); err != nil {
			return err
		}
		res, err := tx.Exec(`
			INSERT INTO checkbooks (association_id, bank_account_name, series_name, start_number, end_number, alert_threshold, is_active, created_at)
			VALUES (?, ?, ?, ?, ?, ?, 1, ?)
		`, cb.AssociationID, cb.BankAccountName, cb.SeriesName, cb.StartNumber, cb.EndNumber, cb.AlertThreshold, cb.CreatedAt)
		if err != nil {
			return storageError("insert checkbook", err)
		}
		cb.ID, err = res.LastInsertId()
		if err != nil {
			return storageError("read checkbook id", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &cb, nil
}

// GetCheckbook returns a checkbook by id.
func (l *Ledger) GetCheckbook(id int64) (*Checkbook, error) {
	return getCheckbook(l.conn, id)
}

func getCheckbook(q db.Querier, id int64) (*Checkbook, error) {
	var cb Checkbook
	err := q.QueryRow(`
		SELECT id, association_id, COALESCE(bank_account_name, ''), series_name, start_number, end_number,
		       alert_threshold, is_active, COALESCE(created_at, '')
		FROM checkbooks WHERE id = ?
	`, id).Scan(&cb.ID, &cb.AssociationID, &cb.BankAccountName, &cb.SeriesName, &cb.StartNumber, &cb.EndNumber,
		&cb.AlertThreshold, &cb.IsActive, &cb.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, notFound("checkbook", id)
	}
	if err != nil {
		return nil, storageError("get checkbook", err)
	}
	return &cb, nil
}

// ListCheckbooks returns the checkbooks of an association with their stats.
func (l *Ledger) ListCheckbooks(associationID int64) ([]CheckbookSummary, error) {
	rows, err := l.conn.Query(`SELECT id FROM checkbooks WHERE association_id = ? ORDER BY id`, associationID)
	if err != nil {
		return nil, storageError("list checkbooks", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, storageError("scan checkbook id", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, storageError("list checkbooks", err)
	}

	out := make([]CheckbookSummary, 0, len(ids))
	for _, id := range ids {
		cb, err := l.GetCheckbook(id)
		if err != nil {
			return nil, err
		}
		stats, err := checkbookStats(l.conn, cb)
		if err != nil {
			return nil, err
		}
		out = append(out, CheckbookSummary{Checkbook: *cb, Stats: *stats})
	}
	return out, nil
}

// CheckStatus reports whether a check number is available, used or cancelled.
func (l *Ledger) CheckStatus(checkbookID int64, number int) (CheckState, error) {
	cb, err := l.GetCheckbook(checkbookID)
	if err != nil {
		return "", err
	}
	return checkStatus(l.conn, cb, number)
}

func checkStatus(q db.Querier, cb *Checkbook, number int) (CheckState, error) {
	return checkStatusExcluding(q, cb, number, 0)
}

// checkStatusExcluding ignores the usage made by expense excludeExpenseID
// and its register row, so an expense being edited can keep its own check.
func checkStatusExcluding(q db.Querier, cb *Checkbook, number int, excludeExpenseID int64) (CheckState, error) {
	if number < cb.StartNumber || number > cb.EndNumber {
		return "", validationError("check %d is outside checkbook range %d-%d", number, cb.StartNumber, cb.EndNumber)
	}
	n := strconv.Itoa(number)

	var used int
	err := q.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM bank_transactions
			 WHERE checkbook_id = ? AND check_number = ? AND (linked_expense_id IS NULL OR linked_expense_id <> ?)) +
			(SELECT COUNT(*) FROM expense_transactions
			 WHERE checkbook_id = ? AND check_number = ? AND payment_method = 'bank' AND payment_status = 'paye' AND id <> ?)
	`, cb.ID, n, excludeExpenseID, cb.ID, n, excludeExpenseID).Scan(&used)
	if err != nil {
		return "", storageError("check usage", err)
	}
	if used > 0 {
		return CheckUsed, nil
	}

	var cancelled int
	err = q.QueryRow(`SELECT COUNT(*) FROM cancelled_checks WHERE checkbook_id = ? AND check_number = ?`, cb.ID, n).Scan(&cancelled)
	if err != nil {
		return "", storageError("check cancellation", err)
	}
	if cancelled > 0 {
		return CheckCancelled, nil
	}
	return CheckAvailable, nil
}

// CancelCheck voids an available check.
func (l *Ledger) CancelCheck(checkbookID int64, number int, reason, date string) (*CancelledCheck, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, validationError("cancellation reason is required")
	}
	if date == "" {
		date = l.today()
	}
	if err := validateDate("cancellation date", date); err != nil {
		return nil, err
	}

	var cc CancelledCheck
	err := l.mutate("cancel-check", func(tx *sql.Tx) error {
		cb, err := getCheckbook(tx, checkbookID)
		if err != nil {
			return err
		}
		state, err := checkStatus(tx, cb, number)
		if err != nil {
			return err
		}
		if state != CheckAvailable {
			return invalidState("check %d of checkbook %d is %s", number, checkbookID, state)
		}

		res, err := tx.Exec(`
			INSERT INTO cancelled_checks (association_id, checkbook_id, check_number, cancellation_reason, cancellation_date)
			VALUES (?, ?, ?, ?, ?)
		`, cb.AssociationID, cb.ID, strconv.Itoa(number), reason, date)
		if err != nil {
			return storageError("insert cancelled check", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return storageError("read cancelled check id", err)
		}
		cc = CancelledCheck{
			ID:                 id,
			AssociationID:      cb.AssociationID,
			CheckbookID:        cb.ID,
			CheckNumber:        number,
			CancellationReason: reason,
			CancellationDate:   date,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("check cancelled", "checkbook_id", checkbookID, "check_number", number)
	return &cc, nil
}

// Stats returns total, used, cancelled and remaining counts of a checkbook.
// LowStock is set when remaining <= alert threshold; acting on it is up to
// the caller.
func (l *Ledger) Stats(checkbookID int64) (*CheckbookStats, error) {
	cb, err := l.GetCheckbook(checkbookID)
	if err != nil {
		return nil, err
	}
	return checkbookStats(l.conn, cb)
}

func checkbookStats(q db.Querier, cb *Checkbook) (*CheckbookStats, error) {
	used, cancelled, err := checkSets(q, cb)
	if err != nil {
		return nil, err
	}

	total := cb.EndNumber - cb.StartNumber + 1
	s := &CheckbookStats{
		Total:     total,
		Used:      len(used),
		Cancelled: len(cancelled),
	}
	s.Remaining = s.Total - s.Used - s.Cancelled
	s.LowStock = s.Remaining <= cb.AlertThreshold
	return s, nil
}

// CheckGrid returns the state of every number of a checkbook in order.
func (l *Ledger) CheckGrid(checkbookID int64) ([]CheckCell, error) {
	cb, err := l.GetCheckbook(checkbookID)
	if err != nil {
		return nil, err
	}
	used, cancelled, err := checkSets(l.conn, cb)
	if err != nil {
		return nil, err
	}

	cells := make([]CheckCell, 0, cb.EndNumber-cb.StartNumber+1)
	for n := cb.StartNumber; n <= cb.EndNumber; n++ {
		state := CheckAvailable
		if used[n] {
			state = CheckUsed
		} else if cancelled[n] {
			state = CheckCancelled
		}
		cells = append(cells, CheckCell{Number: n, State: state})
	}
	return cells, nil
}

// checkSets returns the used and cancelled numbers within the checkbook range.
func checkSets(q db.Querier, cb *Checkbook) (used, cancelled map[int]bool, err error) {
	used, err = numberSet(q, `
		SELECT check_number FROM bank_transactions WHERE checkbook_id = ? AND check_number <> ''
		UNION
		SELECT check_number FROM expense_transactions
		WHERE checkbook_id = ? AND check_number <> '' AND payment_method = 'bank' AND payment_status = 'paye'
	`, cb, cb.ID, cb.ID)
	if err != nil {
		return nil, nil, err
	}

	cancelled, err = numberSet(q, `SELECT check_number FROM cancelled_checks WHERE checkbook_id = ?`, cb, cb.ID)
	if err != nil {
		return nil, nil, err
	}
	return used, cancelled, nil
}

func numberSet(q db.Querier, query string, cb *Checkbook, args ...interface{}) (map[int]bool, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, storageError("list check numbers", err)
	}
	defer rows.Close()

	set := make(map[int]bool)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, storageError("scan check number", err)
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < cb.StartNumber || n > cb.EndNumber {
			continue
		}
		set[n] = true
	}
	return set, rows.Err()
}

// claimCheck validates that a check of a checkbook can be used by a bank
// payment of associationID and returns its canonical form. Usage by
// expense excludeExpenseID is ignored.
func claimCheck(q db.Querier, associationID, checkbookID int64, checkNumber string, excludeExpenseID int64) (string, error) {
	cb, err := getCheckbook(q, checkbookID)
	if err != nil {
		return "", err
	}
	if cb.AssociationID != associationID {
		return "", validationError("checkbook %d does not belong to association %d", checkbookID, associationID)
	}
	n, err := strconv.Atoi(strings.TrimSpace(checkNumber))
	if err != nil {
		return "", validationError("check number %q is not numeric", checkNumber)
	}
	state, err := checkStatusExcluding(q, cb, n, excludeExpenseID)
	if err != nil {
		return "", err
	}
	if state != CheckAvailable {
		return "", invalidState("check %d of checkbook %d is %s", n, checkbookID, state)
	}
	return strconv.Itoa(n), nil
}
