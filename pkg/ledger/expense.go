package ledger

import (
	"database/sql"

	"github.com/progmawarid-dot/association-najah-ass/pkg/db"
	"github.com/shopspring/decimal"
)

// ExpenseInput holds the fields of an expense at any stage. The statuses
// are normalised from the stage numbers: an order number marks the service
// done, a check number on a bank expense or a payment voucher on an
// authorised cash expense marks it paid.
type ExpenseInput struct {
	AssociationID      int64           `json:"association_id"`
	Date               string          `json:"date"`
	Description        string          `json:"description"`
	ExpenseFieldID     *int64          `json:"expense_field_id,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
	PaymentMethod      AccountType     `json:"payment_method"`
	ServiceStatus      ServiceStatus   `json:"service_status,omitempty"`
	PaymentStatus      PaymentStatus   `json:"payment_status,omitempty"`
	OpNumber           string          `json:"op_number"`
	OpDate             string          `json:"op_date"`
	BCNumber           string          `json:"bc_number"`
	BLNumber           string          `json:"bl_number"`
	CheckNumber        string          `json:"check_number"`
	CheckbookID        *int64          `json:"checkbook_id,omitempty"`
	InvoiceType        InvoiceType     `json:"invoice_type,omitempty"`
	InvoiceNumber      string          `json:"invoice_number"`
	BeneficiaryName    string          `json:"beneficiary_name"`
	BeneficiaryCIN     string          `json:"beneficiary_cin"`
	BeneficiaryVehicle string          `json:"beneficiary_vehicle"`
	Notes              string          `json:"notes"`
	ReferenceNumber    string          `json:"reference_number"`
}

func (in ExpenseInput) validate() error {
	if err := validateDate("date", in.Date); err != nil {
		return err
	}
	if err := validateOptionalDate("op date", in.OpDate); err != nil {
		return err
	}
	if in.Amount.IsNegative() {
		return validationError("amount must not be negative")
	}
	if !in.PaymentMethod.valid() {
		return validationError("payment method must be cash or bank, got %q", in.PaymentMethod)
	}
	switch in.ServiceStatus {
	case "", ServiceInProgress, ServiceDone:
	default:
		return validationError("unknown service status %q", in.ServiceStatus)
	}
	switch in.PaymentStatus {
	case "", PaymentUnpaid, PaymentPaid:
	default:
		return validationError("unknown payment status %q", in.PaymentStatus)
	}
	switch in.InvoiceType {
	case "", InvoiceInvoice, InvoiceBon, InvoiceStatement:
	default:
		return validationError("unknown invoice type %q", in.InvoiceType)
	}
	if in.CheckbookID != nil && in.PaymentMethod != AccountBank {
		return validationError("a checkbook applies to bank expenses only")
	}
	return nil
}

// expense builds the row for in with normalised statuses.
func (in ExpenseInput) expense() (*ExpenseTransaction, error) {
	e := &ExpenseTransaction{
		AssociationID:      in.AssociationID,
		Date:               in.Date,
		Description:        in.Description,
		ExpenseFieldID:     in.ExpenseFieldID,
		Amount:             in.Amount,
		PaymentMethod:      in.PaymentMethod,
		ServiceStatus:      in.ServiceStatus,
		PaymentStatus:      in.PaymentStatus,
		OpNumber:           in.OpNumber,
		OpDate:             in.OpDate,
		BCNumber:           in.BCNumber,
		BLNumber:           in.BLNumber,
		CheckNumber:        in.CheckNumber,
		CheckbookID:        in.CheckbookID,
		InvoiceType:        in.InvoiceType,
		InvoiceNumber:      in.InvoiceNumber,
		BeneficiaryName:    in.BeneficiaryName,
		BeneficiaryCIN:     in.BeneficiaryCIN,
		BeneficiaryVehicle: in.BeneficiaryVehicle,
		Notes:              in.Notes,
		ReferenceNumber:    in.ReferenceNumber,
	}
	if err := normalizeStages(e); err != nil {
		return nil, err
	}
	return e, nil
}

func normalizeStages(e *ExpenseTransaction) error {
	if e.ServiceStatus == "" {
		e.ServiceStatus = ServiceInProgress
	}
	if e.PaymentStatus == "" {
		e.PaymentStatus = PaymentUnpaid
	}

	if e.OpNumber != "" {
		if !e.Amount.IsPositive() {
			return invalidState("an expense order needs an amount greater than zero")
		}
		e.ServiceStatus = ServiceDone
		if e.OpDate == "" {
			e.OpDate = e.Date
		}
	}

	switch e.PaymentMethod {
	case AccountBank:
		if e.CheckNumber != "" {
			e.PaymentStatus = PaymentPaid
		}
	case AccountCash:
		if e.BCNumber != "" && e.OpNumber != "" {
			e.PaymentStatus = PaymentPaid
		}
	}
	if e.PaymentStatus == PaymentPaid && !e.Amount.IsPositive() {
		return invalidState("a paid expense needs an amount greater than zero")
	}
	return nil
}

// PostExpense records an expense. A paid cash expense posts a payment voucher
// into the cash register; a paid bank expense posts a withdrawal into the
// bank register when bank mirroring is enabled. A check taken from a
// checkbook must be available.
func (l *Ledger) PostExpense(in ExpenseInput) (*ExpenseTransaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	e, err := in.expense()
	if err != nil {
		return nil, err
	}

	err = l.mutate("post-expense", func(tx *sql.Tx) error {
		if err := associationExists(tx, e.AssociationID); err != nil {
			return err
		}
		if err := l.prepareCheck(tx, e, 0); err != nil {
			return err
		}
		l.assignVoucher(tx, e)

		res, err := tx.Exec(`
			INSERT INTO expense_transactions (association_id, date, description, expense_field_id, amount,
				payment_method, service_status, payment_status, op_number, op_date, bc_number, bl_number,
				check_number, checkbook_id, invoice_type, invoice_number, beneficiary_name, beneficiary_cin,
				beneficiary_vehicle, notes, reference_number)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, expenseArgs(e)...)
		if err != nil {
			return storageError("insert expense", err)
		}
		if e.ID, err = res.LastInsertId(); err != nil {
			return storageError("read expense id", err)
		}

		if err := l.postExpenseRow(tx, e); err != nil {
			return err
		}
		return syncAccountBalances(tx, e.AssociationID)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Debug("expense posted", "id", e.ID, "association_id", e.AssociationID,
		"amount", e.Amount.String(), "payment_status", e.PaymentStatus)
	return e, nil
}

// UpdateExpense replaces the fields of an expense in place. The amount is
// locked once an order number exists. Stage fields left blank keep their
// stored values: the order number and date, and on a paid expense settled
// through the same method the voucher, check and checkbook. Un-paying
// takes an explicit non_paye payment status.
//
// Register rows derived from the expense are rebuilt. A payment posted on
// its own date by PayExpenseCash or PayExpenseBank keeps that date.
func (l *Ledger) UpdateExpense(id int64, in ExpenseInput) (*ExpenseTransaction, error) {
	var e *ExpenseTransaction
	err := l.mutate("update-expense", func(tx *sql.Tx) error {
		old, err := getExpense(tx, id)
		if err != nil {
			return err
		}

		in.AssociationID = old.AssociationID
		if old.OpNumber != "" {
			if !in.Amount.Equal(old.Amount) {
				return invalidState("expense %d is authorised (%s); its amount is locked", id, old.OpNumber)
			}
			if in.OpNumber == "" {
				in.OpNumber, in.OpDate = old.OpNumber, old.OpDate
			}
		}
		keepPaymentStage(&in, old)

		paymentDate, err := linkedRowDate(tx, "linked_expense_id", id)
		if err != nil {
			return err
		}
		if err := in.validate(); err != nil {
			return err
		}
		if e, err = in.expense(); err != nil {
			return err
		}
		e.ID = id

		if err := deleteLinkedRows(tx, "linked_expense_id", id); err != nil {
			return err
		}
		if err := l.prepareCheck(tx, e, id); err != nil {
			return err
		}
		l.assignVoucher(tx, e)

		if paymentDate == "" || paymentDate == old.Date {
			paymentDate = e.Date
		}
		if err := updateExpenseRow(tx, e); err != nil {
			return err
		}
		if err := l.postExpenseRowOn(tx, e, paymentDate); err != nil {
			return err
		}
		return syncAccountBalances(tx, e.AssociationID)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Debug("expense updated", "id", id)
	return e, nil
}

// AuthorizeExpense assigns the next expense order number to an expense and
// marks its service done. The amount must be greater than zero.
//
// The order sequence counts every expense dated in the order's year, the
// one being authorised included when it falls in that year. The first
// order of a year holding a single expense is therefore OP-002.
func (l *Ledger) AuthorizeExpense(id int64, date string) (*ExpenseTransaction, error) {
	if date == "" {
		date = l.today()
	}
	if err := validateDate("order date", date); err != nil {
		return nil, err
	}

	var e *ExpenseTransaction
	err := l.mutate("authorize-expense", func(tx *sql.Tx) error {
		var err error
		if e, err = getExpense(tx, id); err != nil {
			return err
		}
		if e.OpNumber != "" {
			return invalidState("expense %d already has order number %s", id, e.OpNumber)
		}
		if !e.Amount.IsPositive() {
			return invalidState("expense %d needs an amount greater than zero before authorisation", id)
		}

		e.OpNumber = l.nextDocumentNumber(tx, DocExpenseOrder, dateYear(date), e.AssociationID)
		e.OpDate = date
		e.ServiceStatus = ServiceDone
		return updateExpenseRow(tx, e)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("expense authorised", "id", id, "op_number", e.OpNumber)
	return e, nil
}

// PayExpenseCash pays an authorised cash expense: it assigns the next cash
// payment voucher number and posts the payment into the cash register.
func (l *Ledger) PayExpenseCash(id int64, date string) (*ExpenseTransaction, error) {
	if date == "" {
		date = l.today()
	}
	if err := validateDate("payment date", date); err != nil {
		return nil, err
	}

	var e *ExpenseTransaction
	err := l.mutate("pay-expense-cash", func(tx *sql.Tx) error {
		var err error
		if e, err = l.payable(tx, id, AccountCash); err != nil {
			return err
		}

		e.BCNumber = l.nextDocumentNumber(tx, DocCashPayment, dateYear(date), e.AssociationID)
		e.PaymentStatus = PaymentPaid
		if err := updateExpenseRow(tx, e); err != nil {
			return err
		}
		if err := l.postExpenseRowOn(tx, e, date); err != nil {
			return err
		}
		return syncAccountBalances(tx, e.AssociationID)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("expense paid in cash", "id", id, "bc_number", e.BCNumber)
	return e, nil
}

// PayExpenseBank pays an authorised bank expense with a check of a checkbook.
func (l *Ledger) PayExpenseBank(id, checkbookID int64, checkNumber, date string) (*ExpenseTransaction, error) {
	if date == "" {
		date = l.today()
	}
	if err := validateDate("payment date", date); err != nil {
		return nil, err
	}

	var e *ExpenseTransaction
	err := l.mutate("pay-expense-bank", func(tx *sql.Tx) error {
		var err error
		if e, err = l.payable(tx, id, AccountBank); err != nil {
			return err
		}

		n, err := claimCheck(tx, e.AssociationID, checkbookID, checkNumber, id)
		if err != nil {
			return err
		}
		e.CheckNumber = n
		e.CheckbookID = &checkbookID
		e.PaymentStatus = PaymentPaid
		if err := updateExpenseRow(tx, e); err != nil {
			return err
		}
		if err := l.postExpenseRowOn(tx, e, date); err != nil {
			return err
		}
		return syncAccountBalances(tx, e.AssociationID)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("expense paid by check", "id", id, "checkbook_id", checkbookID, "check_number", e.CheckNumber)
	return e, nil
}

// keepPaymentStage fills the payment fields in left blank from a paid
// expense settled through the same method.
func keepPaymentStage(in *ExpenseInput, old *ExpenseTransaction) {
	if old.PaymentStatus != PaymentPaid || in.PaymentMethod != old.PaymentMethod || in.PaymentStatus == PaymentUnpaid {
		return
	}
	if in.BCNumber == "" {
		in.BCNumber = old.BCNumber
	}
	if in.CheckNumber == "" && in.CheckbookID == nil {
		in.CheckNumber, in.CheckbookID = old.CheckNumber, old.CheckbookID
	}
	if in.PaymentStatus == "" {
		in.PaymentStatus = PaymentPaid
	}
}

// payable loads an expense that is authorised, unpaid and settled through method.
func (l *Ledger) payable(q db.Querier, id int64, method AccountType) (*ExpenseTransaction, error) {
	e, err := getExpense(q, id)
	if err != nil {
		return nil, err
	}
	if e.PaymentMethod != method {
		return nil, invalidState("expense %d is paid by %s, not %s", id, e.PaymentMethod, method)
	}
	if e.OpNumber == "" {
		return nil, invalidState("expense %d has no order number yet", id)
	}
	if e.PaymentStatus == PaymentPaid {
		return nil, invalidState("expense %d is already paid", id)
	}
	return e, nil
}

// prepareCheck claims the checkbook check of a paid bank expense.
func (l *Ledger) prepareCheck(q db.Querier, e *ExpenseTransaction, excludeExpenseID int64) error {
	if e.CheckbookID == nil || e.CheckNumber == "" {
		return nil
	}
	n, err := claimCheck(q, e.AssociationID, *e.CheckbookID, e.CheckNumber, excludeExpenseID)
	if err != nil {
		return err
	}
	e.CheckNumber = n
	return nil
}

// assignVoucher numbers a paid cash expense entered without a voucher.
func (l *Ledger) assignVoucher(q db.Querier, e *ExpenseTransaction) {
	if e.PaymentMethod == AccountCash && e.PaymentStatus == PaymentPaid && e.BCNumber == "" {
		e.BCNumber = l.nextDocumentNumber(q, DocCashPayment, dateYear(e.Date), e.AssociationID)
	}
}

func (l *Ledger) postExpenseRow(q db.Querier, e *ExpenseTransaction) error {
	return l.postExpenseRowOn(q, e, e.Date)
}

// postExpenseRowOn posts the register row of a paid expense dated date.
func (l *Ledger) postExpenseRowOn(q db.Querier, e *ExpenseTransaction, date string) error {
	if e.PaymentStatus != PaymentPaid {
		return nil
	}
	id := e.ID
	switch {
	case e.PaymentMethod == AccountCash:
		return insertCash(q, &CashTransaction{
			AssociationID:   e.AssociationID,
			Date:            date,
			OperationLabel:  e.Description,
			MovementType:    MovementPayment,
			Amount:          e.Amount,
			DocumentType:    DocumentCashVoucher,
			DocumentNumber:  e.BCNumber,
			LinkedExpenseID: &id,
		})
	case e.PaymentMethod == AccountBank && l.mirrorBank:
		return insertBank(q, &BankTransaction{
			AssociationID:   e.AssociationID,
			Date:            date,
			OperationLabel:  e.Description,
			MovementType:    MovementWithdrawal,
			Amount:          e.Amount,
			CheckNumber:     e.CheckNumber,
			CheckbookID:     e.CheckbookID,
			LinkedExpenseID: &id,
		})
	}
	return nil
}

// DeleteExpense deletes an expense together with its register rows.
func (l *Ledger) DeleteExpense(id int64) error {
	return l.mutate("delete-expense", func(tx *sql.Tx) error {
		e, err := getExpense(tx, id)
		if err != nil {
			return err
		}
		if err := deleteLinkedRows(tx, "linked_expense_id", id); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM expense_transactions WHERE id = ?`, id); err != nil {
			return storageError("delete expense", err)
		}
		return syncAccountBalances(tx, e.AssociationID)
	})
}

// GetExpense returns one expense.
func (l *Ledger) GetExpense(id int64) (*ExpenseTransaction, error) {
	return getExpense(l.conn, id)
}

// ListExpenses returns the expenses of an association, newest first.
func (l *Ledger) ListExpenses(associationID int64, f TransactionFilter) ([]ExpenseTransaction, error) {
	where, args, err := f.clauses("expense_field_id")
	if err != nil {
		return nil, err
	}
	if !isAll(f.PaymentStatus) {
		where += " AND payment_status = ?"
		args = append(args, f.PaymentStatus)
	}

	rows, err := l.conn.Query(`SELECT `+expenseColumns+` FROM expense_transactions WHERE association_id = ?`+where+`
		ORDER BY date DESC, id DESC`, append([]interface{}{associationID}, args...)...)
	if err != nil {
		return nil, storageError("list expenses", err)
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

const expenseColumns = `id, association_id, date, COALESCE(description, ''), expense_field_id, amount,
	payment_method, service_status, payment_status, COALESCE(op_number, ''), COALESCE(op_date, ''),
	COALESCE(bc_number, ''), COALESCE(bl_number, ''), COALESCE(check_number, ''), checkbook_id,
	COALESCE(invoice_type, ''), COALESCE(invoice_number, ''), COALESCE(beneficiary_name, ''),
	COALESCE(beneficiary_cin, ''), COALESCE(beneficiary_vehicle, ''), COALESCE(notes, ''),
	COALESCE(reference_number, '')`

func scanExpense(scan func(dest ...interface{}) error) (*ExpenseTransaction, error) {
	var e ExpenseTransaction
	var fieldID, checkbookID sql.NullInt64
	var method, service, payment, invoice string
	if err := scan(&e.ID, &e.AssociationID, &e.Date, &e.Description, &fieldID, &e.Amount,
		&method, &service, &payment, &e.OpNumber, &e.OpDate,
		&e.BCNumber, &e.BLNumber, &e.CheckNumber, &checkbookID,
		&invoice, &e.InvoiceNumber, &e.BeneficiaryName,
		&e.BeneficiaryCIN, &e.BeneficiaryVehicle, &e.Notes,
		&e.ReferenceNumber); err != nil {
		return nil, err
	}
	e.ExpenseFieldID = nullInt64Ptr(fieldID)
	e.CheckbookID = nullInt64Ptr(checkbookID)
	e.PaymentMethod = AccountType(method)
	e.ServiceStatus = ServiceStatus(service)
	e.PaymentStatus = PaymentStatus(payment)
	e.InvoiceType = InvoiceType(invoice)
	return &e, nil
}

func getExpense(q db.Querier, id int64) (*ExpenseTransaction, error) {
	e, err := scanExpense(q.QueryRow(`SELECT `+expenseColumns+` FROM expense_transactions WHERE id = ?`, id).Scan)
	if err == sql.ErrNoRows {
		return nil, notFound("expense", id)
	}
	if err != nil {
		return nil, storageError("get expense", err)
	}
	return e, nil
}

// expenseArgs returns the column values of e in insert order.
func expenseArgs(e *ExpenseTransaction) []interface{} {
	return []interface{}{
		e.AssociationID, e.Date, e.Description, e.ExpenseFieldID, e.Amount,
		string(e.PaymentMethod), string(e.ServiceStatus), string(e.PaymentStatus), e.OpNumber, e.OpDate, e.BCNumber, e.BLNumber,
		e.CheckNumber, e.CheckbookID, string(e.InvoiceType), e.InvoiceNumber, e.BeneficiaryName, e.BeneficiaryCIN,
		e.BeneficiaryVehicle, e.Notes, e.ReferenceNumber,
	}
}

func updateExpenseRow(q db.Querier, e *ExpenseTransaction) error {
	_, err := q.Exec(`
		UPDATE expense_transactions SET association_id = ?, date = ?, description = ?, expense_field_id = ?, amount = ?,
			payment_method = ?, service_status = ?, payment_status = ?, op_number = ?, op_date = ?, bc_number = ?, bl_number = ?,
			check_number = ?, checkbook_id = ?, invoice_type = ?, invoice_number = ?, beneficiary_name = ?, beneficiary_cin = ?,
			beneficiary_vehicle = ?, notes = ?, reference_number = ?
		WHERE id = ?
	`, append(expenseArgs(e), e.ID)...)
	if err != nil {
		return storageError("update expense", err)
	}
	return nil
}
