// Package ledger implements the association bookkeeping core: document
// numbering, checkbooks, income and expense postings into the cash and
// bank registers, derived balances and the daily operations journal.
package ledger

import (
	"github.com/shopspring/decimal"
)

// AccountType is the register a payment settles into.
type AccountType string

const (
	AccountCash AccountType = "cash"
	AccountBank AccountType = "bank"
)

func (t AccountType) valid() bool {
	return t == AccountCash || t == AccountBank
}

// ServiceStatus tracks the ordonnancement stage of an expense.
type ServiceStatus string

const (
	ServiceInProgress ServiceStatus = "encours"
	ServiceDone       ServiceStatus = "fait"
)

// PaymentStatus tracks the paiement stage of an expense.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "non_paye"
	PaymentPaid   PaymentStatus = "paye"
)

// Cash register movement types.
const (
	MovementReceipt = "receipt"
	MovementPayment = "payment"
)

// Bank register movement types.
const (
	MovementDeposit    = "deposit"
	MovementWithdrawal = "withdrawal"
)

// Cash voucher document types.
const (
	DocumentReceiptVoucher = "receipt_voucher"
	DocumentCashVoucher    = "cash_voucher"
)

// InvoiceType is the supporting document of an expense.
type InvoiceType string

const (
	InvoiceInvoice   InvoiceType = "invoice"
	InvoiceBon       InvoiceType = "bon"
	InvoiceStatement InvoiceType = "statement"
)

// Association is the top-level tenant owning all other records.
type Association struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FiscalYear belongs to an association; one is active at a time.
type FiscalYear struct {
	ID            int64 `json:"id"`
	AssociationID int64 `json:"association_id"`
	Year          int   `json:"year"`
	IsActive      bool  `json:"is_active"`
}

// Account is a cash or bank account. CurrentBalance is refreshed after
// each posting and is only a display hint; CurrentBalance() is authoritative.
type Account struct {
	ID             int64           `json:"id"`
	AssociationID  int64           `json:"association_id"`
	NameAr         string          `json:"name_ar"`
	Type           AccountType     `json:"type"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

// PaymentMethod maps a label to a register.
type PaymentMethod struct {
	ID            int64       `json:"id"`
	AssociationID int64       `json:"association_id"`
	Name          string      `json:"name"`
	NameAr        string      `json:"name_ar"`
	AccountType   AccountType `json:"account_type"`
}

// Field is an income or expense category.
type Field struct {
	ID            int64  `json:"id"`
	AssociationID int64  `json:"association_id"`
	Name          string `json:"name"`
	NameAr        string `json:"name_ar"`
}

// IncomeTransaction is a recorded income.
type IncomeTransaction struct {
	ID              int64           `json:"id"`
	AssociationID   int64           `json:"association_id"`
	Date            string          `json:"date"`
	Description     string          `json:"description"`
	IncomeFieldID   *int64          `json:"income_field_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   AccountType     `json:"payment_method"`
	ReferenceNumber string          `json:"reference_number"`
	Notes           string          `json:"notes"`
}

// ExpenseTransaction is an expense filled in over three stages:
// engagement, ordonnancement (OpNumber) and paiement (BCNumber or CheckNumber).
type ExpenseTransaction struct {
	ID                 int64           `json:"id"`
	AssociationID      int64           `json:"association_id"`
	Date               string          `json:"date"`
	Description        string          `json:"description"`
	ExpenseFieldID     *int64          `json:"expense_field_id,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
	PaymentMethod      AccountType     `json:"payment_method"`
	ServiceStatus      ServiceStatus   `json:"service_status"`
	PaymentStatus      PaymentStatus   `json:"payment_status"`
	OpNumber           string          `json:"op_number"`
	OpDate             string          `json:"op_date"`
	BCNumber           string          `json:"bc_number"`
	BLNumber           string          `json:"bl_number"`
	CheckNumber        string          `json:"check_number"`
	CheckbookID        *int64          `json:"checkbook_id,omitempty"`
	InvoiceType        InvoiceType     `json:"invoice_type"`
	InvoiceNumber      string          `json:"invoice_number"`
	BeneficiaryName    string          `json:"beneficiary_name"`
	BeneficiaryCIN     string          `json:"beneficiary_cin"`
	BeneficiaryVehicle string          `json:"beneficiary_vehicle"`
	Notes              string          `json:"notes"`
	ReferenceNumber    string          `json:"reference_number"`
}

// CashTransaction is a cash register row. BalanceAfter is the register
// balance right after posting and is a display hint only.
type CashTransaction struct {
	ID              int64           `json:"id"`
	AssociationID   int64           `json:"association_id"`
	Date            string          `json:"transaction_date"`
	OperationLabel  string          `json:"operation_label"`
	MovementType    string          `json:"movement_type"`
	Amount          decimal.Decimal `json:"amount"`
	DocumentType    string          `json:"document_type"`
	DocumentNumber  string          `json:"document_number"`
	LinkedIncomeID  *int64          `json:"linked_income_id,omitempty"`
	LinkedExpenseID *int64          `json:"linked_expense_id,omitempty"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	Notes           string          `json:"notes"`
}

// BankTransaction is a bank register row.
type BankTransaction struct {
	ID              int64           `json:"id"`
	AssociationID   int64           `json:"association_id"`
	Date            string          `json:"transaction_date"`
	OperationLabel  string          `json:"operation_label"`
	MovementType    string          `json:"movement_type"`
	Amount          decimal.Decimal `json:"amount"`
	CheckNumber     string          `json:"check_number"`
	CheckbookID     *int64          `json:"checkbook_id,omitempty"`
	PaymentMethodID *int64          `json:"payment_method_id,omitempty"`
	LinkedIncomeID  *int64          `json:"linked_income_id,omitempty"`
	LinkedExpenseID *int64          `json:"linked_expense_id,omitempty"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	Notes           string          `json:"notes"`
}

// Checkbook is a numbered range of checks.
type Checkbook struct {
	ID              int64  `json:"id"`
	AssociationID   int64  `json:"association_id"`
	BankAccountName string `json:"bank_account_name"`
	SeriesName      string `json:"series_name"`
	StartNumber     int    `json:"start_number"`
	EndNumber       int    `json:"end_number"`
	AlertThreshold  int    `json:"alert_threshold"`
	IsActive        bool   `json:"is_active"`
	CreatedAt       string `json:"created_at"`
}

// CancelledCheck records a voided check of a checkbook.
type CancelledCheck struct {
	ID                 int64  `json:"id"`
	AssociationID      int64  `json:"association_id"`
	CheckbookID        int64  `json:"checkbook_id"`
	CheckNumber        int    `json:"check_number"`
	CancellationReason string `json:"cancellation_reason"`
	CancellationDate   string `json:"cancellation_date"`
}

// Balance is the derived balance of an association.
type Balance struct {
	CashBalance  decimal.Decimal `json:"cash_balance"`
	BankBalance  decimal.Decimal `json:"bank_balance"`
	TotalBalance decimal.Decimal `json:"total_balance"`
}
