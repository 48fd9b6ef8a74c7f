package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/progmawarid-dot/association-najah-ass/pkg/ledger"
)

var errMissingCheck = fmt.Errorf("%w: checkbook_id and check_number are required", ledger.ErrValidation)

// transactionFilter reads income and expense listing filters from the query.
func transactionFilter(w http.ResponseWriter, r *http.Request) (ledger.TransactionFilter, bool) {
	year, ok := queryInt(w, r, "fiscal_year")
	if !ok {
		return ledger.TransactionFilter{}, false
	}
	fieldID, ok := queryInt(w, r, "field_id")
	if !ok {
		return ledger.TransactionFilter{}, false
	}
	q := r.URL.Query()
	return ledger.TransactionFilter{
		FiscalYear:    year,
		StartDate:     q.Get("start_date"),
		EndDate:       q.Get("end_date"),
		FieldID:       int64(fieldID),
		PaymentMethod: q.Get("payment_method"),
		PaymentStatus: q.Get("payment_status"),
	}, true
}

// IncomeHandler handles income endpoints.
type IncomeHandler struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

// NewIncomeHandler creates a new IncomeHandler.
func NewIncomeHandler(l *ledger.Ledger, logger *slog.Logger) *IncomeHandler {
	return &IncomeHandler{ledger: l, logger: logger}
}

// List handles GET /api/v1/associations/{id}/income.
func (h *IncomeHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	filter, ok := transactionFilter(w, r)
	if !ok {
		return
	}
	income, err := h.ledger.ListIncome(id, filter)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"income": income})
}

// Create handles POST /api/v1/associations/{id}/income.
func (h *IncomeHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in ledger.IncomeInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.AssociationID = id

	inc, err := h.ledger.PostIncome(in)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"income": inc})
}

// Get handles GET /api/v1/income/{id}.
func (h *IncomeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	inc, err := h.ledger.GetIncome(id)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"income": inc})
}

// Delete handles DELETE /api/v1/income/{id}.
func (h *IncomeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.ledger.DeleteIncome(id); err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExpensesHandler handles expense endpoints.
type ExpensesHandler struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

// NewExpensesHandler creates a new ExpensesHandler.
func NewExpensesHandler(l *ledger.Ledger, logger *slog.Logger) *ExpensesHandler {
	return &ExpensesHandler{ledger: l, logger: logger}
}

// StageRequest is the body of the expense staging endpoints.
type StageRequest struct {
	Date        string `json:"date"`
	CheckbookID int64  `json:"checkbook_id,omitempty"`
	CheckNumber string `json:"check_number,omitempty"`
}

// List handles GET /api/v1/associations/{id}/expenses.
func (h *ExpensesHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	filter, ok := transactionFilter(w, r)
	if !ok {
		return
	}
	expenses, err := h.ledger.ListExpenses(id, filter)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"expenses": expenses})
}

// Create handles POST /api/v1/associations/{id}/expenses.
func (h *ExpensesHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in ledger.ExpenseInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.AssociationID = id

	e, err := h.ledger.PostExpense(in)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"expense": e})
}

// Get handles GET /api/v1/expenses/{id}.
func (h *ExpensesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	e, err := h.ledger.GetExpense(id)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"expense": e})
}

// Update handles PUT /api/v1/expenses/{id}.
func (h *ExpensesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in ledger.ExpenseInput
	if !decodeJSON(w, r, &in) {
		return
	}

	e, err := h.ledger.UpdateExpense(id, in)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"expense": e})
}

// Delete handles DELETE /api/v1/expenses/{id}.
func (h *ExpensesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.ledger.DeleteExpense(id); err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Authorize handles POST /api/v1/expenses/{id}/authorize.
func (h *ExpensesHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	h.stage(w, r, func(id int64, req StageRequest) (*ledger.ExpenseTransaction, error) {
		return h.ledger.AuthorizeExpense(id, req.Date)
	})
}

// PayCash handles POST /api/v1/expenses/{id}/pay-cash.
func (h *ExpensesHandler) PayCash(w http.ResponseWriter, r *http.Request) {
	h.stage(w, r, func(id int64, req StageRequest) (*ledger.ExpenseTransaction, error) {
		return h.ledger.PayExpenseCash(id, req.Date)
	})
}

// PayBank handles POST /api/v1/expenses/{id}/pay-bank.
func (h *ExpensesHandler) PayBank(w http.ResponseWriter, r *http.Request) {
	h.stage(w, r, func(id int64, req StageRequest) (*ledger.ExpenseTransaction, error) {
		if req.CheckbookID == 0 || req.CheckNumber == "" {
			return nil, errMissingCheck
		}
		return h.ledger.PayExpenseBank(id, req.CheckbookID, req.CheckNumber, req.Date)
	})
}

func (h *ExpensesHandler) stage(w http.ResponseWriter, r *http.Request, fn func(int64, StageRequest) (*ledger.ExpenseTransaction, error)) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req StageRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	e, err := fn(id, req)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"expense": e})
}
