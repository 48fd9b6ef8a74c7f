package api

import (
	"log/slog"
	"net/http"

	"github.com/progmawarid-dot/association-najah-ass/pkg/ledger"
)

// RegistersHandler handles direct cash and bank register endpoints.
type RegistersHandler struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

// NewRegistersHandler creates a new RegistersHandler.
func NewRegistersHandler(l *ledger.Ledger, logger *slog.Logger) *RegistersHandler {
	return &RegistersHandler{ledger: l, logger: logger}
}

func registerFilter(w http.ResponseWriter, r *http.Request) (ledger.RegisterFilter, bool) {
	year, ok := queryInt(w, r, "fiscal_year")
	if !ok {
		return ledger.RegisterFilter{}, false
	}
	q := r.URL.Query()
	return ledger.RegisterFilter{
		FiscalYear:   year,
		StartDate:    q.Get("start_date"),
		EndDate:      q.Get("end_date"),
		MovementType: q.Get("movement_type"),
	}, true
}

// ListCash handles GET /api/v1/associations/{id}/cash-transactions.
func (h *RegistersHandler) ListCash(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	filter, ok := registerFilter(w, r)
	if !ok {
		return
	}
	rows, err := h.ledger.ListCashTransactions(id, filter)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"cash_transactions": rows})
}

// CreateCash handles POST /api/v1/associations/{id}/cash-transactions.
func (h *RegistersHandler) CreateCash(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in ledger.CashInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.AssociationID = id

	row, err := h.ledger.AddCashTransaction(in)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"cash_transaction": row})
}

// DeleteCash handles DELETE /api/v1/cash-transactions/{id}.
func (h *RegistersHandler) DeleteCash(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.ledger.DeleteCashTransaction(id); err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListBank handles GET /api/v1/associations/{id}/bank-transactions.
func (h *RegistersHandler) ListBank(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	filter, ok := registerFilter(w, r)
	if !ok {
		return
	}
	rows, err := h.ledger.ListBankTransactions(id, filter)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bank_transactions": rows})
}

// CreateBank handles POST /api/v1/associations/{id}/bank-transactions.
func (h *RegistersHandler) CreateBank(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in ledger.BankInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.AssociationID = id

	row, err := h.ledger.AddBankTransaction(in)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"bank_transaction": row})
}

// DeleteBank handles DELETE /api/v1/bank-transactions/{id}.
func (h *RegistersHandler) DeleteBank(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.ledger.DeleteBankTransaction(id); err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
