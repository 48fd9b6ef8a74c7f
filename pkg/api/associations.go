package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/progmawarid-dot/association-najah-ass/pkg/ledger"
)

// AssociationsHandler handles association setup endpoints.
type AssociationsHandler struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

// NewAssociationsHandler creates a new AssociationsHandler.
func NewAssociationsHandler(l *ledger.Ledger, logger *slog.Logger) *AssociationsHandler {
	return &AssociationsHandler{ledger: l, logger: logger}
}

// CreateAssociationRequest is the body of POST /api/v1/associations.
type CreateAssociationRequest struct {
	Name       string `json:"name"`
	FiscalYear int    `json:"fiscal_year"`
}

// List handles GET /api/v1/associations.
func (h *AssociationsHandler) List(w http.ResponseWriter, r *http.Request) {
	associations, err := h.ledger.ListAssociations()
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"associations": associations})
}

// Create handles POST /api/v1/associations.
func (h *AssociationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAssociationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	a, err := h.ledger.CreateAssociation(req.Name, req.FiscalYear)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"association": a})
}

// Delete handles DELETE /api/v1/associations/{id}.
func (h *AssociationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.ledger.DeleteAssociation(id); err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListFiscalYears handles GET /api/v1/associations/{id}/fiscal-years.
func (h *AssociationsHandler) ListFiscalYears(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	years, err := h.ledger.ListFiscalYears(id)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"fiscal_years": years})
}

// ActivateFiscalYear handles POST /api/v1/associations/{id}/fiscal-years/{year}/activate.
func (h *AssociationsHandler) ActivateFiscalYear(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid year")
		return
	}

	if err := h.ledger.ActivateFiscalYear(id, year); err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	fy, err := h.ledger.ActiveFiscalYear(id)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"fiscal_year": fy})
}

// ListAccounts handles GET /api/v1/associations/{id}/accounts.
func (h *AssociationsHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	accounts, err := h.ledger.ListAccounts(id)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"accounts": accounts})
}

// ListPaymentMethods handles GET /api/v1/associations/{id}/payment-methods.
func (h *AssociationsHandler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	methods, err := h.ledger.ListPaymentMethods(id)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"payment_methods": methods})
}

// ListIncomeFields handles GET /api/v1/associations/{id}/income-fields.
func (h *AssociationsHandler) ListIncomeFields(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	fields, err := h.ledger.ListIncomeFields(id)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"income_fields": fields})
}

// ListExpenseFields handles GET /api/v1/associations/{id}/expense-fields.
func (h *AssociationsHandler) ListExpenseFields(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	fields, err := h.ledger.ListExpenseFields(id)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"expense_fields": fields})
}

// NextDocumentNumber handles GET /api/v1/associations/{id}/document-numbers/{kind}?year=.
// The year defaults to the active fiscal year.
func (h *AssociationsHandler) NextDocumentNumber(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	kind, err := ledger.ParseDocumentKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	year, ok := queryInt(w, r, "year")
	if !ok {
		return
	}
	if year == 0 {
		fy, err := h.ledger.ActiveFiscalYear(id)
		if err != nil {
			writeLedgerError(w, h.logger, err)
			return
		}
		year = fy.Year
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"kind":            kind,
		"year":            year,
		"document_number": h.ledger.NextDocumentNumber(kind, year, id),
	})
}
