package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/progmawarid-dot/association-najah-ass/pkg/ledger"
)

// CheckbooksHandler handles checkbook endpoints.
type CheckbooksHandler struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

// NewCheckbooksHandler creates a new CheckbooksHandler.
func NewCheckbooksHandler(l *ledger.Ledger, logger *slog.Logger) *CheckbooksHandler {
	return &CheckbooksHandler{ledger: l, logger: logger}
}

// CreateCheckbookRequest is the body of POST /api/v1/associations/{id}/checkbooks.
type CreateCheckbookRequest struct {
	BankAccountName string `json:"bank_account_name"`
	SeriesName      string `json:"series_name"`
	StartNumber     int    `json:"start_number"`
	EndNumber       int    `json:"end_number"`
	AlertThreshold  int    `json:"alert_threshold"`
}

// CancelCheckRequest is the body of POST /api/v1/checkbooks/{id}/checks/{number}/cancel.
type CancelCheckRequest struct {
	Reason string `json:"reason"`
	Date   string `json:"date"`
}

// List handles GET /api/v1/associations/{id}/checkbooks.
func (h *CheckbooksHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	checkbooks, err := h.ledger.ListCheckbooks(id)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"checkbooks": checkbooks})
}

// Create handles POST /api/v1/associations/{id}/checkbooks.
func (h *CheckbooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req CreateCheckbookRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cb, err := h.ledger.RegisterCheckbook(id, req.BankAccountName, req.SeriesName, req.StartNumber, req.EndNumber, req.AlertThreshold)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"checkbook": cb})
}

// Get handles GET /api/v1/checkbooks/{id}.
func (h *CheckbooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	cb, err := h.ledger.GetCheckbook(id)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	stats, err := h.ledger.Stats(id)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"checkbook": cb, "stats": stats})
}

// Grid handles GET /api/v1/checkbooks/{id}/checks.
func (h *CheckbooksHandler) Grid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	cells, err := h.ledger.CheckGrid(id)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"checks": cells})
}

// Status handles GET /api/v1/checkbooks/{id}/checks/{number}.
func (h *CheckbooksHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, number, ok := checkParams(w, r)
	if !ok {
		return
	}
	state, err := h.ledger.CheckStatus(id, number)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"number": number, "state": state})
}

// Cancel handles POST /api/v1/checkbooks/{id}/checks/{number}/cancel.
func (h *CheckbooksHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, number, ok := checkParams(w, r)
	if !ok {
		return
	}
	var req CancelCheckRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cc, err := h.ledger.CancelCheck(id, number, req.Reason, req.Date)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"cancelled_check": cc})
}

func checkParams(w http.ResponseWriter, r *http.Request) (int64, int, bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return 0, 0, false
	}
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid check number")
		return 0, 0, false
	}
	return id, number, true
}
