package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/progmawarid-dot/association-najah-ass/pkg/export"
	"github.com/progmawarid-dot/association-najah-ass/pkg/ledger"
)

// ReportsHandler handles balance, journal and report endpoints.
type ReportsHandler struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(l *ledger.Ledger, logger *slog.Logger) *ReportsHandler {
	return &ReportsHandler{ledger: l, logger: logger}
}

// Balance handles GET /api/v1/associations/{id}/balance.
func (h *ReportsHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	balance, err := h.ledger.CurrentBalance(id)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"balance": balance})
}

// Summary handles GET /api/v1/associations/{id}/summary?fiscal_year=.
func (h *ReportsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	year, ok := queryInt(w, r, "fiscal_year")
	if !ok {
		return
	}
	summary, err := h.ledger.Summary(id, year)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"summary": summary})
}

// FieldTotals handles GET /api/v1/associations/{id}/field-totals?start_date=&end_date=.
func (h *ReportsHandler) FieldTotals(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	q := r.URL.Query()
	totals, err := h.ledger.FieldTotals(id, q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"field_totals": totals})
}

// Journal handles GET /api/v1/associations/{id}/journal.
func (h *ReportsHandler) Journal(w http.ResponseWriter, r *http.Request) {
	id, filter, ok := journalRequest(w, r)
	if !ok {
		return
	}
	entries, err := h.ledger.DailyJournal(id, filter)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// JournalWorkbook handles GET /api/v1/associations/{id}/journal.xlsx.
// It accepts the same filters as Journal.
func (h *ReportsHandler) JournalWorkbook(w http.ResponseWriter, r *http.Request) {
	id, filter, ok := journalRequest(w, r)
	if !ok {
		return
	}
	entries, err := h.ledger.DailyJournal(id, filter)
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"journal-%d.xlsx\"", id))
	if err := export.WriteJournal(w, entries); err != nil {
		h.logger.Error("failed to write journal workbook", "association_id", id, "error", err)
	}
}

func journalRequest(w http.ResponseWriter, r *http.Request) (int64, ledger.JournalFilter, bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return 0, ledger.JournalFilter{}, false
	}
	year, ok := queryInt(w, r, "fiscal_year")
	if !ok {
		return 0, ledger.JournalFilter{}, false
	}
	q := r.URL.Query()
	return id, ledger.JournalFilter{
		FiscalYear:     year,
		StartDate:      q.Get("start_date"),
		EndDate:        q.Get("end_date"),
		OperationType:  q.Get("operation_type"),
		SourceRegister: q.Get("source_register"),
	}, true
}
