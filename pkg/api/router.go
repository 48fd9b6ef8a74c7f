package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/progmawarid-dot/association-najah-ass/pkg/ledger"
)

// NewRouter returns the HTTP handler serving the ledger under /api/v1.
func NewRouter(l *ledger.Ledger, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	associations := NewAssociationsHandler(l, logger)
	reports := NewReportsHandler(l, logger)
	income := NewIncomeHandler(l, logger)
	expenses := NewExpensesHandler(l, logger)
	registers := NewRegistersHandler(l, logger)
	checkbooks := NewCheckbooksHandler(l, logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/associations", associations.List)
		r.Post("/associations", associations.Create)

		r.Route("/associations/{id}", func(r chi.Router) {
			r.Delete("/", associations.Delete)
			r.Get("/fiscal-years", associations.ListFiscalYears)
			r.Post("/fiscal-years/{year}/activate", associations.ActivateFiscalYear)
			r.Get("/accounts", associations.ListAccounts)
			r.Get("/payment-methods", associations.ListPaymentMethods)
			r.Get("/income-fields", associations.ListIncomeFields)
			r.Get("/expense-fields", associations.ListExpenseFields)
			r.Get("/document-numbers/{kind}", associations.NextDocumentNumber)

			r.Get("/balance", reports.Balance)
			r.Get("/summary", reports.Summary)
			r.Get("/field-totals", reports.FieldTotals)
			r.Get("/journal", reports.Journal)
			r.Get("/journal.xlsx", reports.JournalWorkbook)

			r.Get("/income", income.List)
			r.Post("/income", income.Create)
			r.Get("/expenses", expenses.List)
			r.Post("/expenses", expenses.Create)
			r.Get("/cash-transactions", registers.ListCash)
			r.Post("/cash-transactions", registers.CreateCash)
			r.Get("/bank-transactions", registers.ListBank)
			r.Post("/bank-transactions", registers.CreateBank)
			r.Get("/checkbooks", checkbooks.List)
			r.Post("/checkbooks", checkbooks.Create)
		})

		r.Route("/income/{id}", func(r chi.Router) {
			r.Get("/", income.Get)
			r.Delete("/", income.Delete)
		})

		r.Route("/expenses/{id}", func(r chi.Router) {
			r.Get("/", expenses.Get)
			r.Put("/", expenses.Update)
			r.Delete("/", expenses.Delete)
			r.Post("/authorize", expenses.Authorize)
			r.Post("/pay-cash", expenses.PayCash)
			r.Post("/pay-bank", expenses.PayBank)
		})

		r.Delete("/cash-transactions/{id}", registers.DeleteCash)
		r.Delete("/bank-transactions/{id}", registers.DeleteBank)

		r.Route("/checkbooks/{id}", func(r chi.Router) {
			r.Get("/", checkbooks.Get)
			r.Get("/checks", checkbooks.Grid)
			r.Get("/checks/{number}", checkbooks.Status)
			r.Post("/checks/{number}/cancel", checkbooks.Cancel)
		})
	})

	return r
}
