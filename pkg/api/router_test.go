package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/progmawarid-dot/association-najah-ass/pkg/db"
	"github.com/progmawarid-dot/association-najah-ass/pkg/ledger"
	"github.com/shopspring/decimal"
)

type testClient struct {
	t      *testing.T
	server *httptest.Server
}

func setupTestServer(t *testing.T) *testClient {
	t.Helper()

	conn, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts := ledger.DefaultOptions()
	opts.Logger = logger
	opts.Now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }

	server := httptest.NewServer(NewRouter(ledger.New(conn, opts), logger))
	t.Cleanup(server.Close)

	return &testClient{t: t, server: server}
}

// do sends a request and checks the status code. The response body is
// decoded into out when out is not nil.
func (c *testClient) do(method, path string, body interface{}, wantStatus int, out interface{}) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("Failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.server.URL+path, reader)
	if err != nil {
		c.t.Fatalf("Failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("Request %s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		c.t.Fatalf("%s %s: expected status %d, got %d: %s", method, path, wantStatus, resp.StatusCode, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			c.t.Fatalf("Failed to decode response: %v: %s", err, raw)
		}
	}
}

func (c *testClient) createAssociation() int64 {
	c.t.Helper()

	var resp struct {
		Association ledger.Association `json:"association"`
	}
	c.do(http.MethodPost, "/api/v1/associations", CreateAssociationRequest{Name: "Association Najah", FiscalYear: 2025}, http.StatusCreated, &resp)
	if resp.Association.ID == 0 {
		c.t.Fatal("Expected association id")
	}
	return resp.Association.ID
}

func TestHealth(t *testing.T) {
	c := setupTestServer(t)

	var resp map[string]string
	c.do(http.MethodGet, "/health", nil, http.StatusOK, &resp)
	if resp["status"] != "ok" {
		t.Errorf("Expected status ok, got %q", resp["status"])
	}
}

func TestAssociationDefaults(t *testing.T) {
	c := setupTestServer(t)
	id := c.createAssociation()

	var accounts struct {
		Accounts []ledger.Account `json:"accounts"`
	}
	c.do(http.MethodGet, fmt.Sprintf("/api/v1/associations/%d/accounts", id), nil, http.StatusOK, &accounts)
	if len(accounts.Accounts) != 2 {
		t.Errorf("Expected 2 accounts, got %d", len(accounts.Accounts))
	}

	var years struct {
		FiscalYears []ledger.FiscalYear `json:"fiscal_years"`
	}
	c.do(http.MethodGet, fmt.Sprintf("/api/v1/associations/%d/fiscal-years", id), nil, http.StatusOK, &years)
	if len(years.FiscalYears) != 1 || !years.FiscalYears[0].IsActive || years.FiscalYears[0].Year != 2025 {
		t.Errorf("Expected active fiscal year 2025, got %+v", years.FiscalYears)
	}

	var number struct {
		DocumentNumber string `json:"document_number"`
	}
	c.do(http.MethodGet, fmt.Sprintf("/api/v1/associations/%d/document-numbers/income-receipt", id), nil, http.StatusOK, &number)
	if number.DocumentNumber != "REC-001/25" {
		t.Errorf("Expected REC-001/25, got %q", number.DocumentNumber)
	}
}

func TestIncomeAndBalance(t *testing.T) {
	c := setupTestServer(t)
	id := c.createAssociation()

	var created struct {
		Income ledger.IncomeTransaction `json:"income"`
	}
	c.do(http.MethodPost, fmt.Sprintf("/api/v1/associations/%d/income", id), map[string]interface{}{
		"date":           "2025-01-15",
		"description":    "Cotisations",
		"amount":         "1000",
		"payment_method": "cash",
	}, http.StatusCreated, &created)
	if !strings.HasPrefix(created.Income.ReferenceNumber, "REC-") {
		t.Errorf("Expected REC reference, got %q", created.Income.ReferenceNumber)
	}

	c.do(http.MethodPost, fmt.Sprintf("/api/v1/associations/%d/income", id), map[string]interface{}{
		"date":           "2025-01-20",
		"description":    "Subvention",
		"amount":         "3000",
		"payment_method": "bank",
	}, http.StatusCreated, nil)

	var balance struct {
		Balance ledger.Balance `json:"balance"`
	}
	c.do(http.MethodGet, fmt.Sprintf("/api/v1/associations/%d/balance", id), nil, http.StatusOK, &balance)
	if !balance.Balance.CashBalance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected cash balance 1000, got %s", balance.Balance.CashBalance)
	}
	if !balance.Balance.BankBalance.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("Expected bank balance 3000, got %s", balance.Balance.BankBalance)
	}
	if !balance.Balance.TotalBalance.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("Expected total balance 4000, got %s", balance.Balance.TotalBalance)
	}

	var cash struct {
		Rows []ledger.CashTransaction `json:"cash_transactions"`
	}
	c.do(http.MethodGet, fmt.Sprintf("/api/v1/associations/%d/cash-transactions", id), nil, http.StatusOK, &cash)
	if len(cash.Rows) != 1 || cash.Rows[0].MovementType != "receipt" {
		t.Errorf("Expected one cash receipt, got %+v", cash.Rows)
	}

	c.do(http.MethodDelete, fmt.Sprintf("/api/v1/income/%d", created.Income.ID), nil, http.StatusNoContent, nil)
	c.do(http.MethodGet, fmt.Sprintf("/api/v1/associations/%d/balance", id), nil, http.StatusOK, &balance)
	if !balance.Balance.CashBalance.IsZero() {
		t.Errorf("Expected cash balance 0 after delete, got %s", balance.Balance.CashBalance)
	}
}

func TestErrorStatuses(t *testing.T) {
	c := setupTestServer(t)
	id := c.createAssociation()

	var expense struct {
		Expense ledger.ExpenseTransaction `json:"expense"`
	}
	c.do(http.MethodPost, fmt.Sprintf("/api/v1/associations/%d/expenses", id), map[string]interface{}{
		"date":           "2025-02-01",
		"description":    "Fournitures",
		"amount":         "200",
		"payment_method": "cash",
	}, http.StatusCreated, &expense)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{
			name:   "non-positive income amount",
			method: http.MethodPost,
			path:   fmt.Sprintf("/api/v1/associations/%d/income", id),
			body:   map[string]interface{}{"date": "2025-01-15", "amount": "0", "payment_method": "cash"},
			status: http.StatusBadRequest,
		},
		{
			name:   "malformed date",
			method: http.MethodPost,
			path:   fmt.Sprintf("/api/v1/associations/%d/income", id),
			body:   map[string]interface{}{"date": "15/01/2025", "amount": "10", "payment_method": "cash"},
			status: http.StatusBadRequest,
		},
		{
			name:   "non-numeric id",
			method: http.MethodGet,
			path:   "/api/v1/income/abc",
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown document kind",
			method: http.MethodGet,
			path:   fmt.Sprintf("/api/v1/associations/%d/document-numbers/invoice", id),
			status: http.StatusBadRequest,
		},
		{
			name:   "missing income",
			method: http.MethodGet,
			path:   "/api/v1/income/999",
			status: http.StatusNotFound,
		},
		{
			name:   "missing association",
			method: http.MethodGet,
			path:   "/api/v1/associations/999/balance",
			status: http.StatusNotFound,
		},
		{
			name:   "pay before authorisation",
			method: http.MethodPost,
			path:   fmt.Sprintf("/api/v1/expenses/%d/pay-cash", expense.Expense.ID),
			status: http.StatusConflict,
		},
		{
			name:   "pay by check without a check",
			method: http.MethodPost,
			path:   fmt.Sprintf("/api/v1/expenses/%d/pay-bank", expense.Expense.ID),
			body:   StageRequest{Date: "2025-02-05"},
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp ErrorResponse
			c.do(tt.method, tt.path, tt.body, tt.status, &resp)
			if resp.Error == "" {
				t.Error("Expected error code in response")
			}
		})
	}
}

func TestExpenseStagesAndJournal(t *testing.T) {
	c := setupTestServer(t)
	id := c.createAssociation()

	c.do(http.MethodPost, fmt.Sprintf("/api/v1/associations/%d/income", id), map[string]interface{}{
		"date":           "2025-01-15",
		"amount":         "1000",
		"payment_method": "cash",
	}, http.StatusCreated, nil)

	var expense struct {
		Expense ledger.ExpenseTransaction `json:"expense"`
	}
	c.do(http.MethodPost, fmt.Sprintf("/api/v1/associations/%d/expenses", id), map[string]interface{}{
		"date":           "2025-02-01",
		"description":    "Fournitures",
		"amount":         "200",
		"payment_method": "cash",
	}, http.StatusCreated, &expense)
	expenseID := expense.Expense.ID

	c.do(http.MethodPost, fmt.Sprintf("/api/v1/expenses/%d/authorize", expenseID), StageRequest{Date: "2025-02-02"}, http.StatusOK, &expense)
	if !strings.HasPrefix(expense.Expense.OpNumber, "OP-") {
		t.Errorf("Expected OP number, got %q", expense.Expense.OpNumber)
	}
	if expense.Expense.ServiceStatus != ledger.ServiceDone {
		t.Errorf("Expected service done, got %q", expense.Expense.ServiceStatus)
	}

	c.do(http.MethodPost, fmt.Sprintf("/api/v1/expenses/%d/pay-cash", expenseID), StageRequest{Date: "2025-02-03"}, http.StatusOK, &expense)
	if expense.Expense.PaymentStatus != ledger.PaymentPaid {
		t.Errorf("Expected paid, got %q", expense.Expense.PaymentStatus)
	}
	if !strings.HasPrefix(expense.Expense.BCNumber, "BC-") {
		t.Errorf("Expected BC number, got %q", expense.Expense.BCNumber)
	}

	var journal struct {
		Entries []ledger.JournalEntry `json:"entries"`
	}
	c.do(http.MethodGet, fmt.Sprintf("/api/v1/associations/%d/journal?fiscal_year=2025", id), nil, http.StatusOK, &journal)
	if len(journal.Entries) != 2 {
		t.Fatalf("Expected 2 journal entries, got %d", len(journal.Entries))
	}
	last := journal.Entries[1]
	if last.Direction != ledger.Credit || last.OperationNumber != 2 {
		t.Errorf("Unexpected last entry: %+v", last)
	}
	if !last.BalanceAfter.Equal(decimal.NewFromInt(800)) {
		t.Errorf("Expected running balance 800, got %s", last.BalanceAfter)
	}

	resp, err := http.Get(fmt.Sprintf("%s/api/v1/associations/%d/journal.xlsx", c.server.URL, id))
	if err != nil {
		t.Fatalf("Workbook request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("Unexpected content type %q", ct)
	}
	data, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Error("Expected a zip container")
	}
}

func TestCheckbookEndpoints(t *testing.T) {
	c := setupTestServer(t)
	id := c.createAssociation()

	var created struct {
		Checkbook ledger.Checkbook `json:"checkbook"`
	}
	c.do(http.MethodPost, fmt.Sprintf("/api/v1/associations/%d/checkbooks", id), CreateCheckbookRequest{
		BankAccountName: "Compte principal",
		SeriesName:      "A",
		StartNumber:     500,
		EndNumber:       550,
		AlertThreshold:  5,
	}, http.StatusCreated, &created)
	cbID := created.Checkbook.ID

	var expense struct {
		Expense ledger.ExpenseTransaction `json:"expense"`
	}
	c.do(http.MethodPost, fmt.Sprintf("/api/v1/associations/%d/expenses", id), map[string]interface{}{
		"date":           "2025-02-01",
		"amount":         "300",
		"payment_method": "bank",
	}, http.StatusCreated, &expense)
	c.do(http.MethodPost, fmt.Sprintf("/api/v1/expenses/%d/authorize", expense.Expense.ID), nil, http.StatusOK, nil)
	c.do(http.MethodPost, fmt.Sprintf("/api/v1/expenses/%d/pay-bank", expense.Expense.ID), StageRequest{
		Date:        "2025-02-04",
		CheckbookID: cbID,
		CheckNumber: "500",
	}, http.StatusOK, nil)

	var status struct {
		State ledger.CheckState `json:"state"`
	}
	c.do(http.MethodGet, fmt.Sprintf("/api/v1/checkbooks/%d/checks/500", cbID), nil, http.StatusOK, &status)
	if status.State != ledger.CheckUsed {
		t.Errorf("Expected check 500 used, got %q", status.State)
	}

	c.do(http.MethodPost, fmt.Sprintf("/api/v1/checkbooks/%d/checks/501/cancel", cbID), CancelCheckRequest{Reason: "Erreur de montant", Date: "2025-02-05"}, http.StatusCreated, nil)
	c.do(http.MethodPost, fmt.Sprintf("/api/v1/checkbooks/%d/checks/500/cancel", cbID), CancelCheckRequest{Reason: "Double"}, http.StatusConflict, nil)

	var detail struct {
		Stats ledger.CheckbookStats `json:"stats"`
	}
	c.do(http.MethodGet, fmt.Sprintf("/api/v1/checkbooks/%d", cbID), nil, http.StatusOK, &detail)
	if detail.Stats.Total != 51 || detail.Stats.Used != 1 || detail.Stats.Cancelled != 1 || detail.Stats.Remaining != 49 {
		t.Errorf("Unexpected stats: %+v", detail.Stats)
	}

	var grid struct {
		Checks []ledger.CheckCell `json:"checks"`
	}
	c.do(http.MethodGet, fmt.Sprintf("/api/v1/checkbooks/%d/checks", cbID), nil, http.StatusOK, &grid)
	if len(grid.Checks) != 51 {
		t.Errorf("Expected 51 cells, got %d", len(grid.Checks))
	}
}
