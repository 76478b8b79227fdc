package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"outlay/internal/blob"
	"outlay/internal/chart"
	"outlay/internal/core"
	"outlay/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st := store.New(blob.NewMemoryStore(), core.StorageKey, nil)
	st.Load(context.Background())
	srv := NewServer(":0", st, Options{Renderer: chart.NewRenderer(240)})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, st
}

func postForm(srv *Server, path string, form url.Values) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func expenseForm(desc, amount, category, date string) url.Values {
	return url.Values{
		"description": {desc},
		"amount":      {amount},
		"category":    {category},
		"date":        {date},
	}
}

func TestIndexAndHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("index status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "expense-form") {
		t.Fatalf("index body missing expense form")
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		srv.Handler.ServeHTTP(rr, req)
		if rr.Code != 200 {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestSubmitExpenseValidationAndSuccess(t *testing.T) {
	srv, st := newTestServer(t)

	// Wrong method
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/expenses", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}

	// Invalid amount
	rr = postForm(srv, "/expenses", expenseForm("Coffee", "abc", "Food", "2024-03-01"))
	if rr.Code != 422 {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	if st.Len() != 0 {
		t.Fatal("rejected submission must not mutate the collection")
	}

	// Zero amount
	rr = postForm(srv, "/expenses", expenseForm("Coffee", "0", "Food", "2024-03-01"))
	if rr.Code != 422 {
		t.Fatalf("expected 422 for zero amount, got %d", rr.Code)
	}

	// Missing description
	rr = postForm(srv, "/expenses", expenseForm("   ", "1.23", "Food", "2024-03-01"))
	if rr.Code != 422 {
		t.Fatalf("expected 422, got %d", rr.Code)
	}

	// Success
	rr = postForm(srv, "/expenses", expenseForm("Coffee", "3.50", "Food", "2024-03-01"))
	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "success") {
		t.Fatalf("expected success in body: %s", rr.Body.String())
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), "expenses:changed") {
		t.Fatalf("expected expenses:changed trigger, got %q", rr.Header().Get("HX-Trigger"))
	}
	if st.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", st.Len())
	}

	items := st.Items()
	if items[0].Amount != 3.50 {
		t.Errorf("Amount = %v, want 3.50", items[0].Amount)
	}
	if items[0].ID == "" {
		t.Error("Record must be assigned an id")
	}
}

func TestSubmitExpenseRoundsAmount(t *testing.T) {
	srv, st := newTestServer(t)

	rr := postForm(srv, "/expenses", expenseForm("Edge", "19.005", "Misc", "2024-03-01"))
	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := st.Items()[0].Amount; got != 19.01 {
		t.Errorf("Amount = %v, want 19.01 (half-up on the third decimal)", got)
	}
}

func TestDeleteExpense(t *testing.T) {
	srv, st := newTestServer(t)
	postForm(srv, "/expenses", expenseForm("Coffee", "3.50", "Food", "2024-03-01"))
	id := st.Items()[0].ID

	rr := postForm(srv, "/expenses/delete", url.Values{"id": {id}})
	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if st.Len() != 0 {
		t.Fatalf("expected empty collection, got %d records", st.Len())
	}

	// Deleting again is a no-op, not an error
	rr = postForm(srv, "/expenses/delete", url.Values{"id": {id}})
	if rr.Code != 200 {
		t.Fatalf("expected 200 for repeat delete, got %d", rr.Code)
	}

	// Missing id is a client error
	rr = postForm(srv, "/expenses/delete", url.Values{})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing id, got %d", rr.Code)
	}
}

func TestEditFlow(t *testing.T) {
	srv, st := newTestServer(t)
	postForm(srv, "/expenses", expenseForm("Coffee", "3.50", "Food", "2024-03-01"))
	id := st.Items()[0].ID

	// Start editing: form comes back prefilled
	rr := postForm(srv, "/expenses/edit", url.Values{"id": {id}})
	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Coffee") {
		t.Fatalf("edit form not prefilled: %s", rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "Update Expense") {
		t.Fatalf("edit form missing update affordance: %s", rr.Body.String())
	}

	// Submitting applies the change to the existing record
	rr = postForm(srv, "/expenses", expenseForm("Espresso", "4.00", "Food", "2024-03-01"))
	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if st.Len() != 1 {
		t.Fatalf("update must not add a record, got %d", st.Len())
	}
	got, _ := st.Get(id)
	if got.Description != "Espresso" || got.Amount != 4.00 {
		t.Errorf("record = %+v, want updated description and amount", got)
	}

	// Edit mode ended: next submission adds a new record
	postForm(srv, "/expenses", expenseForm("Rent", "850", "Housing", "2024-03-02"))
	if st.Len() != 2 {
		t.Fatalf("expected 2 records after post-edit submission, got %d", st.Len())
	}
}

func TestEditUnknownID(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := postForm(srv, "/expenses/edit", url.Values{"id": {"missing"}})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestCancelEdit(t *testing.T) {
	srv, st := newTestServer(t)
	postForm(srv, "/expenses", expenseForm("Coffee", "3.50", "Food", "2024-03-01"))
	id := st.Items()[0].ID
	postForm(srv, "/expenses/edit", url.Values{"id": {id}})

	rr := postForm(srv, "/expenses/cancel-edit", url.Values{})
	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "Update Expense") {
		t.Fatal("cancel must return the form to add mode")
	}

	// The record keeps its stored values
	got, _ := st.Get(id)
	if got.Description != "Coffee" {
		t.Errorf("cancel must not modify the record, got %+v", got)
	}

	// Next submission adds instead of updating
	postForm(srv, "/expenses", expenseForm("Rent", "850", "Housing", "2024-03-02"))
	if st.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", st.Len())
	}
}

func TestDeleteWhileEditingExitsEditMode(t *testing.T) {
	srv, st := newTestServer(t)
	postForm(srv, "/expenses", expenseForm("Coffee", "3.50", "Food", "2024-03-01"))
	id := st.Items()[0].ID
	postForm(srv, "/expenses/edit", url.Values{"id": {id}})

	postForm(srv, "/expenses/delete", url.Values{"id": {id}})

	// Submission after the delete must create, not update a ghost
	postForm(srv, "/expenses", expenseForm("Rent", "850", "Housing", "2024-03-02"))
	if st.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", st.Len())
	}
	if st.Items()[0].Description != "Rent" {
		t.Errorf("unexpected record %+v", st.Items()[0])
	}
}

func TestLedgerChangeDropsStaleEdit(t *testing.T) {
	mem := blob.NewMemoryStore()
	st := store.New(mem, core.StorageKey, nil)
	st.Load(context.Background())
	srv := NewServer(":0", st, Options{})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	postForm(srv, "/expenses", expenseForm("Coffee", "3.50", "Food", "2024-03-01"))
	id := st.Items()[0].ID
	postForm(srv, "/expenses/edit", url.Values{"id": {id}})

	// Another writer empties the ledger behind this instance's back.
	other := store.New(mem, core.StorageKey, nil)
	other.Load(context.Background())
	other.Delete(context.Background(), id)

	srv.HandleLedgerChange(context.Background())

	if st.Len() != 0 {
		t.Fatalf("expected reloaded empty collection, got %d", st.Len())
	}
	if got := srv.editState.Current(); got != "" {
		t.Errorf("edit state = %q, want cleared after external delete", got)
	}
}

func TestUIPartials(t *testing.T) {
	srv, _ := newTestServer(t)
	postForm(srv, "/expenses", expenseForm("Coffee", "3.50", "Food", "2024-03-01"))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ui/expenses", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("/ui/expenses status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Coffee") {
		t.Fatalf("table partial missing record: %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ui/summary", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("/ui/summary status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "$3.50") {
		t.Fatalf("summary missing total: %s", body)
	}
	if !strings.Contains(body, "<svg") {
		t.Fatalf("summary missing chart: %s", body)
	}
}

func TestSummaryWithoutRenderer(t *testing.T) {
	st := store.New(blob.NewMemoryStore(), core.StorageKey, nil)
	st.Load(context.Background())
	srv := NewServer(":0", st, Options{})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	postForm(srv, "/expenses", expenseForm("Coffee", "3.50", "Food", "2024-03-01"))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ui/summary", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("/ui/summary status=%d", rr.Code)
	}
	body := rr.Body.String()
	if strings.Contains(body, "<svg") {
		t.Fatal("summary must not contain a chart when the renderer is disabled")
	}
	if !strings.Contains(body, "Chart unavailable") {
		t.Fatalf("summary missing fallback message: %s", body)
	}
}
