package http

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"outlay/internal/chart"
	"outlay/internal/core"
	"outlay/internal/log"
	"outlay/internal/view"
)

// formData feeds the expense form partial.
type formData struct {
	Editing     bool
	ID          string
	Description string
	Category    string
	Amount      string
	Date        string
}

// tableData feeds the expense table partial.
type tableData struct {
	Rows  []view.Row
	Count int
}

type summaryRow struct {
	Category string
	Amount   string
	Percent  string
	Color    string
}

// summaryData feeds the summary partial. ChartSVG is empty when the
// chart is disabled or there is nothing to draw; ChartMessage explains
// the gap.
type summaryData struct {
	Total        string
	Rows         []summaryRow
	ChartSVG     template.HTML
	ChartMessage string
}

type indexData struct {
	Form    formData
	Table   tableData
	Summary summaryData
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(health)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.store == nil {
		checks["store"] = "not_configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = map[string]interface{}{
			"status":  "ok",
			"records": s.store.Len(),
		}
	}

	checks["cache"] = map[string]interface{}{
		"svg_entries": s.svgCache.Size(),
		"status":      "ok",
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(response)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			log.FieldComponent, log.ComponentTemplate)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	items := s.store.Items()
	data := indexData{
		Form:    s.currentFormData(),
		Table:   s.tableDataFor(items),
		Summary: s.summaryDataFor(items),
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Index template execution failed",
			log.FieldError, err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleExpenseTable renders the expense table partial.
func (s *Server) handleExpenseTable(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	data := s.tableDataFor(s.store.Items())
	if s.templates == nil {
		fmt.Fprintf(w, `<section id="expense-table"><div class="placeholder">%d expenses</div></section>`, data.Count)
		return
	}
	if err := s.templates.ExecuteTemplate(w, "expense_table.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution error",
			log.FieldError, err, "template", "expense_table.html")
		_, _ = w.Write([]byte(`<section id="expense-table"><div class="placeholder">Error rendering expenses</div></section>`))
	}
}

// handleSummary renders the total and category breakdown partial.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	data := s.summaryDataFor(s.store.Items())
	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="summary"><div class="placeholder">Total: ` + data.Total + `</div></section>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "summary.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution error",
			log.FieldError, err, "template", "summary.html")
		_, _ = w.Write([]byte(`<section id="summary"><div class="placeholder">Error rendering summary</div></section>`))
	}
}

// currentFormData builds the form state: prefilled when a record is under
// edit, blank otherwise. An edit whose record disappeared falls back to
// add mode.
func (s *Server) currentFormData() formData {
	id := s.editState.Current()
	if id == "" {
		return formData{}
	}
	rec, ok := s.store.Get(id)
	if !ok {
		s.editState.Clear()
		return formData{}
	}
	return formData{
		Editing:     true,
		ID:          rec.ID,
		Description: rec.Description,
		Category:    rec.Category,
		Amount:      strconv.FormatFloat(rec.Amount, 'f', 2, 64),
		Date:        view.FormatDateForInput(rec.Date),
	}
}

func (s *Server) tableDataFor(items []core.Expense) tableData {
	rows := view.Rows(items, s.editState.Current())
	return tableData{Rows: rows, Count: len(rows)}
}

func (s *Server) summaryDataFor(items []core.Expense) summaryData {
	total := view.Total(items)
	buckets := view.CategoryTotals(items)

	data := summaryData{Total: view.FormatCurrency(total)}
	for i, b := range buckets {
		data.Rows = append(data.Rows, summaryRow{
			Category: b.Category,
			Amount:   view.FormatCurrency(b.Amount),
			Percent:  view.Percent(b.Amount, total),
			Color:    chart.SliceColor(i),
		})
	}

	switch {
	case s.renderer == nil:
		data.ChartMessage = "Chart unavailable"
	case len(buckets) == 0:
		data.ChartMessage = "No expenses recorded yet"
	default:
		data.ChartSVG = template.HTML(s.renderPie(buckets))
		if data.ChartSVG == "" {
			data.ChartMessage = "No expenses recorded yet"
		}
	}

	return data
}

// renderPie draws the breakdown, memoizing the SVG per fingerprint so
// repeated summary refreshes with unchanged data skip the geometry work.
func (s *Server) renderPie(buckets []view.CategoryTotal) string {
	data := make([]chart.Datum, 0, len(buckets))
	for _, b := range buckets {
		data = append(data, chart.Datum{Label: b.Category, Value: b.Amount})
	}

	key := chart.Fingerprint(data)
	if svg, found := s.svgCache.Get(key); found {
		return svg
	}

	svg := s.renderer.Render(data)
	s.svgCache.Set(key, svg)
	return svg
}
