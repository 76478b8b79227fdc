// Package view derives everything the UI shows from the expense
// collection. Projections are pure functions over a snapshot: they never
// mutate records and never touch storage.
package view

import (
	"math"
	"strings"

	"outlay/internal/core"
)

// Uncategorized is the bucket for records whose category trims to empty.
const Uncategorized = "Uncategorized"

// Total sums the amounts of the collection, skipping values that are not
// finite numbers so one corrupt record cannot poison the figure.
func Total(items []core.Expense) float64 {
	var sum float64
	for _, e := range items {
		if math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) {
			continue
		}
		sum += e.Amount
	}
	return sum
}

// CategoryTotal is one aggregation bucket. Buckets keep the order in
// which their category was first encountered in the collection.
type CategoryTotal struct {
	Category string
	Amount   float64
}

// CategoryTotals groups amounts by category. Category names are compared
// after trimming surrounding whitespace but otherwise verbatim, so "Food"
// and "food" are distinct buckets.
func CategoryTotals(items []core.Expense) []CategoryTotal {
	var order []string
	sums := make(map[string]float64)
	for _, e := range items {
		if math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) {
			continue
		}
		cat := strings.TrimSpace(e.Category)
		if cat == "" {
			cat = Uncategorized
		}
		if _, seen := sums[cat]; !seen {
			order = append(order, cat)
		}
		sums[cat] += e.Amount
	}
	out := make([]CategoryTotal, 0, len(order))
	for _, cat := range order {
		out = append(out, CategoryTotal{Category: cat, Amount: sums[cat]})
	}
	return out
}

// Row is one table line ready for rendering.
type Row struct {
	ID          string
	Description string
	Category    string
	Amount      string
	Date        string
	Editing     bool
}

// Rows shapes the collection for the expense table. editingID marks the
// row currently open in the form, empty for none. Dates that do not parse
// are shown verbatim rather than reformatted.
func Rows(items []core.Expense, editingID string) []Row {
	rows := make([]Row, 0, len(items))
	for _, e := range items {
		rows = append(rows, Row{
			ID:          e.ID,
			Description: e.Description,
			Category:    e.Category,
			Amount:      FormatCurrency(e.Amount),
			Date:        FormatDate(e.Date),
			Editing:     editingID != "" && e.ID == editingID,
		})
	}
	return rows
}
