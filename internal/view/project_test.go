package view

import (
	"math"
	"testing"

	"outlay/internal/core"
)

func TestTotal(t *testing.T) {
	tests := []struct {
		name  string
		items []core.Expense
		want  float64
	}{
		{"empty collection", nil, 0},
		{
			"sums amounts",
			[]core.Expense{{Amount: 3.5}, {Amount: 10}, {Amount: 0.25}},
			13.75,
		},
		{
			"skips non-finite amounts",
			[]core.Expense{{Amount: 5}, {Amount: math.NaN()}, {Amount: math.Inf(1)}, {Amount: 2}},
			7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Total(tt.items); got != tt.want {
				t.Errorf("Total() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCategoryTotals(t *testing.T) {
	items := []core.Expense{
		{Category: "Food", Amount: 3.5},
		{Category: "Housing", Amount: 850},
		{Category: " Food ", Amount: 1.5},
		{Category: "food", Amount: 2},
		{Category: "  ", Amount: 9},
	}

	got := CategoryTotals(items)

	want := []CategoryTotal{
		{Category: "Food", Amount: 5},
		{Category: "Housing", Amount: 850},
		{Category: "food", Amount: 2},
		{Category: Uncategorized, Amount: 9},
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d buckets, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Bucket %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRows(t *testing.T) {
	items := []core.Expense{
		{ID: "a", Description: "Coffee", Category: "Food", Amount: 3.5, Date: "2024-03-01"},
		{ID: "b", Description: "Mystery", Category: "Misc", Amount: 1234.56, Date: "sometime"},
	}

	rows := Rows(items, "b")

	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].Amount != "$3.50" {
		t.Errorf("Amount = %q, want $3.50", rows[0].Amount)
	}
	if rows[0].Date != "Mar 1, 2024" {
		t.Errorf("Date = %q, want Mar 1, 2024", rows[0].Date)
	}
	if rows[0].Editing {
		t.Error("Row a must not be marked editing")
	}
	if !rows[1].Editing {
		t.Error("Row b must be marked editing")
	}
	if rows[1].Date != "sometime" {
		t.Errorf("Unparseable date must stay verbatim, got %q", rows[1].Date)
	}
	if rows[1].Amount != "$1,234.56" {
		t.Errorf("Amount = %q, want $1,234.56", rows[1].Amount)
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"zero", 0, "$0.00"},
		{"cents only", 0.5, "$0.50"},
		{"thousands grouping", 1234.56, "$1,234.56"},
		{"millions grouping", 1234567.89, "$1,234,567.89"},
		{"exact thousand", 1000, "$1,000.00"},
		{"negative", -42.1, "-$42.10"},
		{"nan", math.NaN(), "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCurrency(tt.value); got != tt.want {
				t.Errorf("FormatCurrency(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestFormatDateForInput(t *testing.T) {
	if got := FormatDateForInput("2024-03-01"); got != "2024-03-01" {
		t.Errorf("FormatDateForInput() = %q, want 2024-03-01", got)
	}
	if got := FormatDateForInput("Mar 1, 2024"); got != "2024-03-01" {
		t.Errorf("FormatDateForInput() = %q, want 2024-03-01", got)
	}
	if got := FormatDateForInput("bogus"); got != "bogus" {
		t.Errorf("Unparseable date must stay verbatim, got %q", got)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(25, 100); got != "25.0%" {
		t.Errorf("Percent(25, 100) = %q, want 25.0%%", got)
	}
	if got := Percent(1, 3); got != "33.3%" {
		t.Errorf("Percent(1, 3) = %q, want 33.3%%", got)
	}
	if got := Percent(5, 0); got != "0.0%" {
		t.Errorf("Percent with zero total = %q, want 0.0%%", got)
	}
}
