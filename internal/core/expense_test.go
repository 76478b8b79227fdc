package core

import "testing"

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		ID:          "e1",
		Description: "coffee",
		Category:    "Food",
		Amount:      3.50,
		Date:        "2024-06-01",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{ID: "e1", Description: "  ", Category: "c", Amount: 1, Date: "2024-06-01"},
		{ID: "e1", Description: "a", Category: " ", Amount: 1, Date: "2024-06-01"},
		{ID: "e1", Description: "a", Category: "c", Amount: 1, Date: ""},
		{ID: "e1", Description: "a", Category: "c", Amount: 0, Date: "2024-06-01"},
		{ID: "e1", Description: "a", Category: "c", Amount: -2, Date: "2024-06-01"},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDecodeCollectionSafeDefaults(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not json", "xx{"},
		{"not an array", `{"id":"a"}`},
		{"number", `42`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DecodeCollection([]byte(tc.raw)); len(got) != 0 {
				t.Fatalf("expected empty collection, got %v", got)
			}
		})
	}
}

func TestDecodeCollectionDropsMalformedRecords(t *testing.T) {
	raw := `[
		{"id":"a","description":"lunch","category":"Food","amount":12.5,"date":"2024-06-01"},
		{"id":"b","description":"no category","amount":3,"date":"2024-06-02"},
		{"id":"c","description":"bad amount","category":"Misc","amount":"abc","date":"2024-06-03"},
		{"id":"d","description":"string amount","category":"Misc","amount":"7.25","date":"2024-05-01"},
		"not an object"
	]`
	got := DecodeCollection([]byte(raw))
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d: %v", len(got), got)
	}
	if got[0].ID != "a" || got[1].ID != "d" {
		t.Fatalf("unexpected records/order: %v", got)
	}
	if got[1].Amount != 7.25 {
		t.Fatalf("string amount not coerced: %v", got[1].Amount)
	}
}

func TestSortByDateDescInvalidLast(t *testing.T) {
	items := []Expense{
		{ID: "a", Date: "2024-01-01"},
		{ID: "b", Date: "not-a-date"},
		{ID: "c", Date: "2024-06-01"},
		{ID: "d", Date: "also-not-a-date"},
	}
	SortByDateDesc(items)
	wantOrder := []string{"c", "a", "b", "d"}
	for i, want := range wantOrder {
		if items[i].ID != want {
			t.Fatalf("position %d: want %s, got %s (full: %v)", i, want, items[i].ID, items)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	items := []Expense{
		{ID: "a", Description: "lunch", Category: "Food", Amount: 12.5, Date: "2024-06-01"},
		{ID: "b", Description: "bus", Category: "Transit", Amount: 2.75, Date: "2024-05-01"},
	}
	raw, err := EncodeCollection(items)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got := DecodeCollection(raw)
	if len(got) != 2 || got[0] != items[0] || got[1] != items[1] {
		t.Fatalf("round trip mismatch: %v", got)
	}
}

func TestPatchApply(t *testing.T) {
	orig := Expense{ID: "a", Description: "old", Category: "Food", Amount: 1, Date: "2024-01-01"}
	desc := "new"
	got := orig.Apply(Patch{Description: &desc})
	if got.Description != "new" {
		t.Fatalf("description not replaced: %v", got)
	}
	if got.Category != "Food" || got.Amount != 1 || got.Date != "2024-01-01" || got.ID != "a" {
		t.Fatalf("absent patch fields must be preserved: %v", got)
	}
}
