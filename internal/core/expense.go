package core

import (
	"encoding/json"
	"errors"
	"math"
	"sort"
	"strings"
)

// StorageKey is the persisted-blob key shared by every running instance.
// All processes pointed at the same storage backend read and overwrite
// this single key; there is no per-record addressing.
const StorageKey = "expense-tracker:expenses"

// Expense is one user-entered entry. The struct is wire-faithful to the
// persisted JSON format: a flat object with no schema version field.
type Expense struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
}

// Patch carries replacement values for an update. Nil fields keep the
// stored value.
type Patch struct {
	Description *string
	Category    *string
	Amount      *float64
	Date        *string
}

var (
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyDate        = errors.New("empty date")
	ErrInvalidAmount    = errors.New("invalid amount")
)

// Validate checks a record built from form input. Records loaded from
// storage are never validated with this; they only pass the looser shape
// check in DecodeCollection.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if e.Date == "" {
		return ErrEmptyDate
	}
	if e.Amount <= 0 || math.IsInf(e.Amount, 0) || math.IsNaN(e.Amount) {
		return ErrInvalidAmount
	}
	return nil
}

// Apply merges the patch onto the record, replacing only the fields the
// patch carries.
func (e Expense) Apply(p Patch) Expense {
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	return e
}

// DecodeCollection parses a persisted blob into a collection. A blob that
// is empty, not valid JSON, or not an array yields an empty collection,
// never an error: the persistence format has no version negotiation, so
// anything unexpected is treated as absent rather than fatal. Individual
// records failing the shape check are silently dropped; well-shaped
// siblings are kept and their amounts coerced to numbers.
func DecodeCollection(raw []byte) []Expense {
	if len(raw) == 0 {
		return nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	out := make([]Expense, 0, len(entries))
	for _, entry := range entries {
		if e, ok := decodeRecord(entry); ok {
			out = append(out, e)
		}
	}
	SortByDateDesc(out)
	return out
}

// decodeRecord shape-checks one raw value: id, description, category and
// date must be strings, amount a number or a numeric string.
func decodeRecord(raw json.RawMessage) (Expense, bool) {
	var rec struct {
		ID          *string         `json:"id"`
		Description *string         `json:"description"`
		Category    *string         `json:"category"`
		Amount      json.RawMessage `json:"amount"`
		Date        *string         `json:"date"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Expense{}, false
	}
	if rec.ID == nil || rec.Description == nil || rec.Category == nil || rec.Date == nil {
		return Expense{}, false
	}
	amount, ok := coerceAmount(rec.Amount)
	if !ok {
		return Expense{}, false
	}
	return Expense{
		ID:          *rec.ID,
		Description: *rec.Description,
		Category:    *rec.Category,
		Amount:      amount,
		Date:        *rec.Date,
	}, true
}

// EncodeCollection serializes the collection as a JSON array, the exact
// shape DecodeCollection reads back.
func EncodeCollection(items []Expense) ([]byte, error) {
	if items == nil {
		items = []Expense{}
	}
	return json.Marshal(items)
}

// SortByDateDesc orders the collection by date descending. Records whose
// date does not parse sort after all records with valid dates; two
// unparseable dates keep their relative order.
func SortByDateDesc(items []Expense) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, iok := ParseWhen(items[i].Date)
		tj, jok := ParseWhen(items[j].Date)
		if !iok {
			return false
		}
		if !jok {
			return true
		}
		return ti.After(tj)
	})
}
