package http

import "sync"

// editState tracks which record the form is currently editing. The app
// serves one household ledger, so a single slot is enough: starting a new
// edit replaces the previous one.
type editState struct {
	mu sync.Mutex
	id string
}

func newEditState() *editState {
	return &editState{}
}

// Start switches the form to edit mode for the given record.
func (e *editState) Start(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.id = id
}

// Clear returns the form to add mode.
func (e *editState) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.id = ""
}

// ClearIf exits edit mode only when the given record is the one being
// edited. Deleting an unrelated row must not disturb an ongoing edit.
func (e *editState) ClearIf(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.id == id {
		e.id = ""
	}
}

// Current returns the id under edit, empty when the form is in add mode.
func (e *editState) Current() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.id
}
