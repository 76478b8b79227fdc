package http

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"outlay/internal/core"
	"outlay/internal/log"
)

// handleSubmitExpense records a new expense or, when a record is under
// edit, applies the submitted fields to it. Validation happens before
// any mutation: a rejected submission leaves the collection and the edit
// state exactly as they were.
func (s *Server) handleSubmitExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.logger.ErrorContext(r.Context(), "Parse form error",
			log.FieldError, err, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	desc := sanitizeInput(r.Form.Get("description"))
	category := sanitizeInput(r.Form.Get("category"))
	date := sanitizeInput(r.Form.Get("date"))
	amountStr := sanitizeInput(r.Form.Get("amount"))

	amount, err := core.ParseAmount(amountStr)
	if err != nil {
		UnprocessableEntityError("Please enter a valid amount greater than zero").Write(w)
		return
	}

	rec := core.Expense{
		ID:          uuid.NewString(),
		Description: desc,
		Category:    category,
		Amount:      amount,
		Date:        date,
	}
	if err := rec.Validate(); err != nil {
		UnprocessableEntityError(validationMessage(err)).Write(w)
		return
	}

	editingID := s.editState.Current()
	if editingID != "" {
		if _, ok := s.store.Get(editingID); !ok {
			// The record vanished while the form was open. Drop the
			// edit rather than resurrecting it as a new expense.
			s.editState.Clear()
			NewHTMXResponse().
				Status(http.StatusConflict).
				TriggerExpensesChanged().
				TriggerErrorNotification("That expense no longer exists").
				BodyHTML(`<div class="error">That expense no longer exists</div>` + s.renderFormPanelOOB()).
				Write(w)
			return
		}

		s.store.Update(r.Context(), editingID, core.Patch{
			Description: &rec.Description,
			Category:    &rec.Category,
			Amount:      &rec.Amount,
			Date:        &rec.Date,
		})
		s.editState.Clear()

		s.logger.InfoContext(r.Context(), "Expense updated",
			log.FieldExpenseID, editingID,
			log.FieldExpenseDesc, rec.Description,
			log.FieldCategory, rec.Category,
			log.FieldAmount, rec.Amount,
			log.FieldOperation, log.OpUpdate)

		NewHTMXResponse().
			TriggerExpensesChanged().
			TriggerSuccessNotification("Expense updated").
			BodyHTML(`<div class="success">Expense updated</div>` + s.renderFormPanelOOB()).
			Write(w)
		return
	}

	s.store.Add(r.Context(), rec)

	s.logger.InfoContext(r.Context(), "Expense created",
		log.FieldExpenseID, rec.ID,
		log.FieldExpenseDesc, rec.Description,
		log.FieldCategory, rec.Category,
		log.FieldAmount, rec.Amount,
		log.FieldOperation, log.OpCreate)

	NewHTMXResponse().
		TriggerExpensesChanged().
		TriggerFormReset().
		TriggerSuccessNotification("Expense recorded").
		BodyHTML(`<div class="success">Expense recorded</div>`).
		Write(w)
}

// handleDeleteExpense removes a record. Deleting an id that is already
// gone is not an error: the outcome the user asked for holds either way.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		MethodNotAllowedError("POST, DELETE").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	id := sanitizeInput(r.Form.Get("id"))
	if id == "" {
		BadRequestError("Missing expense id").Write(w)
		return
	}

	wasEditing := s.editState.Current() == id
	s.store.Delete(r.Context(), id)
	s.editState.ClearIf(id)

	s.logger.InfoContext(r.Context(), "Expense deleted",
		log.FieldExpenseID, id, log.FieldOperation, log.OpDelete)

	body := `<div class="success">Expense deleted</div>`
	if wasEditing {
		body += s.renderFormPanelOOB()
	}

	NewHTMXResponse().
		TriggerExpensesChanged().
		TriggerSuccessNotification("Expense deleted").
		BodyHTML(body).
		Write(w)
}

// handleEditExpense switches the form into edit mode for the requested
// record and returns the prefilled form panel. GET is accepted so the
// edit link works without a form wrapper.
func (s *Server) handleEditExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		MethodNotAllowedError("GET, POST").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	id := sanitizeInput(r.Form.Get("id"))
	if _, ok := s.store.Get(id); !ok {
		NotFoundError("Expense not found").Write(w)
		return
	}

	s.editState.Start(id)

	NewHTMXResponse().
		TriggerExpensesChanged().
		BodyHTML(s.renderFormPanel()).
		Write(w)
}

// handleCancelEdit abandons the current edit and returns the blank form.
// The record keeps its stored values untouched.
func (s *Server) handleCancelEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}

	s.editState.Clear()

	NewHTMXResponse().
		TriggerExpensesChanged().
		BodyHTML(s.renderFormPanel()).
		Write(w)
}

// renderFormPanel renders the form panel's inner HTML for the current
// edit state.
func (s *Server) renderFormPanel() string {
	if s.templates == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "expense_form.html", s.currentFormData()); err != nil {
		s.logger.Error("Template execution error",
			log.FieldError, err, "template", "expense_form.html")
		return ""
	}
	return buf.String()
}

// renderFormPanelOOB wraps the form panel in an out-of-band swap so a
// response targeted elsewhere can also refresh the form.
func (s *Server) renderFormPanelOOB() string {
	return `<div id="expense-form-panel" hx-swap-oob="true">` + s.renderFormPanel() + `</div>`
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyDescription):
		return "Description is required"
	case errors.Is(err, core.ErrEmptyCategory):
		return "Category is required"
	case errors.Is(err, core.ErrEmptyDate):
		return "Date is required"
	case errors.Is(err, core.ErrInvalidAmount):
		return "Please enter a valid amount greater than zero"
	default:
		return "Invalid data: " + err.Error()
	}
}
