package models

import "encoding/json"

// Project is a single trade-fair engagement.
type Project struct {
	ID   int64   `json:"id"`
	Name *string `json:"name"`

	// Customer is a display label for the client. It is independent of
	// CustomerID and is kept for projects created before customers existed.
	Customer *string `json:"customer"`

	Fair *string `json:"fair"`

	// Size is the booth size, usually in square metres.
	Size *Size `json:"size"`

	Date     *string `json:"date"`
	Priority *string `json:"priority"`
	Status   *string `json:"status"`
	NextStep *string `json:"nextStep"`
	DueDate  *string `json:"dueDate"`

	// CustomerID links the project to a Customer. The reference is not
	// validated; a dangling value is allowed.
	CustomerID *int64 `json:"customer_id"`
}

// Size is a booth size. Older stores may hold free text such as "ca. 30" in
// the size column; such values are kept in Text and returned unchanged.
type Size struct {
	Number float64
	Text   *string
}

// NumberSize returns a numeric Size.
func NumberSize(f float64) *Size {
	return &Size{Number: f}
}

// MarshalJSON writes a number, or the legacy text as a JSON string.
func (s Size) MarshalJSON() ([]byte, error) {
	if s.Text != nil {
		return json.Marshal(*s.Text)
	}
	return json.Marshal(s.Number)
}
