package models

// Customer is a client that owns zero or more projects.
type Customer struct {
	// ID is assigned by the store on creation.
	ID int64 `json:"id"`

	// Name is the company name. Required by the store, but a legacy row may
	// still carry null.
	Name *string `json:"name"`

	ContactPerson *string `json:"contact_person"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`

	// DesignNote holds free-form notes about booth design preferences.
	DesignNote *string `json:"design_note"`
}
