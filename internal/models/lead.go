package models

import "time"

// Lead is a contact-form submission from the public site.
type Lead struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone,omitempty" db:"phone"`
	Company   string    `json:"company,omitempty" db:"company"`
	Role      string    `json:"role,omitempty" db:"role"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
