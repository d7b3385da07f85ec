package model

import "time"

// Employee represents an HR employee record. The auth subsystem only needs it
// as the target of user links and ownership checks; the wider employee domain
// lives elsewhere.
type Employee struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FirstName  string    `json:"first_name" gorm:"size:100;not null"`
	LastName   string    `json:"last_name" gorm:"size:100;not null"`
	Email      string    `json:"email" gorm:"uniqueIndex;size:100;not null"`
	Position   string    `json:"position" gorm:"size:100"`
	Department string    `json:"department" gorm:"size:100;index"`
	HireDate   time.Time `json:"hire_date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
