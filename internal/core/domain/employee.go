package domain

import (
	"errors"
	"time"
)

var ErrEmployeeNotFound = errors.New("employee not found")
var ErrEmployeeExists = errors.New("employee already exists")

// Employee is an HR record, independent of any user account. A User may link
// to at most one Employee; the Employee never back-references the account.
type Employee struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employee_id"`
	Name        string    `json:"name"`
	Department  string    `json:"department"`
	Position    string    `json:"position"`
	ContactInfo string    `json:"contact_info"`
	StartDate   time.Time `json:"start_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
