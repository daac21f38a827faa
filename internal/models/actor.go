package models

import "fmt"

// Actor identifies the staff member performing an operation. Identity
// arrives on trusted gateway headers; staff administration is a
// separate system.
type Actor struct {
	StaffID int
	Role    string
}

// Validate checks that the actor headers were present and sane.
func (a Actor) Validate() error {
	if a.StaffID < 1 {
		return fmt.Errorf("X-Staff-Id header is required")
	}
	if a.Role == "" {
		return fmt.Errorf("X-Staff-Role header is required")
	}
	return nil
}
