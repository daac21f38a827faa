package models

import (
	"fmt"
	"time"
)

// TableStatus represents the state of a physical table.
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableReserved  TableStatus = "reserved"
	TableOccupied  TableStatus = "occupied"
	TableRunning   TableStatus = "running"
	TableBilling   TableStatus = "billing"
	TableMerged    TableStatus = "merged"
	TableBlocked   TableStatus = "blocked"
)

// SessionStatus represents the state of an occupancy session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionBilling   SessionStatus = "billing"
	SessionCompleted SessionStatus = "completed"
)

// Table is one physical seating unit.
type Table struct {
	ID         int         `json:"id"`
	Number     string      `json:"number"`
	Capacity   int         `json:"capacity"`
	Shape      string      `json:"shape"`
	Status     TableStatus `json:"status"`
	MergedInto *int        `json:"merged_into,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// TableSession is one occupancy episode on a table.
type TableSession struct {
	ID         int           `json:"id"`
	TableID    int           `json:"table_id"`
	GuestCount int           `json:"guest_count"`
	GuestName  *string       `json:"guest_name,omitempty"`
	GuestPhone *string       `json:"guest_phone,omitempty"`
	StaffID    int           `json:"staff_id"`
	Notes      *string       `json:"notes,omitempty"`
	Status     SessionStatus `json:"status"`
	OrderID    *int          `json:"order_id,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	EndedAt    *time.Time    `json:"ended_at,omitempty"`
}

// TableMergeGroup records a merge of member tables into a primary.
// MemberCapacities keeps each member's pre-merge capacity so an unmerge
// can restore them exactly.
type TableMergeGroup struct {
	ID               int         `json:"id"`
	PrimaryTableID   int         `json:"primary_table_id"`
	MemberCapacities map[int]int `json:"member_capacities"`
	MergedAt         time.Time   `json:"merged_at"`
	UnmergedAt       *time.Time  `json:"unmerged_at,omitempty"`
}

// StartSessionRequest is the payload for POST /tables/{id}/session.
type StartSessionRequest struct {
	GuestCount int     `json:"guest_count"`
	GuestName  *string `json:"guest_name,omitempty"`
	GuestPhone *string `json:"guest_phone,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

// Validate checks the start-session payload.
func (r *StartSessionRequest) Validate() error {
	if r.GuestCount < 1 {
		return fmt.Errorf("guest_count must be at least 1")
	}
	if r.GuestCount > 50 {
		return fmt.Errorf("guest_count must not exceed 50")
	}
	if r.GuestName != nil && len(*r.GuestName) > 100 {
		return fmt.Errorf("guest_name must not exceed 100 characters")
	}
	return nil
}

// MergeTablesRequest is the payload for POST /tables/{id}/merge.
type MergeTablesRequest struct {
	MemberTableIDs []int `json:"member_table_ids"`
}

// Validate checks the merge payload.
func (r *MergeTablesRequest) Validate() error {
	if len(r.MemberTableIDs) == 0 {
		return fmt.Errorf("member_table_ids cannot be empty")
	}
	if len(r.MemberTableIDs) > 10 {
		return fmt.Errorf("member_table_ids cannot contain more than 10 tables")
	}
	seen := make(map[int]bool, len(r.MemberTableIDs))
	for _, id := range r.MemberTableIDs {
		if id < 1 {
			return fmt.Errorf("member_table_ids contains an invalid table id")
		}
		if seen[id] {
			return fmt.Errorf("member_table_ids contains duplicate table %d", id)
		}
		seen[id] = true
	}
	return nil
}

// TransferOwnershipRequest is the payload for POST /tables/{id}/session/transfer.
type TransferOwnershipRequest struct {
	NewStaffID int `json:"new_staff_id"`
}

// Validate checks the transfer payload.
func (r *TransferOwnershipRequest) Validate() error {
	if r.NewStaffID < 1 {
		return fmt.Errorf("new_staff_id is required")
	}
	return nil
}
