package auth

import (
	"testing"

	"restaurant-pos/internal/apperrors"
	"restaurant-pos/internal/models"
)

func TestPolicyAllows(t *testing.T) {
	p := NewPolicy()

	tests := []struct {
		role string
		cap  Capability
		want bool
	}{
		{"captain", CapOrderCreate, true},
		{"captain", CapTicketSend, true},
		{"captain", CapSessionTransfer, false},
		{"captain", CapCancelApprove, false},
		{"captain", CapPaymentRecord, false},
		{"kitchen", CapTicketUpdate, true},
		{"kitchen", CapOrderCreate, false},
		{"cashier", CapBillGenerate, true},
		{"cashier", CapPaymentRecord, true},
		{"cashier", CapTableMerge, false},
		{"manager", CapSessionTransfer, true},
		{"manager", CapCancelApprove, true},
		{"admin", CapCancelApprove, true},
		{"admin", CapTableMerge, true},
		{"unknown", CapOrderCreate, false},
		{"", CapOrderCreate, false},
	}

	for _, tt := range tests {
		if got := p.Allows(tt.role, tt.cap); got != tt.want {
			t.Errorf("Allows(%q, %q) = %v, want %v", tt.role, tt.cap, got, tt.want)
		}
	}
}

func TestRequireOwnership(t *testing.T) {
	p := NewPolicy()

	owner := models.Actor{StaffID: 7, Role: "captain"}
	if err := p.RequireOwnership(owner, 7); err != nil {
		t.Errorf("owner should pass ownership check: %v", err)
	}

	other := models.Actor{StaffID: 8, Role: "captain"}
	err := p.RequireOwnership(other, 7)
	if err == nil {
		t.Fatalf("non-owner captain should be denied")
	}
	if apperrors.KindOf(err) != apperrors.KindPermissionDenied {
		t.Errorf("kind = %v, want permission_denied", apperrors.KindOf(err))
	}

	manager := models.Actor{StaffID: 9, Role: "manager"}
	if err := p.RequireOwnership(manager, 7); err != nil {
		t.Errorf("manager should override ownership: %v", err)
	}
}
